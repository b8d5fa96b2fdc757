// Package config loads the stubdb server configuration and its mapping files.
//
// A configuration file is YAML (JSON is accepted too, being a YAML subset):
//
//	server:
//	  host: 0.0.0.0
//	  port: 7777
//	  securePort: 7443
//	  tls:
//	    cert: certs/server.crt
//	    key: certs/server.key
//	    ca: [certs/clients.pem]
//	    mutualSSL: true
//	mappings:
//	  - mappings/**/*.yaml
//	dbsets: dbsets
//	log:
//	  level: info
//	  format: text
//	templating:
//	  datasetFallback: empty
//
// Values are layered: defaults, then the file, then STUBDB_* environment
// variables, then command line flags applied by the caller. Relative paths are
// resolved against the directory holding the configuration file.
package config
