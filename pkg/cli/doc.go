// Package cli implements the stubdb command line.
//
//	stubdb serve    [--config stubdb.yaml] [--port 7777] [--secure-port 7443] ...
//	stubdb validate [--config stubdb.yaml]
//	stubdb lookup   <dataset> <key> [field]
//	stubdb version
package cli
