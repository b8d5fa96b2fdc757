package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertificate is returned when neither a key pair nor autoCert is configured.
var ErrNoCertificate = errors.New("tls: cert and key are required unless autoCert is set")

// ServerOptions describes the HTTPS listener's certificates.
type ServerOptions struct {
	CertFile string
	KeyFile  string
	// CAFiles are PEM bundles trusted for client certificates.
	CAFiles []string
	// MutualTLS requires and verifies a client certificate.
	MutualTLS bool
	// AutoCert generates a self-signed certificate in memory.
	AutoCert bool
}

// ServerConfig builds a tls.Config for the HTTPS listener.
func ServerConfig(opts ServerOptions) (*tls.Config, error) {
	cert, err := serverCertificate(opts)
	if err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if len(opts.CAFiles) > 0 {
		pool := x509.NewCertPool()
		for _, file := range opts.CAFiles {
			pemData, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate file %s: %w", file, err)
			}
			if !pool.AppendCertsFromPEM(pemData) {
				return nil, fmt.Errorf("failed to parse CA certificate from %s", file)
			}
		}
		cfg.ClientCAs = pool
	}

	if opts.MutualTLS {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

func serverCertificate(opts ServerOptions) (tls.Certificate, error) {
	if opts.CertFile != "" || opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load certificate: %w", err)
		}
		return cert, nil
	}
	if !opts.AutoCert {
		return tls.Certificate{}, ErrNoCertificate
	}
	gen, err := GenerateSelfSignedCert(nil)
	if err != nil {
		return tls.Certificate{}, err
	}
	return gen.TLSCertificate()
}
