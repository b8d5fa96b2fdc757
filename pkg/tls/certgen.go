// Package tls builds server TLS configurations for stubdb, including
// in-memory self-signed certificates.
package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"
)

// CertificateConfig contains options for certificate generation.
type CertificateConfig struct {
	Organization string
	CommonName   string
	DNSNames     []string
	IPAddresses  []net.IP
	ValidFor     time.Duration
}

// DefaultCertificateConfig returns a localhost certificate valid for a year.
func DefaultCertificateConfig() *CertificateConfig {
	return &CertificateConfig{
		Organization: "stubdb",
		CommonName:   "localhost",
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
		ValidFor:     365 * 24 * time.Hour,
	}
}

// GeneratedCertificate holds a certificate and its key in PEM form.
type GeneratedCertificate struct {
	Certificate *x509.Certificate
	CertPEM     []byte
	KeyPEM      []byte
}

// TLSCertificate converts the generated PEM pair for use in a tls.Config.
func (g *GeneratedCertificate) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair(g.CertPEM, g.KeyPEM)
}

// GenerateSelfSignedCert creates an ECDSA P-256 self-signed server certificate.
func GenerateSelfSignedCert(cfg *CertificateConfig) (*GeneratedCertificate, error) {
	if cfg == nil {
		cfg = DefaultCertificateConfig()
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute)
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{cfg.Organization},
			CommonName:   cfg.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(cfg.ValidFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              cfg.DNSNames,
		IPAddresses:           cfg.IPAddresses,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	return &GeneratedCertificate{
		Certificate: cert,
		CertPEM:     pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:      pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}, nil
}
