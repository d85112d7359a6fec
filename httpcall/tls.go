package httpcall

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"quiver/config"
)

// TLSConfigFrom builds a tls.Config from the configured client identity.
// Returns nil when no TLS options are set, leaving the transport defaults
// in place.
func TLSConfigFrom(t config.TLSConfig) (*tls.Config, error) {
	if t.CertFile == "" && t.KeyFile == "" && t.CAFile == "" && !t.InsecureSkipVerify {
		return nil, nil
	}

	conf := &tls.Config{
		InsecureSkipVerify: t.InsecureSkipVerify,
	}

	if t.CertFile != "" || t.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		conf.Certificates = []tls.Certificate{cert}
	}

	if t.CAFile != "" {
		pem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", t.CAFile)
		}
		conf.RootCAs = pool
	}

	return conf, nil
}
