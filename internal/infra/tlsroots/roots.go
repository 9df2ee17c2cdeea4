package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCertsFound is returned when a CA source holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found")

// caExtensions are the file types read from a CA directory.
var caExtensions = map[string]bool{".pem": true, ".crt": true, ".cer": true}

// ClientTLSConfig returns the client TLS config for a CA file or
// directory layered on the system roots. An empty path yields nil, which
// leaves the transport defaults in place.
func ClientTLSConfig(caPath string) (*tls.Config, error) {
	if caPath == "" {
		return nil, nil
	}
	roots, err := x509.SystemCertPool()
	if err != nil {
		roots = x509.NewCertPool()
	}
	if _, err := Load(roots, caPath); err != nil {
		return nil, err
	}
	return &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}, nil
}

// Load adds the certificates found at path to pool and returns how many
// were added. A directory contributes every .pem, .crt and .cer file in it;
// files that fail to parse are skipped unless nothing loads at all.
func Load(pool *x509.CertPool, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: %w", err)
	}
	if !info.IsDir() {
		return loadFile(pool, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: %w", err)
	}
	var (
		total   int
		skipped []string
	)
	for _, e := range entries {
		if e.IsDir() || !caExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		n, err := loadFile(pool, filepath.Join(path, e.Name()))
		if err != nil {
			skipped = append(skipped, e.Name())
			continue
		}
		total += n
	}
	switch {
	case total > 0:
		return total, nil
	case len(skipped) > 0:
		return 0, fmt.Errorf("tlsroots: no usable certificates in %s (skipped %s)", path, strings.Join(skipped, ", "))
	default:
		return 0, fmt.Errorf("tlsroots: %s: %w", path, ErrNoCertsFound)
	}
}

func loadFile(pool *x509.CertPool, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: %w", err)
	}
	n, err := appendPEM(pool, data)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: %s: %w", path, err)
	}
	return n, nil
}

// appendPEM parses every CERTIFICATE block in data. Keys and other block
// types are ignored.
func appendPEM(pool *x509.CertPool, data []byte) (int, error) {
	var n int
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return n, fmt.Errorf("parse certificate %d: %w", n+1, err)
		}
		pool.AddCert(cert)
		n++
	}
	if n == 0 {
		return 0, ErrNoCertsFound
	}
	return n, nil
}
