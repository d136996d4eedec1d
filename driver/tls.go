package driver

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// buildTLSConfig assembles a *tls.Config from a ConnectParams' ordered
// CertSources: later sources add to (or, for CertSourceMozillaRoots,
// replace) the trust pool built by earlier ones.
func buildTLSConfig(cp *ConnectParams) (*tls.Config, error) {
	cfg := &tls.Config{ServerName: cp.Host, MinVersion: tls.VersionTLS12}
	pool := x509.NewCertPool()
	haveCerts := false

	for _, src := range cp.CertSources {
		switch src.Kind {
		case CertSourceDir:
			entries, err := os.ReadDir(src.Value)
			if err != nil {
				return nil, &ConnectionParamsError{Err: fmt.Errorf("reading %s: %w", dsnTLSCertificateDir, err)}
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				b, err := os.ReadFile(filepath.Join(src.Value, e.Name()))
				if err != nil {
					return nil, &ConnectionParamsError{Err: err}
				}
				if pool.AppendCertsFromPEM(b) {
					haveCerts = true
				}
			}
		case CertSourceEnv:
			if pool.AppendCertsFromPEM([]byte(os.Getenv(src.Value))) {
				haveCerts = true
			}
		case CertSourceDirect:
			if pool.AppendCertsFromPEM([]byte(src.Value)) {
				haveCerts = true
			}
		case CertSourceMozillaRoots:
			sys, err := x509.SystemCertPool()
			if err != nil || sys == nil {
				sys = x509.NewCertPool()
			}
			pool = sys
			haveCerts = true
		case CertSourceOmitCheck:
			cfg.InsecureSkipVerify = true
		}
	}

	if !cfg.InsecureSkipVerify {
		if !haveCerts {
			return nil, &UsageError{Msg: "hdbsqls: no usable certificate source in connection options"}
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}
