package driver

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Connection URL schemes.
const (
	schemePlain = "hdbsql"
	schemeTLS   = "hdbsqls"
)

// Recognized DSN query keys.
const (
	dsnClientLocale          = "client_locale"
	dsnClientLocaleFromEnv   = "client_locale_from_env"
	dsnTLSCertificateDir     = "tls_certificate_dir"
	dsnTLSCertificateEnv     = "tls_certificate_env"
	dsnTLSCertificateMozilla = "tls_certificate_mozilla"
	dsnUseMozillaRootCerts   = "use_mozillas_root_certificates"
	dsnTLSCertificateDirect  = "tls_certificate_direct"
	dsnInsecureOmitCertCheck = "insecure_omit_server_certificate_check"
	dsnDatabase1             = "db"
	dsnDatabase2             = "database"
	dsnNetworkGroup          = "network_group"
)

// CertSourceKind identifies how a TLS trust source was supplied.
type CertSourceKind int

// Recognized certificate source kinds.
const (
	CertSourceDir CertSourceKind = iota
	CertSourceEnv
	CertSourceMozillaRoots
	CertSourceDirect
	CertSourceOmitCheck
)

// CertSource is one entry of ConnectParams' ordered TLS trust chain.
type CertSource struct {
	Kind  CertSourceKind
	Value string // directory path, env var name, or inline PEM; empty for Mozilla/omit-check
}

// Password is a zeroing container: its wire-visible and string-typed
// contents must never survive past use. Serialized forms of
// ConnectParams (String, logging) must never include it.
type Password struct{ b []byte }

// NewPassword copies s into a private buffer.
func NewPassword(s string) Password { return Password{b: []byte(s)} }

// String returns the password. Callers must not retain or log the result.
func (p Password) String() string { return string(p.b) }

// Clear overwrites the password buffer with zeros.
func (p *Password) Clear() {
	for i := range p.b {
		p.b[i] = 0
	}
}

// ConnectParams is immutable after Parse returns.
type ConnectParams struct {
	TLS bool

	Host string
	Port int

	Username string
	Password Password

	Database     string // tenant database name, empty for the system/default database
	NetworkGroup string

	ClientLocale string

	CertSources []CertSource
}

// Parse builds a ConnectParams from a connection URL of the form
//
//	(hdbsql|hdbsqls)://[user[:password]@]host:port[?option(&option)*]
func Parse(dsn string) (*ConnectParams, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, &ConnectionParamsError{Err: err}
	}

	var tls bool
	switch u.Scheme {
	case schemePlain:
		tls = false
	case schemeTLS:
		tls = true
	default:
		return nil, &ConnectionParamsError{Err: fmt.Errorf("unrecognized scheme %q", u.Scheme)}
	}

	if u.Hostname() == "" {
		return nil, &ConnectionParamsError{Err: fmt.Errorf("missing host")}
	}
	port := 30015
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, &ConnectionParamsError{Err: fmt.Errorf("invalid port %q: %w", p, err)}
		}
	}

	cp := &ConnectParams{
		TLS:  tls,
		Host: u.Hostname(),
		Port: port,
	}
	if u.User != nil {
		cp.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cp.Password = NewPassword(pw)
		}
	}

	values := u.Query()
	for key := range values {
		switch key {
		case dsnClientLocale, dsnClientLocaleFromEnv, dsnTLSCertificateDir, dsnTLSCertificateEnv,
			dsnTLSCertificateMozilla, dsnUseMozillaRootCerts, dsnTLSCertificateDirect,
			dsnInsecureOmitCertCheck, dsnDatabase1, dsnDatabase2, dsnNetworkGroup:
		default:
			return nil, &ConnectionParamsError{Err: fmt.Errorf("unrecognized connection option %q", key)}
		}
	}

	if v := values.Get(dsnClientLocale); v != "" {
		cp.ClientLocale = v
	}
	if v := values.Get(dsnClientLocaleFromEnv); v != "" {
		cp.ClientLocale = os.Getenv(v)
	}
	if v := values.Get(dsnDatabase1); v != "" {
		cp.Database = v
	}
	if v := values.Get(dsnDatabase2); v != "" {
		cp.Database = v
	}
	cp.NetworkGroup = values.Get(dsnNetworkGroup)

	if v := values.Get(dsnTLSCertificateDir); v != "" {
		cp.CertSources = append(cp.CertSources, CertSource{Kind: CertSourceDir, Value: v})
	}
	if v := values.Get(dsnTLSCertificateEnv); v != "" {
		cp.CertSources = append(cp.CertSources, CertSource{Kind: CertSourceEnv, Value: v})
	}
	if has(values, dsnTLSCertificateMozilla) || has(values, dsnUseMozillaRootCerts) {
		cp.CertSources = append(cp.CertSources, CertSource{Kind: CertSourceMozillaRoots})
	}
	if v := values.Get(dsnTLSCertificateDirect); v != "" {
		cp.CertSources = append(cp.CertSources, CertSource{Kind: CertSourceDirect, Value: v})
	}
	if has(values, dsnInsecureOmitCertCheck) {
		cp.CertSources = append(cp.CertSources, CertSource{Kind: CertSourceOmitCheck})
	}

	if cp.TLS && len(cp.CertSources) == 0 {
		return nil, &UsageError{Msg: "hdbsqls requires at least one tls_certificate_* option"}
	}

	return cp, nil
}

func has(values url.Values, key string) bool {
	_, ok := values[key]
	return ok
}

func (cp *ConnectParams) String() string {
	var b strings.Builder
	scheme := schemePlain
	if cp.TLS {
		scheme = schemeTLS
	}
	fmt.Fprintf(&b, "%s://", scheme)
	if cp.Username != "" {
		fmt.Fprintf(&b, "%s@", cp.Username)
	}
	fmt.Fprintf(&b, "%s:%d", cp.Host, cp.Port)
	return b.String()
}

// Addr returns the host:port dial target.
func (cp *ConnectParams) Addr() string {
	return fmt.Sprintf("%s:%d", cp.Host, cp.Port)
}
