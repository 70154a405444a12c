package config

import (
	"os"
	"time"
)

// Server captures everything main needs to wire the service.
type Server struct {
	Addr string

	CipherKey string
	CipherIV  string

	// SourceMode selects the directory backend: "live", "fixture" or "static".
	SourceMode string

	DirectoryURL            string
	DirectorySearchBase     string
	DirectoryBindDN         string
	DirectoryBindPassword   string
	DirectoryMailDomain     string
	DirectoryDialTimeout    time.Duration
	DirectoryRequestTimeout time.Duration

	TokenURL              string
	TokenTimeout          time.Duration
	TLSTrustBundlePath    string
	TLSInsecureSkipVerify bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr: getenv("DIRGATE_ADDR", ":8080"),

		CipherKey: os.Getenv("DIRGATE_CIPHER_KEY"),
		CipherIV:  os.Getenv("DIRGATE_CIPHER_IV"),

		SourceMode: getenv("DIRGATE_SOURCE_MODE", "live"),

		DirectoryURL:            os.Getenv("DIRGATE_LDAP_URL"),
		DirectorySearchBase:     os.Getenv("DIRGATE_LDAP_SEARCH_BASE"),
		DirectoryBindDN:         os.Getenv("DIRGATE_LDAP_BIND_DN"),
		DirectoryBindPassword:   os.Getenv("DIRGATE_LDAP_BIND_PASSWORD"),
		DirectoryMailDomain:     getenv("DIRGATE_LDAP_MAIL_DOMAIN", "@corp.example.mx"),
		DirectoryDialTimeout:    getduration("DIRGATE_LDAP_DIAL_TIMEOUT", 5*time.Second),
		DirectoryRequestTimeout: getduration("DIRGATE_LDAP_REQUEST_TIMEOUT", 10*time.Second),

		TokenURL:              os.Getenv("DIRGATE_TOKEN_URL"),
		TokenTimeout:          getduration("DIRGATE_TOKEN_TIMEOUT", 10*time.Second),
		TLSTrustBundlePath:    os.Getenv("DIRGATE_TLS_TRUST_BUNDLE"),
		TLSInsecureSkipVerify: os.Getenv("DIRGATE_TLS_INSECURE_SKIP_VERIFY") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
