package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "live", cfg.SourceMode)
	assert.Equal(t, "@corp.example.mx", cfg.DirectoryMailDomain)
	assert.Equal(t, 5*time.Second, cfg.DirectoryDialTimeout)
	assert.Equal(t, 10*time.Second, cfg.TokenTimeout)
	assert.False(t, cfg.TLSInsecureSkipVerify)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DIRGATE_ADDR", ":9999")
	t.Setenv("DIRGATE_SOURCE_MODE", "fixture")
	t.Setenv("DIRGATE_LDAP_DIAL_TIMEOUT", "2s")
	t.Setenv("DIRGATE_LDAP_REQUEST_TIMEOUT", "garbage")
	t.Setenv("DIRGATE_TLS_INSECURE_SKIP_VERIFY", "true")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "fixture", cfg.SourceMode)
	assert.Equal(t, 2*time.Second, cfg.DirectoryDialTimeout)
	assert.Equal(t, 10*time.Second, cfg.DirectoryRequestTimeout)
	assert.True(t, cfg.TLSInsecureSkipVerify)
}
