package verifier

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pulsegate.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	path := writeConfig(t, "subject_key: acct-42\npublic_key: "+hex.EncodeToString(pub)+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, "pulse", cfg.Namespace)
	assert.Equal(t, "refs/pulse/acct-42", cfg.RefName)

	key, err := cfg.AuthorityKey()
	require.NoError(t, err)
	assert.Equal(t, ed25519.PublicKey(pub), key)
}

func TestLoadConfigRefOverride(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	path := writeConfig(t, "subject_key: acct-42\npublic_key: "+hex.EncodeToString(pub)+"\nref_name: refs/custom/x\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "refs/custom/x", cfg.RefName)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"no subject", "public_key: aa\n"},
		{"bad hex", "subject_key: a\npublic_key: zz\n"},
		{"short key", "subject_key: a\npublic_key: aabb\n"},
		{"not yaml", ":\n-:\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
