package verifier

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the local enrollment file read inside the sandbox. It carries
// everything the verifier needs besides the fetched payload itself.
type Config struct {
	SubjectKey string `yaml:"subject_key"`
	PublicKey  string `yaml:"public_key"` // hex-encoded Ed25519 public key of the authority
	Remote     string `yaml:"remote"`
	Namespace  string `yaml:"namespace"`
	RefName    string `yaml:"ref_name"` // optional override of the derived ref
}

var errConfigIncomplete = errors.New("config incomplete")

// LoadConfig reads and validates the enrollment file. Any problem here must
// resolve to deny; the caller maps errors to ReasonConfigMissing.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.SubjectKey) == "" {
		return Config{}, fmt.Errorf("%w: subject_key", errConfigIncomplete)
	}
	if _, err := cfg.AuthorityKey(); err != nil {
		return Config{}, err
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "pulse"
	}
	if cfg.RefName == "" {
		cfg.RefName = "refs/" + cfg.Namespace + "/" + cfg.SubjectKey
	}
	return cfg, nil
}

// AuthorityKey decodes the configured public key.
func (c Config) AuthorityKey() (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(c.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("%w: public_key: %v", errConfigIncomplete, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public_key: want %d bytes, got %d", errConfigIncomplete, ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
