package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"studiolinks/internal/validation"
)

// DefaultPalette is the set of QR background colours picked from when a
// request does not supply a valid colour.
var DefaultPalette = []string{
	"#f4a261",
	"#e9c46a",
	"#2a9d8f",
	"#8ecae6",
	"#a8dadc",
	"#cdb4db",
	"#ffafcc",
	"#bde0fe",
	"#b5e48c",
	"#ffd6a5",
}

// DefaultRewriteExempt lists image paths that must keep being served as-is
// instead of being treated as "<slug>.png" QR requests.
var DefaultRewriteExempt = []string{
	"/favicon.png",
	"/apple-touch-icon.png",
	"/apple-touch-icon-precomposed.png",
	"/icon.png",
}

// YAMLConfig represents the structure of the config.yaml file.
// Lists are easier to manage in YAML than env vars.
type YAMLConfig struct {
	QR      QRConfig      `yaml:"qr"`
	Rewrite RewriteConfig `yaml:"rewrite"`
}

// QRConfig holds QR rendering settings.
type QRConfig struct {
	Palette []string `yaml:"palette"` // Hex colours, "#rgb" or "#rrggbb"
}

// RewriteConfig holds path rewrite filter settings.
type RewriteConfig struct {
	Exempt []string `yaml:"exempt"` // Exact paths never rewritten
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// A missing file yields the defaults.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return loadYAMLConfig(getEnv("CONFIG_FILE", "config.yaml"))
}

func loadYAMLConfig(path string) (*YAMLConfig, error) {
	var cfg YAMLConfig

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	for i, c := range cfg.QR.Palette {
		hex, ok := validation.ValidateHexColor(c)
		if !ok {
			return nil, fmt.Errorf("qr.palette[%d]: invalid hex colour %q", i, c)
		}
		cfg.QR.Palette[i] = hex
	}

	// Set defaults
	if len(cfg.QR.Palette) == 0 {
		cfg.QR.Palette = DefaultPalette
	}
	if cfg.Rewrite.Exempt == nil {
		cfg.Rewrite.Exempt = DefaultRewriteExempt
	}

	return &cfg, nil
}
