package pydist

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ConfigName is the optional per-project configuration file.
const ConfigName = "wheelhouse.yml"

// Config carries the per-project settings. Every field has a sensible
// default so projects without a wheelhouse.yml just work.
type Config struct {
	Python     string   `yaml:"python,omitempty"`
	Repository string   `yaml:"repository,omitempty"`
	WheelTag   string   `yaml:"wheel_tag,omitempty"`
	DistDir    string   `yaml:"dist_dir,omitempty"`
	VendorDir  string   `yaml:"vendor_dir,omitempty"`
	Sources    []string `yaml:"sources,omitempty"`
}

// LoadConfig reads wheelhouse.yml from the project root if it exists and
// fills in the defaults.
func LoadConfig(projectRoot string) (*Config, error) {
	cfg := &Config{}

	cfgPath := filepath.Join(projectRoot, ConfigName)
	data, err := os.ReadFile(cfgPath)
	if err == nil {
		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to parse %s", cfgPath)
		}
	} else if !eris.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(err, "Could not open file %s", cfgPath)
	}

	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if cfg.WheelTag == "" {
		cfg.WheelTag = DefaultWheelTag
	}
	if cfg.DistDir == "" {
		cfg.DistDir = "dist"
	}
	if cfg.VendorDir == "" {
		cfg.VendorDir = "vendor"
	}

	return cfg, nil
}

// ApplyOptions overrides config values with configure options (cache or
// KEY=VALUE arguments). Recognized keys: PYTHON, REPOSITORY, WHEEL_TAG.
func (c *Config) ApplyOptions(options map[string]string) {
	if value, ok := options["PYTHON"]; ok && value != "" {
		c.Python = value
	}
	if value, ok := options["REPOSITORY"]; ok && value != "" {
		c.Repository = value
	}
	if value, ok := options["WHEEL_TAG"]; ok && value != "" {
		c.WheelTag = value
	}
}
