package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/evalspice/pkg/matrix"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Solver string `yaml:"solver"` // dense or sparse
	Output struct {
		Format     string `yaml:"format"`      // text or json
		DumpSystem bool   `yaml:"dump_system"` // print equations before solving
	} `yaml:"output"`
	Log struct {
		Verbosity int `yaml:"verbosity"`
	} `yaml:"log"`
}

func Default() *Config {
	cfg := &Config{Solver: string(matrix.Dense)}
	cfg.Output.Format = FormatText
	return cfg
}

// Load reads the YAML file at path over the defaults. A missing file leaves
// the defaults in place. EVALSPICE_SOLVER and EVALSPICE_FORMAT, from the
// environment or a .env file, override the file.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if solver := os.Getenv("EVALSPICE_SOLVER"); solver != "" {
		cfg.Solver = solver
	}
	if format := os.Getenv("EVALSPICE_FORMAT"); format != "" {
		cfg.Output.Format = format
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.Backend(); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Format) {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log verbosity must not be negative")
	}
	return nil
}

func (c *Config) Backend() (matrix.Backend, error) {
	return matrix.ParseBackend(c.Solver)
}
