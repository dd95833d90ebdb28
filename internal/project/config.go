package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"vela/internal/diagfmt"
)

// Manifest is a loaded vela.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors vela.toml. Every section is optional.
type Config struct {
	Tokenize TokenizeConfig `toml:"tokenize"`
}

// TokenizeConfig holds defaults for `vela tokenize`; zero values mean
// "use the built-in default".
type TokenizeConfig struct {
	Format         string   `toml:"format"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	MaxTokenLength int      `toml:"max_token_length"`
	Jobs           int      `toml:"jobs"`
	KeepTrivia     bool     `toml:"keep_trivia"`
	Cache          bool     `toml:"cache"`
	Extensions     []string `toml:"extensions"`
}

// LoadManifest finds vela.toml above startDir and decodes it.
// ok is false when no manifest exists; that is not an error.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and validates the manifest at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Tokenize.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: [tokenize]: %w", path, err)
	}
	return cfg, nil
}

func (c *TokenizeConfig) validate() error {
	if c.Format != "" {
		if _, err := diagfmt.ParseTokenFormat(c.Format); err != nil {
			return err
		}
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must be >= 0, got %d", c.MaxDiagnostics)
	}
	if c.MaxTokenLength < 0 {
		return fmt.Errorf("max_token_length must be >= 0, got %d", c.MaxTokenLength)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return fmt.Errorf("extensions[%d] is empty", i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}
