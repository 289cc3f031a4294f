package medium

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/pelletier/go-toml/v2"
)

//go:embed defaults.toml
var defaultConfig []byte

// Family is one canonical medium label and the substrings that identify it.
type Family struct {
	Label    string   `toml:"label"`
	Variants []string `toml:"variants"`
}

// Config is the growth-medium vocabulary: noise annotations to erase and
// synonym families in priority order.
type Config struct {
	Noise    []string `toml:"noise"`
	Families []Family `toml:"family"`
}

// DefaultConfig returns the embedded CCLE vocabulary.
func DefaultConfig() (*Config, error) {
	cfg, err := decodeConfig(defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}

	return cfg, nil
}

// LoadConfig returns the defaults with the TOML file at path merged over
// them. An empty path yields the defaults alone.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	user, err := decodeConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Merge(user)

	return cfg, nil
}

func decodeConfig(b []byte) (*Config, error) {
	cfg := &Config{}

	decoder := toml.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse medium config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects families without a label or without variants and empty
// noise or variant strings, any of which would match everything.
func (c *Config) Validate() error {
	for i, n := range c.Noise {
		if n == "" {
			return fmt.Errorf("noise entry %d is empty", i)
		}
	}

	for i, fam := range c.Families {
		if strings.TrimSpace(fam.Label) == "" {
			return fmt.Errorf("family %d has no label", i)
		}
		if len(fam.Variants) == 0 {
			return fmt.Errorf("family %q has no variants", fam.Label)
		}
		for _, v := range fam.Variants {
			if v == "" {
				return fmt.Errorf("family %q has an empty variant", fam.Label)
			}
		}
	}

	return nil
}

// Merge folds other into c. Noise entries are appended unless already
// present. Families with a known label gain any new variants; families with
// a new label are appended, i.e. at the lowest priority.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	seen := make(map[string]struct{}, len(c.Noise))
	for _, n := range c.Noise {
		seen[n] = struct{}{}
	}
	for _, n := range other.Noise {
		if _, exists := seen[n]; exists {
			continue
		}
		seen[n] = struct{}{}
		c.Noise = append(c.Noise, n)
	}

	synonyms := c.SynonymMap()
	for _, fam := range other.Families {
		synonyms.Upsert(fam.Label, fam.Variants...)
	}
	c.Families = synonyms.Families()
}

// SynonymMap builds the lookup structure for the configured families.
func (c *Config) SynonymMap() *SynonymMap {
	m := NewSynonymMap()
	for _, fam := range c.Families {
		m.Upsert(fam.Label, fam.Variants...)
	}

	return m
}
