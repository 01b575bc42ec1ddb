package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Load builds a Tree from a YAML (or JSON) encoded Def.
func Load(d []byte) (*Tree, error) {
	def := Def{}
	if err := yaml.Unmarshal(d, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return Build(def)
}

func LoadFile(path string) (*Tree, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read schema %q: %w", path, err)
	}
	t, err := Load(d)
	if err != nil {
		return nil, fmt.Errorf("could not load schema %q: %w", path, err)
	}
	return t, nil
}
