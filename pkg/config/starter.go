package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StarterYAML renders a commented configuration pinned to one dialect, as
// written by "chatlens detect --write-config".
func StarterYAML(dialect, sourceFile string) ([]byte, error) {
	cfg := DefaultConfig()
	cfg.Parser.Dialects = []string{dialect}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# chatlens configuration\n# Generated by: chatlens detect %s\n\n", sourceFile)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding starter config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding starter config: %w", err)
	}
	return buf.Bytes(), nil
}
