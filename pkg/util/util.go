package util

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML file and unmarshals it into a struct of type T.
func LoadConfig[T any](filepath string) (*T, error) {
	// 1. Read the file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// 2. Initialize an empty instance of T
	var config T

	// 3. Unmarshal the YAML data into the struct
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return &config, nil
}

// NormalizeIdent prepares a flight identifier (callsign or ICAO24 address)
// for comparison. Upstream feeds pad callsigns with trailing spaces and mix
// case, so both sides of every lookup go through this.
func NormalizeIdent(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
