package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRoundSize is the current membership count: the original six plus
// Willie. It sets how many ordinals a round holds before rolling over.
const DefaultRoundSize = 7

// defaultAliases corrects host names that have been inconsistently entered
// over the years. Keys are matched case-insensitively after trimming.
var defaultAliases = map[string]string{
	"brass":   "Braas",
	"braas":   "Braas",
	"willie":  "Joess",
	"willie ": "Joess",
	"fiddy ":  "Fiddy",
	"joess":   "Joess",
}

// Group is the optional YAML group file. It carries data that changes when
// membership does, so it can be edited without a rebuild.
type Group struct {
	// RoundSize overrides the configured round size when positive.
	RoundSize int `yaml:"round_size"`
	// Aliases maps misspelled host names to their canonical form.
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultGroup returns the built-in group data.
func DefaultGroup() Group {
	aliases := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	return Group{Aliases: aliases}
}

// LoadGroup reads the group file at path, merging it over the defaults.
// An empty path or a missing file yields the defaults unchanged.
func LoadGroup(path string) (Group, error) {
	group := DefaultGroup()
	if path == "" {
		return group, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return group, nil
	}
	if err != nil {
		return group, fmt.Errorf("read group file: %w", err)
	}

	var file Group
	if err := yaml.Unmarshal(data, &file); err != nil {
		return group, fmt.Errorf("decode group file: %w", err)
	}
	if file.RoundSize > 0 {
		group.RoundSize = file.RoundSize
	}
	for k, v := range file.Aliases {
		group.Aliases[k] = v
	}
	return group, nil
}
