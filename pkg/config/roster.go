package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rosterFile is the YAML layout of ROSTER_FILE.
type rosterFile struct {
	Participants []string `yaml:"participants"`
}

// LoadRoster returns the participant names, in grid order. A configured roster
// file wins over the PARTICIPANTS list.
func LoadRoster(cfg RosterConfig) ([]string, error) {
	if cfg.File == "" {
		if len(cfg.Participants) == 0 {
			return nil, fmt.Errorf("roster is empty")
		}
		return append([]string(nil), cfg.Participants...), nil
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var parsed rosterFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}

	names := make([]string, 0, len(parsed.Participants))
	for _, name := range parsed.Participants {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("roster file %s lists no participants", cfg.File)
	}
	return names, nil
}
