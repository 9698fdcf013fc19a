// Package clinic loads the read-only dentist roster.
package clinic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Dentist is one doctor's schedule and specialty.
type Dentist struct {
	Name          string   `mapstructure:"name" json:"name"`
	Specialty     string   `mapstructure:"specialty" json:"specialty"`
	AvailableDays []string `mapstructure:"available_days" json:"available_days"`
	Hours         string   `mapstructure:"hours" json:"hours,omitempty"`
	Services      []string `mapstructure:"services" json:"services,omitempty"`
}

// Roster is the clinic's dentist configuration. It is never mutated after
// loading.
type Roster struct {
	Clinic   string    `mapstructure:"clinic" json:"clinic,omitempty"`
	Dentists []Dentist `mapstructure:"dentists" json:"dentists"`
}

// Load reads a JSON or YAML roster file. The format follows the extension.
func Load(path string) (*Roster, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read dentist roster %s: %w", path, err)
	}

	var roster Roster
	if err := v.Unmarshal(&roster); err != nil {
		return nil, fmt.Errorf("failed to decode dentist roster: %w", err)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Validate checks that every dentist has a unique name.
func (r *Roster) Validate() error {
	seen := make(map[string]struct{}, len(r.Dentists))
	for i, d := range r.Dentists {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return fmt.Errorf("dentist %d has no name", i)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate dentist %q", name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Lookup finds a dentist by name, with or without the "Dr." prefix.
func (r *Roster) Lookup(name string) (Dentist, bool) {
	want := bareName(name)
	for _, d := range r.Dentists {
		if strings.EqualFold(bareName(d.Name), want) {
			return d, true
		}
	}
	return Dentist{}, false
}

// Names returns the sorted dentist names.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.Dentists))
	for _, d := range r.Dentists {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

func bareName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 3 && strings.EqualFold(name[:3], "dr.") {
		name = name[3:]
	}
	return strings.TrimSpace(name)
}
