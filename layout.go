package docstore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout declares a store's collections and reserved ranges, usually loaded
// from a YAML file:
//
//	reservations:
//	  - {start: 100, end: 119, label: ledger}
//	collections:
//	  - {name: users, primary: auto, secondary: auto}
//	  - {name: assets, primary: 7, secondary: none}
type Layout struct {
	Reservations []ReservationLayout `yaml:"reservations"`
	Collections  []CollectionLayout  `yaml:"collections"`
}

type ReservationLayout struct {
	Start RegionID `yaml:"start"`
	End   RegionID `yaml:"end"`
	Label string   `yaml:"label"`
}

type CollectionLayout struct {
	Name      string     `yaml:"name"`
	Primary   RegionSpec `yaml:"primary"`
	Secondary RegionSpec `yaml:"secondary"`
}

func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the layout on its own, without looking at a store.
func (l *Layout) Validate() error {
	names := make(map[string]bool)
	for i, c := range l.Collections {
		if c.Name == "" {
			return fmt.Errorf("%w: collection #%d has no name", ErrBadRequest, i+1)
		}
		if names[c.Name] {
			return fmt.Errorf("%w: collection %s listed twice", ErrAlreadyRegistered, c.Name)
		}
		names[c.Name] = true
		if c.Primary.kind == specNone {
			return fmt.Errorf("%w: collection %s has no primary region", ErrBadRequest, c.Name)
		}
	}
	for _, r := range l.Reservations {
		if r.Start > r.End || !r.End.valid() {
			return fmt.Errorf("%w: invalid reserved range %v..%v", ErrBadRequest, r.Start, r.End)
		}
	}
	return nil
}

// ApplyLayout makes the reservations first and then registers collections
// in order, stopping at the first failure. Reservations and collections that
// are already registered with the same name are skipped.
func (m *Manager) ApplyLayout(l *Layout) error {
	for _, r := range l.Reservations {
		err := m.ReserveRange(r.Start, r.End, r.Label)
		if err != nil && !isAlreadyRegistered(err) {
			return err
		}
	}
	for _, c := range l.Collections {
		err := m.Register(c.Name, c.Primary, c.Secondary)
		if err != nil && !isAlreadyRegistered(err) {
			return err
		}
	}
	return nil
}

func isAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered)
}

// UnmarshalYAML accepts "auto", "none" or a region id. An omitted spec is
// Auto.
func (s *RegionSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	spec, err := ParseRegionSpec(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = spec
	return nil
}

func (s RegionSpec) MarshalYAML() (any, error) {
	return s.String(), nil
}

func ParseRegionSpec(s string) (RegionSpec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "none":
		return NoIndex, nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil || RegionID(v) > MaxRegionID {
		return RegionSpec{}, fmt.Errorf("%w: invalid region %q, wanted auto, none or 0..%d", ErrBadRequest, s, MaxRegionID)
	}
	return At(RegionID(v)), nil
}
