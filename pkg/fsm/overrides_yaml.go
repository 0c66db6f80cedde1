package fsm

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityOverride binds a decoded override to its entity.
type EntityOverride[E comparable, S State] struct {
	Entity   E
	Override *Override[S]
}

type overridesDoc struct {
	Overrides []overrideDoc `yaml:"overrides"`
}

type overrideDoc struct {
	Entity    string      `yaml:"entity"`
	Mode      string      `yaml:"mode"`
	WithRules bool        `yaml:"with_rules"`
	Pairs     [][2]string `yaml:"pairs"`
}

// DecodeOverrides parses a YAML document of per-entity overrides. Variants are
// referenced by Name and resolved through table; parseEntity converts the
// entity key. Unknown modes or variants fail the whole document.
//
//	overrides:
//	  - entity: "9"
//	    mode: whitelist
//	    with_rules: false
//	    pairs:
//	      - [idling, flying]
func DecodeOverrides[E comparable, S State](data []byte, table *Table[S], parseEntity func(string) (E, error)) ([]EntityOverride[E, S], error) {
	if table == nil {
		return nil, ErrNilTable
	}

	var doc overridesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidOverrides, err)
	}

	out := make([]EntityOverride[E, S], 0, len(doc.Overrides))
	for i, d := range doc.Overrides {
		entity, err := parseEntity(d.Entity)
		if err != nil {
			return nil, errors.Join(ErrInvalidOverrides, fmt.Errorf("override[%d] entity %q: %w", i, d.Entity, err))
		}

		mode, err := ParseMode(d.Mode)
		if err != nil {
			return nil, errors.Join(ErrInvalidOverrides, fmt.Errorf("override[%d]: %w", i, err))
		}

		o := &Override[S]{Mode: mode, WithRules: d.WithRules}
		for j, p := range d.Pairs {
			from, ok := table.Lookup(p[0])
			if !ok {
				return nil, errors.Join(ErrInvalidOverrides, fmt.Errorf("override[%d] pair[%d]: %w: %q", i, j, ErrUnknownVariant, p[0]))
			}
			to, ok := table.Lookup(p[1])
			if !ok {
				return nil, errors.Join(ErrInvalidOverrides, fmt.Errorf("override[%d] pair[%d]: %w: %q", i, j, ErrUnknownVariant, p[1]))
			}
			o.add([]Pair[S]{{From: from, To: to}})
		}

		out = append(out, EntityOverride[E, S]{Entity: entity, Override: o})
	}

	return out, nil
}

// Load decodes data and attaches every override, replacing existing ones for
// the same entities. Nothing is attached when decoding fails.
func (s *OverrideSet[E, S]) Load(data []byte, table *Table[S], parseEntity func(string) (E, error)) error {
	items, err := DecodeOverrides(data, table, parseEntity)
	if err != nil {
		return err
	}
	for _, it := range items {
		s.Set(it.Entity, it.Override)
	}
	return nil
}

// LoadFile reads path and calls Load.
func (s *OverrideSet[E, S]) LoadFile(path string, table *Table[S], parseEntity func(string) (E, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return s.Load(data, table, parseEntity)
}
