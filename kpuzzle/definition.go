package kpuzzle

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDefinition = errors.New("invalid puzzle definition")

// MaxOrbitSize bounds both pieces and orientations, since patterns store
// one byte per slot.
const MaxOrbitSize = 256

type Orbit struct {
	Name            string `yaml:"orbitName" json:"orbitName"`
	NumPieces       int    `yaml:"numPieces" json:"numPieces"`
	NumOrientations int    `yaml:"numOrientations" json:"numOrientations"`
}

type OrbitPattern struct {
	Pieces      []int `yaml:"pieces" json:"pieces"`
	Orientation []int `yaml:"orientation" json:"orientation"`
}

type OrbitTransformation struct {
	Permutation      []int `yaml:"permutation" json:"permutation"`
	OrientationDelta []int `yaml:"orientationDelta" json:"orientationDelta"`
}

// A Definition describes a puzzle as a set of orbits of pieces, a default
// pattern and its named quantum moves. Orbits missing from a move are left
// untouched by it; orbits missing from the default pattern are solved.
//
// The YAML layout follows the cubing.js KPuzzle JSON format, so JSON
// definitions load as-is.
type Definition struct {
	Name           string                                    `yaml:"name" json:"name"`
	Orbits         []Orbit                                   `yaml:"orbits" json:"orbits"`
	DefaultPattern map[string]OrbitPattern                   `yaml:"defaultPattern" json:"defaultPattern"`
	Moves          map[string]map[string]OrbitTransformation `yaml:"moves" json:"moves"`
}

func ParseDefinition(data []byte) (*Definition, error) {
	def := &Definition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(data)
}

func (d *Definition) orbit(name string) (Orbit, bool) {
	for _, o := range d.Orbits {
		if o.Name == name {
			return o, true
		}
	}
	return Orbit{}, false
}

// MoveNames returns the quantum move names in sorted order.
func (d *Definition) MoveNames() []string {
	names := make([]string, 0, len(d.Moves))
	for n := range d.Moves {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

func (d *Definition) Validate() error {
	if len(d.Orbits) == 0 {
		return invalid("no orbits")
	}
	seen := map[string]bool{}
	for _, o := range d.Orbits {
		if o.Name == "" {
			return invalid("orbit without a name")
		}
		if seen[o.Name] {
			return invalid("duplicate orbit %s", o.Name)
		}
		seen[o.Name] = true
		if o.NumPieces < 1 || o.NumPieces > MaxOrbitSize {
			return invalid("orbit %s: numPieces %d out of range", o.Name, o.NumPieces)
		}
		if o.NumOrientations < 1 || o.NumOrientations > MaxOrbitSize {
			return invalid("orbit %s: numOrientations %d out of range", o.Name, o.NumOrientations)
		}
	}
	for name, op := range d.DefaultPattern {
		o, ok := d.orbit(name)
		if !ok {
			return invalid("default pattern: unknown orbit %s", name)
		}
		if len(op.Pieces) != o.NumPieces {
			return invalid("default pattern: orbit %s has %d pieces, want %d", name, len(op.Pieces), o.NumPieces)
		}
		if err := checkRange(op.Pieces, o.NumPieces); err != nil {
			return invalid("default pattern: orbit %s: %v", name, err)
		}
		if op.Orientation != nil {
			if len(op.Orientation) != o.NumPieces {
				return invalid("default pattern: orbit %s orientation length %d", name, len(op.Orientation))
			}
			if err := checkRange(op.Orientation, o.NumOrientations); err != nil {
				return invalid("default pattern: orbit %s: %v", name, err)
			}
		}
	}
	if len(d.Moves) == 0 {
		return invalid("no moves")
	}
	for moveName, orbits := range d.Moves {
		for name, ot := range orbits {
			o, ok := d.orbit(name)
			if !ok {
				return invalid("move %s: unknown orbit %s", moveName, name)
			}
			if len(ot.Permutation) != o.NumPieces {
				return invalid("move %s: orbit %s permutation length %d, want %d",
					moveName, name, len(ot.Permutation), o.NumPieces)
			}
			if err := checkPermutation(ot.Permutation); err != nil {
				return invalid("move %s: orbit %s: %v", moveName, name, err)
			}
			if ot.OrientationDelta != nil {
				if len(ot.OrientationDelta) != o.NumPieces {
					return invalid("move %s: orbit %s orientationDelta length %d",
						moveName, name, len(ot.OrientationDelta))
				}
				if err := checkRange(ot.OrientationDelta, o.NumOrientations); err != nil {
					return invalid("move %s: orbit %s: %v", moveName, name, err)
				}
			}
		}
	}
	return nil
}

func checkRange(vals []int, n int) error {
	for i, v := range vals {
		if v < 0 || v >= n {
			return fmt.Errorf("value %d at index %d not in [0, %d)", v, i, n)
		}
	}
	return nil
}

func checkPermutation(perm []int) error {
	if err := checkRange(perm, len(perm)); err != nil {
		return err
	}
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if seen[v] {
			return fmt.Errorf("%d appears twice; not a permutation", v)
		}
		seen[v] = true
	}
	return nil
}
