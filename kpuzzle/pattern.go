package kpuzzle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carter-Thomas/twsearch/puzzle"
)

type Pattern struct {
	data []byte
}

type Transformation struct {
	data []byte
}

// Bytes exposes the raw layout. Callers must not modify it.
func (p *Pattern) Bytes() []byte {
	return p.data
}

// FormatPattern writes a pattern as
//
//	ORBIT:p0,p1,.../o0,o1,...;ORBIT2:...
//
// The orientation part is left out for single-orientation orbits.
func (p *Puzzle) FormatPattern(pat *Pattern) string {
	var sb strings.Builder
	for idx, o := range p.orbits {
		if idx > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(o.Name)
		sb.WriteByte(':')
		writeInts(&sb, pat.data[o.offset:o.offset+o.NumPieces])
		if o.NumOrientations > 1 {
			sb.WriteByte('/')
			writeInts(&sb, pat.data[o.offset+o.NumPieces:o.offset+2*o.NumPieces])
		}
	}
	return sb.String()
}

func writeInts(sb *strings.Builder, vals []byte) {
	for i, v := range vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
}

// ParsePattern reads the FormatPattern encoding. Orbits not mentioned keep
// their default-pattern values.
func (p *Puzzle) ParsePattern(s string) (*Pattern, error) {
	pat := p.DefaultPattern()
	for _, part := range strings.Split(strings.TrimSpace(s), ";") {
		if part == "" {
			continue
		}
		name, rest, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("pattern orbit %q: missing ':'", part)
		}
		var o *orbitLayout
		for i := range p.orbits {
			if p.orbits[i].Name == name {
				o = &p.orbits[i]
			}
		}
		if o == nil {
			return nil, fmt.Errorf("pattern: unknown orbit %s", name)
		}
		piecesStr, oriStr, hasOri := strings.Cut(rest, "/")
		pieces, err := parseInts(piecesStr, o.NumPieces, o.NumPieces)
		if err != nil {
			return nil, fmt.Errorf("pattern orbit %s pieces: %w", name, err)
		}
		for i, v := range pieces {
			pat.data[o.offset+i] = byte(v)
		}
		if hasOri {
			ori, err := parseInts(oriStr, o.NumPieces, o.NumOrientations)
			if err != nil {
				return nil, fmt.Errorf("pattern orbit %s orientation: %w", name, err)
			}
			for i, v := range ori {
				pat.data[o.offset+o.NumPieces+i] = byte(v)
			}
		}
	}
	return pat, nil
}

func parseInts(s string, count, limit int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != count {
		return nil, fmt.Errorf("got %d values, want %d", len(fields), count)
	}
	vals := make([]int, count)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if v < 0 || v >= limit {
			return nil, fmt.Errorf("value %d not in [0, %d)", v, limit)
		}
		vals[i] = v
	}
	return vals, nil
}

// ParseStart reads a start pattern given either in the FormatPattern
// encoding (anything containing ':') or as a move sequence applied to the
// default pattern. The encoded form can name patterns the generators never
// reach from the default pattern.
func (p *Puzzle) ParseStart(s string) (*Pattern, error) {
	if strings.Contains(s, ":") {
		return p.ParsePattern(s)
	}
	moves, err := puzzle.ParseMoveList(s)
	if err != nil {
		return nil, err
	}
	return p.ApplyMoves(p.DefaultPattern(), moves)
}
