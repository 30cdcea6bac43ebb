package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/Carter-Thomas/twsearch/godsalg"
)

func TestFormatNumber(t *testing.T) {
	is := is.New(t)
	is.Equal(FormatNumber(0), "0")
	is.Equal(FormatNumber(999), "999")
	is.Equal(FormatNumber(29160), "29,160")
	is.Equal(FormatNumber(3674160), "3,674,160")
}

func TestFactorNumber(t *testing.T) {
	is := is.New(t)
	for _, tc := range []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{2, "2"},
		{4, "2^2"},
		{29160, "2^3 * 3^6 * 5"},
		{3674160, "2^4 * 3^8 * 5 * 7"},
		{1000003, "1000003"},
		{2 * 1000003, "2 * 1000003"},
	} {
		is.Equal(FactorNumber(tc.n), tc.want)
	}
}

func TestWriteSummary(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	err := WriteSummary(&buf, godsalg.Summary{
		NumPatterns: 29160,
		MaxDepth:    17,
		Completed:   true,
		Elapsed:     1500 * time.Millisecond,
	})
	is.NoErr(err)
	is.Equal(buf.String(), "Found 29,160 (2^3 * 3^6 * 5) patterns.\nMaximum depth: 17 moves\nTotal time elapsed: 1.5s\n")

	buf.Reset()
	err = WriteSummary(&buf, godsalg.Summary{NumPatterns: 1})
	is.NoErr(err)
	is.True(strings.HasPrefix(buf.String(), "Found 1 (1) pattern.\n"))
	is.True(strings.Contains(buf.String(), "stopped before"))
}

func TestWriteDepthTable(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(WriteDepthTable(&buf, []int{1, 2, 2, 1}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(len(lines), 6) // header, 4 depths, branching factor
	is.True(strings.HasPrefix(lines[0], "Depth"))
	is.Equal(strings.Fields(lines[4]), []string{"3", "1", "6", "0.500"})
	is.True(strings.HasPrefix(lines[5], "Branching factor: 1.167"))

	buf.Reset()
	is.NoErr(WriteDepthTable(&buf, []int{1}))
	is.True(!strings.Contains(buf.String(), "Branching"))
}

func TestDepthHistogram(t *testing.T) {
	is := is.New(t)
	h := DepthHistogram([]int{1, 3, 6, 2})
	is.Equal(h.Count, 12)
	is.Equal(h.Min, 1)
	is.Equal(h.Max, 6)
	is.Equal(len(h.Buckets), 4)
	is.Equal(h.Buckets[2].Count, 6)
	is.Equal(h.Buckets[2].Min, 2.0)
	is.Equal(h.Buckets[2].Max, 3.0)

	h = DepthHistogram([]int{4, 0, 9})
	is.Equal(h.Min, 0)
	is.Equal(h.Max, 9)

	var buf bytes.Buffer
	is.NoErr(WriteHistogram(&buf, []int{1, 3, 6, 2}, 20))
	is.Equal(strings.Count(buf.String(), "\n"), 4)

	buf.Reset()
	is.NoErr(WriteHistogram(&buf, nil, 20))
	is.Equal(buf.Len(), 0)
}
