package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Carter-Thomas/twsearch/godsalg"
	"github.com/Carter-Thomas/twsearch/stats"
)

// Primes up to this bound are factored out; whatever is left is printed
// as is, prime or not.
const factorBound = 1000

var printer = message.NewPrinter(language.English)

// FormatNumber writes n with thousands separators.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FactorNumber writes n as a product of small prime powers, e.g. 29160 is
// "2^3 * 3^6 * 5".
func FactorNumber(n int) string {
	if n <= 1 {
		return fmt.Sprint(n)
	}
	var factors []string
	for p := 2; p <= factorBound && p*p <= n; p++ {
		exp := 0
		for n%p == 0 {
			n /= p
			exp++
		}
		switch {
		case exp == 1:
			factors = append(factors, fmt.Sprint(p))
		case exp > 1:
			factors = append(factors, fmt.Sprintf("%d^%d", p, exp))
		}
	}
	if n > 1 {
		factors = append(factors, fmt.Sprint(n))
	}
	return strings.Join(factors, " * ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// WriteSummary writes the final pattern count, maximum depth and time.
func WriteSummary(w io.Writer, s godsalg.Summary) error {
	_, err := fmt.Fprintf(w, "Found %s (%s) pattern%s.\nMaximum depth: %d moves\nTotal time elapsed: %v\n",
		FormatNumber(s.NumPatterns), FactorNumber(s.NumPatterns), plural(s.NumPatterns),
		s.MaxDepth, s.Elapsed.Round(time.Millisecond))
	if err != nil {
		return err
	}
	if !s.Completed {
		_, err = fmt.Fprintln(w, "Search stopped before the table was completed.")
	}
	return err
}

// WriteDepthTable writes one line per depth: the number of patterns at that
// depth, the running total and the ratio to the previous depth.
func WriteDepthTable(w io.Writer, depthCounts []int) error {
	if _, err := fmt.Fprintf(w, "%-6s %16s %16s %8s\n", "Depth", "Patterns", "Cumulative", "Ratio"); err != nil {
		return err
	}
	cumulative := 0
	for d, c := range depthCounts {
		cumulative += c
		ratio := ""
		if d > 0 && depthCounts[d-1] > 0 {
			ratio = fmt.Sprintf("%.3f", float64(c)/float64(depthCounts[d-1]))
		}
		if _, err := fmt.Fprintf(w, "%-6d %16s %16s %8s\n", d, FormatNumber(c), FormatNumber(cumulative), ratio); err != nil {
			return err
		}
	}
	bf := stats.BranchingFactors(depthCounts)
	if bf.Iterations() == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "Branching factor: %.3f ± %.3f (95%%)\n", bf.Mean(), bf.HalfWidth(95))
	return err
}

// DepthHistogram has one bucket per depth. The histogram's Min and Max are
// the smallest and largest bucket counts, which the bar scale works from.
func DepthHistogram(depthCounts []int) histogram.Histogram {
	h := histogram.Histogram{
		Buckets: make([]histogram.Bucket, len(depthCounts)),
	}
	for d, c := range depthCounts {
		if d == 0 || c < h.Min {
			h.Min = c
		}
		if c > h.Max {
			h.Max = c
		}
		h.Count += c
		h.Buckets[d] = histogram.Bucket{
			Count: c,
			Min:   float64(d),
			Max:   float64(d + 1),
		}
	}
	return h
}

func WriteHistogram(w io.Writer, depthCounts []int, width int) error {
	if len(depthCounts) == 0 {
		return nil
	}
	return histogram.Fprint(w, DepthHistogram(depthCounts), histogram.Linear(width))
}
