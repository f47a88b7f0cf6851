package codec

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"collatzgraph/internal/domain"
)

// TextCodec writes the plain text statistics report of a run. It is
// export-only.
type TextCodec struct{}

// NewTextCodec creates a new text report codec
func NewTextCodec() *TextCodec {
	return &TextCodec{}
}

// Format returns the codec format identifier
func (c *TextCodec) Format() string {
	return "text"
}

// ContentType returns the MIME type of exported data
func (c *TextCodec) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Export writes the report section of one run
func (c *TextCodec) Export(run *domain.Run, w io.Writer) error {
	return WriteReport(w, run)
}

// WriteSweepReport writes one report section per run, in order
func WriteSweepReport(w io.Writer, sweep *domain.Sweep) error {
	for _, run := range sweep.Runs {
		if err := WriteReport(w, run); err != nil {
			return err
		}
	}
	return nil
}

func bits(n uint64) float64 {
	if n == 0 {
		return 0
	}
	return math.Log2(float64(n))
}

// WriteReport writes the statistics of run: node counts, residue classes,
// descendant parity, the (class, color, parity) breakdown and the
// per-length table
func WriteReport(w io.Writer, run *domain.Run) error {
	s := domain.Summarize(run.Table, run.BitBound)
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)

	newNodes := run.NewNodes()
	newFraction := 0.0
	if s.Total > 0 {
		newFraction = float64(newNodes) / float64(s.Total)
	}

	fmt.Fprintf(w, "%3d BIT BOUND (seeds %s)\n\n", run.BitBound, run.SeedKey())
	fmt.Fprintf(tw, "\tNumber of nodes:\t%s\t%.2f bits\t\n", humanize.Comma(int64(s.Total)), s.Bits)
	fmt.Fprintf(tw, "\tNumber of previously seen nodes:\t%s\t%.2f bits\t\n", humanize.Comma(int64(run.PreviousTotal)), bits(run.PreviousTotal))
	fmt.Fprintf(tw, "\tNumber of new nodes:\t%s\t%.2f bits\t\n", humanize.Comma(int64(newNodes)), bits(newNodes))
	fmt.Fprintf(tw, "\tFraction of new nodes:\t%.2f\t\t\n", newFraction)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n\tNUMBER OF NODES IN CONGRUENCE CLASSES MODULO 3\n\n")
	for mod3, count := range s.ByMod3 {
		fmt.Fprintf(tw, "\t\t%d\t%d\t\n", mod3, count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n\tNUMBER OF NODES WITH EVEN/ODD DESCENDANTS\n\n")
	fmt.Fprintf(tw, "\tPARITY\tCOUNT\t1COUNT\t2COUNT\t\n")
	fmt.Fprintf(tw, "\tEVEN\t%d\t%d\t%d\t\n", s.EvenByMod3[1]+s.EvenByMod3[2], s.EvenByMod3[1], s.EvenByMod3[2])
	fmt.Fprintf(tw, "\tODD\t%d\t%d\t%d\t\n", s.OddByMod3[1]+s.OddByMod3[2], s.OddByMod3[1], s.OddByMod3[2])
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n\tBREAKDOWN OF NODES\n\n")
	fmt.Fprintf(tw, "\tCLASS MOD3\tCOLOR\tPARITY\tCOUNT\tRATIO\t\n")
	for i, row := range s.Breakdown {
		if i > 0 && i%len(domain.Colors) == 0 {
			fmt.Fprintf(tw, "\t\t\t\t\t\t\n")
		}
		fmt.Fprintf(tw, "\t%d\t%s\t%d\t%d\t%.5f\t\n", row.Mod3, row.Color, row.Parity, row.Count, row.Ratio)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n\tNUMBER OF NODES OF A GIVEN LENGTH\n\n")
	fmt.Fprintf(tw, "\tLENGTH\tACT. NODES\tMAX POSS.\tFRAC. OF POSS.\t#0 MOD3\t#1 MOD3\t#2 MOD3\t\n")
	for _, row := range s.Lengths {
		fmt.Fprintf(tw, "\t%d\t%d\t%s\t%.5f\t%d\t%d\t%d\t\n",
			row.Length, row.Count, row.MaxPossible, row.Fraction, row.ByMod3[0], row.ByMod3[1], row.ByMod3[2])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w)
	return err
}
