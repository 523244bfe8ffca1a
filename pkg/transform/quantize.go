package transform

import (
	"math/rand"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// Quantize snaps every timed record to the grid, with optional swing and
// humanize. The rng supplies the humanize randomness; pass a seeded source
// for reproducible output. A grid of zero leaves the list untouched.
func Quantize(records []mtxt.Line, grid uint32, swing, humanize float64, rng *rand.Rand) []mtxt.Line {
	if grid == 0 {
		return append([]mtxt.Line(nil), records...)
	}

	out := make([]mtxt.Line, 0, len(records))
	for _, line := range records {
		c := line.Clone()
		if t, ok := c.Record.Time(); ok {
			c.Record.SetTime(t.Quantize(grid, swing, humanize, rng))
		}
		out = append(out, c)
	}
	return out
}
