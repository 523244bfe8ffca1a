package transform

import (
	"math"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// Offset shifts every timed record by the given number of beats. Records
// that would end up before time zero are dropped.
func Offset(records []mtxt.Line, offset float64) []mtxt.Line {
	if offset == 0.0 {
		return append([]mtxt.Line(nil), records...)
	}

	abs := math.Abs(offset)
	whole, frac := math.Modf(abs)
	offsetTime := mtxt.BeatTimeFromParts(uint32(whole), frac)
	negative := offset < 0.0

	var out []mtxt.Line
	for _, line := range records {
		c := line.Clone()
		if t, ok := c.Record.Time(); ok {
			if negative {
				if t < offsetTime {
					continue
				}
				c.Record.SetTime(t.Sub(offsetTime))
			} else {
				c.Record.SetTime(t.Add(offsetTime))
			}
		}
		out = append(out, c)
	}
	return out
}
