package transform

import (
	"sort"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// Sort stably orders timed records by time within segments delimited by
// barriers (records without a timestamp). Barriers keep their positions.
func Sort(records []mtxt.Line) []mtxt.Line {
	out := make([]mtxt.Line, 0, len(records))
	var buffer []mtxt.Line

	flush := func() {
		sort.SliceStable(buffer, func(i, j int) bool {
			ti, _ := buffer[i].Record.Time()
			tj, _ := buffer[j].Record.Time()
			return ti < tj
		})
		out = append(out, buffer...)
		buffer = buffer[:0]
	}

	for _, line := range records {
		if _, ok := line.Record.Time(); ok {
			buffer = append(buffer, line)
		} else {
			flush()
			out = append(out, line)
		}
	}
	flush()

	return out
}
