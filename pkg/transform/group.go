package transform

import (
	"sort"

	"github.com/james-see/mtxt/pkg/mtxt"
)

func groupChannel(r mtxt.Record) (uint16, bool) {
	switch rec := r.(type) {
	case *mtxt.NoteEvent:
		return derefChannel(rec.Channel)
	case *mtxt.NoteOn:
		return derefChannel(rec.Channel)
	case *mtxt.NoteOff:
		return derefChannel(rec.Channel)
	case *mtxt.Voice:
		return derefChannel(rec.Channel)
	case *mtxt.ControlChange:
		return derefChannel(rec.Channel)
	}
	return 0, false
}

// Group reorders the list by channel: directives are folded inline, the
// records are stably sorted by (channel, time) with channel-less records
// first, and directives are re-extracted per channel block.
func Group(records []mtxt.Line) []mtxt.Line {
	current := Apply(records)

	sort.SliceStable(current, func(i, j int) bool {
		chA, okA := groupChannel(current[i].Record)
		chB, okB := groupChannel(current[j].Record)
		if okA != okB {
			return !okA
		}
		if okA && chA != chB {
			return chA < chB
		}

		tA, hasA := current[i].Record.Time()
		tB, hasB := current[j].Record.Time()
		if hasA != hasB {
			return !hasA
		}
		return hasA && tA < tB
	})

	return Extract(current)
}
