package transform

import (
	"math/rand"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// Descriptor selects which transforms to run. The zero value runs
// nothing.
type Descriptor struct {
	ApplyDirectives   bool
	ExtractDirectives bool
	SortByTime        bool
	GroupChannels     bool
	MergeNotes        bool
	QuantizeGrid      uint32
	QuantizeSwing     float64
	QuantizeHumanize  float64
	TransposeAmount   int
	OffsetAmount      float64
	IncludeChannels   map[uint16]bool
	ExcludeChannels   map[uint16]bool
	// Rand drives the humanize offsets; nil uses the package default
	// source.
	Rand *rand.Rand
}

// ApplyAll runs the selected transforms in the pipeline's fixed order:
// apply, include, exclude, transpose, offset, merge, quantize, sort,
// group, extract.
func ApplyAll(records []mtxt.Line, d *Descriptor) []mtxt.Line {
	current := append([]mtxt.Line(nil), records...)

	if d.ApplyDirectives {
		current = Apply(current)
	}
	if len(d.IncludeChannels) > 0 {
		current = Include(current, d.IncludeChannels)
	}
	if len(d.ExcludeChannels) > 0 {
		current = Exclude(current, d.ExcludeChannels)
	}
	if d.TransposeAmount != 0 {
		current = Transpose(current, d.TransposeAmount)
	}
	if d.OffsetAmount != 0.0 {
		current = Offset(current, d.OffsetAmount)
	}
	if d.MergeNotes {
		current = Merge(current)
	}
	if d.QuantizeGrid > 0 {
		current = Quantize(current, d.QuantizeGrid, d.QuantizeSwing, d.QuantizeHumanize, d.Rand)
	}
	if d.SortByTime {
		current = Sort(current)
	}
	if d.GroupChannels {
		current = Group(current)
	}
	if d.ExtractDirectives {
		current = Extract(current)
	}

	return current
}
