package transform

import (
	"github.com/james-see/mtxt/pkg/mtxt"
)

// noteKey identifies a note target for on/off pairing: the absolute
// semitone plus cents for literal notes, the name for aliases.
type noteKey struct {
	isAlias  bool
	semitone int
	cents    float64
	alias    string
}

func keyOf(target mtxt.NoteTarget) noteKey {
	switch {
	case target.Note != nil:
		n := target.Note
		return noteKey{
			semitone: (n.Octave+1)*12 + n.PitchClass.Semitone(),
			cents:    n.Cents,
		}
	case target.Alias != nil:
		return noteKey{isAlias: true, alias: target.Alias.Name}
	default:
		return noteKey{isAlias: true, alias: target.Key}
	}
}

type mergeKey struct {
	channel uint16
	note    noteKey
}

// Merge fuses matching NoteOn/NoteOff pairs into durational Note records.
// The match key is (effective channel, note identity), where the effective
// channel respects the running ChannelDirective. A second NoteOn on an
// open key replaces the pending entry, leaving the first as a raw NoteOn;
// an unmatched NoteOff passes through.
func Merge(records []mtxt.Line) []mtxt.Line {
	var out []mtxt.Line
	pending := make(map[mergeKey]int)
	currentChannel := uint16(0)

	for _, line := range records {
		switch r := line.Record.(type) {
		case *mtxt.ChannelDirective:
			currentChannel = r.Channel
			out = append(out, line)

		case *mtxt.NoteOn:
			key := mergeKey{channel: orDefaultChannel(r.Channel, currentChannel), note: keyOf(r.Target)}
			pending[key] = len(out)
			out = append(out, line)

		case *mtxt.NoteOff:
			key := mergeKey{channel: orDefaultChannel(r.Channel, currentChannel), note: keyOf(r.Target)}
			idx, ok := pending[key]
			if !ok {
				out = append(out, line)
				continue
			}
			delete(pending, key)
			on, isOn := out[idx].Record.(*mtxt.NoteOn)
			if !isOn {
				out = append(out, line)
				continue
			}
			duration := r.TimeAt.Sub(on.TimeAt)
			out[idx] = mtxt.Line{
				Record: &mtxt.NoteEvent{
					TimeAt:      on.TimeAt,
					Target:      r.Target,
					Duration:    &duration,
					Velocity:    on.Velocity,
					OffVelocity: r.OffVelocity,
					Channel:     on.Channel,
				},
				Comment: out[idx].Comment,
			}

		default:
			out = append(out, line)
		}
	}

	return out
}

func orDefaultChannel(p *uint16, def uint16) uint16 {
	if p != nil {
		return *p
	}
	return def
}
