package transform

import "github.com/james-see/mtxt/pkg/mtxt"

// channelFilter keeps records whose effective channel satisfies keep.
// Note-family records without an inline channel are governed by the last
// ChannelDirective; a ControlChange without a channel affects all channels
// and is always kept. The directive itself is kept only when its own
// channel passes.
func channelFilter(records []mtxt.Line, keep func(uint16) bool) []mtxt.Line {
	var currentChannel *uint16
	var out []mtxt.Line

	for _, line := range records {
		keepLine := true
		switch r := line.Record.(type) {
		case *mtxt.NoteEvent:
			keepLine = effectiveKeep(r.Channel, currentChannel, keep)
		case *mtxt.NoteOn:
			keepLine = effectiveKeep(r.Channel, currentChannel, keep)
		case *mtxt.NoteOff:
			keepLine = effectiveKeep(r.Channel, currentChannel, keep)
		case *mtxt.Voice:
			keepLine = effectiveKeep(r.Channel, currentChannel, keep)
		case *mtxt.ControlChange:
			keepLine = r.Channel == nil || keep(*r.Channel)
		case *mtxt.ChannelDirective:
			ch := r.Channel
			currentChannel = &ch
			keepLine = keep(r.Channel)
		}
		if keepLine {
			out = append(out, line)
		}
	}
	return out
}

func effectiveKeep(inline, current *uint16, keep func(uint16) bool) bool {
	switch {
	case inline != nil:
		return keep(*inline)
	case current != nil:
		return keep(*current)
	default:
		return true
	}
}

// Include keeps only records on the given channels. An empty set keeps
// everything.
func Include(records []mtxt.Line, channels map[uint16]bool) []mtxt.Line {
	if len(channels) == 0 {
		return append([]mtxt.Line(nil), records...)
	}
	return channelFilter(records, func(ch uint16) bool { return channels[ch] })
}

// Exclude drops records on the given channels. An empty set drops
// nothing.
func Exclude(records []mtxt.Line, channels map[uint16]bool) []mtxt.Line {
	if len(channels) == 0 {
		return append([]mtxt.Line(nil), records...)
	}
	return channelFilter(records, func(ch uint16) bool { return !channels[ch] })
}
