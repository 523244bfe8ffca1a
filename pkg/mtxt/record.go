package mtxt

import (
	"fmt"
	"strconv"
	"strings"
)

// formatFloat renders a float the way the format writes numbers: five
// decimal places, trailing zeros trimmed, always at least one digit after
// the dot.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 5, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// Record is one MTXT record. Implementations are pointer types so that
// transforms can rewrite attributes on cloned lines.
type Record interface {
	// Time returns the record's beat time; ok is false for records
	// without a timestamp (directives, header, metadata).
	Time() (BeatTime, bool)
	// SetTime rewrites the timestamp. It is a no-op on untimed records,
	// except Meta, which becomes timed.
	SetTime(BeatTime)
	// Clone returns a deep copy. Alias definitions stay shared so that
	// identity-based remapping keeps working across clones.
	Clone() Record
	// String renders the record body without its timestamp.
	String() string
}

// Line is a record plus its trailing inline comment.
type Line struct {
	Record  Record
	Comment string
}

// NewLine wraps a record without a comment.
func NewLine(r Record) Line {
	return Line{Record: r}
}

// LineWithComment wraps a record with a trailing comment.
func LineWithComment(r Record, comment string) Line {
	return Line{Record: r, Comment: comment}
}

// Clone deep-copies the line.
func (l Line) Clone() Line {
	return Line{Record: l.Record.Clone(), Comment: l.Comment}
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneChannel(p *uint16) *uint16 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *BeatTime) *BeatTime {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Header is the mandatory "mtxt <major>.<minor>" declaration.
type Header struct {
	Version Version
}

func (r *Header) Time() (BeatTime, bool) { return 0, false }
func (r *Header) SetTime(BeatTime)       {}
func (r *Header) Clone() Record          { c := *r; return &c }
func (r *Header) String() string         { return "mtxt " + r.Version.String() }

// GlobalMeta is file-level metadata.
type GlobalMeta struct {
	MetaType string
	Value    string
}

func (r *GlobalMeta) Time() (BeatTime, bool) { return 0, false }
func (r *GlobalMeta) SetTime(BeatTime)       {}
func (r *GlobalMeta) Clone() Record          { c := *r; return &c }
func (r *GlobalMeta) String() string {
	return fmt.Sprintf("meta global %s %s", r.MetaType, r.Value)
}

// Meta is channel- or time-scoped metadata.
type Meta struct {
	TimeAt   *BeatTime
	Channel  *uint16
	MetaType string
	Value    string
}

func (r *Meta) Time() (BeatTime, bool) {
	if r.TimeAt == nil {
		return 0, false
	}
	return *r.TimeAt, true
}
func (r *Meta) SetTime(t BeatTime) { r.TimeAt = &t }
func (r *Meta) Clone() Record {
	c := *r
	c.TimeAt = cloneTime(r.TimeAt)
	c.Channel = cloneChannel(r.Channel)
	return &c
}
func (r *Meta) String() string {
	var b strings.Builder
	b.WriteString("meta")
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	fmt.Fprintf(&b, " %s %s", r.MetaType, r.Value)
	return b.String()
}

// ChannelDirective sets the running default channel.
type ChannelDirective struct {
	Channel uint16
}

func (r *ChannelDirective) Time() (BeatTime, bool) { return 0, false }
func (r *ChannelDirective) SetTime(BeatTime)       {}
func (r *ChannelDirective) Clone() Record          { c := *r; return &c }
func (r *ChannelDirective) String() string         { return fmt.Sprintf("ch=%d", r.Channel) }

// VelocityDirective sets the running default velocity.
type VelocityDirective struct {
	Velocity float64
}

func (r *VelocityDirective) Time() (BeatTime, bool) { return 0, false }
func (r *VelocityDirective) SetTime(BeatTime)       {}
func (r *VelocityDirective) Clone() Record          { c := *r; return &c }
func (r *VelocityDirective) String() string         { return "vel=" + formatFloat(r.Velocity) }

// OffVelocityDirective sets the running default release velocity.
type OffVelocityDirective struct {
	OffVelocity float64
}

func (r *OffVelocityDirective) Time() (BeatTime, bool) { return 0, false }
func (r *OffVelocityDirective) SetTime(BeatTime)       {}
func (r *OffVelocityDirective) Clone() Record          { c := *r; return &c }
func (r *OffVelocityDirective) String() string         { return "offvel=" + formatFloat(r.OffVelocity) }

// DurationDirective sets the running default note duration.
type DurationDirective struct {
	Duration BeatTime
}

func (r *DurationDirective) Time() (BeatTime, bool) { return 0, false }
func (r *DurationDirective) SetTime(BeatTime)       {}
func (r *DurationDirective) Clone() Record          { c := *r; return &c }
func (r *DurationDirective) String() string         { return "dur=" + r.Duration.String() }

// TransitionCurveDirective sets the running default transition curve.
type TransitionCurveDirective struct {
	Curve float64
}

func (r *TransitionCurveDirective) Time() (BeatTime, bool) { return 0, false }
func (r *TransitionCurveDirective) SetTime(BeatTime)       {}
func (r *TransitionCurveDirective) Clone() Record          { c := *r; return &c }
func (r *TransitionCurveDirective) String() string {
	return "transition_curve=" + formatFloat(r.Curve)
}

// TransitionIntervalDirective sets the running default transition interval.
type TransitionIntervalDirective struct {
	Interval float64
}

func (r *TransitionIntervalDirective) Time() (BeatTime, bool) { return 0, false }
func (r *TransitionIntervalDirective) SetTime(BeatTime)       {}
func (r *TransitionIntervalDirective) Clone() Record          { c := *r; return &c }
func (r *TransitionIntervalDirective) String() string {
	return "transition_interval=" + formatFloat(r.Interval)
}

// AliasDef declares a named note list.
type AliasDef struct {
	Def *AliasDefinition
}

func (r *AliasDef) Time() (BeatTime, bool) { return 0, false }
func (r *AliasDef) SetTime(BeatTime)       {}
func (r *AliasDef) Clone() Record          { c := *r; return &c }
func (r *AliasDef) String() string {
	var b strings.Builder
	b.WriteString("alias " + r.Def.Name)
	for i, n := range r.Def.Notes {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" " + n.String())
	}
	return b.String()
}

// NoteEvent is a durational note (a NoteOn/NoteOff pair in shorthand).
type NoteEvent struct {
	TimeAt      BeatTime
	Target      NoteTarget
	Duration    *BeatTime
	Velocity    *float64
	OffVelocity *float64
	Channel     *uint16
}

func (r *NoteEvent) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *NoteEvent) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *NoteEvent) Clone() Record {
	c := *r
	c.Duration = cloneTime(r.Duration)
	c.Velocity = cloneFloat(r.Velocity)
	c.OffVelocity = cloneFloat(r.OffVelocity)
	c.Channel = cloneChannel(r.Channel)
	return &c
}
func (r *NoteEvent) String() string {
	var b strings.Builder
	b.WriteString("note " + r.Target.String())
	if r.Duration != nil {
		b.WriteString(" dur=" + r.Duration.String())
	}
	if r.Velocity != nil {
		b.WriteString(" vel=" + formatFloat(*r.Velocity))
	}
	if r.OffVelocity != nil {
		b.WriteString(" offvel=" + formatFloat(*r.OffVelocity))
	}
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	return b.String()
}

// NoteOn starts a note.
type NoteOn struct {
	TimeAt   BeatTime
	Target   NoteTarget
	Velocity *float64
	Channel  *uint16
}

func (r *NoteOn) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *NoteOn) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *NoteOn) Clone() Record {
	c := *r
	c.Velocity = cloneFloat(r.Velocity)
	c.Channel = cloneChannel(r.Channel)
	return &c
}
func (r *NoteOn) String() string {
	var b strings.Builder
	b.WriteString("on " + r.Target.String())
	if r.Velocity != nil {
		b.WriteString(" vel=" + formatFloat(*r.Velocity))
	}
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	return b.String()
}

// NoteOff releases a note.
type NoteOff struct {
	TimeAt      BeatTime
	Target      NoteTarget
	OffVelocity *float64
	Channel     *uint16
}

func (r *NoteOff) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *NoteOff) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *NoteOff) Clone() Record {
	c := *r
	c.OffVelocity = cloneFloat(r.OffVelocity)
	c.Channel = cloneChannel(r.Channel)
	return &c
}
func (r *NoteOff) String() string {
	var b strings.Builder
	b.WriteString("off " + r.Target.String())
	if r.OffVelocity != nil {
		b.WriteString(" offvel=" + formatFloat(*r.OffVelocity))
	}
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	return b.String()
}

// ControlChange sets a continuous controller, optionally over a transition
// window. A nil channel means the change affects all channels.
type ControlChange struct {
	TimeAt             BeatTime
	Target             *NoteTarget
	Controller         string
	Value              float64
	Channel            *uint16
	TransitionCurve    *float64
	TransitionTime     *BeatTime
	TransitionInterval *float64
}

func (r *ControlChange) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *ControlChange) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *ControlChange) Clone() Record {
	c := *r
	if r.Target != nil {
		t := *r.Target
		c.Target = &t
	}
	c.Channel = cloneChannel(r.Channel)
	c.TransitionCurve = cloneFloat(r.TransitionCurve)
	c.TransitionTime = cloneTime(r.TransitionTime)
	c.TransitionInterval = cloneFloat(r.TransitionInterval)
	return &c
}
func (r *ControlChange) String() string {
	var b strings.Builder
	b.WriteString("cc")
	if r.Target != nil {
		b.WriteString(" " + r.Target.String())
	}
	fmt.Fprintf(&b, " %s %s", r.Controller, formatFloat(r.Value))
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	if r.TransitionCurve != nil {
		b.WriteString(" transition_curve=" + formatFloat(*r.TransitionCurve))
	}
	if r.TransitionTime != nil {
		b.WriteString(" transition_time=" + r.TransitionTime.String())
	}
	if r.TransitionInterval != nil {
		b.WriteString(" transition_interval=" + formatFloat(*r.TransitionInterval))
	}
	return b.String()
}

// Voice selects an instrument by a list of candidate names.
type Voice struct {
	TimeAt  BeatTime
	Voices  VoiceList
	Channel *uint16
}

func (r *Voice) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *Voice) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *Voice) Clone() Record {
	c := *r
	c.Voices = VoiceList{Voices: append([]string(nil), r.Voices.Voices...)}
	c.Channel = cloneChannel(r.Channel)
	return &c
}
func (r *Voice) String() string {
	var b strings.Builder
	b.WriteString("voice")
	if r.Channel != nil {
		fmt.Fprintf(&b, " ch=%d", *r.Channel)
	}
	b.WriteString(" " + r.Voices.String())
	return b.String()
}

// Tempo sets the BPM, optionally over a transition window.
type Tempo struct {
	TimeAt             BeatTime
	BPM                float64
	TransitionCurve    *float64
	TransitionTime     *BeatTime
	TransitionInterval *float64
}

func (r *Tempo) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *Tempo) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *Tempo) Clone() Record {
	c := *r
	c.TransitionCurve = cloneFloat(r.TransitionCurve)
	c.TransitionTime = cloneTime(r.TransitionTime)
	c.TransitionInterval = cloneFloat(r.TransitionInterval)
	return &c
}
func (r *Tempo) String() string {
	var b strings.Builder
	b.WriteString("tempo " + formatFloat(r.BPM))
	if r.TransitionCurve != nil {
		b.WriteString(" transition_curve=" + formatFloat(*r.TransitionCurve))
	}
	if r.TransitionTime != nil {
		b.WriteString(" transition_time=" + r.TransitionTime.String())
	}
	if r.TransitionInterval != nil {
		b.WriteString(" transition_interval=" + formatFloat(*r.TransitionInterval))
	}
	return b.String()
}

// TimeSigEvent changes the meter.
type TimeSigEvent struct {
	TimeAt    BeatTime
	Signature TimeSignature
}

func (r *TimeSigEvent) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *TimeSigEvent) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *TimeSigEvent) Clone() Record          { c := *r; return &c }
func (r *TimeSigEvent) String() string         { return "timesig " + r.Signature.String() }

// Tuning detunes a pitch class by cents from the event onwards.
type Tuning struct {
	TimeAt BeatTime
	Target string
	Cents  float64
}

func (r *Tuning) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *Tuning) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *Tuning) Clone() Record          { c := *r; return &c }
func (r *Tuning) String() string {
	s := formatFloat(r.Cents)
	if r.Cents >= 0 && !strings.HasPrefix(s, "+") {
		return fmt.Sprintf("tuning %s +%s", r.Target, s)
	}
	return fmt.Sprintf("tuning %s %s", r.Target, s)
}

// Reset requests a device reset for a named target.
type Reset struct {
	TimeAt BeatTime
	Target string
}

func (r *Reset) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *Reset) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *Reset) Clone() Record          { c := *r; return &c }
func (r *Reset) String() string         { return "reset " + r.Target }

// SysEx carries raw system-exclusive bytes.
type SysEx struct {
	TimeAt BeatTime
	Data   []byte
}

func (r *SysEx) Time() (BeatTime, bool) { return r.TimeAt, true }
func (r *SysEx) SetTime(t BeatTime)     { r.TimeAt = t }
func (r *SysEx) Clone() Record {
	c := *r
	c.Data = append([]byte(nil), r.Data...)
	return &c
}
func (r *SysEx) String() string {
	var b strings.Builder
	b.WriteString("sysex")
	for _, by := range r.Data {
		fmt.Fprintf(&b, " %02x", by)
	}
	return b.String()
}

// EmptyLine is a blank line; with a comment on its Line it is a full-line
// comment.
type EmptyLine struct{}

func (r *EmptyLine) Time() (BeatTime, bool) { return 0, false }
func (r *EmptyLine) SetTime(BeatTime)       {}
func (r *EmptyLine) Clone() Record          { return &EmptyLine{} }
func (r *EmptyLine) String() string         { return "" }
