package mtxt

import "fmt"

// OutputRecord is a fully concrete event: absolute microsecond time, all
// attributes resolved, transitions already densified.
type OutputRecord interface {
	// TimeMicros returns the absolute time in microseconds.
	TimeMicros() uint64
	// SetTimeMicros rewrites the absolute time.
	SetTimeMicros(uint64)
}

// paramRecord is implemented by output records that carry a continuous
// parameter (controller value or BPM) subject to transitions.
type paramRecord interface {
	OutputRecord
	// ParamKey identifies the parameter stream, e.g. "cc:0:volume" or
	// "tempo".
	ParamKey() string
	// ParamValue returns the parameter value.
	ParamValue() float64
	// WithParamValue returns a copy carrying the given value.
	WithParamValue(float64) paramRecord
}

// OutputNoteOn starts a note.
type OutputNoteOn struct {
	Time     uint64
	Note     Note
	Velocity float64
	Channel  uint16
}

func (r *OutputNoteOn) TimeMicros() uint64     { return r.Time }
func (r *OutputNoteOn) SetTimeMicros(t uint64) { r.Time = t }

// OutputNoteOff releases a note.
type OutputNoteOff struct {
	Time        uint64
	Note        Note
	OffVelocity float64
	Channel     uint16
}

func (r *OutputNoteOff) TimeMicros() uint64     { return r.Time }
func (r *OutputNoteOff) SetTimeMicros(t uint64) { r.Time = t }

// OutputControlChange sets a controller value.
type OutputControlChange struct {
	Time       uint64
	Note       *Note
	Controller string
	Value      float64
	Channel    uint16
}

func (r *OutputControlChange) TimeMicros() uint64     { return r.Time }
func (r *OutputControlChange) SetTimeMicros(t uint64) { r.Time = t }
func (r *OutputControlChange) ParamKey() string {
	return fmt.Sprintf("cc:%d:%s", r.Channel, r.Controller)
}
func (r *OutputControlChange) ParamValue() float64 { return r.Value }
func (r *OutputControlChange) WithParamValue(v float64) paramRecord {
	c := *r
	c.Value = v
	return &c
}

// OutputVoice selects an instrument.
type OutputVoice struct {
	Time    uint64
	Voices  VoiceList
	Channel uint16
}

func (r *OutputVoice) TimeMicros() uint64     { return r.Time }
func (r *OutputVoice) SetTimeMicros(t uint64) { r.Time = t }

// OutputTempo changes the BPM.
type OutputTempo struct {
	Time uint64
	BPM  float64
}

func (r *OutputTempo) TimeMicros() uint64     { return r.Time }
func (r *OutputTempo) SetTimeMicros(t uint64) { r.Time = t }
func (r *OutputTempo) ParamKey() string       { return "tempo" }
func (r *OutputTempo) ParamValue() float64    { return r.BPM }
func (r *OutputTempo) WithParamValue(v float64) paramRecord {
	c := *r
	c.BPM = v
	return &c
}

// OutputTimeSignature changes the meter.
type OutputTimeSignature struct {
	Time      uint64
	Signature TimeSignature
}

func (r *OutputTimeSignature) TimeMicros() uint64     { return r.Time }
func (r *OutputTimeSignature) SetTimeMicros(t uint64) { r.Time = t }

// OutputReset requests a device reset.
type OutputReset struct {
	Time   uint64
	Target string
}

func (r *OutputReset) TimeMicros() uint64     { return r.Time }
func (r *OutputReset) SetTimeMicros(t uint64) { r.Time = t }

// OutputGlobalMeta is file-level metadata.
type OutputGlobalMeta struct {
	Time     uint64
	MetaType string
	Value    string
}

func (r *OutputGlobalMeta) TimeMicros() uint64     { return r.Time }
func (r *OutputGlobalMeta) SetTimeMicros(t uint64) { r.Time = t }

// OutputChannelMeta is channel-scoped metadata.
type OutputChannelMeta struct {
	Time     uint64
	Channel  uint16
	MetaType string
	Value    string
}

func (r *OutputChannelMeta) TimeMicros() uint64     { return r.Time }
func (r *OutputChannelMeta) SetTimeMicros(t uint64) { r.Time = t }

// OutputBeat is a beat marker for hosts that follow musical time. It has
// no MIDI equivalent.
type OutputBeat struct {
	Time uint64
	Beat uint64
}

func (r *OutputBeat) TimeMicros() uint64     { return r.Time }
func (r *OutputBeat) SetTimeMicros(t uint64) { r.Time = t }

// OutputSysEx carries raw system-exclusive bytes.
type OutputSysEx struct {
	Time uint64
	Data []byte
}

func (r *OutputSysEx) TimeMicros() uint64     { return r.Time }
func (r *OutputSysEx) SetTimeMicros(t uint64) { r.Time = t }
