package mtxt

import (
	"strings"
	"testing"
)

func TestParseNoteLine(t *testing.T) {
	line, err := ParseLine("0 note C4 dur=1 vel=0.5 ch=1")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	note, ok := line.Record.(*NoteEvent)
	if !ok {
		t.Fatalf("record = %T, want *NoteEvent", line.Record)
	}
	if note.TimeAt != 0 {
		t.Errorf("time = %v, want 0", note.TimeAt)
	}
	if note.Target.Note == nil || note.Target.Note.String() != "C4" {
		t.Errorf("target = %v, want C4", note.Target)
	}
	if note.Duration == nil || note.Duration.String() != "1.0" {
		t.Errorf("duration = %v, want 1.0", note.Duration)
	}
	if note.Velocity == nil || *note.Velocity != 0.5 {
		t.Errorf("velocity = %v, want 0.5", note.Velocity)
	}
	if note.Channel == nil || *note.Channel != 1 {
		t.Errorf("channel = %v, want 1", note.Channel)
	}
}

func TestParseHeader(t *testing.T) {
	file, err := Parse("mtxt 1.0\n0 note C4 dur=1 vel=0.5 ch=1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	v, ok := file.Version()
	if !ok || v.Major != 1 || v.Minor != 0 {
		t.Errorf("version = %v, %v", v, ok)
	}
}

func TestParseMissingHeader(t *testing.T) {
	_, err := Parse("1.0 note C4\n")
	if err == nil || !strings.Contains(err.Error(), "missing version declaration") {
		t.Errorf("expected missing version error, got %v", err)
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse("mtxt 2.0\n")
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected line 1 error, got %v", err)
	}
}

func TestParseErrorLineNumber(t *testing.T) {
	_, err := Parse("mtxt 1.0\nbogus line here\n")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		input  string
		record Record
	}{
		{"ch=3", &ChannelDirective{Channel: 3}},
		{"vel=0.75", &VelocityDirective{Velocity: 0.75}},
		{"offvel=0.25", &OffVelocityDirective{OffVelocity: 0.25}},
		{"dur=2.5", &DurationDirective{Duration: BeatTimeFromParts(2, 0.5)}},
		{"transition_curve=-1.5", &TransitionCurveDirective{Curve: -1.5}},
		{"transition_interval=0.05", &TransitionIntervalDirective{Interval: 0.05}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			line, err := ParseLine(tt.input)
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.input, err)
			}
			if line.Record.String() != tt.record.String() {
				t.Errorf("record = %q, want %q", line.Record.String(), tt.record.String())
			}
		})
	}
}

func TestParseDirectiveValidation(t *testing.T) {
	invalid := []string{
		"vel=1.5",
		"vel=-0.1",
		"offvel=2",
		"transition_interval=-1",
		"ch=x",
		"ch=1 extra",
		"unknown=1",
	}
	for _, input := range invalid {
		if _, err := ParseLine(input); err == nil {
			t.Errorf("ParseLine(%q) should fail", input)
		}
	}
}

func TestParseComments(t *testing.T) {
	line, err := ParseLine("// a full line comment")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if _, ok := line.Record.(*EmptyLine); !ok || line.Comment != "a full line comment" {
		t.Errorf("got %T comment %q", line.Record, line.Comment)
	}

	line, err = ParseLine("1.0 note C4 // inline")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if _, ok := line.Record.(*NoteEvent); !ok || line.Comment != "inline" {
		t.Errorf("got %T comment %q", line.Record, line.Comment)
	}
}

func TestParseCommentURLGuard(t *testing.T) {
	line, err := ParseLine("meta global source http://example.com/x // fetched")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	meta, ok := line.Record.(*GlobalMeta)
	if !ok {
		t.Fatalf("record = %T", line.Record)
	}
	if meta.Value != "http://example.com/x" {
		t.Errorf("value = %q, the URL should survive the comment split", meta.Value)
	}
	if line.Comment != "fetched" {
		t.Errorf("comment = %q", line.Comment)
	}
}

func TestParseAlias(t *testing.T) {
	line, err := ParseLine("alias Cmaj C4, E4, G4")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	def, ok := line.Record.(*AliasDef)
	if !ok {
		t.Fatalf("record = %T", line.Record)
	}
	if def.Def.Name != "Cmaj" || len(def.Def.Notes) != 3 {
		t.Errorf("alias = %+v", def.Def)
	}

	if _, err := ParseLine("alias C4 C4, E4"); err == nil {
		t.Error("alias name colliding with a note literal should fail")
	}
	if _, err := ParseLine("alias Cmaj"); err == nil {
		t.Error("alias without notes should fail")
	}
}

func TestParseCC(t *testing.T) {
	line, err := ParseLine("1.0 cc volume 0.8 ch=2 transition_time=0.5 transition_interval=0.1")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	cc, ok := line.Record.(*ControlChange)
	if !ok {
		t.Fatalf("record = %T", line.Record)
	}
	if cc.Controller != "volume" || cc.Value != 0.8 {
		t.Errorf("cc = %+v", cc)
	}
	if cc.Channel == nil || *cc.Channel != 2 {
		t.Errorf("channel = %v", cc.Channel)
	}
	if cc.TransitionTime == nil || cc.TransitionTime.String() != "0.5" {
		t.Errorf("transition_time = %v", cc.TransitionTime)
	}

	// Target form: the token before the controller is a note.
	line, err = ParseLine("2.0 cc C4 volume 0.5")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	cc = line.Record.(*ControlChange)
	if cc.Target == nil || cc.Target.Note == nil {
		t.Errorf("target = %v, want C4", cc.Target)
	}
}

func TestParseSysEx(t *testing.T) {
	line, err := ParseLine("1.0 sysex f0 7e 7f 09 01 f7")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	sysex, ok := line.Record.(*SysEx)
	if !ok {
		t.Fatalf("record = %T", line.Record)
	}
	if len(sysex.Data) != 6 || sysex.Data[0] != 0xF0 || sysex.Data[5] != 0xF7 {
		t.Errorf("data = %x", sysex.Data)
	}

	if _, err := ParseLine("1.0 sysex zz"); err == nil {
		t.Error("invalid hex byte should fail")
	}
}

func TestParseMetaForms(t *testing.T) {
	line, err := ParseLine("meta global title My Song")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if m, ok := line.Record.(*GlobalMeta); !ok || m.MetaType != "title" || m.Value != "My Song" {
		t.Errorf("got %#v", line.Record)
	}

	line, err = ParseLine("meta ch=3 name Lead Synth")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	m, ok := line.Record.(*Meta)
	if !ok || m.Channel == nil || *m.Channel != 3 || m.Value != "Lead Synth" {
		t.Errorf("got %#v", line.Record)
	}

	line, err = ParseLine("4.0 meta marker chorus")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	m, ok = line.Record.(*Meta)
	if !ok || m.TimeAt == nil || m.MetaType != "marker" {
		t.Errorf("got %#v", line.Record)
	}
}

func TestParseTuningAndReset(t *testing.T) {
	line, err := ParseLine("0.0 tuning C +5.5")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	tun, ok := line.Record.(*Tuning)
	if !ok || tun.Target != "C" || tun.Cents != 5.5 {
		t.Errorf("got %#v", line.Record)
	}
	if tun.String() != "tuning C +5.5" {
		t.Errorf("String() = %q", tun.String())
	}

	line, err = ParseLine("0.0 reset gm")
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if r, ok := line.Record.(*Reset); !ok || r.Target != "gm" {
		t.Errorf("got %#v", line.Record)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	input := strings.Join([]string{
		"mtxt 1.0",
		"meta global title Demo",
		"alias Cmaj C4, E4, G4",
		"ch=1",
		"vel=0.5",
		"// section one",
		"0.0 voice piano, Acoustic Grand Piano",
		"0.0 tempo 120.0",
		"0.0 timesig 4/4",
		"1.0 note C4 dur=1.0 // root",
		"1.5 note Cmaj dur=0.5",
		"2.0 on E4",
		"2.5 off E4 offvel=0.25",
		"3.0 cc volume 0.8 ch=2",
		"3.5 tempo 90.0 transition_time=1.0 transition_interval=0.25",
		"4.0 tuning C +5.0",
		"4.5 reset gm",
		"5.0 sysex f0 7e f7",
		"",
	}, "\n")

	file, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	formatted := file.Format(nil)
	if formatted != input {
		t.Errorf("format(parse(s)) mismatch:\n got: %q\nwant: %q", formatted, input)
	}

	// Parsing the formatted text again is a fixed point.
	again, err := Parse(formatted)
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if again.Format(nil) != formatted {
		t.Error("parse/format is not idempotent")
	}
}
