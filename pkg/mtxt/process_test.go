package mtxt

import (
	"testing"
)

func mustParse(t *testing.T, content string) *File {
	t.Helper()
	file, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return file
}

func TestProcessNoteExpansion(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
1.0 note C4 dur=2 vel=0.5 offvel=0.25 ch=3
`)
	out := file.OutputRecords()
	if len(out) != 2 {
		t.Fatalf("output = %d records, want on+off", len(out))
	}

	on, ok := out[0].(*OutputNoteOn)
	if !ok {
		t.Fatalf("first record = %T", out[0])
	}
	if on.Note.String() != "C4" || on.Velocity != 0.5 || on.Channel != 3 {
		t.Errorf("note on = %+v", on)
	}
	// 1 beat at the default 120 BPM is 500ms.
	if on.Time != 500_000 {
		t.Errorf("note on time = %d, want 500000", on.Time)
	}

	off, ok := out[1].(*OutputNoteOff)
	if !ok {
		t.Fatalf("second record = %T", out[1])
	}
	if off.OffVelocity != 0.25 || off.Channel != 3 {
		t.Errorf("note off = %+v", off)
	}
	if off.Time != 1_500_000 {
		t.Errorf("note off time = %d, want 1500000", off.Time)
	}
}

func TestProcessDirectiveDefaults(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
ch=2
vel=0.9
dur=0.5
1.0 note C4
`)
	out := file.OutputRecords()
	on := out[0].(*OutputNoteOn)
	if on.Velocity != 0.9 || on.Channel != 2 {
		t.Errorf("directives not applied: %+v", on)
	}
	off := out[1].(*OutputNoteOff)
	// On at beat 1, off at beat 1.5.
	if off.Time-on.Time != 250_000 {
		t.Errorf("duration = %d micros, want 250000", off.Time-on.Time)
	}
}

func TestProcessAliasExpansion(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
alias Cmaj C4, E4, G4
1.0 note Cmaj dur=1
`)
	out := file.OutputRecords()
	if len(out) != 6 {
		t.Fatalf("output = %d records, want 3 on + 3 off", len(out))
	}
	names := []string{}
	for _, r := range out {
		if on, ok := r.(*OutputNoteOn); ok {
			names = append(names, on.Note.String())
		}
	}
	if len(names) != 3 || names[0] != "C4" || names[1] != "E4" || names[2] != "G4" {
		t.Errorf("expanded notes = %v", names)
	}
}

func TestProcessUnknownAliasExpandsToNothing(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
1.0 note nothing dur=1
`)
	if out := file.OutputRecords(); len(out) != 0 {
		t.Errorf("unknown alias should emit no events, got %d", len(out))
	}
}

func TestProcessTuning(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
0.0 tuning C +5.0
1.0 on C4
1.0 on D4
`)
	out := file.OutputRecords()
	if len(out) != 2 {
		t.Fatalf("output = %d records", len(out))
	}
	c := out[0].(*OutputNoteOn)
	if c.Note.Cents != 5.0 {
		t.Errorf("C4 cents = %v, want 5.0", c.Note.Cents)
	}
	d := out[1].(*OutputNoteOn)
	if d.Note.Cents != 0.0 {
		t.Errorf("D4 cents = %v, want 0", d.Note.Cents)
	}
}

func TestProcessSortsByEndTime(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
2.0 on E4
1.0 on C4
`)
	out := file.OutputRecords()
	if len(out) != 2 {
		t.Fatalf("output = %d records", len(out))
	}
	if out[0].(*OutputNoteOn).Note.String() != "C4" {
		t.Error("intermediates should be sorted by end beat time")
	}
}

func TestProcessGlobalMetaAtTimeZero(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
meta global title Demo
1.0 on C4
`)
	out := file.OutputRecords()
	meta, ok := out[0].(*OutputGlobalMeta)
	if !ok || meta.Time != 0 {
		t.Errorf("global meta should sit at time zero, got %#v", out[0])
	}
}

func TestProcessTempoChangesTimeline(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
1.0 tempo 60
2.0 on C4
`)
	out := file.OutputRecords()
	if len(out) != 2 {
		t.Fatalf("output = %d records", len(out))
	}
	// Beat 1 at 120 BPM = 500ms, then one beat at 60 BPM = 1s.
	on := out[1].(*OutputNoteOn)
	if on.Time != 1_500_000 {
		t.Errorf("note time = %d, want 1500000", on.Time)
	}
}
