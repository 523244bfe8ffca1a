package mtxt

import (
	"math"
	"testing"
)

func ccValues(out []OutputRecord) []float64 {
	var vals []float64
	for _, r := range out {
		if cc, ok := r.(*OutputControlChange); ok {
			vals = append(vals, cc.Value)
		}
	}
	return vals
}

func TestTransitionDensification(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
0.0 cc volume 0.0
2.0 cc volume 1.0 transition_time=1.0 transition_interval=0.25
`)
	out := file.OutputRecords()
	vals := ccValues(out)

	// Initial point plus four interpolation steps ending at the target.
	if len(vals) != 5 {
		t.Fatalf("cc points = %v, want 5", vals)
	}
	expected := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	for i, want := range expected {
		if math.Abs(vals[i]-want) > 1e-6 {
			t.Errorf("point %d = %v, want %v", i, vals[i], want)
		}
	}
}

func TestTransitionWithoutPriorValue(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
2.0 cc volume 1.0 transition_time=1.0 transition_interval=0.25
`)
	out := file.OutputRecords()
	vals := ccValues(out)
	// No previous value: only the terminal point.
	if len(vals) != 1 || vals[0] != 1.0 {
		t.Errorf("points = %v, want just the terminal value", vals)
	}
}

func TestTransitionZeroTimeIsInstant(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
0.0 cc volume 0.0
2.0 cc volume 1.0
`)
	vals := ccValues(file.OutputRecords())
	if len(vals) != 2 {
		t.Errorf("points = %v, want two instant points", vals)
	}
}

func TestTransitionCurveShapesEaseIn(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
transition_curve=1
0.0 cc volume 0.0
2.0 cc volume 1.0 transition_time=1.0 transition_interval=0.5
`)
	vals := ccValues(file.OutputRecords())
	if len(vals) != 3 {
		t.Fatalf("points = %v, want 3", vals)
	}
	// curve=1 squares the position: the midpoint sits at 0.25.
	if math.Abs(vals[1]-0.25) > 1e-6 {
		t.Errorf("midpoint = %v, want 0.25", vals[1])
	}
	if vals[2] != 1.0 {
		t.Errorf("terminal = %v, want 1.0", vals[2])
	}
}

func TestTransitionTruncatedByInterrupt(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
0.0 cc volume 0.0
4.0 cc volume 1.0 transition_time=4.0 transition_interval=1.0
3.0 cc volume 0.2
`)
	// The second volume record starts ramping at beat 0; the record at
	// beat 3 interrupts it, so no ramp point lands at or after beat 3.
	out := file.OutputRecords()

	var last uint64
	for _, r := range out {
		if cc, ok := r.(*OutputControlChange); ok && cc.Value != 0.2 && cc.Value != 0.0 {
			last = cc.TimeMicros()
		}
	}
	// Beat 3 at 120 BPM.
	if last >= 1_500_000 {
		t.Errorf("ramp point at %d micros reaches past the interrupting record", last)
	}
}

func TestTransitionTempoRamp(t *testing.T) {
	file := mustParse(t, `mtxt 1.0
0.0 tempo 120
4.0 tempo 60 transition_time=2.0 transition_interval=1.0
`)
	out := file.OutputRecords()

	var tempos []float64
	for _, r := range out {
		if tempo, ok := r.(*OutputTempo); ok {
			tempos = append(tempos, tempo.BPM)
		}
	}
	// 120, then the ramp midpoint, then the target.
	if len(tempos) != 3 {
		t.Fatalf("tempo points = %v, want 3", tempos)
	}
	if tempos[1] != 90.0 || tempos[2] != 60.0 {
		t.Errorf("tempo ramp = %v", tempos)
	}
}
