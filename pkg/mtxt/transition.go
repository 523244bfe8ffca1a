package mtxt

import (
	"math"
	"sort"
)

// transitionPoint is a densified event still on the beat timeline.
type transitionPoint struct {
	beat   BeatTime
	record OutputRecord
}

// ProcessTransitions densifies transition windows into discrete points and
// converts the resulting stream from absolute beats to absolute
// microseconds under a running BPM (initial 120).
//
// A record with a positive transition time and a positive interval is
// expanded into points spaced by the interval, interpolating from the
// previous value of the same parameter to the record's terminal value,
// shaped by the curve. A later record on the same parameter whose start
// lies inside the window truncates the expansion at that start.
func ProcessTransitions(records []IntermediateRecord) []OutputRecord {
	points := expandTransitions(records)
	// Ramp points can reach back before already-emitted instant points;
	// the micros conversion needs a monotonic beat stream.
	sort.SliceStable(points, func(i, j int) bool { return points[i].beat < points[j].beat })
	return beatsToMicros(points)
}

func expandTransitions(records []IntermediateRecord) []transitionPoint {
	lastValue := make(map[string]float64)
	var points []transitionPoint

	for i, rec := range records {
		param, hasParam := rec.Record.(paramRecord)
		if !hasParam {
			points = append(points, transitionPoint{beat: rec.EndBeat, record: rec.Record})
			continue
		}

		key := param.ParamKey()
		prev, hasPrev := lastValue[key]
		endValue := param.ParamValue()

		transitionBeats := rec.TransitionTime.Float()
		if !hasPrev || transitionBeats <= 0 || rec.TransitionInterval <= 0 {
			// Nothing to interpolate from (or no window): terminal point
			// only.
			points = append(points, transitionPoint{beat: rec.EndBeat, record: rec.Record})
			lastValue[key] = endValue
			continue
		}

		// Another record on the same parameter whose start falls inside
		// this window cuts the expansion short.
		bound := rec.EndBeat
		for j, other := range records {
			if j == i {
				continue
			}
			op, ok := other.Record.(paramRecord)
			if !ok || op.ParamKey() != key {
				continue
			}
			if other.StartBeat > rec.StartBeat && other.StartBeat < bound {
				bound = other.StartBeat
			}
		}

		interval := BeatTimeFromParts(uint32(rec.TransitionInterval), rec.TransitionInterval-math.Floor(rec.TransitionInterval))
		if interval == 0 {
			points = append(points, transitionPoint{beat: rec.EndBeat, record: rec.Record})
			lastValue[key] = endValue
			continue
		}
		emitted := endValue
		for k := uint64(1); ; k++ {
			point := rec.StartBeat.Add(BeatTime(uint64(interval) * k))
			if point >= rec.EndBeat {
				point = rec.EndBeat
			}
			if point >= bound && bound < rec.EndBeat {
				break
			}

			u := (point.Float() - rec.StartBeat.Float()) / transitionBeats
			if u > 1.0 {
				u = 1.0
			}
			value := prev + (endValue-prev)*curveShape(rec.TransitionCurve, u)
			points = append(points, transitionPoint{
				beat:   point,
				record: param.WithParamValue(value),
			})
			emitted = value
			if point >= rec.EndBeat {
				break
			}
		}
		lastValue[key] = emitted
	}

	return points
}

// curveShape remaps the normalized transition position: u^(2^c). Zero is
// linear, positive curves ease in, negative curves ease out.
func curveShape(curve, u float64) float64 {
	if u <= 0 {
		return 0
	}
	return math.Pow(u, math.Pow(2, curve))
}

// beatsToMicros walks the point stream in beat order and assigns absolute
// microsecond times, re-anchoring at every tempo point.
func beatsToMicros(points []transitionPoint) []OutputRecord {
	bpm := 120.0
	anchorBeat := BeatTime(0)
	anchorMicros := uint64(0)

	out := make([]OutputRecord, 0, len(points))
	for _, p := range points {
		micros := anchorMicros + p.beat.Sub(anchorBeat).Micros(bpm)
		p.record.SetTimeMicros(micros)
		if tempo, ok := p.record.(*OutputTempo); ok {
			anchorBeat = p.beat
			anchorMicros = micros
			bpm = tempo.BPM
		}
		out = append(out, p.record)
	}
	return out
}
