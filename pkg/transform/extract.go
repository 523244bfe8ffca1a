package transform

import "github.com/james-see/mtxt/pkg/mtxt"

// extractProperty pulls one inline attribute out into directives: maximal
// runs of at least three records carrying the same value are replaced by a
// directive followed by the records with the attribute erased. Records
// that do not carry the attribute are transparent: they neither break nor
// contribute to a run. An inline value equal to the currently-effective
// directive is erased without starting a new one. No directive is started
// at or before a record that could take the attribute but carries none,
// since that record would inherit the directive.
func extractProperty[T comparable](
	records []mtxt.Line,
	get func(mtxt.Record) (T, bool),
	directive func(T) mtxt.Record,
	remove func(mtxt.Record),
) []mtxt.Line {
	var result []mtxt.Line
	var currentGlobal *T

	lastUnset := -1
	var zero T
	for k, line := range records {
		if _, ok := get(line.Record); ok {
			continue
		}
		probe := Apply([]mtxt.Line{mtxt.NewLine(directive(zero)), line})
		if len(probe) > 0 {
			if _, ok := get(probe[0].Record); ok {
				lastUnset = k
			}
		}
	}

	i := 0
	for i < len(records) {
		line := records[i]
		val, ok := get(line.Record)
		if !ok {
			result = append(result, line)
			i++
			continue
		}

		if currentGlobal != nil && val == *currentGlobal {
			c := line.Clone()
			remove(c.Record)
			result = append(result, c)
			i++
			continue
		}

		// Look ahead for a run of equal explicit values.
		runIndices := map[int]bool{i: true}
		j := i + 1
		for j < len(records) {
			nextVal, ok := get(records[j].Record)
			if ok {
				if nextVal != val {
					break
				}
				runIndices[j] = true
			}
			j++
		}

		if len(runIndices) >= 3 && i > lastUnset {
			result = append(result, mtxt.NewLine(directive(val)))
			v := val
			currentGlobal = &v
			for k := i; k < j; k++ {
				c := records[k].Clone()
				if runIndices[k] {
					remove(c.Record)
				}
				result = append(result, c)
			}
			i = j
		} else {
			result = append(result, line)
			i++
		}
	}
	return result
}

// Extract is the partial inverse of Apply: it first folds all directives
// inline, then re-creates directives for runs of repeated attributes.
// Channel extraction deliberately ignores ControlChange records (their
// channel is explicit; a missing one means "all channels").
func Extract(records []mtxt.Line) []mtxt.Line {
	current := Apply(records)

	current = extractProperty(current,
		func(r mtxt.Record) (uint16, bool) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				return derefChannel(rec.Channel)
			case *mtxt.NoteOn:
				return derefChannel(rec.Channel)
			case *mtxt.NoteOff:
				return derefChannel(rec.Channel)
			case *mtxt.Voice:
				return derefChannel(rec.Channel)
			}
			return 0, false
		},
		func(v uint16) mtxt.Record { return &mtxt.ChannelDirective{Channel: v} },
		func(r mtxt.Record) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				rec.Channel = nil
			case *mtxt.NoteOn:
				rec.Channel = nil
			case *mtxt.NoteOff:
				rec.Channel = nil
			case *mtxt.Voice:
				rec.Channel = nil
			}
		},
	)

	current = extractProperty(current,
		func(r mtxt.Record) (float64, bool) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				return derefFloat(rec.Velocity)
			case *mtxt.NoteOn:
				return derefFloat(rec.Velocity)
			}
			return 0, false
		},
		func(v float64) mtxt.Record { return &mtxt.VelocityDirective{Velocity: v} },
		func(r mtxt.Record) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				rec.Velocity = nil
			case *mtxt.NoteOn:
				rec.Velocity = nil
			}
		},
	)

	current = extractProperty(current,
		func(r mtxt.Record) (float64, bool) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				return derefFloat(rec.OffVelocity)
			case *mtxt.NoteOff:
				return derefFloat(rec.OffVelocity)
			}
			return 0, false
		},
		func(v float64) mtxt.Record { return &mtxt.OffVelocityDirective{OffVelocity: v} },
		func(r mtxt.Record) {
			switch rec := r.(type) {
			case *mtxt.NoteEvent:
				rec.OffVelocity = nil
			case *mtxt.NoteOff:
				rec.OffVelocity = nil
			}
		},
	)

	current = extractProperty(current,
		func(r mtxt.Record) (mtxt.BeatTime, bool) {
			if rec, ok := r.(*mtxt.NoteEvent); ok && rec.Duration != nil {
				return *rec.Duration, true
			}
			return 0, false
		},
		func(v mtxt.BeatTime) mtxt.Record { return &mtxt.DurationDirective{Duration: v} },
		func(r mtxt.Record) {
			if rec, ok := r.(*mtxt.NoteEvent); ok {
				rec.Duration = nil
			}
		},
	)

	current = extractProperty(current,
		func(r mtxt.Record) (float64, bool) {
			switch rec := r.(type) {
			case *mtxt.ControlChange:
				return derefFloat(rec.TransitionCurve)
			case *mtxt.Tempo:
				return derefFloat(rec.TransitionCurve)
			}
			return 0, false
		},
		func(v float64) mtxt.Record { return &mtxt.TransitionCurveDirective{Curve: v} },
		func(r mtxt.Record) {
			switch rec := r.(type) {
			case *mtxt.ControlChange:
				rec.TransitionCurve = nil
			case *mtxt.Tempo:
				rec.TransitionCurve = nil
			}
		},
	)

	current = extractProperty(current,
		func(r mtxt.Record) (float64, bool) {
			switch rec := r.(type) {
			case *mtxt.ControlChange:
				return derefFloat(rec.TransitionInterval)
			case *mtxt.Tempo:
				return derefFloat(rec.TransitionInterval)
			}
			return 0, false
		},
		func(v float64) mtxt.Record { return &mtxt.TransitionIntervalDirective{Interval: v} },
		func(r mtxt.Record) {
			switch rec := r.(type) {
			case *mtxt.ControlChange:
				rec.TransitionInterval = nil
			case *mtxt.Tempo:
				rec.TransitionInterval = nil
			}
		},
	)

	return current
}

func derefChannel(p *uint16) (uint16, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func derefFloat(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
