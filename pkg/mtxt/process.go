package mtxt

import "sort"

// processState carries the running defaults that directives establish for
// subsequent events.
type processState struct {
	duration           BeatTime
	channel            uint16
	velocity           float64
	offVelocity        float64
	transitionCurve    float64
	transitionInterval float64
	aliases            map[string]*AliasDefinition
	tuning             map[PitchClass]float64
}

func newProcessState() *processState {
	return &processState{
		duration: BeatTimeFromParts(1, 0.0),
		// The format's historical default velocity is 64 on the MIDI
		// 0-127 scale; inline values use 0.0-1.0.
		velocity:           64.0 / 127.0,
		offVelocity:        0.0,
		transitionCurve:    0.0,
		transitionInterval: 0.01,
		aliases:            make(map[string]*AliasDefinition),
		tuning:             make(map[PitchClass]float64),
	}
}

// IntermediateRecord is a point-in-time event with absolute beat time and
// its transition parameters still attached.
type IntermediateRecord struct {
	// StartBeat is EndBeat minus the transition time.
	StartBeat          BeatTime
	EndBeat            BeatTime
	Record             OutputRecord
	TransitionCurve    float64
	TransitionTime     BeatTime
	TransitionInterval float64
}

// ProcessRecords expands a record list into concrete output events:
// directives are folded into per-event attributes, aliases and tuning are
// resolved, and transitions are densified into discrete points with
// absolute microsecond times.
func ProcessRecords(records []Record) []OutputRecord {
	intermediate := CreateIntermediateRecords(records)
	return ProcessTransitions(intermediate)
}

func pointAt(t BeatTime, rec OutputRecord) IntermediateRecord {
	return IntermediateRecord{StartBeat: t, EndBeat: t, Record: rec}
}

// CreateIntermediateRecords runs the stateful expansion pass: one
// intermediate record per physical event, sorted by end beat time.
func CreateIntermediateRecords(records []Record) []IntermediateRecord {
	state := newProcessState()
	var out []IntermediateRecord

	for _, record := range records {
		switch r := record.(type) {
		case *DurationDirective:
			state.duration = r.Duration
		case *ChannelDirective:
			state.channel = r.Channel
		case *VelocityDirective:
			state.velocity = r.Velocity
		case *OffVelocityDirective:
			state.offVelocity = r.OffVelocity
		case *TransitionCurveDirective:
			state.transitionCurve = r.Curve
		case *TransitionIntervalDirective:
			state.transitionInterval = r.Interval
		case *AliasDef:
			state.aliases[r.Def.Name] = r.Def
		case *Tuning:
			if pc, err := ParsePitchClass(r.Target); err == nil {
				state.tuning[pc] = r.Cents
			}

		case *NoteEvent:
			dur := state.duration
			if r.Duration != nil {
				dur = *r.Duration
			}
			vel := orDefault(r.Velocity, state.velocity)
			offVel := orDefault(r.OffVelocity, state.offVelocity)
			ch := orDefaultChannel(r.Channel, state.channel)
			for _, n := range state.resolve(r.Target) {
				n = state.applyTuning(n)
				out = append(out,
					pointAt(r.TimeAt, &OutputNoteOn{Note: n, Velocity: vel, Channel: ch}),
					pointAt(r.TimeAt.Add(dur), &OutputNoteOff{Note: n, OffVelocity: offVel, Channel: ch}),
				)
			}

		case *NoteOn:
			vel := orDefault(r.Velocity, state.velocity)
			ch := orDefaultChannel(r.Channel, state.channel)
			for _, n := range state.resolve(r.Target) {
				n = state.applyTuning(n)
				out = append(out, pointAt(r.TimeAt, &OutputNoteOn{Note: n, Velocity: vel, Channel: ch}))
			}

		case *NoteOff:
			offVel := orDefault(r.OffVelocity, state.offVelocity)
			ch := orDefaultChannel(r.Channel, state.channel)
			for _, n := range state.resolve(r.Target) {
				n = state.applyTuning(n)
				out = append(out, pointAt(r.TimeAt, &OutputNoteOff{Note: n, OffVelocity: offVel, Channel: ch}))
			}

		case *ControlChange:
			ch := orDefaultChannel(r.Channel, state.channel)
			curve := orDefault(r.TransitionCurve, state.transitionCurve)
			tTime := BeatTime(0)
			if r.TransitionTime != nil {
				tTime = *r.TransitionTime
			}
			interval := orDefault(r.TransitionInterval, state.transitionInterval)

			emit := func(note *Note) {
				out = append(out, IntermediateRecord{
					StartBeat: r.TimeAt.Sub(tTime),
					EndBeat:   r.TimeAt,
					Record: &OutputControlChange{
						Note:       note,
						Controller: r.Controller,
						Value:      r.Value,
						Channel:    ch,
					},
					TransitionCurve:    curve,
					TransitionTime:     tTime,
					TransitionInterval: interval,
				})
			}
			if r.Target != nil {
				for _, n := range state.resolve(*r.Target) {
					note := n
					emit(&note)
				}
			} else {
				emit(nil)
			}

		case *Voice:
			ch := orDefaultChannel(r.Channel, state.channel)
			out = append(out, pointAt(r.TimeAt, &OutputVoice{Voices: r.Voices, Channel: ch}))

		case *Tempo:
			curve := orDefault(r.TransitionCurve, state.transitionCurve)
			tTime := BeatTime(0)
			if r.TransitionTime != nil {
				tTime = *r.TransitionTime
			}
			interval := orDefault(r.TransitionInterval, state.transitionInterval)
			out = append(out, IntermediateRecord{
				StartBeat:          r.TimeAt.Sub(tTime),
				EndBeat:            r.TimeAt,
				Record:             &OutputTempo{BPM: r.BPM},
				TransitionCurve:    curve,
				TransitionTime:     tTime,
				TransitionInterval: interval,
			})

		case *TimeSigEvent:
			out = append(out, pointAt(r.TimeAt, &OutputTimeSignature{Signature: r.Signature}))

		case *Reset:
			out = append(out, pointAt(r.TimeAt, &OutputReset{Target: r.Target}))

		case *Meta:
			ch := orDefaultChannel(r.Channel, state.channel)
			t := BeatTime(0)
			if r.TimeAt != nil {
				t = *r.TimeAt
			}
			out = append(out, pointAt(t, &OutputChannelMeta{Channel: ch, MetaType: r.MetaType, Value: r.Value}))

		case *GlobalMeta:
			out = append(out, pointAt(0, &OutputGlobalMeta{MetaType: r.MetaType, Value: r.Value}))

		case *SysEx:
			out = append(out, pointAt(r.TimeAt, &OutputSysEx{Data: append([]byte(nil), r.Data...)}))

		case *Header, *EmptyLine:
			// No output.
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndBeat < out[j].EndBeat
	})
	return out
}

func (s *processState) resolve(target NoteTarget) []Note {
	switch {
	case target.Note != nil:
		return []Note{*target.Note}
	case target.Alias != nil:
		return append([]Note(nil), target.Alias.Notes...)
	default:
		if def, ok := s.aliases[target.Key]; ok {
			return append([]Note(nil), def.Notes...)
		}
		return nil
	}
}

func (s *processState) applyTuning(n Note) Note {
	if cents, ok := s.tuning[n.PitchClass]; ok {
		n.Cents += cents
	}
	return n
}

func orDefault(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func orDefaultChannel(p *uint16, def uint16) uint16 {
	if p != nil {
		return *p
	}
	return def
}
