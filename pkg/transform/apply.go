// Package transform provides the pure record-list transforms of the MTXT
// toolchain and the fixed-order pipeline that composes them.
package transform

import "github.com/james-see/mtxt/pkg/mtxt"

// applyState mirrors the running directive values while folding.
type applyState struct {
	channel            *uint16
	velocity           *float64
	offVelocity        *float64
	duration           *mtxt.BeatTime
	transitionCurve    *float64
	transitionInterval *float64
}

// Apply folds directives into the events that follow them: every event
// gets its unset optional attributes filled from the running state, and
// the directive records themselves are removed.
func Apply(records []mtxt.Line) []mtxt.Line {
	var state applyState
	out := make([]mtxt.Line, 0, len(records))

	for _, line := range records {
		switch r := line.Record.(type) {
		case *mtxt.ChannelDirective:
			ch := r.Channel
			state.channel = &ch
		case *mtxt.VelocityDirective:
			v := r.Velocity
			state.velocity = &v
		case *mtxt.OffVelocityDirective:
			v := r.OffVelocity
			state.offVelocity = &v
		case *mtxt.DurationDirective:
			d := r.Duration
			state.duration = &d
		case *mtxt.TransitionCurveDirective:
			v := r.Curve
			state.transitionCurve = &v
		case *mtxt.TransitionIntervalDirective:
			v := r.Interval
			state.transitionInterval = &v

		case *mtxt.NoteEvent:
			c := line.Clone()
			n := c.Record.(*mtxt.NoteEvent)
			n.Duration = orTime(n.Duration, state.duration)
			n.Velocity = orFloat(n.Velocity, state.velocity)
			n.OffVelocity = orFloat(n.OffVelocity, state.offVelocity)
			n.Channel = orChannel(n.Channel, state.channel)
			out = append(out, c)

		case *mtxt.NoteOn:
			c := line.Clone()
			n := c.Record.(*mtxt.NoteOn)
			n.Velocity = orFloat(n.Velocity, state.velocity)
			n.Channel = orChannel(n.Channel, state.channel)
			out = append(out, c)

		case *mtxt.NoteOff:
			c := line.Clone()
			n := c.Record.(*mtxt.NoteOff)
			n.OffVelocity = orFloat(n.OffVelocity, state.offVelocity)
			n.Channel = orChannel(n.Channel, state.channel)
			out = append(out, c)

		case *mtxt.ControlChange:
			// The channel stays as written: a channel-less cc means
			// "all channels", not "the directive channel".
			c := line.Clone()
			cc := c.Record.(*mtxt.ControlChange)
			cc.TransitionCurve = orFloat(cc.TransitionCurve, state.transitionCurve)
			cc.TransitionInterval = orFloat(cc.TransitionInterval, state.transitionInterval)
			out = append(out, c)

		case *mtxt.Voice:
			c := line.Clone()
			v := c.Record.(*mtxt.Voice)
			v.Channel = orChannel(v.Channel, state.channel)
			out = append(out, c)

		case *mtxt.Tempo:
			c := line.Clone()
			t := c.Record.(*mtxt.Tempo)
			t.TransitionCurve = orFloat(t.TransitionCurve, state.transitionCurve)
			t.TransitionInterval = orFloat(t.TransitionInterval, state.transitionInterval)
			out = append(out, c)

		default:
			out = append(out, line.Clone())
		}
	}

	return out
}

func orFloat(v, def *float64) *float64 {
	if v != nil {
		return v
	}
	if def == nil {
		return nil
	}
	c := *def
	return &c
}

func orChannel(v, def *uint16) *uint16 {
	if v != nil {
		return v
	}
	if def == nil {
		return nil
	}
	c := *def
	return &c
}

func orTime(v, def *mtxt.BeatTime) *mtxt.BeatTime {
	if v != nil {
		return v
	}
	if def == nil {
		return nil
	}
	c := *def
	return &c
}
