package mtxt

import (
	"fmt"
	"strconv"
	"strings"
)

// parsedDirective is one "key=value" pair on a line, before it is bound to
// an event attribute or turned into a standalone directive record.
type parsedDirective struct {
	kind     directiveKind
	channel  uint16
	value    float64
	duration BeatTime
}

type directiveKind int

const (
	dirChannel directiveKind = iota
	dirVelocity
	dirOffVelocity
	dirDuration
	dirTransitionCurve
	dirTransitionTime
	dirTransitionInterval
)

// tryParseDirective parses a "key=value" token. It returns (nil, nil) for
// tokens without an '='.
func tryParseDirective(part string) (*parsedDirective, error) {
	key, value, ok := strings.Cut(part, "=")
	if !ok {
		return nil, nil
	}
	switch key {
	case "ch":
		ch, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid channel number")
		}
		return &parsedDirective{kind: dirChannel, channel: uint16(ch)}, nil
	case "vel":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid velocity value")
		}
		if v < 0.0 || v > 1.0 {
			return nil, fmt.Errorf("velocity must be 0.0-1.0")
		}
		return &parsedDirective{kind: dirVelocity, value: v}, nil
	case "offvel":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid off velocity value")
		}
		if v < 0.0 || v > 1.0 {
			return nil, fmt.Errorf("off velocity must be 0.0-1.0")
		}
		return &parsedDirective{kind: dirOffVelocity, value: v}, nil
	case "dur":
		d, err := ParseBeatTime(value)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value")
		}
		return &parsedDirective{kind: dirDuration, duration: d}, nil
	case "transition_curve":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid transition_curve value")
		}
		return &parsedDirective{kind: dirTransitionCurve, value: v}, nil
	case "transition_time":
		d, err := ParseBeatTime(value)
		if err != nil {
			return nil, fmt.Errorf("invalid transition_time value")
		}
		return &parsedDirective{kind: dirTransitionTime, duration: d}, nil
	case "transition_interval":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid transition_interval value")
		}
		if v < 0.0 {
			return nil, fmt.Errorf("transition interval must be >= 0.0")
		}
		return &parsedDirective{kind: dirTransitionInterval, value: v}, nil
	default:
		return nil, fmt.Errorf("invalid directive")
	}
}

// tryParseGlobalDirective parses a standalone directive line token.
func tryParseGlobalDirective(part string) (Record, error) {
	d, err := tryParseDirective(part)
	if err != nil || d == nil {
		return nil, err
	}
	switch d.kind {
	case dirChannel:
		return &ChannelDirective{Channel: d.channel}, nil
	case dirVelocity:
		return &VelocityDirective{Velocity: d.value}, nil
	case dirOffVelocity:
		return &OffVelocityDirective{OffVelocity: d.value}, nil
	case dirDuration:
		return &DurationDirective{Duration: d.duration}, nil
	case dirTransitionCurve:
		return &TransitionCurveDirective{Curve: d.value}, nil
	case dirTransitionInterval:
		return &TransitionIntervalDirective{Interval: d.value}, nil
	default:
		return nil, fmt.Errorf("transition_time= is not supported here")
	}
}

func parseNoteEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("note event requires note name")
	}
	target, err := ParseNoteTarget(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid note")
	}

	rec := &NoteEvent{TimeAt: time, Target: target}
	for _, part := range parts[1:] {
		d, err := tryParseDirective(part)
		if err != nil {
			return nil, err
		}
		switch {
		case d == nil:
			return nil, fmt.Errorf("unsupported directive %q", part)
		case d.kind == dirDuration:
			dur := d.duration
			rec.Duration = &dur
		case d.kind == dirVelocity:
			v := d.value
			rec.Velocity = &v
		case d.kind == dirOffVelocity:
			v := d.value
			rec.OffVelocity = &v
		case d.kind == dirChannel:
			ch := d.channel
			rec.Channel = &ch
		default:
			return nil, fmt.Errorf("unsupported directive %q", part)
		}
	}
	return rec, nil
}

func parseNoteOnEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("note on event requires note name")
	}
	target, err := ParseNoteTarget(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid note")
	}

	rec := &NoteOn{TimeAt: time, Target: target}
	for _, part := range parts[1:] {
		d, err := tryParseDirective(part)
		if err != nil {
			return nil, err
		}
		switch {
		case d == nil:
			return nil, fmt.Errorf("unsupported directive %q", part)
		case d.kind == dirVelocity:
			v := d.value
			rec.Velocity = &v
		case d.kind == dirChannel:
			ch := d.channel
			rec.Channel = &ch
		default:
			return nil, fmt.Errorf("unsupported directive %q", part)
		}
	}
	return rec, nil
}

func parseNoteOffEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("note off event requires note name")
	}
	target, err := ParseNoteTarget(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid note")
	}

	rec := &NoteOff{TimeAt: time, Target: target}
	for _, part := range parts[1:] {
		d, err := tryParseDirective(part)
		if err != nil {
			return nil, err
		}
		switch {
		case d == nil:
			return nil, fmt.Errorf("unsupported directive %q", part)
		case d.kind == dirOffVelocity:
			v := d.value
			rec.OffVelocity = &v
		case d.kind == dirChannel:
			ch := d.channel
			rec.Channel = &ch
		default:
			return nil, fmt.Errorf("unsupported directive %q", part)
		}
	}
	return rec, nil
}

func parseControlChangeEvent(time BeatTime, parts []string) (Record, error) {
	rec := &ControlChange{TimeAt: time}
	var idx int

	// "cc <note> <controller> <value>" or "cc <controller> <value>":
	// disambiguated by which token parses as a number.
	if len(parts) >= 3 && isFloat(parts[2]) {
		target, err := ParseNoteTarget(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid note")
		}
		rec.Target = &target
		rec.Controller = parts[1]
		rec.Value, _ = strconv.ParseFloat(parts[2], 64)
		idx = 3
	} else if len(parts) >= 2 && isFloat(parts[1]) {
		rec.Controller = parts[0]
		rec.Value, _ = strconv.ParseFloat(parts[1], 64)
		idx = 2
	} else {
		return nil, fmt.Errorf("cc event requires controller and value (float)")
	}

	for _, part := range parts[idx:] {
		d, err := tryParseDirective(part)
		if err != nil {
			return nil, err
		}
		switch {
		case d == nil:
			return nil, fmt.Errorf("unsupported directive %q", part)
		case d.kind == dirChannel:
			ch := d.channel
			rec.Channel = &ch
		case d.kind == dirTransitionCurve:
			v := d.value
			rec.TransitionCurve = &v
		case d.kind == dirTransitionTime:
			t := d.duration
			rec.TransitionTime = &t
		case d.kind == dirTransitionInterval:
			v := d.value
			rec.TransitionInterval = &v
		default:
			return nil, fmt.Errorf("unsupported directive %q", part)
		}
	}
	return rec, nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseVoiceEvent(time BeatTime, parts []string) (Record, error) {
	rec := &Voice{TimeAt: time}
	idx := 0

	// Optional channel parameter comes first.
	if len(parts) > 0 {
		d, err := tryParseDirective(parts[0])
		if err == nil && d != nil {
			if d.kind != dirChannel {
				return nil, fmt.Errorf("unsupported directive %q", parts[0])
			}
			ch := d.channel
			rec.Channel = &ch
			idx = 1
		} else if err != nil {
			return nil, err
		}
	}

	rest := parts[idx:]
	if len(rest) == 0 {
		return nil, fmt.Errorf("voice event requires voice list")
	}
	rec.Voices = ParseVoiceList(strings.Join(rest, " "))
	return rec, nil
}

func parseTuningEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) != 2 {
		return nil, fmt.Errorf("tuning event requires target and cents")
	}
	cents, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cents value")
	}
	return &Tuning{TimeAt: time, Target: parts[0], Cents: cents}, nil
}

func parseResetEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) != 1 {
		return nil, fmt.Errorf("reset event requires target")
	}
	return &Reset{TimeAt: time, Target: parts[0]}, nil
}

func parseTempoEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("tempo event requires a BPM value")
	}
	bpm, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BPM value")
	}

	rec := &Tempo{TimeAt: time, BPM: bpm}
	for _, part := range parts[1:] {
		d, err := tryParseDirective(part)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, fmt.Errorf("invalid tempo command")
		}
		switch d.kind {
		case dirTransitionCurve:
			v := d.value
			rec.TransitionCurve = &v
		case dirTransitionTime:
			t := d.duration
			rec.TransitionTime = &t
		case dirTransitionInterval:
			v := d.value
			rec.TransitionInterval = &v
		default:
			return nil, fmt.Errorf("unsupported directive %q", part)
		}
	}
	return rec, nil
}

func parseTimeSignatureEvent(time BeatTime, parts []string) (Record, error) {
	if len(parts) != 1 {
		return nil, fmt.Errorf("time signature event requires signature")
	}
	sig, err := ParseTimeSignature(parts[0])
	if err != nil {
		return nil, err
	}
	return &TimeSigEvent{TimeAt: time, Signature: sig}, nil
}

func parseMetaEvent(time *BeatTime, parts []string) (Record, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("meta event requires type and value")
	}

	if parts[0] == "global" {
		if len(parts) < 3 {
			return nil, fmt.Errorf("global meta event requires type and value")
		}
		return &GlobalMeta{MetaType: parts[1], Value: strings.Join(parts[2:], " ")}, nil
	}

	rec := &Meta{TimeAt: time}
	index := 0
	if d, err := tryParseDirective(parts[index]); err == nil && d != nil && d.kind == dirChannel {
		ch := d.channel
		rec.Channel = &ch
		index++
	}

	if len(parts)-index < 2 {
		return nil, fmt.Errorf("meta event requires type and value")
	}
	rec.MetaType = parts[index]
	rec.Value = strings.Join(parts[index+1:], " ")
	return rec, nil
}

func parseSysExEvent(time BeatTime, parts []string) (Record, error) {
	data := make([]byte, 0, len(parts))
	for _, part := range parts {
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte: %s", part)
		}
		data = append(data, byte(b))
	}
	return &SysEx{TimeAt: time, Data: data}, nil
}

// tryParseTimeEvent parses "<time> <kind> <payload>" lines. It returns
// (nil, nil) when the first token is not a beat time.
func tryParseTimeEvent(parts []string) (Record, error) {
	if len(parts) < 2 {
		return nil, nil
	}
	time, err := ParseBeatTime(parts[0])
	if err != nil {
		return nil, nil
	}

	rest := parts[2:]
	switch parts[1] {
	case "note":
		return parseNoteEvent(time, rest)
	case "on":
		return parseNoteOnEvent(time, rest)
	case "off":
		return parseNoteOffEvent(time, rest)
	case "cc":
		return parseControlChangeEvent(time, rest)
	case "voice":
		return parseVoiceEvent(time, rest)
	case "tempo":
		return parseTempoEvent(time, rest)
	case "timesig":
		return parseTimeSignatureEvent(time, rest)
	case "tuning":
		return parseTuningEvent(time, rest)
	case "reset":
		return parseResetEvent(time, rest)
	case "meta":
		return parseMetaEvent(&time, rest)
	case "sysex":
		return parseSysExEvent(time, rest)
	default:
		return nil, fmt.Errorf("unknown event type: %s", parts[1])
	}
}

// findInlineCommentIndex locates the first "//" that does not directly
// follow a ':' (so "http://" survives inside values and comments).
func findInlineCommentIndex(line string) int {
	searchStart := 0
	for {
		idx := strings.Index(line[searchStart:], "//")
		if idx < 0 {
			return -1
		}
		abs := searchStart + idx
		if abs == 0 || line[abs-1] != ':' {
			return abs
		}
		searchStart = abs + 2
	}
}

// ParseLine parses a single MTXT line into a record with its trailing
// comment.
func ParseLine(line string) (Line, error) {
	line = strings.TrimSpace(line)

	if line == "" {
		return NewLine(&EmptyLine{}), nil
	}
	if strings.HasPrefix(line, "//") {
		return LineWithComment(&EmptyLine{}, strings.TrimSpace(line[2:])), nil
	}

	var comment string
	if idx := findInlineCommentIndex(line); idx >= 0 {
		comment = strings.TrimSpace(line[idx+2:])
		line = strings.TrimSpace(line[:idx])
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return NewLine(&EmptyLine{}), nil
	}

	var record Record
	switch parts[0] {
	case "mtxt":
		if len(parts) != 2 {
			return Line{}, fmt.Errorf("invalid file version, got %q, expected \"mtxt 1.0\"", strings.Join(parts, " "))
		}
		version, err := ParseVersion(parts[1])
		if err != nil {
			return Line{}, err
		}
		if !version.Supported() {
			return Line{}, fmt.Errorf("unsupported version: %s", version)
		}
		record = &Header{Version: version}

	case "meta":
		rec, err := parseMetaEvent(nil, parts[1:])
		if err != nil {
			return Line{}, err
		}
		record = rec

	case "alias":
		if len(parts) < 3 {
			return Line{}, fmt.Errorf("alias requires name and at least one note")
		}
		name := parts[1]
		if _, err := ParseNote(name); err == nil {
			return Line{}, fmt.Errorf("cannot redefine note %q as alias", name)
		}
		var notes []Note
		for _, noteStr := range strings.Split(strings.Join(parts[2:], " "), ",") {
			n, err := ParseNote(strings.TrimSpace(noteStr))
			if err != nil {
				return Line{}, err
			}
			notes = append(notes, n)
		}
		record = &AliasDef{Def: &AliasDefinition{Name: name, Notes: notes}}

	default:
		rec, err := tryParseGlobalDirective(parts[0])
		if err != nil {
			return Line{}, err
		}
		if rec != nil {
			if len(parts) > 1 {
				return Line{}, fmt.Errorf("cannot parse global directive %s", strings.Join(parts, " "))
			}
			record = rec
			break
		}
		rec, err = tryParseTimeEvent(parts)
		if err != nil {
			return Line{}, err
		}
		if rec == nil {
			return Line{}, fmt.Errorf("cannot parse %q", strings.Join(parts, " "))
		}
		record = rec
	}

	if comment != "" {
		return LineWithComment(record, comment), nil
	}
	return NewLine(record), nil
}

// Parse parses a whole MTXT document. Errors carry a 1-based line number.
// A document without a header record is rejected.
func Parse(content string) (*File, error) {
	file := NewFile()
	hasHeader := false

	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for i, raw := range lines {
		line, err := ParseLine(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if _, ok := line.Record.(*Header); ok {
			hasHeader = true
		}
		file.Records = append(file.Records, line)
	}

	if !hasHeader {
		return nil, fmt.Errorf("missing version declaration")
	}
	return file, nil
}
