package midiconv

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/mtxt/pkg/mtxt"
	"github.com/james-see/mtxt/pkg/transform"
)

// trackedLine is a record with the absolute beat position it was decoded
// at, before the per-track streams are merged.
type trackedLine struct {
	tick mtxt.BeatTime
	line mtxt.Line
}

// MIDIToMTXT parses SMF bytes and converts them into an MTXT document:
// all tracks merged into a single stream, drum hits on channel 9 turned
// into named aliases, directives extracted and note pairs merged.
func MIDIToMTXT(midiBytes []byte) (*mtxt.File, error) {
	// SMPTE timing sets the high bit of the header's division word; reject
	// it before the SMF reader sees it.
	if len(midiBytes) >= 14 && string(midiBytes[:4]) == "MThd" && midiBytes[12]&0x80 != 0 {
		return nil, fmt.Errorf("timecode timing is not supported")
	}
	s, err := smf.ReadFrom(bytes.NewReader(midiBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}
	return smfToMTXT(s)
}

func singleTrackEvents(s *smf.SMF) ([]trackedLine, error) {
	if s.Format() == 2 {
		return nil, fmt.Errorf("MIDI format 2 files are not supported")
	}

	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("timecode timing is not supported")
	}
	ppqn := uint64(mt.Resolution())

	var all []trackedLine

	for trackIdx, track := range s.Tracks {
		var currentTicks uint64

		// Heuristic for multi-track files: attribute track-scoped meta
		// events to the first MIDI channel seen in the track.
		var trackChannel *uint16
		if s.Format() != 0 {
			for _, ev := range track {
				msg := []byte(ev.Message)
				if len(msg) > 0 && msg[0] >= 0x80 && msg[0] <= 0xEF {
					ch := uint16(msg[0] & 0x0F)
					trackChannel = &ch
					break
				}
			}
		}

		for _, ev := range track {
			currentTicks += uint64(ev.Delta)
			beat := mtxt.BeatTimeFromParts(
				uint32(currentTicks/ppqn),
				float64(currentTicks%ppqn)/float64(ppqn),
			)

			msg := []byte(ev.Message)
			if len(msg) == 0 {
				continue
			}

			switch {
			case msg[0] == 0xFF:
				record, err := metaToRecord(msg, beat, trackIdx == 0, trackChannel)
				if err != nil {
					return nil, err
				}
				if record != nil {
					all = append(all, trackedLine{tick: beat, line: mtxt.NewLine(record)})
				}
			case msg[0] == 0xF0:
				// Strip the framing; the encoder adds it back.
				data := msg[1:]
				if n := len(data); n > 0 && data[n-1] == 0xF7 {
					data = data[:n-1]
				}
				all = append(all, trackedLine{tick: beat, line: mtxt.NewLine(&mtxt.SysEx{TimeAt: beat, Data: append([]byte(nil), data...)})})
			case msg[0] == 0xF7:
				// Escape payload: keep it visible as a comment line.
				comment := "escape sequence:"
				for _, b := range msg[1:] {
					comment += fmt.Sprintf(" %02x", b)
				}
				all = append(all, trackedLine{tick: beat, line: mtxt.LineWithComment(&mtxt.EmptyLine{}, comment)})
			case msg[0] >= 0x80 && msg[0] <= 0xEF:
				record, err := channelMessageToRecord(msg, beat)
				if err != nil {
					return nil, err
				}
				if record != nil {
					all = append(all, trackedLine{tick: beat, line: mtxt.NewLine(record)})
				}
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].tick < all[j].tick })
	return all, nil
}

func smfToMTXT(s *smf.SMF) (*mtxt.File, error) {
	file := mtxt.NewFile()
	file.Records = append(file.Records, mtxt.NewLine(&mtxt.Header{Version: mtxt.Version{Major: 1, Minor: 0}}))

	all, err := singleTrackEvents(s)
	if err != nil {
		return nil, err
	}

	// Emit an alias definition for every drum name the stream uses.
	usedDrums := make(map[string]bool)
	for _, ev := range all {
		switch r := ev.line.Record.(type) {
		case *mtxt.NoteOn:
			if r.Target.Key != "" {
				usedDrums[r.Target.Key] = true
			}
		case *mtxt.NoteOff:
			if r.Target.Key != "" {
				usedDrums[r.Target.Key] = true
			}
		}
	}
	for _, drum := range Drums {
		if usedDrums[drum.Slug] {
			file.Records = append(file.Records, mtxt.NewLine(&mtxt.AliasDef{
				Def: &mtxt.AliasDefinition{
					Name:  drum.Slug,
					Notes: []mtxt.Note{mtxt.NoteFromMIDIKey(drum.Number)},
				},
			}))
		}
	}

	finalEvents := make([]mtxt.Line, 0, len(all))
	for _, ev := range all {
		finalEvents = append(finalEvents, ev.line)
	}

	// File-level records come first, then untimed meta, then the timed
	// stream in order.
	sort.SliceStable(finalEvents, func(i, j int) bool {
		gi, ti := decodeSortKey(finalEvents[i].Record)
		gj, tj := decodeSortKey(finalEvents[j].Record)
		if gi != gj {
			return gi < gj
		}
		return ti < tj
	})

	finalEvents = transform.Extract(finalEvents)
	finalEvents = transform.Merge(finalEvents)

	file.Records = append(file.Records, finalEvents...)
	return file, nil
}

func decodeSortKey(r mtxt.Record) (int, mtxt.BeatTime) {
	switch rec := r.(type) {
	case *mtxt.Header, *mtxt.GlobalMeta, *mtxt.AliasDef:
		return 0, 0
	case *mtxt.Meta:
		if rec.TimeAt == nil {
			return 1, 0
		}
		return 2, *rec.TimeAt
	default:
		t, _ := r.Time()
		return 2, t
	}
}

// drumTarget maps a key on the GM drum channel to a named alias, falling
// back to the literal note for keys outside the table.
func drumTarget(channel uint16, key uint8) mtxt.NoteTarget {
	if channel == 9 {
		if drum, ok := DrumByNumber(key); ok {
			return mtxt.NoteTarget{Key: drum.Slug}
		}
	}
	return mtxt.NoteTargetOf(mtxt.NoteFromMIDIKey(key))
}

func channelMessageToRecord(msg []byte, beat mtxt.BeatTime) (mtxt.Record, error) {
	status := msg[0] & 0xF0
	channel := uint16(msg[0] & 0x0F)

	switch status {
	case 0x90: // note on
		if len(msg) < 3 {
			return nil, fmt.Errorf("truncated note on message")
		}
		key, vel := msg[1], msg[2]
		target := drumTarget(channel, key)
		if vel == 0 {
			offVel := 0.0
			return &mtxt.NoteOff{TimeAt: beat, Target: target, OffVelocity: &offVel, Channel: &channel}, nil
		}
		velocity := float64(vel) / 127.0
		return &mtxt.NoteOn{TimeAt: beat, Target: target, Velocity: &velocity, Channel: &channel}, nil

	case 0x80: // note off
		if len(msg) < 3 {
			return nil, fmt.Errorf("truncated note off message")
		}
		key, vel := msg[1], msg[2]
		offVelocity := float64(vel) / 127.0
		return &mtxt.NoteOff{TimeAt: beat, Target: drumTarget(channel, key), OffVelocity: &offVelocity, Channel: &channel}, nil

	case 0xB0: // control change
		if len(msg) < 3 {
			return nil, fmt.Errorf("truncated controller message")
		}
		return &mtxt.ControlChange{
			TimeAt:     beat,
			Controller: ControllerName(msg[1]),
			Value:      float64(msg[2]) / 127.0,
			Channel:    &channel,
		}, nil

	case 0xC0: // program change
		if len(msg) < 2 {
			return nil, fmt.Errorf("truncated program change message")
		}
		prog := msg[1]
		var voices []string
		if int(prog) < len(Instruments) {
			instr := Instruments[prog]
			voices = []string{escapeMeta(instr.MtxtName), escapeMeta(instr.GMName)}
		} else {
			voices = []string{fmt.Sprintf("%d", prog)}
		}
		return &mtxt.Voice{TimeAt: beat, Voices: mtxt.VoiceList{Voices: voices}, Channel: &channel}, nil

	case 0xE0: // pitch bend
		if len(msg) < 3 {
			return nil, fmt.Errorf("truncated pitch bend message")
		}
		bend := uint16(msg[2])<<7 | uint16(msg[1])
		value := (float64(bend) - 8192.0) / 8192.0 * 12.0
		return &mtxt.ControlChange{TimeAt: beat, Controller: "pitch", Value: value, Channel: &channel}, nil

	case 0xA0, 0xD0: // poly / channel aftertouch
		var vel uint8
		if status == 0xA0 {
			if len(msg) < 3 {
				return nil, fmt.Errorf("truncated aftertouch message")
			}
			vel = msg[2]
		} else {
			if len(msg) < 2 {
				return nil, fmt.Errorf("truncated aftertouch message")
			}
			vel = msg[1]
		}
		return &mtxt.ControlChange{TimeAt: beat, Controller: "aftertouch", Value: float64(vel) / 127.0, Channel: &channel}, nil
	}

	return nil, nil
}

// metaData splits a raw meta message into its type byte and payload.
func metaData(msg []byte) (byte, []byte, bool) {
	if len(msg) < 3 || msg[0] != 0xFF {
		return 0, nil, false
	}
	typ := msg[1]
	// Variable-length payload size.
	i := 2
	length := 0
	for i < len(msg) {
		b := msg[i]
		length = length<<7 | int(b&0x7F)
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if i+length > len(msg) {
		return typ, msg[i:], true
	}
	return typ, msg[i : i+length], true
}

func metaToRecord(msg []byte, beat mtxt.BeatTime, isFirstTrack bool, trackChannel *uint16) (mtxt.Record, error) {
	typ, data, ok := metaData(msg)
	if !ok {
		return nil, nil
	}

	text := func() string { return escapeMeta(string(data)) }
	channelMeta := func(metaType, value string) mtxt.Record {
		t := beat
		return &mtxt.Meta{TimeAt: &t, Channel: trackChannel, MetaType: metaType, Value: value}
	}

	switch typ {
	case 0x51: // tempo
		if len(data) < 3 {
			return nil, nil
		}
		tempoUs := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		if tempoUs == 0 {
			return nil, nil
		}
		return &mtxt.Tempo{TimeAt: beat, BPM: 60_000_000.0 / float64(tempoUs)}, nil

	case 0x58: // time signature
		if len(data) < 2 {
			return nil, nil
		}
		return &mtxt.TimeSigEvent{
			TimeAt:    beat,
			Signature: mtxt.TimeSignature{Numerator: data[0], Denominator: 1 << data[1]},
		}, nil

	case 0x03: // track name
		if trackChannel == nil {
			if isFirstTrack {
				return &mtxt.GlobalMeta{MetaType: "title", Value: text()}, nil
			}
			return &mtxt.GlobalMeta{MetaType: "text", Value: text()}, nil
		}
		return channelMeta("name", text()), nil

	case 0x01: // text
		if trackChannel == nil {
			return &mtxt.GlobalMeta{MetaType: "text", Value: text()}, nil
		}
		return channelMeta("text", text()), nil

	case 0x02:
		return &mtxt.GlobalMeta{MetaType: "copyright", Value: text()}, nil
	case 0x04:
		return channelMeta("instrument", text()), nil
	case 0x05:
		return channelMeta("lyric", text()), nil
	case 0x06:
		return channelMeta("marker", text()), nil
	case 0x07:
		return channelMeta("cue", text()), nil
	case 0x08:
		return &mtxt.GlobalMeta{MetaType: "program", Value: text()}, nil
	case 0x09:
		return &mtxt.GlobalMeta{MetaType: "device", Value: text()}, nil

	case 0x00: // sequence number
		if len(data) < 2 {
			return nil, nil
		}
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: "tracknumber", Value: fmt.Sprintf("%d", uint16(data[0])<<8|uint16(data[1]))}, nil

	case 0x20: // MIDI channel prefix
		if len(data) < 1 {
			return nil, nil
		}
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: "midichannel", Value: fmt.Sprintf("%d", data[0])}, nil

	case 0x21: // MIDI port
		if len(data) < 1 {
			return nil, nil
		}
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: "midiport", Value: fmt.Sprintf("%d", data[0])}, nil

	case 0x54: // SMPTE offset
		if len(data) < 4 {
			return nil, nil
		}
		value := fmt.Sprintf("%02d:%02d:%02d:%02d", data[0]&0x1F, data[1], data[2], data[3])
		return &mtxt.GlobalMeta{MetaType: "smpte", Value: value}, nil

	case 0x59: // key signature
		if len(data) < 2 {
			return nil, nil
		}
		value := keySignatureString(int8(data[0]), data[1] != 0)
		if beat == 0 {
			return &mtxt.GlobalMeta{MetaType: "key", Value: value}, nil
		}
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: "keysignature", Value: value}, nil

	case 0x7F: // sequencer specific
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: "sequencerspecific", Value: hexString(data)}, nil

	case 0x2F: // end of track
		return nil, nil

	default:
		t := beat
		return &mtxt.Meta{TimeAt: &t, MetaType: fmt.Sprintf("unknown_%02X", typ), Value: hexString(data)}, nil
	}
}

func hexString(data []byte) string {
	s := ""
	for _, b := range data {
		s += fmt.Sprintf("%02X", b)
	}
	return s
}

var majorKeys = map[int8]string{
	-7: "Cb", -6: "Gb", -5: "Db", -4: "Ab", -3: "Eb", -2: "Bb", -1: "F",
	0: "C", 1: "G", 2: "D", 3: "A", 4: "E", 5: "B", 6: "F#", 7: "C#",
}

var minorKeys = map[int8]string{
	-7: "Ab", -6: "Eb", -5: "Bb", -4: "F", -3: "C", -2: "G", -1: "D",
	0: "A", 1: "E", 2: "B", 3: "F#", 4: "C#", 5: "G#", 6: "D#", 7: "A#",
}

// keySignatureString renders a key signature as its key name, with an "m"
// suffix for minor keys.
func keySignatureString(sharpsFlats int8, minor bool) string {
	if minor {
		if name, ok := minorKeys[sharpsFlats]; ok {
			return name + "m"
		}
	} else if name, ok := majorKeys[sharpsFlats]; ok {
		return name
	}
	return fmt.Sprintf("%d", sharpsFlats)
}
