package midiconv

import (
	"bytes"
	"fmt"
	"math"
	"math/bits"
	"strconv"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// outputPPQN is the tick resolution of emitted files.
const outputPPQN = 480

// maxDelta is the largest delta the SMF variable-length field can carry
// (28 bits).
const maxDelta = 0x0FFFFFFF

// MTXTToMIDI processes an MTXT document into its concrete event stream
// and emits it as a format 0 Standard MIDI File.
func MTXTToMIDI(file *mtxt.File) ([]byte, error) {
	records := file.OutputRecords()

	s, err := outputRecordsToSMF(records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// voiceToProgram resolves a voice list to a GM program number, scanning
// the names from most to least specific and accepting bare numbers.
func voiceToProgram(voices mtxt.VoiceList) (uint8, error) {
	for i := len(voices.Voices) - 1; i >= 0; i-- {
		name := voices.Voices[i]
		if instr, ok := InstrumentByName(name); ok {
			return instr.Program, nil
		}
		if num, err := strconv.ParseUint(name, 10, 16); err == nil {
			if num > 127 {
				return 0, fmt.Errorf("program number %d out of range for MIDI", num)
			}
			return uint8(num), nil
		}
	}
	return 0, nil
}

func checkChannel(channel uint16) (uint8, error) {
	if channel > 15 {
		return 0, fmt.Errorf("channel %d out of range for MIDI", channel)
	}
	return uint8(channel), nil
}

func tempoMeta(bpm float64) []byte {
	microsPerQuarter := uint32(60_000_000.0 / bpm)
	return []byte{
		0xFF, 0x51, 0x03,
		byte(microsPerQuarter >> 16),
		byte(microsPerQuarter >> 8),
		byte(microsPerQuarter),
	}
}

func textMeta(typ byte, text string) []byte {
	// Single-byte length is enough for the payloads the format produces;
	// longer ones get a two-byte variable-length size.
	data := []byte(text)
	msg := []byte{0xFF, typ}
	if len(data) < 0x80 {
		msg = append(msg, byte(len(data)))
	} else {
		msg = append(msg, byte(len(data)>>7)|0x80, byte(len(data)&0x7F))
	}
	return append(msg, data...)
}

var metaTypeBytes = map[string]byte{
	"copyright":  0x02,
	"title":      0x03,
	"trackname":  0x03,
	"name":       0x03,
	"instrument": 0x04,
	"lyric":      0x05,
	"marker":     0x06,
	"cue":        0x07,
	"program":    0x08,
	"device":     0x09,
}

// recordToTrackMessage converts one output record to a raw SMF track
// message. A nil result (without error) means the record has no MIDI
// representation and its delta must carry over to the next event.
func recordToTrackMessage(record mtxt.OutputRecord) ([]byte, error) {
	switch r := record.(type) {
	case *mtxt.OutputNoteOn:
		ch, err := checkChannel(r.Channel)
		if err != nil {
			return nil, err
		}
		key, err := r.Note.MIDIKey()
		if err != nil {
			return nil, err
		}
		return midi.NoteOn(ch, key, clamp7(r.Velocity)), nil

	case *mtxt.OutputNoteOff:
		ch, err := checkChannel(r.Channel)
		if err != nil {
			return nil, err
		}
		key, err := r.Note.MIDIKey()
		if err != nil {
			return nil, err
		}
		return midi.NoteOffVelocity(ch, key, clamp7(r.OffVelocity)), nil

	case *mtxt.OutputControlChange:
		ch, err := checkChannel(r.Channel)
		if err != nil {
			return nil, err
		}
		ev, err := controllerToMIDI(r.Controller, r.Value)
		if err != nil {
			return nil, err
		}
		switch ev.kind {
		case ctrlPitchBend:
			return midi.Pitchbend(ch, int16(int(ev.bendValue)-8192)), nil
		case ctrlAftertouch:
			return midi.AfterTouch(ch, ev.value), nil
		default:
			return midi.ControlChange(ch, ev.number, ev.value), nil
		}

	case *mtxt.OutputVoice:
		ch, err := checkChannel(r.Channel)
		if err != nil {
			return nil, err
		}
		program, err := voiceToProgram(r.Voices)
		if err != nil {
			return nil, err
		}
		return midi.ProgramChange(ch, program), nil

	case *mtxt.OutputTempo:
		return tempoMeta(r.BPM), nil

	case *mtxt.OutputTimeSignature:
		denPow := byte(bits.Len16(r.Signature.Denominator) - 1)
		return []byte{0xFF, 0x58, 0x04, r.Signature.Numerator, denPow, 24, 8}, nil

	case *mtxt.OutputGlobalMeta:
		return metaTextMessage(r.MetaType, r.Value), nil

	case *mtxt.OutputChannelMeta:
		return metaTextMessage(r.MetaType, r.Value), nil

	case *mtxt.OutputSysEx:
		return midi.SysEx(r.Data), nil

	case *mtxt.OutputReset, *mtxt.OutputBeat:
		// No direct MIDI equivalent.
		return nil, nil
	}

	return nil, nil
}

func metaTextMessage(metaType, value string) []byte {
	typ, ok := metaTypeBytes[metaType]
	if !ok {
		typ = 0x01
	}
	return textMeta(typ, unescapeMeta(value))
}

func outputRecordsToSMF(records []mtxt.OutputRecord) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(outputPPQN)

	var track smf.Track

	currentBPM := 120.0
	var lastMicros uint64
	var accumulatedDelta uint64

	for _, record := range records {
		timeMicros := record.TimeMicros()
		var deltaMicros uint64
		if timeMicros > lastMicros {
			deltaMicros = timeMicros - lastMicros
		}
		lastMicros = timeMicros

		microsPerBeat := 60_000_000.0 / currentBPM
		deltaBeats := float64(deltaMicros) / microsPerBeat
		deltaTick := accumulatedDelta + uint64(math.Round(deltaBeats*outputPPQN))

		for deltaTick > maxDelta {
			track.Add(maxDelta, textMeta(0x01, "long delta"))
			deltaTick -= maxDelta
		}

		// The new tempo applies from this event onwards; its own delta
		// still runs at the previous tempo.
		if tempo, ok := record.(*mtxt.OutputTempo); ok {
			currentBPM = tempo.BPM
		}

		msg, err := recordToTrackMessage(record)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			track.Add(uint32(deltaTick), msg)
			accumulatedDelta = 0
		} else {
			accumulatedDelta = deltaTick
		}
	}

	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}
