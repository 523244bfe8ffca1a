package mtxt

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClass is one of the twelve semitones of the octave.
type PitchClass int

// Pitch classes in semitone order. Display uses the customary mixed
// spelling (sharps for C#/F#, flats for Eb/Ab/Bb).
const (
	PitchC PitchClass = iota
	PitchCSharp
	PitchD
	PitchEFlat
	PitchE
	PitchF
	PitchFSharp
	PitchG
	PitchAFlat
	PitchA
	PitchBFlat
	PitchB
)

var pitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

var pitchSpellings = map[string]PitchClass{
	"C": PitchC, "C#": PitchCSharp, "Db": PitchCSharp,
	"D": PitchD, "D#": PitchEFlat, "Eb": PitchEFlat,
	"E": PitchE, "F": PitchF,
	"F#": PitchFSharp, "Gb": PitchFSharp,
	"G": PitchG, "G#": PitchAFlat, "Ab": PitchAFlat,
	"A": PitchA, "A#": PitchBFlat, "Bb": PitchBFlat,
	"B": PitchB,
}

// Semitone returns the semitone offset within the octave (C = 0).
func (p PitchClass) Semitone() int {
	return int(p)
}

func (p PitchClass) String() string {
	if p < 0 || int(p) >= len(pitchNames) {
		return "?"
	}
	return pitchNames[p]
}

// ParsePitchClass parses a pitch class name, accepting both sharp and flat
// spellings.
func ParsePitchClass(s string) (PitchClass, error) {
	if p, ok := pitchSpellings[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("invalid pitch class: %s", s)
}

// Note is a concrete pitch: pitch class, octave and a cents detune.
type Note struct {
	PitchClass PitchClass
	Octave     int
	Cents      float64
}

// MIDIKey returns the MIDI key number for the note, or an error when it
// falls outside 0..127.
func (n Note) MIDIKey() (uint8, error) {
	key := (n.Octave+1)*12 + n.PitchClass.Semitone()
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %s out of MIDI range", n)
	}
	return uint8(key), nil
}

// NoteFromMIDIKey builds a Note from a MIDI key number.
func NoteFromMIDIKey(key uint8) Note {
	return Note{
		PitchClass: PitchClass(int(key) % 12),
		Octave:     int(key)/12 - 1,
	}
}

// Transpose shifts the note by the given number of semitones. Cents carry
// unchanged.
func (n Note) Transpose(semitones int) Note {
	total := (n.Octave+1)*12 + n.PitchClass.Semitone() + semitones
	pc := ((total % 12) + 12) % 12
	octave := (total-pc)/12 - 1
	return Note{PitchClass: PitchClass(pc), Octave: octave, Cents: n.Cents}
}

func (n Note) String() string {
	s := fmt.Sprintf("%s%d", n.PitchClass, n.Octave)
	if n.Cents != 0 {
		if n.Cents > 0 {
			s += "+" + formatFloat(n.Cents)
		} else {
			s += formatFloat(n.Cents)
		}
	}
	return s
}

// ParseNote parses a note literal such as "C4", "Eb3", "C-1" or "B2+2".
// Cents follow the octave with an explicit sign.
func ParseNote(s string) (Note, error) {
	orig := s

	i := 0
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'G') || s[i] == '#' || s[i] == 'b') {
		i++
	}
	pc, err := ParsePitchClass(s[:i])
	if err != nil {
		return Note{}, fmt.Errorf("invalid note: %s", orig)
	}
	s = s[i:]
	if s == "" {
		return Note{}, fmt.Errorf("invalid note: %s", orig)
	}

	// Octave: optional leading minus, then digits.
	j := 0
	if s[0] == '-' {
		j = 1
	}
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	octave, err := strconv.Atoi(s[:j])
	if err != nil {
		return Note{}, fmt.Errorf("invalid note: %s", orig)
	}
	s = s[j:]

	cents := 0.0
	if s != "" {
		if s[0] != '+' && s[0] != '-' {
			return Note{}, fmt.Errorf("invalid note: %s", orig)
		}
		cents, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return Note{}, fmt.Errorf("invalid note: %s", orig)
		}
	}

	return Note{PitchClass: pc, Octave: octave, Cents: cents}, nil
}

// AliasDefinition names a list of notes (a chord or a drum group). It is
// shared by pointer so repeated references compare by identity.
type AliasDefinition struct {
	Name  string
	Notes []Note
}

// NoteTarget is what a note-family event points at: a literal note, a
// textual alias key resolved at process time, or a resolved alias
// definition.
type NoteTarget struct {
	Note  *Note
	Key   string
	Alias *AliasDefinition
}

// NoteTargetOf wraps a literal note.
func NoteTargetOf(n Note) NoteTarget {
	return NoteTarget{Note: &n}
}

// ParseNoteTarget parses a token as a note literal, falling back to an
// alias key for anything that is not a valid note.
func ParseNoteTarget(s string) (NoteTarget, error) {
	if s == "" {
		return NoteTarget{}, fmt.Errorf("empty note")
	}
	if n, err := ParseNote(s); err == nil {
		return NoteTargetOf(n), nil
	}
	return NoteTarget{Key: s}, nil
}

func (t NoteTarget) String() string {
	switch {
	case t.Note != nil:
		return t.Note.String()
	case t.Alias != nil:
		return t.Alias.Name
	default:
		return t.Key
	}
}

// TimeSignature is a numerator/denominator meter.
type TimeSignature struct {
	Numerator   uint8
	Denominator uint16
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// ParseTimeSignature parses "num/den".
func ParseTimeSignature(s string) (TimeSignature, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %s", s)
	}
	n, err := strconv.ParseUint(num, 10, 8)
	if err != nil {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %s", s)
	}
	d, err := strconv.ParseUint(den, 10, 16)
	if err != nil || d == 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %s", s)
	}
	return TimeSignature{Numerator: uint8(n), Denominator: uint16(d)}, nil
}

// Version is the MTXT file format version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Supported reports whether this library can read the version.
func (v Version) Supported() bool {
	return v.Major == 1
}

// ParseVersion parses "major.minor".
func ParseVersion(s string) (Version, error) {
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return Version{}, fmt.Errorf("invalid version: %s", s)
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version: %s", s)
	}
	min, err := strconv.Atoi(minor)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version: %s", s)
	}
	return Version{Major: maj, Minor: min}, nil
}

// VoiceList is an ordered list of voice names for a program change.
type VoiceList struct {
	Voices []string
}

// ParseVoiceList splits a comma-separated list of names.
func ParseVoiceList(s string) VoiceList {
	var voices []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			voices = append(voices, part)
		}
	}
	return VoiceList{Voices: voices}
}

func (v VoiceList) String() string {
	if len(v.Voices) == 0 {
		return "silence"
	}
	return strings.Join(v.Voices, ", ")
}
