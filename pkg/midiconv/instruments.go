package midiconv

import "strings"

// Instrument is one General MIDI program: the short mtxt voice name and
// the official GM name.
type Instrument struct {
	Program  uint8
	MtxtName string
	GMName   string
}

// Instruments is the General MIDI program table, indexed by program
// number.
var Instruments = []Instrument{
	{0, "piano", "Acoustic Grand Piano"},
	{1, "bright_piano", "Bright Acoustic Piano"},
	{2, "electric_grand", "Electric Grand Piano"},
	{3, "honky_tonk", "Honky-tonk Piano"},
	{4, "electric_piano1", "Electric Piano 1"},
	{5, "electric_piano2", "Electric Piano 2"},
	{6, "harpsichord", "Harpsichord"},
	{7, "clavinet", "Clavinet"},
	{8, "celesta", "Celesta"},
	{9, "glockenspiel", "Glockenspiel"},
	{10, "music_box", "Music Box"},
	{11, "vibraphone", "Vibraphone"},
	{12, "marimba", "Marimba"},
	{13, "xylophone", "Xylophone"},
	{14, "tubular_bells", "Tubular Bells"},
	{15, "dulcimer", "Dulcimer"},
	{16, "drawbar_organ", "Drawbar Organ"},
	{17, "percussive_organ", "Percussive Organ"},
	{18, "rock_organ", "Rock Organ"},
	{19, "church_organ", "Church Organ"},
	{20, "reed_organ", "Reed Organ"},
	{21, "accordion", "Accordion"},
	{22, "harmonica", "Harmonica"},
	{23, "tango_accordion", "Tango Accordion"},
	{24, "nylon_guitar", "Acoustic Guitar (nylon)"},
	{25, "steel_guitar", "Acoustic Guitar (steel)"},
	{26, "jazz_guitar", "Electric Guitar (jazz)"},
	{27, "clean_guitar", "Electric Guitar (clean)"},
	{28, "muted_guitar", "Electric Guitar (muted)"},
	{29, "overdriven_guitar", "Overdriven Guitar"},
	{30, "distortion_guitar", "Distortion Guitar"},
	{31, "guitar_harmonics", "Guitar Harmonics"},
	{32, "acoustic_bass", "Acoustic Bass"},
	{33, "finger_bass", "Electric Bass (finger)"},
	{34, "pick_bass", "Electric Bass (pick)"},
	{35, "fretless_bass", "Fretless Bass"},
	{36, "slap_bass1", "Slap Bass 1"},
	{37, "slap_bass2", "Slap Bass 2"},
	{38, "synth_bass1", "Synth Bass 1"},
	{39, "synth_bass2", "Synth Bass 2"},
	{40, "violin", "Violin"},
	{41, "viola", "Viola"},
	{42, "cello", "Cello"},
	{43, "contrabass", "Contrabass"},
	{44, "tremolo_strings", "Tremolo Strings"},
	{45, "pizzicato_strings", "Pizzicato Strings"},
	{46, "harp", "Orchestral Harp"},
	{47, "timpani", "Timpani"},
	{48, "strings1", "String Ensemble 1"},
	{49, "strings2", "String Ensemble 2"},
	{50, "synth_strings1", "Synth Strings 1"},
	{51, "synth_strings2", "Synth Strings 2"},
	{52, "choir_aahs", "Choir Aahs"},
	{53, "voice_oohs", "Voice Oohs"},
	{54, "synth_voice", "Synth Voice"},
	{55, "orchestra_hit", "Orchestra Hit"},
	{56, "trumpet", "Trumpet"},
	{57, "trombone", "Trombone"},
	{58, "tuba", "Tuba"},
	{59, "muted_trumpet", "Muted Trumpet"},
	{60, "french_horn", "French Horn"},
	{61, "brass_section", "Brass Section"},
	{62, "synth_brass1", "Synth Brass 1"},
	{63, "synth_brass2", "Synth Brass 2"},
	{64, "soprano_sax", "Soprano Sax"},
	{65, "alto_sax", "Alto Sax"},
	{66, "tenor_sax", "Tenor Sax"},
	{67, "baritone_sax", "Baritone Sax"},
	{68, "oboe", "Oboe"},
	{69, "english_horn", "English Horn"},
	{70, "bassoon", "Bassoon"},
	{71, "clarinet", "Clarinet"},
	{72, "piccolo", "Piccolo"},
	{73, "flute", "Flute"},
	{74, "recorder", "Recorder"},
	{75, "pan_flute", "Pan Flute"},
	{76, "blown_bottle", "Blown Bottle"},
	{77, "shakuhachi", "Shakuhachi"},
	{78, "whistle", "Whistle"},
	{79, "ocarina", "Ocarina"},
	{80, "square_lead", "Lead 1 (square)"},
	{81, "saw_lead", "Lead 2 (sawtooth)"},
	{82, "calliope_lead", "Lead 3 (calliope)"},
	{83, "chiff_lead", "Lead 4 (chiff)"},
	{84, "charang_lead", "Lead 5 (charang)"},
	{85, "voice_lead", "Lead 6 (voice)"},
	{86, "fifths_lead", "Lead 7 (fifths)"},
	{87, "bass_lead", "Lead 8 (bass + lead)"},
	{88, "new_age_pad", "Pad 1 (new age)"},
	{89, "warm_pad", "Pad 2 (warm)"},
	{90, "polysynth_pad", "Pad 3 (polysynth)"},
	{91, "choir_pad", "Pad 4 (choir)"},
	{92, "bowed_pad", "Pad 5 (bowed)"},
	{93, "metallic_pad", "Pad 6 (metallic)"},
	{94, "halo_pad", "Pad 7 (halo)"},
	{95, "sweep_pad", "Pad 8 (sweep)"},
	{96, "rain_fx", "FX 1 (rain)"},
	{97, "soundtrack_fx", "FX 2 (soundtrack)"},
	{98, "crystal_fx", "FX 3 (crystal)"},
	{99, "atmosphere_fx", "FX 4 (atmosphere)"},
	{100, "brightness_fx", "FX 5 (brightness)"},
	{101, "goblins_fx", "FX 6 (goblins)"},
	{102, "echoes_fx", "FX 7 (echoes)"},
	{103, "scifi_fx", "FX 8 (sci-fi)"},
	{104, "sitar", "Sitar"},
	{105, "banjo", "Banjo"},
	{106, "shamisen", "Shamisen"},
	{107, "koto", "Koto"},
	{108, "kalimba", "Kalimba"},
	{109, "bagpipe", "Bag Pipe"},
	{110, "fiddle", "Fiddle"},
	{111, "shanai", "Shanai"},
	{112, "tinkle_bell", "Tinkle Bell"},
	{113, "agogo", "Agogo"},
	{114, "steel_drums", "Steel Drums"},
	{115, "woodblock", "Woodblock"},
	{116, "taiko_drum", "Taiko Drum"},
	{117, "melodic_tom", "Melodic Tom"},
	{118, "synth_drum", "Synth Drum"},
	{119, "reverse_cymbal", "Reverse Cymbal"},
	{120, "guitar_fret_noise", "Guitar Fret Noise"},
	{121, "breath_noise", "Breath Noise"},
	{122, "seashore", "Seashore"},
	{123, "bird_tweet", "Bird Tweet"},
	{124, "telephone_ring", "Telephone Ring"},
	{125, "helicopter", "Helicopter"},
	{126, "applause", "Applause"},
	{127, "gunshot", "Gunshot"},
}

// InstrumentByName looks an instrument up by mtxt or GM name,
// case-insensitively.
func InstrumentByName(name string) (Instrument, bool) {
	lower := strings.ToLower(name)
	for _, instr := range Instruments {
		if strings.ToLower(instr.MtxtName) == lower || strings.ToLower(instr.GMName) == lower {
			return instr, true
		}
	}
	return Instrument{}, false
}
