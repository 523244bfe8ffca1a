package midiconv

// Drum is one General MIDI percussion sound on channel 9.
type Drum struct {
	Number uint8
	Slug   string
	Name   string
}

// Drums is the General MIDI percussion table (keys 35-81).
var Drums = []Drum{
	{35, "kick2", "Acoustic Bass Drum"},
	{36, "kick", "Bass Drum 1"},
	{37, "sidestick", "Side Stick"},
	{38, "snare", "Acoustic Snare"},
	{39, "clap", "Hand Clap"},
	{40, "snare2", "Electric Snare"},
	{41, "tom_low2", "Low Floor Tom"},
	{42, "hihat_closed", "Closed Hi Hat"},
	{43, "tom_low", "High Floor Tom"},
	{44, "hihat_pedal", "Pedal Hi-Hat"},
	{45, "tom_mid2", "Low Tom"},
	{46, "hihat_open", "Open Hi-Hat"},
	{47, "tom_mid", "Low-Mid Tom"},
	{48, "tom_high2", "Hi-Mid Tom"},
	{49, "crash", "Crash Cymbal 1"},
	{50, "tom_high", "High Tom"},
	{51, "ride", "Ride Cymbal 1"},
	{52, "china", "Chinese Cymbal"},
	{53, "ride_bell", "Ride Bell"},
	{54, "tambourine", "Tambourine"},
	{55, "splash", "Splash Cymbal"},
	{56, "cowbell", "Cowbell"},
	{57, "crash2", "Crash Cymbal 2"},
	{58, "vibraslap", "Vibraslap"},
	{59, "ride2", "Ride Cymbal 2"},
	{60, "bongo_high", "Hi Bongo"},
	{61, "bongo_low", "Low Bongo"},
	{62, "conga_mute", "Mute Hi Conga"},
	{63, "conga_high", "Open Hi Conga"},
	{64, "conga_low", "Low Conga"},
	{65, "timbale_high", "High Timbale"},
	{66, "timbale_low", "Low Timbale"},
	{67, "agogo_high", "High Agogo"},
	{68, "agogo_low", "Low Agogo"},
	{69, "cabasa", "Cabasa"},
	{70, "maracas", "Maracas"},
	{71, "whistle_short", "Short Whistle"},
	{72, "whistle_long", "Long Whistle"},
	{73, "guiro_short", "Short Guiro"},
	{74, "guiro_long", "Long Guiro"},
	{75, "claves", "Claves"},
	{76, "woodblock_high", "Hi Wood Block"},
	{77, "woodblock_low", "Low Wood Block"},
	{78, "cuica_mute", "Mute Cuica"},
	{79, "cuica_open", "Open Cuica"},
	{80, "triangle_mute", "Mute Triangle"},
	{81, "triangle_open", "Open Triangle"},
}

var drumsByNumber = func() map[uint8]Drum {
	m := make(map[uint8]Drum, len(Drums))
	for _, d := range Drums {
		m[d.Number] = d
	}
	return m
}()

// DrumByNumber looks up a percussion sound by MIDI key.
func DrumByNumber(number uint8) (Drum, bool) {
	d, ok := drumsByNumber[number]
	return d, ok
}
