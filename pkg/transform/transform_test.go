package transform

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/james-see/mtxt/pkg/mtxt"
)

// assertTransform parses the input, runs the transform, and compares the
// formatted result against the formatted parse of the expected text.
func assertTransform(t *testing.T, input string, fn func([]mtxt.Line) []mtxt.Line, expected string) {
	t.Helper()
	in, err := mtxt.Parse(input)
	require.NoError(t, err, "failed to parse input")
	exp, err := mtxt.Parse(expected)
	require.NoError(t, err, "failed to parse expected")

	got := mtxt.FileFromRecords(fn(in.Records))
	require.Equal(t, exp.String(), got.String())
}

func TestApplyDirectives(t *testing.T) {
	input := `mtxt 1.0
ch=1
vel=0.8
dur=1
1.0 note C4
2.0 note E4 dur=2
3.0 note G4 vel=0.5
ch=2
4.0 note C5
transition_curve=0.5
5.0 cc volume 1.0
`
	expected := `mtxt 1.0
1.0 note C4 dur=1 vel=0.8 ch=1
2.0 note E4 dur=2 vel=0.8 ch=1
3.0 note G4 dur=1 vel=0.5 ch=1
4.0 note C5 dur=1 vel=0.8 ch=2
5.0 cc volume 1 transition_curve=0.5
`
	assertTransform(t, input, Apply, expected)
}

func TestExtractDirectives(t *testing.T) {
	input := `mtxt 1.0
1.0 note C4 ch=1
2.0 note E4 ch=1
3.0 note G4 ch=1

4.0 note C5 ch=2
5.0 note E5 ch=2
6.0 note G5 ch=2
7.0 note C6 ch=3
8.0 note G5 ch=1
9.0 note G5 ch=2
`
	expected := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
3.0 note G4

ch=2
4.0 note C5
5.0 note E5
6.0 note G5
7.0 note C6 ch=3
8.0 note G5 ch=1
9.0 note G5
`
	assertTransform(t, input, Extract, expected)
}

func TestExtractDirectivesMixed(t *testing.T) {
	input := `mtxt 1.0
1.0 note C4 ch=1 vel=0.5
2.0 note E4 ch=1 vel=0.5
2.5 tempo 120
// comment
3.0 note G4 ch=1 vel=0.5
`
	expected := `mtxt 1.0
ch=1
vel=0.5
1.0 note C4
2.0 note E4
2.5 tempo 120
// comment
3.0 note G4
`
	assertTransform(t, input, Extract, expected)
}

func TestExtractDirectivesInterrupted(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4 ch=1
2.0 note E4
3.0 note G4 ch=1
4.0 note C5 ch=2
`
	expected := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
3.0 note G4
4.0 note C5 ch=2
`
	assertTransform(t, input, Extract, expected)
}

func TestExtractIgnoresCCForChannel(t *testing.T) {
	input := `mtxt 1.0
1.0 cc volume 1 ch=1
1.0 note C4 ch=1
2.0 cc volume 0.9 ch=2
3.0 note E4 ch=1
3.5 cc volume 0.8
4.0 note G4 ch=1
`
	expected := `mtxt 1.0
1.0 cc volume 1 ch=1
ch=1
1.0 note C4
2.0 cc volume 0.9 ch=2
3.0 note E4
3.5 cc volume 0.8
4.0 note G4
`
	assertTransform(t, input, Extract, expected)
}

func TestApplyExtractIdentity(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4 vel=0.5
2.0 note E4 vel=0.5
3.0 note G4 vel=0.5
4.0 note C5 ch=2
`
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	applied := Apply(in.Records)
	roundTripped := Apply(Extract(applied))
	require.Equal(t,
		mtxt.FileFromRecords(applied).String(),
		mtxt.FileFromRecords(roundTripped).String(),
	)
}

func TestIncludeChannels(t *testing.T) {
	input := `mtxt 1.0
ch=1
0.0 voice piano
0.0 voice ch=3 trombone
1.0 note C4 dur=1 ch=1
2.0 note E4 dur=1 ch=2
3.0 note G4 dur=1
4.0 note F5 dur=1 ch=3
4.0 cc volume 1
ch=5
5.0 note A5 dur=1
5.0 cc C4 volume 0.5 ch=1
6.0 cc E4 volume 0.5 ch=2
7.0 cc G4 volume 0.5
`
	expected := `mtxt 1.0
0.0 voice ch=3 trombone
4.0 note F5 dur=1 ch=3
4.0 cc volume 1
ch=5
5.0 note A5 dur=1
7.0 cc G4 volume 0.5
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Include(r, map[uint16]bool{3: true, 5: true})
	}, expected)
}

func TestExcludeChannels(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4 ch=2
3.0 note G4 ch=3
3.0 cc volume 1
4.0 cc volume 0.5 ch=2
`
	expected := `mtxt 1.0
ch=1
1.0 note C4
3.0 note G4 ch=3
3.0 cc volume 1
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Exclude(r, map[uint16]bool{2: true})
	}, expected)
}

func TestTransposeRecords(t *testing.T) {
	input := `mtxt 1.0
alias Cmaj C4, E4, G4
1.0 note C4+2 dur=1
2.0 note Cmaj dur=2
3.0 cc C2 volume 0.5
`
	expected := `mtxt 1.0
alias Cmaj B2, Eb3, F#3
1.0 note B2+2 dur=1
2.0 note Cmaj dur=2
3.0 cc B0 volume 0.5
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Transpose(r, -13)
	}, expected)
}

func TestTransposeZeroIsIdentity(t *testing.T) {
	input := `mtxt 1.0
alias Cmaj C4, E4, G4
1.0 note Cmaj
2.0 note E4
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Transpose(r, 0)
	}, input)
}

func TestTransposeAdditivity(t *testing.T) {
	input := `mtxt 1.0
alias Cmaj C4, E4, G4
1.0 note C4
2.0 note Cmaj
`
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	ab := Transpose(Transpose(in.Records, 5), -18)
	direct := Transpose(in.Records, -13)
	require.Equal(t,
		mtxt.FileFromRecords(direct).String(),
		mtxt.FileFromRecords(ab).String(),
	)
}

func TestOffsetPositive(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
`
	expected := `mtxt 1.0
ch=1
2.5 note C4
3.5 note E4
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Offset(r, 1.5)
	}, expected)
}

func TestOffsetNegative(t *testing.T) {
	input := `mtxt 1.0
ch=1
2.0 note C4
3.0 note E4
`
	expected := `mtxt 1.0
ch=1
1.5 note C4
2.5 note E4
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Offset(r, -0.5)
	}, expected)
}

func TestOffsetNegativeDropsEarlyRecords(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
3.0 note G4
`
	expected := `mtxt 1.0
ch=1
0.5 note E4
1.5 note G4
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Offset(r, -1.5)
	}, expected)
}

func TestOffsetCancellation(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
`
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	back := Offset(Offset(in.Records, 2.5), -2.5)
	require.Equal(t, in.String(), mtxt.FileFromRecords(back).String())
}

func TestMergeNotes(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 on C4 vel=0.5
2.0 off C4 offvel=0.8
`
	expected := `mtxt 1.0
ch=1
1.0 note C4 dur=1.0 vel=0.5 offvel=0.8
`
	assertTransform(t, input, Merge, expected)
}

func TestMergeNotesInterleaved(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 on C4
1.5 on E4
2.0 off C4
3.5 off E4
`
	expected := `mtxt 1.0
ch=1
1.0 note C4 dur=1.0
1.5 note E4 dur=2.0
`
	assertTransform(t, input, Merge, expected)
}

func TestMergeChannelHandling(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 on C4
ch=2
1.0 on C4
2.0 off C4
ch=1
3.0 off C4
`
	expected := `mtxt 1.0
ch=1
1.0 note C4 dur=2.0
ch=2
1.0 note C4 dur=1.0
ch=1
`
	assertTransform(t, input, Merge, expected)
}

func TestMergeUnmatched(t *testing.T) {
	for _, input := range []string{
		"mtxt 1.0\n1.0 on C4\n",
		"mtxt 1.0\n1.0 off C4\n",
	} {
		assertTransform(t, input, Merge, input)
	}
}

func TestQuantizeGrid(t *testing.T) {
	input := `mtxt 1.0
1.01 note C4
2.02 note E4
3.99 note G4
`
	expected := `mtxt 1.0
1.0 note C4
2.0 note E4
4.0 note G4
`
	assertTransform(t, input, func(r []mtxt.Line) []mtxt.Line {
		return Quantize(r, 4, 0.0, 0.0, nil)
	}, expected)
}

func TestQuantizeIdempotent(t *testing.T) {
	input := `mtxt 1.0
1.01 note C4
2.26 note E4
`
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	once := Quantize(in.Records, 4, 0.5, 0.0, nil)
	twice := Quantize(once, 4, 0.5, 0.0, nil)
	require.Equal(t,
		mtxt.FileFromRecords(once).String(),
		mtxt.FileFromRecords(twice).String(),
	)
}

func TestQuantizeHumanizeSeeded(t *testing.T) {
	input := `mtxt 1.0
1.0 note C4
2.0 note E4
`
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	a := Quantize(in.Records, 4, 0.0, 1.0, rand.New(rand.NewSource(7)))
	b := Quantize(in.Records, 4, 0.0, 1.0, rand.New(rand.NewSource(7)))
	require.Equal(t,
		mtxt.FileFromRecords(a).String(),
		mtxt.FileFromRecords(b).String(),
	)
}

func TestSortByTime(t *testing.T) {
	input := `mtxt 1.0
ch=1
2.0 note C4
1.0 note E4
3.0 note G4
ch=2
5.0 note C5
4.0 note E5
// comment
7.0 note G5
6.0 note C6
`
	expected := `mtxt 1.0
ch=1
1.0 note E4
2.0 note C4
3.0 note G4
ch=2
4.0 note E5
5.0 note C5
// comment
6.0 note C6
7.0 note G5
`
	assertTransform(t, input, Sort, expected)
}

func TestSortStability(t *testing.T) {
	input := `mtxt 1.0
1.0 note C4
1.0 note E4
1.0 note G4
`
	assertTransform(t, input, Sort, input)
}

func TestGroupChannels(t *testing.T) {
	input := `mtxt 1.0
1.0 note C4 ch=1
1.5 note C4 ch=2
3.0 note G4 ch=1
2.5 note E4 ch=2
3.5 note G4 ch=2
2.0 note E4 ch=1
`
	expected := `mtxt 1.0
ch=1
1.0 note C4
2.0 note E4
3.0 note G4
ch=2
1.5 note C4
2.5 note E4
3.5 note G4
`
	assertTransform(t, input, Group, expected)
}

func TestGroupChannelsWithGlobals(t *testing.T) {
	input := `mtxt 1.0
0.5 tempo 120
ch=1
1.0 on C4
ch=2
1.5 note D4
1.5 note H4
3.0 note F4 ch=1
ch=1
2.0 note E4
1.0 note G4 ch=3
`
	expected := `mtxt 1.0
0.5 tempo 120
ch=1
1.0 on C4
2.0 note E4
3.0 note F4
1.5 note D4 ch=2
1.5 note H4 ch=2
1.0 note G4 ch=3
`
	assertTransform(t, input, Group, expected)
}

func TestPipelineOrder(t *testing.T) {
	input := `mtxt 1.0
ch=1
1.0 on C4 vel=0.5
2.0 off C4
2.02 on E4 vel=0.5
3.0 off E4
`
	desc := &Descriptor{
		MergeNotes:   true,
		QuantizeGrid: 4,
		SortByTime:   true,
	}
	in, err := mtxt.Parse(input)
	require.NoError(t, err)

	got := mtxt.FileFromRecords(ApplyAll(in.Records, desc)).String()
	// Merge runs before quantize, so the second duration keeps the raw
	// 0.98-beat length even though its onset snaps to the grid.
	expected := `mtxt 1.0
ch=1
1.0 note C4 dur=1.0 vel=0.5
2.0 note E4 dur=0.98 vel=0.5
`
	exp, err := mtxt.Parse(expected)
	require.NoError(t, err)
	require.Equal(t, exp.String(), got)
}
