package arrangement

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		chord         string
		wantRoot      int
		wantIntervals []int
	}{
		{"C", 36, []int{0, 4, 7}},
		{"Am", 45, []int{0, 3, 7}},
		{"F#m7", 42, []int{0, 3, 7, 10}},
		{"Bb", 46, []int{0, 4, 7}},
		{"Gmaj7", 43, []int{0, 4, 7, 11}},
		{"Dsus4", 38, []int{0, 5, 7}},
		{"Eadd9", 40, []int{0, 4, 7, 14}},
		{"Bdim", 47, []int{0, 3, 6}},
		{"X", 36, []int{0, 4, 7}},       // unknown root defaults to C
		{"Cweird", 36, []int{0, 4, 7}},  // unknown quality defaults to major
		{" C ", 36, []int{0, 4, 7}},     // whitespace trimmed
	}

	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			root, intervals := ParseChord(tt.chord)
			assert.Equal(t, tt.wantRoot, root)
			assert.Equal(t, tt.wantIntervals, intervals)
		})
	}
}

func TestChordJSON(t *testing.T) {
	data, err := json.Marshal([]Chord{{Symbol: "C", Bars: 2}, {Symbol: "Am", Bars: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["C",2],["Am",2]]`, string(data))

	var chords []Chord
	require.NoError(t, json.Unmarshal(data, &chords))
	assert.Equal(t, []Chord{{Symbol: "C", Bars: 2}, {Symbol: "Am", Bars: 2}}, chords)

	var bad Chord
	assert.Error(t, bad.UnmarshalJSON([]byte(`["C"]`)))
}

func velocityBand(velocity int, energy float64) (int, int) {
	lo := int(float64(velocity) * (0.7 + energy*0.3))
	hi := minInt(127, int(float64(velocity)*(0.9+energy*0.2)))
	return lo, hi
}

func TestGenerateBassPatternRootFifth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	notes := GenerateBassPattern("C", PatternRootFifth, 0, 1, 4, 80, 0.5, rng)
	require.Len(t, notes, 2)

	assert.Equal(t, 36, notes[0].Pitch)
	assert.Equal(t, 0.0, notes[0].StartBeat)
	assert.Equal(t, 2.0, notes[0].Duration)

	assert.Equal(t, 43, notes[1].Pitch)
	assert.Equal(t, 2.0, notes[1].StartBeat)
	assert.Equal(t, 2.0, notes[1].Duration)

	lo, hi := velocityBand(80, 0.5)
	assert.GreaterOrEqual(t, notes[0].Velocity, lo)
	assert.LessOrEqual(t, notes[0].Velocity, hi)
	assert.GreaterOrEqual(t, notes[1].Velocity, lo-5)
	assert.LessOrEqual(t, notes[1].Velocity, hi-5)
}

func TestGenerateBassPatternShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("root holds whole bar", func(t *testing.T) {
		notes := GenerateBassPattern("Am", PatternRoot, 2, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 1)
		assert.Equal(t, 45, notes[0].Pitch)
		assert.Equal(t, 8.0, notes[0].StartBeat)
		assert.Equal(t, 4.0, notes[0].Duration)
	})

	t.Run("octave", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternOctave, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 2)
		assert.Equal(t, 36, notes[0].Pitch)
		assert.Equal(t, 48, notes[1].Pitch)
	})

	t.Run("driving eighths alternate root and fifth", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternDriving, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 8)
		for i, n := range notes {
			assert.Equal(t, float64(i)*0.5, n.StartBeat)
			assert.Equal(t, 0.5, n.Duration)
			if i%2 == 0 {
				assert.Equal(t, 36, n.Pitch)
			} else {
				assert.Equal(t, 43, n.Pitch)
			}
		}
	})

	t.Run("funk hits", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternFunk, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 6)
		wantBeats := []float64{0, 0.75, 1.5, 2.25, 3.0, 3.5}
		for i, n := range notes {
			assert.Equal(t, wantBeats[i], n.StartBeat)
			assert.Equal(t, 0.25, n.Duration)
			assert.Equal(t, 36, n.Pitch)
		}
	})

	t.Run("syncopated", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternSyncopated, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 4)
		assert.Equal(t, 36, notes[0].Pitch)
		for _, n := range notes[1:] {
			assert.Equal(t, 43, n.Pitch)
		}
		assert.Equal(t, []float64{0, 1.5, 2.5, 3.5},
			[]float64{notes[0].StartBeat, notes[1].StartBeat, notes[2].StartBeat, notes[3].StartBeat})
	})

	t.Run("reggae offbeats", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternReggae, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 4)
		for i, n := range notes {
			assert.Equal(t, float64(i)+0.5, n.StartBeat)
			assert.Equal(t, 0.5, n.Duration)
		}
	})

	t.Run("walking scale then approach", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternWalking, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 4)
		assert.Equal(t, 36, notes[0].Pitch)
		assert.Equal(t, 38, notes[1].Pitch)
		assert.Equal(t, 40, notes[2].Pitch)
		assert.Contains(t, []int{42, 44}, notes[3].Pitch)
	})

	t.Run("arpeggiated seventh chord", func(t *testing.T) {
		notes := GenerateBassPattern("Cmaj7", PatternArpeggiated, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 4)
		assert.Equal(t, []int{36, 40, 43, 47},
			[]int{notes[0].Pitch, notes[1].Pitch, notes[2].Pitch, notes[3].Pitch})
	})

	t.Run("pedal plays soft", func(t *testing.T) {
		notes := GenerateBassPattern("C", PatternPedal, 0, 1, 4, 80, 0.5, rng)
		require.Len(t, notes, 1)
		_, hi := velocityBand(80, 0.5)
		assert.LessOrEqual(t, notes[0].Velocity, hi-10)
	})
}

func TestSelectPatternForGenre(t *testing.T) {
	tests := []struct {
		genre   string
		section string
		want    BassPattern
	}{
		{"pop", "verse", PatternRootFifth},
		{"pop", "chorus", PatternOctave},
		{"jazz", "solo", PatternWalking},
		{"edm", "drop", PatternDriving},
		{"funk", "bridge", PatternSyncopated},
		{"reggae", "verse", PatternReggae},
		{"ROCK", "chorus", PatternDriving},
		{"rock", "pre_chorus", PatternRootFifth}, // known genre, unlisted section
		{"pop", "drop", PatternRootFifth},
		// Genre lookup is not alias-normalized: trap uses the generic table.
		{"trap", "breakdown", PatternPedal},
		{"trap", "buildup", PatternSyncopated},
		{"unknown", "verse", PatternRootFifth},
		{"unknown", "mystery", PatternRoot},
	}

	for _, tt := range tests {
		t.Run(tt.genre+"/"+tt.section, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectPatternForGenre(tt.genre, tt.section))
		})
	}
}

func TestGenerateBassLine(t *testing.T) {
	chords := []Chord{{"C", 2}, {"Am", 2}, {"F", 2}, {"G", 2}}
	line := GenerateBassLine(chords, BassLineOptions{
		Genre:       "pop",
		SectionType: "verse",
		Rand:        rand.New(rand.NewSource(3)),
	})

	assert.Equal(t, PatternRootFifth, line.Pattern)
	assert.Equal(t, 8, line.TotalBars)
	assert.Equal(t, 4, line.BeatsPerBar)
	assert.Equal(t, "C", line.Key)
	// Root-fifth yields two notes per bar.
	assert.Len(t, line.Notes, 16)

	// The bar cursor advances through the chords in order.
	assert.Equal(t, 36, line.Notes[0].Pitch)
	inBar4 := line.NotesInBar(4)
	require.NotEmpty(t, inBar4)
	assert.Equal(t, 41, inBar4[0].Pitch) // F root

	for _, n := range line.Notes {
		assert.GreaterOrEqual(t, n.Velocity, 0)
		assert.LessOrEqual(t, n.Velocity, 127)
		assert.Less(t, n.StartBeat, float64(line.TotalBars*line.BeatsPerBar))
	}
}

func TestGenerateBassLineDeterminism(t *testing.T) {
	chords := []Chord{{"Dm", 2}, {"G", 2}, {"C", 2}, {"Am", 2}}
	opts := func() BassLineOptions {
		return BassLineOptions{
			Genre:       "jazz",
			SectionType: "verse",
			Energy:      0.6,
			Rand:        rand.New(rand.NewSource(42)),
		}
	}

	a := GenerateBassLine(chords, opts())
	b := GenerateBassLine(chords, opts())
	assert.Equal(t, a, b)
}

func TestGenerateBassForArrangement(t *testing.T) {
	sections := []SectionPlan{
		{Name: "verse_1", Type: SectionVerse, Bars: 8, Energy: 0.5},
		{Name: "chorus_1", Type: SectionChorus, Bars: 8, Energy: 0.8},
	}
	chords := map[string][]Chord{
		"verse_1": {{"C", 2}, {"Am", 2}, {"F", 2}, {"G", 2}},
	}

	lines := GenerateBassForArrangement(sections, chords, "pop", "C", rand.New(rand.NewSource(1)))
	require.Len(t, lines, 2)

	assert.Equal(t, 8, lines["verse_1"].TotalBars)
	assert.Equal(t, PatternRootFifth, lines["verse_1"].Pattern)

	// Missing chord assignment falls back to a tonic pedal of the full span.
	assert.Equal(t, 8, lines["chorus_1"].TotalBars)
	assert.Equal(t, PatternOctave, lines["chorus_1"].Pattern)
}
