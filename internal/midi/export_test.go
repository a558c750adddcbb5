package midi

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/daiw/music-brain/internal/arrangement"
)

func testArrangement(t *testing.T) *arrangement.GeneratedArrangement {
	t.Helper()
	arr, err := arrangement.NewGenerator().Generate(arrangement.GenerateRequest{
		Title: "Export Test",
		Genre: "pop",
		Rand:  rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return arr
}

func TestBuildSMFTracks(t *testing.T) {
	arr := testArrangement(t)

	s, err := buildSMF(arr, DefaultOptions())
	require.NoError(t, err)

	// Meta, chords, bass.
	assert.EqualValues(t, 3, s.NumTracks())
	assert.Equal(t, smf.MetricTicks(ticksPerBeat), s.TimeFormat)
}

func TestBuildSMFWithoutBass(t *testing.T) {
	arr := testArrangement(t)

	s, err := buildSMF(arr, Options{IncludeBass: false, IncludeMarkers: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.NumTracks())
}

func TestBuildSMFNilArrangement(t *testing.T) {
	_, err := buildSMF(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrExport)
}

func TestExportArrangementWritesFile(t *testing.T) {
	arr := testArrangement(t)
	path := filepath.Join(t.TempDir(), "song.mid")

	require.NoError(t, ExportArrangement(arr, path, DefaultOptions()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// The file reads back as a valid SMF.
	loaded, err := smf.ReadFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, 3, loaded.NumTracks())
}

func TestExportBassLine(t *testing.T) {
	line := arrangement.GenerateBassLine(
		[]arrangement.Chord{{Symbol: "C", Bars: 2}, {Symbol: "G", Bars: 2}},
		arrangement.BassLineOptions{Rand: rand.New(rand.NewSource(2))},
	)
	path := filepath.Join(t.TempDir(), "bass.mid")

	require.NoError(t, ExportBassLine(line, path, 120))

	loaded, err := smf.ReadFile(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loaded.NumTracks())
}

func TestEventListOrdering(t *testing.T) {
	var events eventList
	// Two notes back to back; the first note's off must precede the second
	// note's on at the shared tick.
	events.addNote(0, 60, 80, 0, 1)
	events.addNote(0, 62, 80, 1, 1)

	tr := events.track("Test")
	require.NotEmpty(t, tr)

	// Track name + 4 note events + end of track.
	assert.Len(t, tr, 6)
}
