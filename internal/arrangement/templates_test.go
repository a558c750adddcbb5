package arrangement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGenreTemplate(t *testing.T) {
	tests := []struct {
		name      string
		genre     string
		wantGenre string
		wantErr   bool
	}{
		{name: "exact match", genre: "pop", wantGenre: "pop"},
		{name: "case insensitive", genre: "Jazz", wantGenre: "jazz"},
		{name: "separator insensitive", genre: "Lo-Fi", wantGenre: "lofi"},
		{name: "alias trap", genre: "trap", wantGenre: "hiphop"},
		{name: "alias bedroom", genre: "bedroom", wantGenre: "lofi"},
		{name: "alias country", genre: "country", wantGenre: "folk"},
		{name: "alias electronic", genre: "electronic", wantGenre: "edm"},
		{name: "unknown genre", genre: "xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := GetGenreTemplate(tt.genre)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownGenre)
				assert.Contains(t, err.Error(), "pop")
				assert.Contains(t, err.Error(), "jazz")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantGenre, tmpl.Genre)
			assert.NotEmpty(t, tmpl.Sections)
		})
	}
}

func TestGenreTemplateTotalBars(t *testing.T) {
	for _, genre := range GenreNames() {
		tmpl, err := GetGenreTemplate(genre)
		require.NoError(t, err)

		sum := 0
		for _, s := range tmpl.Sections {
			sum += s.Bars
		}
		assert.Equal(t, sum, tmpl.TotalBars, "genre %s", genre)
	}
}

func TestPopTemplateStructure(t *testing.T) {
	tmpl, err := GetGenreTemplate("pop")
	require.NoError(t, err)

	assert.Equal(t, 64, tmpl.TotalBars)
	assert.Len(t, tmpl.Sections, 10)
	assert.Equal(t, SectionIntro, tmpl.Sections[0].Type)
	assert.Equal(t, SectionOutro, tmpl.Sections[len(tmpl.Sections)-1].Type)
}

func TestSectionFactoryDefaults(t *testing.T) {
	verse := NewVerse(0, -1, nil)
	assert.Equal(t, 8, verse.Bars)
	assert.Equal(t, 0.5, verse.Energy)
	assert.NotEmpty(t, verse.Instruments)

	custom := NewVerse(16, 0.8, []string{"piano"})
	assert.Equal(t, 16, custom.Bars)
	assert.Equal(t, 0.8, custom.Energy)
	assert.Equal(t, []string{"piano"}, custom.Instruments)
}

func TestSectionAtBar(t *testing.T) {
	tmpl, err := GetGenreTemplate("pop")
	require.NoError(t, err)

	first := tmpl.SectionAtBar(0)
	require.NotNil(t, first)
	assert.Equal(t, SectionIntro, first.Type)

	// Bar 4 is the first bar of the verse after the 4-bar intro.
	second := tmpl.SectionAtBar(4)
	require.NotNil(t, second)
	assert.Equal(t, SectionVerse, second.Type)

	assert.Nil(t, tmpl.SectionAtBar(tmpl.TotalBars))
	assert.Equal(t, 0.5, tmpl.EnergyAtBar(tmpl.TotalBars))
}

func TestCreateCustomArrangement(t *testing.T) {
	tmpl := CreateCustomArrangement([]SectionSpec{
		{Type: "intro", Bars: 2, Energy: 0.2},
		{Type: "mystery", Bars: 8, Energy: 0.6},
		{Type: "drop", Bars: 16},
	}, "My Track", "edm", [2]int{})

	require.Len(t, tmpl.Sections, 3)
	assert.Equal(t, SectionIntro, tmpl.Sections[0].Type)
	assert.Equal(t, SectionVerse, tmpl.Sections[1].Type, "unknown type falls back to verse")
	assert.Equal(t, SectionDrop, tmpl.Sections[2].Type)
	assert.Equal(t, 0.5, tmpl.Sections[2].Energy, "zero energy defaults to 0.5")
	assert.Equal(t, 26, tmpl.TotalBars)
	assert.Equal(t, "My Track", tmpl.Name)
}
