// Package arrangement generates complete song structures from high-level
// musical intent: section templates, energy arcs, chord assignments and
// bass lines, assembled into a single arrangement document.
package arrangement

import (
	"fmt"
	"sort"
	"strings"
)

// SectionType identifies the structural role of a song section.
type SectionType string

const (
	SectionIntro     SectionType = "intro"
	SectionVerse     SectionType = "verse"
	SectionPreChorus SectionType = "prechorus"
	SectionChorus    SectionType = "chorus"
	SectionBridge    SectionType = "bridge"
	SectionOutro     SectionType = "outro"
	SectionBreakdown SectionType = "breakdown"
	SectionBuildup   SectionType = "buildup"
	SectionDrop      SectionType = "drop"
	SectionSolo      SectionType = "solo"
	SectionInterlude SectionType = "interlude"
	SectionHook      SectionType = "hook"
)

// SectionTemplate describes one reusable song section archetype.
type SectionTemplate struct {
	Type          SectionType `json:"section_type"`
	Bars          int         `json:"bars"`
	Energy        float64     `json:"energy"`
	Instruments   []string    `json:"instruments"`
	Description   string      `json:"description"`
	VelocityRange [2]int      `json:"velocity_range"`
	Density       float64     `json:"density"`
}

// ArrangementTemplate is an ordered sequence of section templates forming a
// full song structure. TotalBars is always the sum of the section bars.
type ArrangementTemplate struct {
	Name        string            `json:"name"`
	Genre       string            `json:"genre"`
	Sections    []SectionTemplate `json:"sections"`
	TempoRange  [2]int            `json:"tempo_range"`
	DefaultKey  string            `json:"default_key"`
	Description string            `json:"description"`
	TotalBars   int               `json:"total_bars"`
}

// NewArrangementTemplate builds a template and computes its total bar count.
func NewArrangementTemplate(name, genre string, sections []SectionTemplate, tempoRange [2]int, description string) ArrangementTemplate {
	total := 0
	for _, s := range sections {
		total += s.Bars
	}
	return ArrangementTemplate{
		Name:        name,
		Genre:       genre,
		Sections:    sections,
		TempoRange:  tempoRange,
		DefaultKey:  "C",
		Description: description,
		TotalBars:   total,
	}
}

// SectionAtBar returns the section containing the given bar, or nil.
func (t *ArrangementTemplate) SectionAtBar(bar int) *SectionTemplate {
	current := 0
	for i := range t.Sections {
		if bar >= current && bar < current+t.Sections[i].Bars {
			return &t.Sections[i]
		}
		current += t.Sections[i].Bars
	}
	return nil
}

// EnergyAtBar returns the nominal energy of the section containing the bar,
// or 0.5 when the bar is outside the template.
func (t *ArrangementTemplate) EnergyAtBar(bar int) float64 {
	if s := t.SectionAtBar(bar); s != nil {
		return s.Energy
	}
	return 0.5
}

// Section factories. Each returns an archetype with documented defaults;
// bars <= 0, a negative energy, or nil instruments select the default.

// NewIntro creates an intro section (defaults: 4 bars, energy 0.3).
func NewIntro(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionIntro, bars, 4, energy, 0.3,
		instruments, []string{"guitar", "ambient"},
		"Opening, sets mood and key", 0.3, [2]int{40, 70})
}

// NewVerse creates a verse section (defaults: 8 bars, energy 0.5).
func NewVerse(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionVerse, bars, 8, energy, 0.5,
		instruments, []string{"guitar", "bass", "drums_light"},
		"Verse - storytelling, builds narrative", 0.5, [2]int{50, 80})
}

// NewPreChorus creates a pre-chorus section (defaults: 4 bars, energy 0.65).
func NewPreChorus(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionPreChorus, bars, 4, energy, 0.65,
		instruments, []string{"guitar", "bass", "drums", "synth_pad"},
		"Builds tension before chorus", 0.6, [2]int{60, 90})
}

// NewChorus creates a chorus section (defaults: 8 bars, energy 0.85).
func NewChorus(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionChorus, bars, 8, energy, 0.85,
		instruments, []string{"guitar", "bass", "drums", "vocals", "synth"},
		"Emotional peak, hook, memorable", 0.8, [2]int{70, 110})
}

// NewBridge creates a bridge section (defaults: 8 bars, energy 0.6).
func NewBridge(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionBridge, bars, 8, energy, 0.6,
		instruments, []string{"piano", "strings", "vocals"},
		"Contrast, new perspective, harmonic departure", 0.5, [2]int{55, 85})
}

// NewOutro creates an outro section (defaults: 4 bars, energy 0.25).
func NewOutro(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionOutro, bars, 4, energy, 0.25,
		instruments, []string{"guitar", "ambient"},
		"Closing, resolution or fade", 0.2, [2]int{30, 60})
}

// NewBreakdown creates a breakdown section (defaults: 4 bars, energy 0.35).
func NewBreakdown(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionBreakdown, bars, 4, energy, 0.35,
		instruments, []string{"drums_minimal", "bass"},
		"Stripped down, breath before buildup", 0.3, [2]int{40, 65})
}

// NewBuildup creates a buildup section (defaults: 4 bars, energy 0.7).
func NewBuildup(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionBuildup, bars, 4, energy, 0.7,
		instruments, []string{"drums", "synth_riser", "fx"},
		"Increasing tension toward drop/chorus", 0.7, [2]int{60, 100})
}

// NewDrop creates a drop section (defaults: 8 bars, energy 0.95).
func NewDrop(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionDrop, bars, 8, energy, 0.95,
		instruments, []string{"bass_heavy", "drums_full", "synth_lead"},
		"Maximum energy release", 0.9, [2]int{80, 127})
}

// NewSolo creates a solo section (defaults: 8 bars, energy 0.75).
func NewSolo(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionSolo, bars, 8, energy, 0.75,
		instruments, []string{"lead_guitar", "bass", "drums"},
		"Instrumental showcase", 0.7, [2]int{65, 105})
}

// NewInterlude creates an interlude section (defaults: 4 bars, energy 0.4).
func NewInterlude(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionInterlude, bars, 4, energy, 0.4,
		instruments, []string{"synth_pad", "guitar"},
		"Atmospheric pause between sections", 0.4, [2]int{45, 75})
}

// NewHook creates a hook section (defaults: 4 bars, energy 0.8).
func NewHook(bars int, energy float64, instruments []string) SectionTemplate {
	return newSection(SectionHook, bars, 4, energy, 0.8,
		instruments, []string{"vocals", "synth", "drums"},
		"Short memorable refrain", 0.7, [2]int{65, 100})
}

func newSection(t SectionType, bars, defaultBars int, energy, defaultEnergy float64, instruments, defaultInstruments []string, description string, density float64, velocityRange [2]int) SectionTemplate {
	if bars <= 0 {
		bars = defaultBars
	}
	if energy < 0 {
		energy = defaultEnergy
	}
	if instruments == nil {
		instruments = defaultInstruments
	}
	return SectionTemplate{
		Type:          t,
		Bars:          bars,
		Energy:        energy,
		Instruments:   instruments,
		Description:   description,
		VelocityRange: velocityRange,
		Density:       density,
	}
}

var sectionFactories = map[SectionType]func(int, float64, []string) SectionTemplate{
	SectionIntro:     NewIntro,
	SectionVerse:     NewVerse,
	SectionPreChorus: NewPreChorus,
	SectionChorus:    NewChorus,
	SectionBridge:    NewBridge,
	SectionOutro:     NewOutro,
	SectionBreakdown: NewBreakdown,
	SectionBuildup:   NewBuildup,
	SectionDrop:      NewDrop,
	SectionSolo:      NewSolo,
	SectionInterlude: NewInterlude,
	SectionHook:      NewHook,
}

var genreTemplates = map[string]ArrangementTemplate{
	"pop": NewArrangementTemplate("Standard Pop", "pop", []SectionTemplate{
		NewIntro(4, 0.3, nil),
		NewVerse(8, 0.5, nil),
		NewPreChorus(4, 0.65, nil),
		NewChorus(8, 0.85, nil),
		NewVerse(8, 0.55, nil),
		NewPreChorus(4, 0.7, nil),
		NewChorus(8, 0.9, nil),
		NewBridge(8, 0.6, nil),
		NewChorus(8, 0.95, nil),
		NewOutro(4, 0.3, nil),
	}, [2]int{100, 130}, "Classic verse-chorus pop structure"),

	"rock": NewArrangementTemplate("Rock Anthem", "rock", []SectionTemplate{
		NewIntro(4, 0.5, []string{"guitar_distorted", "drums"}),
		NewVerse(8, 0.6, []string{"guitar", "bass", "drums"}),
		NewChorus(8, 0.9, []string{"guitar_full", "bass", "drums", "vocals"}),
		NewVerse(8, 0.65, nil),
		NewChorus(8, 0.9, nil),
		NewSolo(8, 0.8, []string{"lead_guitar", "bass", "drums"}),
		NewChorus(8, 0.95, nil),
		NewOutro(8, 0.4, []string{"guitar_feedback"}),
	}, [2]int{110, 140}, "Guitar-driven rock structure with solo"),

	"folk": NewArrangementTemplate("Folk Ballad", "folk", []SectionTemplate{
		NewIntro(4, 0.2, []string{"acoustic_guitar"}),
		NewVerse(8, 0.4, []string{"acoustic_guitar", "vocals"}),
		NewVerse(8, 0.5, []string{"acoustic_guitar", "vocals", "bass"}),
		NewChorus(8, 0.7, []string{"acoustic_guitar", "vocals", "bass", "drums_brushes"}),
		NewVerse(8, 0.5, nil),
		NewChorus(8, 0.75, nil),
		NewBridge(8, 0.5, []string{"piano", "vocals"}),
		NewChorus(8, 0.8, nil),
		NewOutro(8, 0.2, []string{"acoustic_guitar"}),
	}, [2]int{70, 100}, "Intimate folk/acoustic structure"),

	"lofi": NewArrangementTemplate("Lo-Fi Bedroom", "lofi", []SectionTemplate{
		NewIntro(4, 0.25, []string{"guitar_lofi", "vinyl_noise"}),
		NewVerse(8, 0.4, []string{"guitar_lofi", "bass_muted", "drums_lofi"}),
		NewVerse(8, 0.45, []string{"guitar_lofi", "bass", "drums_lofi", "keys"}),
		NewChorus(8, 0.6, []string{"guitar_lofi", "bass", "drums_lofi", "vocals_buried"}),
		NewVerse(8, 0.4, nil),
		NewChorus(8, 0.65, nil),
		NewOutro(8, 0.2, []string{"guitar_lofi", "vinyl_noise"}),
	}, [2]int{70, 95}, "Intimate lo-fi with buried vocals aesthetic"),

	"edm": NewArrangementTemplate("EDM Drop", "edm", []SectionTemplate{
		NewIntro(8, 0.3, []string{"synth_pad", "fx"}),
		NewBuildup(8, 0.5, nil),
		NewBreakdown(4, 0.3, nil),
		NewBuildup(8, 0.75, nil),
		NewDrop(16, 0.95, nil),
		NewBreakdown(8, 0.35, nil),
		NewBuildup(8, 0.8, nil),
		NewDrop(16, 1.0, nil),
		NewOutro(8, 0.3, nil),
	}, [2]int{120, 150}, "Build-drop EDM structure"),

	"jazz": NewArrangementTemplate("Jazz Standard", "jazz", []SectionTemplate{
		NewIntro(4, 0.4, []string{"piano", "bass", "drums_brushes"}),
		NewVerse(8, 0.5, []string{"piano", "bass", "drums"}),
		NewVerse(8, 0.55, nil),
		NewBridge(8, 0.5, []string{"piano", "bass", "drums"}),
		NewVerse(8, 0.5, nil),
		NewSolo(16, 0.65, []string{"piano_solo", "bass", "drums"}),
		NewSolo(16, 0.7, []string{"sax_solo", "piano", "bass", "drums"}),
		NewVerse(8, 0.5, nil),
		NewOutro(4, 0.35, nil),
	}, [2]int{100, 180}, "AABA jazz standard with solos"),

	"hiphop": NewArrangementTemplate("Hip-Hop Beat", "hiphop", []SectionTemplate{
		NewIntro(4, 0.4, []string{"sample", "drums_808"}),
		NewVerse(16, 0.6, []string{"sample", "bass_808", "drums_808", "vocals_rap"}),
		NewChorus(8, 0.75, []string{"sample", "bass_808", "drums_808", "vocals_hook"}),
		NewVerse(16, 0.65, nil),
		NewChorus(8, 0.8, nil),
		NewBridge(8, 0.5, []string{"sample_alt", "bass_808"}),
		NewChorus(8, 0.85, nil),
		NewOutro(4, 0.4, nil),
	}, [2]int{80, 100}, "Hip-hop verse-hook structure"),

	"rnb": NewArrangementTemplate("R&B Slow Jam", "rnb", []SectionTemplate{
		NewIntro(4, 0.3, []string{"keys_rhodes", "strings_pad"}),
		NewVerse(8, 0.45, []string{"keys", "bass", "drums_light", "vocals"}),
		NewPreChorus(4, 0.55, nil),
		NewChorus(8, 0.7, []string{"keys", "bass", "drums", "vocals", "strings"}),
		NewVerse(8, 0.5, nil),
		NewPreChorus(4, 0.6, nil),
		NewChorus(8, 0.75, nil),
		NewBridge(8, 0.55, []string{"keys_solo", "strings"}),
		NewChorus(8, 0.8, nil),
		NewOutro(8, 0.3, []string{"keys_rhodes", "vocals_ad_lib"}),
	}, [2]int{65, 90}, "Smooth R&B with pre-chorus"),

	"indie": NewArrangementTemplate("Indie Rock", "indie", []SectionTemplate{
		NewIntro(8, 0.35, []string{"guitar_clean", "synth_ambient"}),
		NewVerse(8, 0.5, []string{"guitar", "bass", "drums"}),
		NewVerse(8, 0.55, nil),
		NewChorus(8, 0.75, []string{"guitar_full", "bass", "drums", "synth"}),
		NewVerse(8, 0.5, nil),
		NewChorus(8, 0.8, nil),
		NewBridge(8, 0.6, []string{"synth_lead", "drums"}),
		NewChorus(8, 0.85, nil),
		NewChorus(8, 0.7, nil),
		NewOutro(8, 0.25, nil),
	}, [2]int{100, 130}, "Indie rock with atmospheric elements"),
}

var genreAliases = map[string]string{
	"bedroom":     "lofi",
	"lofibeats":   "lofi",
	"electronic":  "edm",
	"dance":       "edm",
	"alternative": "indie",
	"acoustic":    "folk",
	"country":     "folk",
	"soul":        "rnb",
	"trap":        "hiphop",
	"rap":         "hiphop",
}

// GenreNames returns the sorted list of known genre template names.
func GenreNames() []string {
	names := make([]string, 0, len(genreTemplates))
	for name := range genreTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetGenreTemplate looks up the arrangement template for a genre. The name is
// normalized (case and separator insensitive) and resolved through the alias
// table before lookup. Unknown genres return an error listing valid names.
func GetGenreTemplate(genre string) (ArrangementTemplate, error) {
	normalized := strings.ToLower(genre)
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)

	key := normalized
	if alias, ok := genreAliases[normalized]; ok {
		key = alias
	}

	tmpl, ok := genreTemplates[key]
	if !ok {
		return ArrangementTemplate{}, fmt.Errorf("%w %q: available: %s", ErrUnknownGenre, genre, strings.Join(GenreNames(), ", "))
	}
	return tmpl, nil
}

// SectionSpec is a caller-supplied description of one custom section.
type SectionSpec struct {
	Type        string   `json:"type"`
	Bars        int      `json:"bars"`
	Energy      float64  `json:"energy"`
	Instruments []string `json:"instruments,omitempty"`
}

// CreateCustomArrangement builds a template from caller-supplied section
// specs. Unrecognized section types fall back to the verse factory.
func CreateCustomArrangement(sections []SectionSpec, name, genre string, tempoRange [2]int) ArrangementTemplate {
	if name == "" {
		name = "Custom"
	}
	if genre == "" {
		genre = "custom"
	}
	if tempoRange == [2]int{} {
		tempoRange = [2]int{90, 130}
	}

	templates := make([]SectionTemplate, 0, len(sections))
	for _, s := range sections {
		factory, ok := sectionFactories[SectionType(strings.ToLower(s.Type))]
		if !ok {
			factory = NewVerse
		}
		energy := s.Energy
		if energy == 0 {
			energy = 0.5
		}
		templates = append(templates, factory(s.Bars, energy, s.Instruments))
	}

	return NewArrangementTemplate(name, genre, templates, tempoRange, "")
}
