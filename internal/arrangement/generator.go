package arrangement

import (
	"fmt"
	"math/rand"
	"strings"
)

// SectionGenerated is a fully realized section: template, energy, chords and
// bass pattern resolved.
type SectionGenerated struct {
	Name            string      `json:"name"`
	SectionType     SectionType `json:"section_type"`
	Bars            int         `json:"bars"`
	StartBar        int         `json:"start_bar"`
	Energy          float64     `json:"energy"`
	Chords          []Chord     `json:"chords"`
	Instruments     []string    `json:"instruments"`
	BassPattern     BassPattern `json:"bass_pattern"`
	VelocityRange   [2]int      `json:"velocity_range"`
	ProductionNotes string      `json:"production_notes"`
}

// Metadata records the intent an arrangement was generated from.
type Metadata struct {
	Mood          string  `json:"mood"`
	Vulnerability float64 `json:"vulnerability"`
	NarrativeArc  string  `json:"narrative_arc"`
	TemplateName  string  `json:"template_name"`
}

// GeneratedArrangement is a complete arrangement document.
type GeneratedArrangement struct {
	Title            string              `json:"title"`
	Genre            string              `json:"genre"`
	Key              string              `json:"key"`
	Tempo            float64             `json:"tempo"`
	TimeSignature    [2]int              `json:"time_signature"`
	TotalBars        int                 `json:"total_bars"`
	Sections         []SectionGenerated  `json:"sections"`
	EnergyArc        EnergyArc           `json:"energy_arc"`
	BassLines        map[string]BassLine `json:"bass_lines"`
	ProductionNotes  string              `json:"production_notes"`
	ChordProgression []string            `json:"chord_progression"`
	Metadata         Metadata            `json:"metadata"`
}

// SectionAtBar returns the section containing the given bar, or nil.
func (a *GeneratedArrangement) SectionAtBar(bar int) *SectionGenerated {
	for i := range a.Sections {
		s := &a.Sections[i]
		if bar >= s.StartBar && bar < s.StartBar+s.Bars {
			return s
		}
	}
	return nil
}

// Describe renders a human-readable summary of the arrangement.
func (a *GeneratedArrangement) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", a.Title)
	fmt.Fprintf(&b, "Genre: %s | Key: %s | Tempo: %g BPM\n", a.Genre, a.Key, a.Tempo)
	fmt.Fprintf(&b, "Duration: %d bars (%d/%d)\n\n", a.TotalBars, a.TimeSignature[0], a.TimeSignature[1])
	b.WriteString("## Structure\n")

	for _, s := range a.Sections {
		fmt.Fprintf(&b, "- %s (%s): bars %d-%d, energy %.0f%%\n",
			s.Name, s.SectionType, s.StartBar, s.StartBar+s.Bars-1, s.Energy*100)
	}

	b.WriteString("\n## Chord Progression\n")
	b.WriteString(strings.Join(a.ChordProgression, " | "))
	b.WriteString("\n\n## Production Notes\n")
	b.WriteString(a.ProductionNotes)

	return b.String()
}

// Generator creates complete arrangements from intent. Zero-value defaults
// are pop, C, 120 BPM.
type Generator struct {
	DefaultGenre string
	DefaultKey   string
	DefaultTempo float64
}

// NewGenerator returns a generator with the standard defaults.
func NewGenerator() *Generator {
	return &Generator{
		DefaultGenre: "pop",
		DefaultKey:   "C",
		DefaultTempo: 120,
	}
}

// GenerateRequest is the intent an arrangement is generated from. Zero
// values select the generator defaults; Vulnerability nil means 0.5;
// CustomSections, when set, override the genre template.
type GenerateRequest struct {
	Title            string        `json:"title"`
	Genre            string        `json:"genre"`
	Key              string        `json:"key"`
	Tempo            float64       `json:"tempo"`
	ChordProgression []string      `json:"chord_progression,omitempty"`
	Mood             string        `json:"mood"`
	Vulnerability    *float64      `json:"vulnerability,omitempty"`
	NarrativeArc     string        `json:"narrative_arc"`
	TimeSignature    [2]int        `json:"time_signature"`
	CustomSections   []SectionSpec `json:"custom_sections,omitempty"`

	// Rand drives bass-line jitter. Nil uses the process-wide source.
	Rand *rand.Rand `json:"-"`
}

// Generate produces a complete arrangement from a request. The only failure
// mode is an unknown genre with no custom sections; every other input is
// absorbed by defaulting.
func (g *Generator) Generate(req GenerateRequest) (*GeneratedArrangement, error) {
	title := req.Title
	if title == "" {
		title = "Untitled"
	}
	genre := req.Genre
	if genre == "" {
		genre = g.DefaultGenre
	}
	key := req.Key
	if key == "" {
		key = g.DefaultKey
	}
	tempo := req.Tempo
	if tempo == 0 {
		tempo = g.DefaultTempo
	}
	mood := req.Mood
	if mood == "" {
		mood = "neutral"
	}
	vulnerability := 0.5
	if req.Vulnerability != nil {
		vulnerability = *req.Vulnerability
	}
	narrativeArc := req.NarrativeArc
	if narrativeArc == "" {
		narrativeArc = "transformation"
	}
	timeSignature := req.TimeSignature
	if timeSignature == [2]int{} {
		timeSignature = [2]int{4, 4}
	}

	var template ArrangementTemplate
	if len(req.CustomSections) > 0 {
		template = CreateCustomArrangement(req.CustomSections, title, genre, [2]int{})
	} else {
		var err error
		template, err = GetGenreTemplate(genre)
		if err != nil {
			return nil, err
		}
	}

	arcType, journey, climax := SuggestArcForIntent(mood, vulnerability, narrativeArc)

	boundaries := make([]SectionBoundary, 0, len(template.Sections))
	currentBar := 0
	for _, s := range template.Sections {
		boundaries = append(boundaries, SectionBoundary{Bar: currentBar, Name: string(s.Type)})
		currentBar += s.Bars
	}

	arc := GenerateEnergyArc(ArcParams{
		TotalBars:         template.TotalBars,
		ArcType:           arcType,
		EmotionalJourney:  journey,
		ClimaxPosition:    climax,
		SectionBoundaries: boundaries,
	})

	plans := make([]SectionPlan, 0, len(template.Sections))
	for i, s := range template.Sections {
		plans = append(plans, SectionPlan{
			Name: fmt.Sprintf("%s_%d", s.Type, i+1),
			Type: s.Type,
			Bars: s.Bars,
		})
	}
	energized := ApplyEnergyToSections(plans, arc)

	progression := req.ChordProgression
	if len(progression) == 0 {
		progression = DefaultProgression(key, genre)
	}

	sectionChords := AssignChordsToSections(progression, energized, key)

	sections := make([]SectionGenerated, 0, len(template.Sections))
	var fullProgression []string
	seen := make(map[string]bool)
	currentBar = 0

	for i, tmplSection := range template.Sections {
		energySection := energized[i]
		chords, ok := sectionChords[energySection.Name]
		if !ok {
			chords = []Chord{{Symbol: key, Bars: tmplSection.Bars}}
		}

		for _, c := range chords {
			if !seen[c.Symbol] {
				seen[c.Symbol] = true
				fullProgression = append(fullProgression, c.Symbol)
			}
		}

		sections = append(sections, SectionGenerated{
			Name:            energySection.Name,
			SectionType:     tmplSection.Type,
			Bars:            tmplSection.Bars,
			StartBar:        currentBar,
			Energy:          energySection.Energy,
			Chords:          chords,
			Instruments:     tmplSection.Instruments,
			BassPattern:     SelectPatternForGenre(genre, string(tmplSection.Type)),
			VelocityRange:   energySection.VelocityRange,
			ProductionNotes: sectionNotes(tmplSection.Type, energySection.Energy),
		})
		currentBar += tmplSection.Bars
	}

	bassLines := make(map[string]BassLine, len(sections))
	for _, section := range sections {
		bassLines[section.Name] = GenerateBassLine(section.Chords, BassLineOptions{
			Genre:       genre,
			Key:         key,
			SectionType: string(section.SectionType),
			Energy:      section.Energy,
			Rand:        req.Rand,
		})
	}

	return &GeneratedArrangement{
		Title:            title,
		Genre:            genre,
		Key:              key,
		Tempo:            tempo,
		TimeSignature:    timeSignature,
		TotalBars:        template.TotalBars,
		Sections:         sections,
		EnergyArc:        arc,
		BassLines:        bassLines,
		ProductionNotes:  productionNotes(genre, mood, arc, sections),
		ChordProgression: fullProgression,
		Metadata: Metadata{
			Mood:          mood,
			Vulnerability: vulnerability,
			NarrativeArc:  narrativeArc,
			TemplateName:  template.Name,
		},
	}, nil
}

var genreProgressions = map[string][]string{
	"pop":    {"I", "V", "vi", "IV"},
	"rock":   {"I", "IV", "V", "I"},
	"folk":   {"I", "IV", "I", "V"},
	"lofi":   {"ii", "V", "I", "vi"},
	"jazz":   {"ii", "V", "I", "vi"},
	"edm":    {"vi", "IV", "I", "V"},
	"hiphop": {"i", "VI", "III", "VII"},
	"rnb":    {"I", "vi", "IV", "V"},
	"indie":  {"I", "iii", "IV", "V"},
}

var degreeQualities = map[string]string{
	"I": "", "ii": "m", "iii": "m", "IV": "", "V": "", "vi": "m", "vii°": "dim",
	"i": "m", "II": "", "III": "", "iv": "m", "v": "m", "VI": "", "VII": "",
}

var degreeNumbers = map[string]int{
	"I": 0, "i": 0,
	"II": 1, "ii": 1,
	"III": 2, "iii": 2,
	"IV": 3, "iv": 3,
	"V": 4, "v": 4,
	"VI": 5, "vi": 5,
	"VII": 6, "vii": 6,
}

var chromaticNotes = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// DefaultProgression derives a four-chord progression for a key and genre.
// The key's accidental is resolved onto the sharp-spelled chromatic wheel
// (flats become their enharmonic sharp); a key ending in "m" selects the
// natural-minor intervals. Unknown genres use the pop progression.
func DefaultProgression(key, genre string) []string {
	root := strings.NewReplacer("m", "", "#", "", "b", "").Replace(key)
	rootIdx := 0
	if strings.Contains(key, "#") {
		root += "#"
	} else if strings.Contains(key, "b") {
		for i, n := range chromaticNotes {
			if n == root {
				rootIdx = (i - 1 + 12) % 12
				break
			}
		}
		root = chromaticNotes[rootIdx]
	}
	for i, n := range chromaticNotes {
		if n == root {
			rootIdx = i
			break
		}
	}

	degrees, ok := genreProgressions[strings.ToLower(genre)]
	if !ok {
		degrees = genreProgressions["pop"]
	}

	majorIntervals := []int{0, 2, 4, 5, 7, 9, 11}
	minorIntervals := []int{0, 2, 3, 5, 7, 8, 10}
	intervals := majorIntervals
	if strings.Contains(key, "m") && strings.HasSuffix(key, "m") {
		intervals = minorIntervals
	}

	chords := make([]string, 0, len(degrees))
	for _, degree := range degrees {
		degNum := degreeNumbers[strings.ReplaceAll(degree, "°", "")]
		chordRoot := chromaticNotes[(rootIdx+intervals[degNum])%12]
		chords = append(chords, chordRoot+degreeQualities[degree])
	}
	return chords
}

// AssignChordsToSections spreads a progression across sections by section
// type. Every section's chord durations sum exactly to its bar count.
func AssignChordsToSections(progression []string, sections []SectionPlan, key string) map[string][]Chord {
	if len(progression) == 0 {
		progression = []string{key}
	}

	cycle := func(prog []string, bars, barsPerChord int) []Chord {
		var chords []Chord
		remaining := bars
		for i := 0; remaining > 0; i++ {
			chordBars := minInt(barsPerChord, remaining)
			chords = append(chords, Chord{Symbol: prog[i%len(prog)], Bars: chordBars})
			remaining -= chordBars
		}
		return chords
	}

	assigned := make(map[string][]Chord, len(sections))
	for _, section := range sections {
		bars := section.Bars
		var chords []Chord

		switch section.Type {
		case SectionIntro, SectionOutro:
			chords = []Chord{{Symbol: progression[0], Bars: bars}}

		case SectionVerse, SectionPreChorus:
			chords = cycle(progression, bars, 2)

		case SectionChorus:
			// Rotated order for contrast with the verse.
			alt := progression
			if len(progression) >= 4 {
				alt = append(append([]string{}, progression[2:]...), progression[:2]...)
			}
			chords = cycle(alt, bars, 2)

		case SectionBridge:
			bridge := append(append([]string{}, progression[1:]...), progression[0])
			chords = cycle(bridge, bars, 2)

		case SectionBreakdown, SectionBuildup:
			if len(progression) >= 2 {
				chords = []Chord{
					{Symbol: progression[0], Bars: bars / 2},
					{Symbol: progression[1], Bars: bars - bars/2},
				}
			} else {
				chords = []Chord{{Symbol: progression[0], Bars: bars}}
			}

		case SectionDrop:
			chords = cycle(progression, bars, 1)

		default:
			barsPerChord := maxInt(1, bars/len(progression))
			for _, c := range progression {
				chords = append(chords, Chord{Symbol: c, Bars: barsPerChord})
			}
			total := 0
			for _, c := range chords {
				total += c.Bars
			}
			if total < bars {
				chords[len(chords)-1].Bars += bars - total
			}
		}

		assigned[section.Name] = chords
	}

	return assigned
}

var sectionTypeNotes = map[SectionType]string{
	SectionIntro:     "Establish mood and key, hook listener",
	SectionVerse:     "Carry the narrative, leave space for vocals",
	SectionPreChorus: "Build tension, anticipate the chorus",
	SectionChorus:    "Emotional peak, memorable hook",
	SectionBridge:    "Provide contrast, new perspective",
	SectionOutro:     "Resolution, leave lasting impression",
	SectionBreakdown: "Strip back, create breathing room",
	SectionBuildup:   "Increase tension progressively",
	SectionDrop:      "Maximum impact, release built tension",
	SectionSolo:      "Showcase featured instrument",
}

func sectionNotes(sectionType SectionType, energy float64) string {
	var notes []string

	switch {
	case energy < 0.3:
		notes = append(notes, "Keep sparse, intimate feel", "Reduce drum presence or use brushes")
	case energy < 0.5:
		notes = append(notes, "Moderate energy, room to grow", "Full arrangement but not overwhelming")
	case energy < 0.7:
		notes = append(notes, "Building energy, add layers", "Increase rhythmic drive")
	case energy < 0.9:
		notes = append(notes, "High energy section", "Full arrangement, all instruments active")
	default:
		notes = append(notes, "Maximum intensity - climax", "Everything at full power")
	}

	if phrase, ok := sectionTypeNotes[sectionType]; ok {
		notes = append(notes, phrase)
	}

	return strings.Join(notes, " | ")
}

var genreProductionNotes = map[string][]string{
	"pop": {
		"- Polished, radio-ready sound",
		"- Strong hook in chorus",
		"- Crisp drums with punchy kick",
		"- Vocals front and center",
	},
	"rock": {
		"- Guitar-driven energy",
		"- Room for dynamics",
		"- Drums: solid backbeat",
		"- Don't over-compress",
	},
	"folk": {
		"- Natural, organic sound",
		"- Acoustic instruments forward",
		"- Minimal processing",
		"- Room ambience preferred",
	},
	"lofi": {
		"- Embrace imperfection",
		"- Vinyl noise, tape saturation",
		"- Buried vocals if present",
		"- Lo-fi drum samples",
		"- Narrow stereo field",
	},
	"jazz": {
		"- Natural room sound",
		"- Dynamic playing, no compression",
		"- Space for improvisation",
		"- Warm, vintage tone",
	},
	"edm": {
		"- Powerful sub-bass",
		"- Side-chain compression",
		"- Build tension before drops",
		"- Wide stereo in drops",
	},
	"hiphop": {
		"- 808 bass presence",
		"- Punchy kick, snappy snare",
		"- Vocal processing: subtle",
		"- Sample-based or synth textures",
	},
	"rnb": {
		"- Smooth, warm sound",
		"- Lush pads and keys",
		"- Vocals: emotion over power",
		"- Groove is everything",
	},
}

var moodProductionNotes = map[string]string{
	"grief":     "Allow space for emotion. Don't rush resolutions. Reverb for distance.",
	"anger":     "Aggressive compression. Forward presence. Distortion where appropriate.",
	"joy":       "Bright EQ. Open sound. Lift the energy.",
	"nostalgia": "Vintage processing. Tape warmth. Slightly muffled highs.",
	"anxiety":   "Tension in the mix. Unresolved elements. Restless energy.",
	"peace":     "Gentle dynamics. Smooth transitions. Warm frequencies.",
}

func productionNotes(genre, mood string, arc EnergyArc, sections []SectionGenerated) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Production Guide for %s Track\n\n", titleCase(genre))
	fmt.Fprintf(&b, "### Emotional Journey: %s\n", arc.EmotionalJourney)
	b.WriteString(DescribeEnergyArc(arc))
	b.WriteString("\n\n### General Guidelines\n")

	bullets, ok := genreProductionNotes[strings.ToLower(genre)]
	if !ok {
		bullets = []string{
			"- Follow genre conventions",
			"- Maintain dynamic range",
			"- Balance all elements",
		}
	}
	b.WriteString(strings.Join(bullets, "\n"))

	fmt.Fprintf(&b, "\n\n### Mood: %s\n", titleCase(mood))
	note, ok := moodProductionNotes[strings.ToLower(mood)]
	if !ok {
		note = "Match production to emotional intent."
	}
	b.WriteString(note)

	b.WriteString("\n\n### Section-by-Section\n")
	for _, section := range sections {
		displayName := titleCase(strings.ReplaceAll(section.Name, "_", " "))
		fmt.Fprintf(&b, "\n**%s** (bars %d-%d)\n", displayName, section.StartBar, section.StartBar+section.Bars-1)
		fmt.Fprintf(&b, "- Energy: %.0f%%\n", section.Energy*100)
		fmt.Fprintf(&b, "- Instruments: %s\n", strings.Join(section.Instruments, ", "))
		fmt.Fprintf(&b, "- Notes: %s", section.ProductionNotes)
	}

	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
