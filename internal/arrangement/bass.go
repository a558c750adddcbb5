package arrangement

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// BassPattern identifies a rhythmic bass figure.
type BassPattern string

const (
	PatternRoot        BassPattern = "root"
	PatternRootFifth   BassPattern = "root_fifth"
	PatternWalking     BassPattern = "walking"
	PatternOctave      BassPattern = "octave"
	PatternArpeggiated BassPattern = "arpeggiated"
	PatternSyncopated  BassPattern = "syncopated"
	PatternPedal       BassPattern = "pedal"
	PatternDriving     BassPattern = "driving"
	PatternFunk        BassPattern = "funk"
	PatternReggae      BassPattern = "reggae"
)

// BassNote is a single note event on the beat grid.
type BassNote struct {
	Pitch     int     `json:"pitch"`
	StartBeat float64 `json:"start_beat"`
	Duration  float64 `json:"duration"`
	Velocity  int     `json:"velocity"`
}

// BassLine is a sequence of bass notes for a section or a whole song.
type BassLine struct {
	Notes       []BassNote  `json:"notes"`
	Pattern     BassPattern `json:"pattern"`
	Key         string      `json:"key"`
	TotalBars   int         `json:"total_bars"`
	BeatsPerBar int         `json:"beats_per_bar"`
}

// NotesInBar returns the notes whose start beat falls inside the given bar.
func (l *BassLine) NotesInBar(bar int) []BassNote {
	barStart := float64(bar * l.BeatsPerBar)
	barEnd := barStart + float64(l.BeatsPerBar)
	var notes []BassNote
	for _, n := range l.Notes {
		if n.StartBeat >= barStart && n.StartBeat < barEnd {
			notes = append(notes, n)
		}
	}
	return notes
}

// Chord is a chord symbol held for a number of bars. It serializes as a
// two-element ["C", 2] array.
type Chord struct {
	Symbol string
	Bars   int
}

func (c Chord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Symbol, c.Bars})
}

func (c *Chord) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("chord entry: want [symbol, bars], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Symbol); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.Bars)
}

// Bass register, octaves 2-3.
var noteToMIDI = map[string]int{
	"C": 36, "C#": 37, "Db": 37, "D": 38, "D#": 39, "Eb": 39,
	"E": 40, "F": 41, "F#": 42, "Gb": 42, "G": 43, "G#": 44,
	"Ab": 44, "A": 45, "A#": 46, "Bb": 46, "B": 47,
}

var chordIntervals = map[string][]int{
	"":     {0, 4, 7},
	"m":    {0, 3, 7},
	"7":    {0, 4, 7, 10},
	"maj7": {0, 4, 7, 11},
	"m7":   {0, 3, 7, 10},
	"dim":  {0, 3, 6},
	"dim7": {0, 3, 6, 9},
	"aug":  {0, 4, 8},
	"sus2": {0, 2, 7},
	"sus4": {0, 5, 7},
	"add9": {0, 4, 7, 14},
	"6":    {0, 4, 7, 9},
	"m6":   {0, 3, 7, 9},
}

// ParseChord splits a chord symbol into a root MIDI pitch and the interval
// stack for its quality. Unknown roots default to C (36) and unknown
// qualities to a major triad.
func ParseChord(chord string) (int, []int) {
	chord = strings.TrimSpace(chord)
	if chord == "" {
		return 36, chordIntervals[""]
	}

	var root, quality string
	if len(chord) >= 2 && (chord[1] == '#' || chord[1] == 'b') {
		root, quality = chord[:2], chord[2:]
	} else {
		root, quality = chord[:1], chord[1:]
	}

	rootPitch, ok := noteToMIDI[root]
	if !ok {
		rootPitch = 36
	}
	intervals, ok := chordIntervals[quality]
	if !ok {
		intervals = chordIntervals[""]
	}
	return rootPitch, intervals
}

// randVelocity draws a velocity in [lo, hi]. rng may be nil; the bounds may
// cross after pattern offsets near the 127 cap.
func randVelocity(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if rng == nil {
		return lo + rand.Intn(hi-lo+1)
	}
	return lo + rng.Intn(hi-lo+1)
}

func randFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// GenerateBassPattern renders one chord through a pattern across a run of
// bars. The velocity band scales with energy: [v*(0.7+0.3e),
// min(127, v*(0.9+0.2e))]. rng drives velocity jitter, walking approach
// notes and funk ghost notes; nil falls back to the process-wide source.
func GenerateBassPattern(chord string, pattern BassPattern, barStart, bars, beatsPerBar, velocity int, energy float64, rng *rand.Rand) []BassNote {
	rootPitch, intervals := ParseChord(chord)
	var notes []BassNote

	velMin := int(float64(velocity) * (0.7 + energy*0.3))
	velMax := minInt(127, int(float64(velocity)*(0.9+energy*0.2)))

	for bar := 0; bar < bars; bar++ {
		barOffset := float64((barStart + bar) * beatsPerBar)

		switch pattern {
		case PatternRoot:
			notes = append(notes, BassNote{
				Pitch:     rootPitch,
				StartBeat: barOffset,
				Duration:  float64(beatsPerBar),
				Velocity:  randVelocity(rng, velMin, velMax),
			})

		case PatternRootFifth:
			notes = append(notes, BassNote{
				Pitch:     rootPitch,
				StartBeat: barOffset,
				Duration:  2.0,
				Velocity:  randVelocity(rng, velMin, velMax),
			})
			notes = append(notes, BassNote{
				Pitch:     rootPitch + 7,
				StartBeat: barOffset + 2,
				Duration:  2.0,
				Velocity:  randVelocity(rng, velMin-5, velMax-5),
			})

		case PatternOctave:
			notes = append(notes, BassNote{
				Pitch:     rootPitch,
				StartBeat: barOffset,
				Duration:  2.0,
				Velocity:  randVelocity(rng, velMin, velMax),
			})
			notes = append(notes, BassNote{
				Pitch:     rootPitch + 12,
				StartBeat: barOffset + 2,
				Duration:  2.0,
				Velocity:  randVelocity(rng, velMin-5, velMax-5),
			})

		case PatternWalking:
			// Scalar walk with a chromatic approach around the fifth.
			// The approach note targets the current chord only.
			scaleNotes := []int{rootPitch, rootPitch + 2, rootPitch + 4, rootPitch + 5}
			approach := 1
			if randFloat(rng) < 0.5 {
				approach = -1
			}
			for beat := 0; beat < beatsPerBar; beat++ {
				var pitch int
				if beat < 3 {
					pitch = scaleNotes[beat%len(scaleNotes)]
				} else {
					pitch = rootPitch + 7 + approach
				}
				notes = append(notes, BassNote{
					Pitch:     pitch,
					StartBeat: barOffset + float64(beat),
					Duration:  1.0,
					Velocity:  randVelocity(rng, velMin, velMax),
				})
			}

		case PatternArpeggiated:
			chordTones := make([]int, 0, 4)
			for _, iv := range intervals {
				if len(chordTones) == 4 {
					break
				}
				chordTones = append(chordTones, rootPitch+iv)
			}
			for beat, pitch := range chordTones {
				if beat >= beatsPerBar {
					break
				}
				notes = append(notes, BassNote{
					Pitch:     pitch,
					StartBeat: barOffset + float64(beat),
					Duration:  1.0,
					Velocity:  randVelocity(rng, velMin, velMax),
				})
			}

		case PatternSyncopated:
			for _, pos := range []float64{0, 1.5, 2.5, 3.5} {
				pitch := rootPitch + 7
				if pos == 0 {
					pitch = rootPitch
				}
				notes = append(notes, BassNote{
					Pitch:     pitch,
					StartBeat: barOffset + pos,
					Duration:  0.5,
					Velocity:  randVelocity(rng, velMin, velMax),
				})
			}

		case PatternPedal:
			notes = append(notes, BassNote{
				Pitch:     rootPitch,
				StartBeat: barOffset,
				Duration:  float64(beatsPerBar),
				Velocity:  randVelocity(rng, velMin-10, velMax-10),
			})

		case PatternDriving:
			for eighth := 0; eighth < beatsPerBar*2; eighth++ {
				pitch := rootPitch + 7
				accent := 0
				if eighth%2 == 0 {
					pitch = rootPitch
					accent = 10
				}
				notes = append(notes, BassNote{
					Pitch:     pitch,
					StartBeat: barOffset + float64(eighth)*0.5,
					Duration:  0.5,
					Velocity:  minInt(127, randVelocity(rng, velMin, velMax)+accent),
				})
			}

		case PatternFunk:
			for _, hit := range []float64{0, 0.75, 1.5, 2.25, 3.0, 3.5} {
				vel := randVelocity(rng, velMin, velMax)
				if randFloat(rng) < 0.3 {
					// Ghost note.
					vel = randVelocity(rng, velMin-20, velMax-20)
				}
				notes = append(notes, BassNote{
					Pitch:     rootPitch,
					StartBeat: barOffset + hit,
					Duration:  0.25,
					Velocity:  vel,
				})
			}

		case PatternReggae:
			for beat := 0; beat < beatsPerBar; beat++ {
				notes = append(notes, BassNote{
					Pitch:     rootPitch,
					StartBeat: barOffset + float64(beat) + 0.5,
					Duration:  0.5,
					Velocity:  randVelocity(rng, velMin, velMax),
				})
			}
		}
	}

	return notes
}

var genrePatterns = map[string]map[string]BassPattern{
	"pop": {
		"intro":  PatternRoot,
		"verse":  PatternRootFifth,
		"chorus": PatternOctave,
		"bridge": PatternRoot,
		"outro":  PatternRoot,
	},
	"rock": {
		"intro":  PatternDriving,
		"verse":  PatternRootFifth,
		"chorus": PatternDriving,
		"bridge": PatternRoot,
		"solo":   PatternDriving,
		"outro":  PatternRoot,
	},
	"folk": {
		"intro":  PatternPedal,
		"verse":  PatternRoot,
		"chorus": PatternRootFifth,
		"bridge": PatternPedal,
		"outro":  PatternPedal,
	},
	"lofi": {
		"intro":  PatternPedal,
		"verse":  PatternRoot,
		"chorus": PatternRootFifth,
		"outro":  PatternPedal,
	},
	"jazz": {
		"intro":  PatternWalking,
		"verse":  PatternWalking,
		"chorus": PatternWalking,
		"bridge": PatternWalking,
		"solo":   PatternWalking,
		"outro":  PatternPedal,
	},
	"edm": {
		"intro":     PatternPedal,
		"buildup":   PatternSyncopated,
		"drop":      PatternDriving,
		"breakdown": PatternPedal,
		"outro":     PatternPedal,
	},
	"funk": {
		"intro":  PatternFunk,
		"verse":  PatternFunk,
		"chorus": PatternFunk,
		"bridge": PatternSyncopated,
		"outro":  PatternFunk,
	},
	"hiphop": {
		"intro":  PatternRoot,
		"verse":  PatternSyncopated,
		"chorus": PatternOctave,
		"bridge": PatternPedal,
		"outro":  PatternRoot,
	},
	"rnb": {
		"intro":  PatternPedal,
		"verse":  PatternRootFifth,
		"chorus": PatternArpeggiated,
		"bridge": PatternPedal,
		"outro":  PatternPedal,
	},
	"reggae": {
		"intro":  PatternReggae,
		"verse":  PatternReggae,
		"chorus": PatternReggae,
		"bridge": PatternPedal,
		"outro":  PatternReggae,
	},
}

var defaultSectionPatterns = map[string]BassPattern{
	"intro":     PatternRoot,
	"verse":     PatternRootFifth,
	"prechorus": PatternRootFifth,
	"chorus":    PatternOctave,
	"bridge":    PatternRoot,
	"breakdown": PatternPedal,
	"buildup":   PatternSyncopated,
	"drop":      PatternDriving,
	"solo":      PatternRootFifth,
	"outro":     PatternPedal,
}

// SelectPatternForGenre picks the bass pattern for a genre and section type.
// The genre is lowercased but not alias-normalized; section type separators
// are stripped. A known genre with an unlisted section falls back to
// root-fifth, an unknown genre falls back to the generic table and then to
// root.
func SelectPatternForGenre(genre, sectionType string) BassPattern {
	genre = strings.ToLower(genre)
	sectionType = strings.ToLower(sectionType)
	sectionType = strings.NewReplacer("_", "", "-", "", " ", "").Replace(sectionType)

	if patterns, ok := genrePatterns[genre]; ok {
		if p, ok := patterns[sectionType]; ok {
			return p
		}
		return PatternRootFifth
	}

	if p, ok := defaultSectionPatterns[sectionType]; ok {
		return p
	}
	return PatternRoot
}

// BassLineOptions configures GenerateBassLine. Zero values select pop, key
// C, 4 beats per bar, verse, energy 0.5 and base velocity 80.
type BassLineOptions struct {
	Genre       string
	Key         string
	BeatsPerBar int
	SectionType string
	Energy      float64
	Velocity    int
	Rand        *rand.Rand
}

func (o *BassLineOptions) setDefaults() {
	if o.Genre == "" {
		o.Genre = "pop"
	}
	if o.Key == "" {
		o.Key = "C"
	}
	if o.BeatsPerBar == 0 {
		o.BeatsPerBar = 4
	}
	if o.SectionType == "" {
		o.SectionType = "verse"
	}
	if o.Energy == 0 {
		o.Energy = 0.5
	}
	if o.Velocity == 0 {
		o.Velocity = 80
	}
}

// GenerateBassLine renders a chord progression into a bass line, advancing a
// bar cursor through the chords in order.
func GenerateBassLine(chords []Chord, opts BassLineOptions) BassLine {
	opts.setDefaults()

	line := BassLine{
		Pattern:     SelectPatternForGenre(opts.Genre, opts.SectionType),
		Key:         opts.Key,
		BeatsPerBar: opts.BeatsPerBar,
	}

	currentBar := 0
	for _, chord := range chords {
		notes := GenerateBassPattern(
			chord.Symbol, line.Pattern,
			currentBar, chord.Bars, opts.BeatsPerBar,
			opts.Velocity, opts.Energy, opts.Rand,
		)
		line.Notes = append(line.Notes, notes...)
		currentBar += chord.Bars
	}
	line.TotalBars = currentBar

	return line
}

// GenerateBassForArrangement renders a bass line per section. A section with
// no chord assignment gets a single tonic chord spanning the section.
func GenerateBassForArrangement(sections []SectionPlan, chordsPerSection map[string][]Chord, genre, key string, rng *rand.Rand) map[string]BassLine {
	lines := make(map[string]BassLine, len(sections))

	for _, section := range sections {
		chords, ok := chordsPerSection[section.Name]
		if !ok {
			chords = []Chord{{Symbol: "C", Bars: section.Bars}}
		}

		lines[section.Name] = GenerateBassLine(chords, BassLineOptions{
			Genre:       genre,
			Key:         key,
			SectionType: string(section.Type),
			Energy:      section.Energy,
			Rand:        rng,
		})
	}

	return lines
}
