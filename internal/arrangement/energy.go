package arrangement

import (
	"fmt"
	"math"
	"strings"
)

// ArcType identifies the geometric shape of an energy curve.
type ArcType string

const (
	ArcLinearBuild      ArcType = "linear_build"
	ArcLinearDecay      ArcType = "linear_decay"
	ArcExponentialBuild ArcType = "exponential_build"
	ArcExponentialDecay ArcType = "exponential_decay"
	ArcWave             ArcType = "wave"
	ArcPeak             ArcType = "peak"
	ArcDoublePeak       ArcType = "double_peak"
	ArcPlateau          ArcType = "plateau"
	ArcFlat             ArcType = "flat"
	ArcSawtooth         ArcType = "sawtooth"
	ArcInversePeak      ArcType = "inverse_peak"
)

// EmotionalJourney is a named narrative archetype that selects a default arc
// shape and climax position.
type EmotionalJourney string

const (
	JourneyTriumph    EmotionalJourney = "triumph"
	JourneyTragedy    EmotionalJourney = "tragedy"
	JourneyCatharsis  EmotionalJourney = "catharsis"
	JourneyMeditation EmotionalJourney = "meditation"
	JourneyEuphoria   EmotionalJourney = "euphoria"
	JourneyGrief      EmotionalJourney = "grief"
	JourneyDefiance   EmotionalJourney = "defiance"
	JourneyNostalgia  EmotionalJourney = "nostalgia"
	JourneyTension    EmotionalJourney = "tension"
	JourneyResolution EmotionalJourney = "resolution"
)

// EnergyPoint is a single sample of the energy curve bound to the bar
// timeline.
type EnergyPoint struct {
	Position    float64 `json:"position"`
	Energy      float64 `json:"energy"`
	Bar         int     `json:"bar"`
	SectionName string  `json:"section_name"`
	Description string  `json:"description"`
}

// EnergyArc is a piecewise-linear energy curve over a song.
type EnergyArc struct {
	Points           []EnergyPoint    `json:"points"`
	ArcType          ArcType          `json:"arc_type"`
	EmotionalJourney EmotionalJourney `json:"emotional_journey"`
	TotalBars        int              `json:"total_bars"`
	ClimaxPosition   float64          `json:"climax_position"`
	MinEnergy        float64          `json:"min_energy"`
	MaxEnergy        float64          `json:"max_energy"`
}

// EnergyAtPosition returns the linearly interpolated energy at a normalized
// position. An empty arc returns the neutral 0.5.
func (a *EnergyArc) EnergyAtPosition(position float64) float64 {
	if len(a.Points) == 0 {
		return 0.5
	}

	prev := a.Points[0]
	next := a.Points[len(a.Points)-1]

	for i, p := range a.Points {
		if p.Position >= position {
			next = p
			if i > 0 {
				prev = a.Points[i-1]
			}
			break
		}
		prev = p
	}

	if next.Position == prev.Position {
		return next.Energy
	}

	t := (position - prev.Position) / (next.Position - prev.Position)
	return prev.Energy + t*(next.Energy-prev.Energy)
}

// EnergyAtBar returns the interpolated energy at a bar number.
func (a *EnergyArc) EnergyAtBar(bar int) float64 {
	if a.TotalBars == 0 {
		return 0.5
	}
	return a.EnergyAtPosition(float64(bar) / float64(a.TotalBars))
}

// ClimaxBar returns the bar at which the climax occurs.
func (a *EnergyArc) ClimaxBar() int {
	return int(a.ClimaxPosition * float64(a.TotalBars))
}

// Describe returns a short human-readable summary of the arc.
func (a *EnergyArc) Describe() string {
	return fmt.Sprintf(
		"Energy arc: %s\nEmotional journey: %s\nRange: %.0f%% to %.0f%%\nClimax at bar %d (%.0f%% through song)",
		a.ArcType, a.EmotionalJourney,
		a.MinEnergy*100, a.MaxEnergy*100,
		a.ClimaxBar(), a.ClimaxPosition*100,
	)
}

// generateArcCurve samples numPoints+1 evenly spaced positions in [0,1] and
// evaluates the closed-form shape for the arc type. Several shapes can exceed
// the nominal bounds before clamping; the clamp is a hard invariant.
func generateArcCurve(arcType ArcType, numPoints int, climaxPosition, minEnergy, maxEnergy float64) [][2]float64 {
	points := make([][2]float64, 0, numPoints+1)
	energyRange := maxEnergy - minEnergy

	for i := 0; i <= numPoints; i++ {
		pos := float64(i) / float64(numPoints)
		var energy float64

		switch arcType {
		case ArcLinearBuild:
			energy = minEnergy + energyRange*pos

		case ArcLinearDecay:
			energy = maxEnergy - energyRange*pos

		case ArcExponentialBuild:
			energy = minEnergy + energyRange*pos*pos

		case ArcExponentialDecay:
			energy = maxEnergy - energyRange*pos*pos

		case ArcWave:
			// Two full waves across the song.
			wave := math.Sin(pos * 4 * math.Pi)
			energy = minEnergy + energyRange*0.5 + wave*energyRange*0.3

		case ArcPeak:
			if pos <= climaxPosition {
				t := pos / climaxPosition
				energy = minEnergy + energyRange*math.Pow(t, 1.5)
			} else {
				t := (pos - climaxPosition) / (1 - climaxPosition)
				energy = maxEnergy - energyRange*0.7*t
			}

		case ArcDoublePeak:
			switch {
			case pos < 0.35:
				t := pos / 0.35
				energy = minEnergy + energyRange*0.7*t
			case pos < 0.5:
				t := (pos - 0.35) / 0.15
				energy = minEnergy + energyRange*0.7 - energyRange*0.3*t
			case pos < 0.85:
				t := (pos - 0.5) / 0.35
				energy = minEnergy + energyRange*0.4 + energyRange*0.6*t
			default:
				t := (pos - 0.85) / 0.15
				energy = maxEnergy - energyRange*0.4*t
			}

		case ArcPlateau:
			switch {
			case pos < 0.25:
				t := pos / 0.25
				energy = minEnergy + energyRange*0.8*t
			case pos < 0.75:
				energy = minEnergy + energyRange*0.8
			default:
				t := (pos - 0.75) / 0.25
				energy = minEnergy + energyRange*0.8 - energyRange*0.5*t
			}

		case ArcFlat:
			energy = minEnergy + energyRange*0.5

		case ArcSawtooth:
			// Four repeating ramps.
			cycle := math.Mod(pos*4, 1.0)
			energy = minEnergy + energyRange*cycle

		case ArcInversePeak:
			if pos <= 0.5 {
				t := pos / 0.5
				energy = maxEnergy - energyRange*0.6*t
			} else {
				t := (pos - 0.5) / 0.5
				energy = minEnergy + energyRange*0.4 + energyRange*0.6*t
			}

		default:
			energy = 0.5
		}

		energy = math.Max(minEnergy, math.Min(maxEnergy, energy))
		points = append(points, [2]float64{pos, energy})
	}

	return points
}

var journeyArcs = map[EmotionalJourney]struct {
	arcType ArcType
	climax  float64
}{
	JourneyTriumph:    {ArcExponentialBuild, 0.9},
	JourneyTragedy:    {ArcExponentialDecay, 0.2},
	JourneyCatharsis:  {ArcPeak, 0.75},
	JourneyMeditation: {ArcFlat, 0.5},
	JourneyEuphoria:   {ArcLinearBuild, 0.95},
	JourneyGrief:      {ArcWave, 0.5},
	JourneyDefiance:   {ArcDoublePeak, 0.85},
	JourneyNostalgia:  {ArcInversePeak, 0.5},
	JourneyTension:    {ArcExponentialBuild, 0.95},
	JourneyResolution: {ArcPeak, 0.6},
}

// ArcForJourney returns the default arc type and climax position for an
// emotional journey. Unknown journeys default to a peak climaxing at 0.75.
func ArcForJourney(journey EmotionalJourney) (ArcType, float64) {
	if entry, ok := journeyArcs[journey]; ok {
		return entry.arcType, entry.climax
	}
	return ArcPeak, 0.75
}

// SectionBoundary labels the bar at which a section starts.
type SectionBoundary struct {
	Bar  int
	Name string
}

// ArcParams configures GenerateEnergyArc. A zero ArcType derives the shape
// (and, when ClimaxPosition is unset, the climax) from the journey; a
// ClimaxPosition <= 0 selects the default; zero energy bounds select
// [0.2, 0.95].
type ArcParams struct {
	TotalBars         int
	ArcType           ArcType
	EmotionalJourney  EmotionalJourney
	ClimaxPosition    float64
	MinEnergy         float64
	MaxEnergy         float64
	SectionBoundaries []SectionBoundary
}

// GenerateEnergyArc produces an energy arc over a bar timeline. Points are
// sampled at max(20, totalBars/2) intervals and labeled with the latest
// section boundary at or before their bar.
func GenerateEnergyArc(params ArcParams) EnergyArc {
	journey := params.EmotionalJourney
	if journey == "" {
		journey = JourneyCatharsis
	}

	arcType := params.ArcType
	climax := params.ClimaxPosition
	if arcType == "" {
		defaultArc, defaultClimax := ArcForJourney(journey)
		arcType = defaultArc
		if climax <= 0 {
			climax = defaultClimax
		}
	} else if climax <= 0 {
		climax = 0.75
	}

	minEnergy, maxEnergy := params.MinEnergy, params.MaxEnergy
	if minEnergy == 0 && maxEnergy == 0 {
		minEnergy, maxEnergy = 0.2, 0.95
	}

	numPoints := params.TotalBars / 2
	if numPoints < 20 {
		numPoints = 20
	}

	curve := generateArcCurve(arcType, numPoints, climax, minEnergy, maxEnergy)

	points := make([]EnergyPoint, 0, len(curve))
	for _, pe := range curve {
		pos, energy := pe[0], pe[1]
		bar := int(pos * float64(params.TotalBars))

		sectionName := ""
		for i := len(params.SectionBoundaries) - 1; i >= 0; i-- {
			if bar >= params.SectionBoundaries[i].Bar {
				sectionName = params.SectionBoundaries[i].Name
				break
			}
		}

		points = append(points, EnergyPoint{
			Position:    pos,
			Energy:      energy,
			Bar:         bar,
			SectionName: sectionName,
		})
	}

	return EnergyArc{
		Points:           points,
		ArcType:          arcType,
		EmotionalJourney: journey,
		TotalBars:        params.TotalBars,
		ClimaxPosition:   climax,
		MinEnergy:        minEnergy,
		MaxEnergy:        maxEnergy,
	}
}

// SectionPlan is a section bound to the bar timeline, enriched with energy
// data by ApplyEnergyToSections.
type SectionPlan struct {
	Name           string
	Type           SectionType
	Bars           int
	Energy         float64
	VelocityRange  [2]int
	EnergyGradient float64
}

// ApplyEnergyToSections walks the sections in order and returns copies with
// energy, velocity range and energy gradient filled in from the arc. The
// section energy is the arc value at the section midpoint; the gradient is
// the end-minus-start difference across the section.
func ApplyEnergyToSections(sections []SectionPlan, arc EnergyArc) []SectionPlan {
	currentBar := 0
	updated := make([]SectionPlan, 0, len(sections))

	for _, section := range sections {
		s := section
		bars := s.Bars

		var startPos, midPos, endPos float64
		if arc.TotalBars > 0 {
			startPos = float64(currentBar) / float64(arc.TotalBars)
			midPos = float64(currentBar+bars/2) / float64(arc.TotalBars)
			endPos = float64(currentBar+bars) / float64(arc.TotalBars)
		}

		startEnergy := arc.EnergyAtPosition(startPos)
		midEnergy := arc.EnergyAtPosition(midPos)
		endEnergy := arc.EnergyAtPosition(endPos)

		s.Energy = round2(midEnergy)

		energyVel := int(midEnergy * 60)
		s.VelocityRange = [2]int{
			maxInt(30, 50+int(float64(energyVel)*0.5)),
			minInt(127, 50+energyVel+20),
		}

		s.EnergyGradient = round2(endEnergy - startEnergy)

		updated = append(updated, s)
		currentBar += bars
	}

	return updated
}

var moodJourneys = map[string]EmotionalJourney{
	"grief":         JourneyGrief,
	"sadness":       JourneyGrief,
	"anger":         JourneyDefiance,
	"rage":          JourneyDefiance,
	"joy":           JourneyEuphoria,
	"happiness":     JourneyEuphoria,
	"nostalgia":     JourneyNostalgia,
	"longing":       JourneyNostalgia,
	"anxiety":       JourneyTension,
	"fear":          JourneyTension,
	"hope":          JourneyTriumph,
	"determination": JourneyTriumph,
	"peace":         JourneyMeditation,
	"calm":          JourneyMeditation,
	"despair":       JourneyTragedy,
	"loss":          JourneyTragedy,
	"love":          JourneyCatharsis,
	"heartbreak":    JourneyGrief,
	"release":       JourneyCatharsis,
	"acceptance":    JourneyResolution,
}

var narrativeAdjustments = map[string]struct {
	arcType ArcType // empty means use the journey default
	climax  float64
}{
	"transformation": {"", 0.75},
	"cyclical":       {ArcWave, 0.5},
	"descent":        {ArcExponentialDecay, 0.15},
	"ascent":         {ArcExponentialBuild, 0.95},
	"static":         {ArcFlat, 0.5},
	"climactic":      {ArcPeak, 0.8},
}

// SuggestArcForIntent maps a mood, vulnerability and narrative arc onto an
// arc type, journey and climax position. Unknown moods default to catharsis;
// unknown narrative arcs fall back to the journey defaults. High
// vulnerability (> 0.7) pulls the climax to at most 0.65, low vulnerability
// (< 0.3) pushes it to at least 0.8.
func SuggestArcForIntent(mood string, vulnerability float64, narrativeArc string) (ArcType, EmotionalJourney, float64) {
	journey, ok := moodJourneys[strings.ToLower(mood)]
	if !ok {
		journey = JourneyCatharsis
	}

	adjustment, ok := narrativeAdjustments[strings.ToLower(narrativeArc)]
	if !ok {
		adjustment = struct {
			arcType ArcType
			climax  float64
		}{"", 0.75}
	}

	var arcType ArcType
	climax := adjustment.climax
	if adjustment.arcType == "" {
		arcType, climax = ArcForJourney(journey)
	} else {
		arcType = adjustment.arcType
	}

	if vulnerability > 0.7 {
		climax = math.Min(climax, 0.65)
	} else if vulnerability < 0.3 {
		climax = math.Max(climax, 0.8)
	}

	return arcType, journey, climax
}

var arcDescriptions = map[ArcType]string{
	ArcLinearBuild:      "Steady building tension throughout",
	ArcLinearDecay:      "Gradual release from opening intensity",
	ArcExponentialBuild: "Slow burn building to explosive climax",
	ArcExponentialDecay: "Powerful opening fading to intimate close",
	ArcWave:             "Oscillating waves of intensity",
	ArcPeak:             "Classic rise and fall with clear emotional peak",
	ArcDoublePeak:       "Two emotional peaks with reflective valley",
	ArcPlateau:          "Build to sustained intensity before resolution",
	ArcFlat:             "Consistent meditative energy throughout",
	ArcSawtooth:         "Repeated cycles of build and release",
	ArcInversePeak:      "Bookended by intensity with quiet middle",
}

var journeyDescriptions = map[EmotionalJourney]string{
	JourneyTriumph:    "A journey from struggle to victory",
	JourneyTragedy:    "Hope giving way to despair",
	JourneyCatharsis:  "Building tension released through climax",
	JourneyMeditation: "Sustained contemplative space",
	JourneyEuphoria:   "Growing joy reaching ecstatic heights",
	JourneyGrief:      "Waves of sorrow and remembrance",
	JourneyDefiance:   "Rising resistance against the inevitable",
	JourneyNostalgia:  "Bittersweet journey through memory",
	JourneyTension:    "Unresolved buildup seeking release",
	JourneyResolution: "Conflict finding peace",
}

// DescribeEnergyArc returns a multi-line description of the arc for
// production notes.
func DescribeEnergyArc(arc EnergyArc) string {
	arcDesc, ok := arcDescriptions[arc.ArcType]
	if !ok {
		arcDesc = "Custom energy curve"
	}
	journeyDesc, ok := journeyDescriptions[arc.EmotionalJourney]
	if !ok {
		journeyDesc = "Emotional journey"
	}

	return fmt.Sprintf(`Energy Arc: %s
%s

Emotional Journey: %s
%s

Technical Details:
- Energy range: %.0f%% to %.0f%%
- Climax: Bar %d (%.0f%% through song)
- Total duration: %d bars`,
		arc.ArcType, arcDesc,
		arc.EmotionalJourney, journeyDesc,
		arc.MinEnergy*100, arc.MaxEnergy*100,
		arc.ClimaxBar(), arc.ClimaxPosition*100,
		arc.TotalBars,
	)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
