package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/daiw/music-brain/internal/arrangement"
	"github.com/daiw/music-brain/internal/midi"
	"github.com/daiw/music-brain/internal/project"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "arrange":
		runArrange(os.Args[2:])
	case "bass":
		runBass(os.Args[2:])
	case "energy":
		runEnergy(os.Args[2:])
	case "genres":
		runGenres()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

Commands:
  arrange   Generate a complete arrangement from intent
  bass      Generate a bass line from a chord progression
  energy    Print the energy arc for a mood
  genres    List available genre templates
`, os.Args[0])
}

func runArrange(args []string) {
	fs := flag.NewFlagSet("arrange", flag.ExitOnError)
	title := fs.String("title", "Untitled", "Song title")
	genre := fs.String("genre", "pop", "Genre template")
	key := fs.String("key", "C", "Musical key")
	tempo := fs.Float64("tempo", 120, "Tempo in BPM")
	mood := fs.String("mood", "neutral", "Primary mood")
	vulnerability := fs.Float64("vulnerability", 0.5, "Vulnerability (0.0-1.0)")
	narrative := fs.String("narrative", "transformation", "Narrative arc")
	chords := fs.String("chords", "", "Comma-separated chord progression (optional)")
	out := fs.String("out", "", "Output JSON path (optional)")
	midiOut := fs.String("midi", "", "Output MIDI path (optional)")
	projectDir := fs.String("project-dir", "", "Save as a project in this directory (optional)")
	seed := fs.Int64("seed", 0, "Random seed (0 for nondeterministic)")
	fs.Parse(args)

	req := arrangement.GenerateRequest{
		Title:         *title,
		Genre:         *genre,
		Key:           *key,
		Tempo:         *tempo,
		Mood:          *mood,
		Vulnerability: vulnerability,
		NarrativeArc:  *narrative,
	}
	if *chords != "" {
		req.ChordProgression = strings.Split(*chords, ",")
	}
	if *seed != 0 {
		req.Rand = rand.New(rand.NewSource(*seed))
	}

	arr, err := arrangement.NewGenerator().Generate(req)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(arr.Describe())

	if *out != "" {
		if err := arr.Save(*out); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nSaved arrangement to %s\n", *out)
	}

	if *midiOut != "" {
		exportMIDI(arr, *midiOut)
	}

	if *projectDir != "" {
		saveProject(arr, req, *projectDir, *midiOut)
	}
}

func saveProject(arr *arrangement.GeneratedArrangement, req arrangement.GenerateRequest, dir, midiPath string) {
	mgr, err := project.NewManager(dir)
	if err != nil {
		log.Fatal(err)
	}

	p := project.NewProject(arr.Title)
	p.Intent.MoodPrimary = req.Mood
	if req.Vulnerability != nil {
		p.Intent.Vulnerability = *req.Vulnerability
	}
	p.Intent.NarrativeArc = req.NarrativeArc
	p.Intent.Genre = arr.Genre
	p.Intent.Key = arr.Key
	p.Intent.Tempo = arr.Tempo
	p.Intent.TimeSignature = arr.TimeSignature
	p.Intent.ChordProgression = arr.ChordProgression
	p.SetArrangement(arr)
	if midiPath != "" {
		p.AddExport("midi", midiPath)
	}

	path, err := mgr.Save(p)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nSaved project %s to %s\n", p.ID, path)
}

func exportMIDI(arr *arrangement.GeneratedArrangement, path string) {
	bar := progressbar.NewOptions(
		len(arr.Sections)+1,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Exporting MIDI...[reset]"),
	)

	for _, section := range arr.Sections {
		if _, ok := arr.BassLines[section.Name]; !ok {
			log.Fatalf("missing bass line for section %s", section.Name)
		}
		bar.Add(1)
	}

	if err := midi.ExportArrangement(arr, path, midi.DefaultOptions()); err != nil {
		log.Fatal(err)
	}
	bar.Add(1)

	fmt.Printf("\nExported MIDI to %s\n", path)
}

func runBass(args []string) {
	fs := flag.NewFlagSet("bass", flag.ExitOnError)
	chords := fs.String("chords", "C,Am,F,G", "Comma-separated chord progression")
	barsPerChord := fs.Int("bars", 2, "Bars per chord")
	genre := fs.String("genre", "pop", "Genre for pattern selection")
	section := fs.String("section", "verse", "Section type")
	energy := fs.Float64("energy", 0.5, "Energy level (0.0-1.0)")
	tempo := fs.Float64("tempo", 120, "Tempo in BPM (for MIDI export)")
	midiOut := fs.String("midi", "", "Output MIDI path (optional)")
	seed := fs.Int64("seed", 0, "Random seed (0 for nondeterministic)")
	fs.Parse(args)

	var progression []arrangement.Chord
	for _, symbol := range strings.Split(*chords, ",") {
		progression = append(progression, arrangement.Chord{Symbol: strings.TrimSpace(symbol), Bars: *barsPerChord})
	}

	opts := arrangement.BassLineOptions{
		Genre:       *genre,
		SectionType: *section,
		Energy:      *energy,
	}
	if *seed != 0 {
		opts.Rand = rand.New(rand.NewSource(*seed))
	}

	line := arrangement.GenerateBassLine(progression, opts)

	fmt.Printf("Pattern: %s | %d bars | %d notes\n", line.Pattern, line.TotalBars, len(line.Notes))
	for _, note := range line.Notes {
		fmt.Printf("  beat %5.2f  pitch %3d  dur %.2f  vel %3d\n", note.StartBeat, note.Pitch, note.Duration, note.Velocity)
	}

	if *midiOut != "" {
		if err := midi.ExportBassLine(line, *midiOut, *tempo); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nExported MIDI to %s\n", *midiOut)
	}
}

func runEnergy(args []string) {
	fs := flag.NewFlagSet("energy", flag.ExitOnError)
	mood := fs.String("mood", "neutral", "Primary mood")
	vulnerability := fs.Float64("vulnerability", 0.5, "Vulnerability (0.0-1.0)")
	narrative := fs.String("narrative", "transformation", "Narrative arc")
	bars := fs.Int("bars", 64, "Total bars")
	fs.Parse(args)

	arcType, journey, climax := arrangement.SuggestArcForIntent(*mood, *vulnerability, *narrative)
	arc := arrangement.GenerateEnergyArc(arrangement.ArcParams{
		TotalBars:        *bars,
		ArcType:          arcType,
		EmotionalJourney: journey,
		ClimaxPosition:   climax,
	})

	fmt.Println(arrangement.DescribeEnergyArc(arc))
	fmt.Println()

	// Terminal sparkline of the curve.
	for _, p := range arc.Points {
		width := int(p.Energy * 50)
		fmt.Printf("bar %3d %5.2f %s\n", p.Bar, p.Energy, strings.Repeat("#", width))
	}
}

func runGenres() {
	fmt.Println("Available genres:")
	for _, name := range arrangement.GenreNames() {
		tmpl, err := arrangement.GetGenreTemplate(name)
		if err != nil {
			continue
		}
		fmt.Printf("  %-8s %3d bars  %d sections  (%d-%d BPM)  %s\n",
			name, tmpl.TotalBars, len(tmpl.Sections), tmpl.TempoRange[0], tmpl.TempoRange[1], tmpl.Description)
	}
}
