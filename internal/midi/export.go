// Package midi renders generated arrangements to Standard MIDI Files.
package midi

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/daiw/music-brain/internal/arrangement"
)

const ticksPerBeat = 960

const (
	chordChannel uint8 = 0
	bassChannel  uint8 = 1

	chordBaseVelocity = 70

	// Chords sit two octaves above the bass register.
	chordOctaveOffset = 24
)

// Options controls which tracks an export includes.
type Options struct {
	IncludeBass    bool
	IncludeMarkers bool
}

// DefaultOptions exports every track.
func DefaultOptions() Options {
	return Options{IncludeBass: true, IncludeMarkers: true}
}

// ExportArrangement writes an arrangement as a multi-track SMF: a meta track
// with tempo, meter and section markers, a block-chord track, and the
// per-section bass lines merged into one bass track.
func ExportArrangement(arr *arrangement.GeneratedArrangement, path string, opts Options) error {
	s, err := buildSMF(arr, opts)
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing midi file: %w", err)
	}
	return nil
}

func buildSMF(arr *arrangement.GeneratedArrangement, opts Options) (*smf.SMF, error) {
	if arr == nil {
		return nil, fmt.Errorf("%w: nil arrangement", ErrExport)
	}

	beatsPerBar := arr.TimeSignature[0]
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)

	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName(arr.Title))
	meta.Add(0, smf.MetaTempo(arr.Tempo))
	meta.Add(0, smf.MetaMeter(uint8(arr.TimeSignature[0]), uint8(arr.TimeSignature[1])))

	if opts.IncludeMarkers {
		current := uint32(0)
		for _, section := range arr.Sections {
			tick := uint32(section.StartBar * beatsPerBar * ticksPerBeat)
			meta.Add(tick-current, smf.MetaMarker(section.Name))
			current = tick
		}
	}
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, fmt.Errorf("%w: meta track: %v", ErrExport, err)
	}

	chordTrack := chordEvents(arr, beatsPerBar).track("Chords")
	if err := s.Add(chordTrack); err != nil {
		return nil, fmt.Errorf("%w: chord track: %v", ErrExport, err)
	}

	if opts.IncludeBass {
		bassTrack := bassEvents(arr, beatsPerBar).track("Bass")
		if err := s.Add(bassTrack); err != nil {
			return nil, fmt.Errorf("%w: bass track: %v", ErrExport, err)
		}
	}

	return s, nil
}

// ExportBassLine writes a single bass line as a two-track SMF.
func ExportBassLine(line arrangement.BassLine, path string, tempo float64) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)

	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName("Bass"))
	meta.Add(0, smf.MetaTempo(tempo))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return fmt.Errorf("%w: meta track: %v", ErrExport, err)
	}

	var events eventList
	for _, note := range line.Notes {
		events.addNote(bassChannel, note.Pitch, note.Velocity, note.StartBeat, note.Duration)
	}
	if err := s.Add(events.track("Bass")); err != nil {
		return fmt.Errorf("%w: bass track: %v", ErrExport, err)
	}

	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("writing midi file: %w", err)
	}
	return nil
}

// event is a channel message bound to an absolute tick.
type event struct {
	tick   uint32
	noteOn bool
	msg    midi.Message
}

type eventList struct {
	events []event
}

func (l *eventList) addNote(channel uint8, pitch, velocity int, startBeat, durationBeats float64) {
	key := clampMIDI(pitch)
	vel := clampMIDI(velocity)
	start := uint32(startBeat * ticksPerBeat)
	end := start + uint32(durationBeats*ticksPerBeat)

	l.events = append(l.events,
		event{tick: start, noteOn: true, msg: midi.NoteOn(channel, key, vel)},
		event{tick: end, msg: midi.NoteOff(channel, key)},
	)
}

// track sorts the events (note-offs before note-ons at the same tick) and
// converts absolute ticks to deltas.
func (l *eventList) track(name string) smf.Track {
	sort.SliceStable(l.events, func(i, j int) bool {
		if l.events[i].tick != l.events[j].tick {
			return l.events[i].tick < l.events[j].tick
		}
		return !l.events[i].noteOn && l.events[j].noteOn
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))

	current := uint32(0)
	for _, e := range l.events {
		tr.Add(e.tick-current, e.msg)
		current = e.tick
	}
	tr.Close(0)
	return tr
}

// chordEvents renders each section's chord assignments as block chords.
func chordEvents(arr *arrangement.GeneratedArrangement, beatsPerBar int) *eventList {
	var events eventList

	for _, section := range arr.Sections {
		velocity := int(chordBaseVelocity * (0.7 + section.Energy*0.4))
		if velocity < 30 {
			velocity = 30
		}
		if velocity > 127 {
			velocity = 127
		}

		beat := float64(section.StartBar * beatsPerBar)
		for _, chord := range section.Chords {
			root, intervals := arrangement.ParseChord(chord.Symbol)
			duration := float64(chord.Bars * beatsPerBar)
			for _, interval := range intervals {
				events.addNote(chordChannel, root+chordOctaveOffset+interval, velocity, beat, duration)
			}
			beat += duration
		}
	}

	return &events
}

// bassEvents merges the per-section bass lines onto the song timeline. Bass
// line beats are section-local; the section start offsets them.
func bassEvents(arr *arrangement.GeneratedArrangement, beatsPerBar int) *eventList {
	var events eventList

	for _, section := range arr.Sections {
		line, ok := arr.BassLines[section.Name]
		if !ok {
			continue
		}
		offset := float64(section.StartBar * beatsPerBar)
		for _, note := range line.Notes {
			events.addNote(bassChannel, note.Pitch, note.Velocity, offset+note.StartBeat, note.Duration)
		}
	}

	return &events
}

func clampMIDI(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
