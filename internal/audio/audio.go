// Package audio plays a short bump tone when the player walks into a rack
// or the dock wall.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/bookistos/warehouse-simulator/internal/simulation"
)

const (
	sampleRate    = beep.SampleRate(44100)
	bumpFrequency = 180
	bumpDuration  = 60 * time.Millisecond
)

// Player plays the bump tone.
type Player interface {
	PlayBump()
}

// SoundManager owns the speaker and a mixer the tones are queued on.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker. Without an audio device it fails and every
// Play call stays a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences queued tones and closes the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// PlayBump queues one bump tone.
func (sm *SoundManager) PlayBump() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	streamer, err := BumpStreamer()
	if err != nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
}

// BumpStreamer returns a fresh, finite bump tone.
func BumpStreamer() (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, bumpFrequency)
	if err != nil {
		return nil, fmt.Errorf("failed to create bump tone: %w", err)
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(bumpDuration), sine),
		Base:     2,
		Volume:   -2,
	}, nil
}

// BumpCue plays once each time movement goes from free to blocked. Holding
// a key against a rack bumps once, not every tick.
type BumpCue struct {
	player  Player
	blocked bool
}

// NewBumpCue creates a cue that plays through p.
func NewBumpCue(p Player) *BumpCue {
	return &BumpCue{player: p}
}

// Observe inspects one tick. It runs on the ticking goroutine.
func (c *BumpCue) Observe(res simulation.TickResult) {
	if res.Blocked && !c.blocked {
		c.player.PlayBump()
	}
	c.blocked = res.Blocked
}
