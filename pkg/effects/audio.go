package effects

import "sync"

// DuckFactor scales background music while a voice line plays.
const DuckFactor = 0.3

// Mixer models the playback audio state: one background music volume,
// at most one voice clip at a time. Audio is exclusive per scene, so
// starting a clip stops whatever was playing, and ducking restores the
// full music level when the clip ends.
type Mixer struct {
	mu      sync.Mutex
	volume  float64 // configured music volume, 0..1
	muted   bool
	voicing string // currently playing voice clip, empty when none
}

func NewMixer(volume float64, muted bool) *Mixer {
	if volume <= 0 || volume > 1 {
		volume = 1
	}
	return &Mixer{volume: volume, muted: muted}
}

// PlayVoice starts a voice clip, stopping any in-flight clip first.
// Music ducks to 30% of its configured level for the clip's duration.
func (m *Mixer) PlayVoice(clip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicing = clip
}

// VoiceEnded restores the full music level. Ending a clip that was
// already replaced or stopped is a no-op.
func (m *Mixer) VoiceEnded(clip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voicing == clip {
		m.voicing = ""
	}
}

// StopAll silences any voice clip. Called on scene change and
// teardown.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicing = ""
}

// Voicing returns the active voice clip, or empty.
func (m *Mixer) Voicing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voicing
}

// MusicVolume returns the effective background music level.
func (m *Mixer) MusicVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.muted {
		return 0
	}
	if m.voicing != "" {
		return m.volume * DuckFactor
	}
	return m.volume
}

// SetMuted toggles the mute flag from player settings.
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// SetVolume updates the configured music volume.
func (m *Mixer) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.volume = v
}
