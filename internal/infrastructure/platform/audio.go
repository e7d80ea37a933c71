package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"
)

// SampleRate is the audio context sample rate
const SampleRate = 48000

// Audio plays WAV cues and looping music from an fs.FS.
// A cue id maps to "<id>.wav". Calls before Init are ignored.
type Audio struct {
	sounds fs.FS
	log    *zap.SugaredLogger

	ctx     *audio.Context
	players map[string]*audio.Player

	music   *audio.Player
	musicID string

	listener             func() (x, y float64)
	listenerX, listenerY float64
}

// NewAudio creates an audio service over sounds; sounds may be nil
func NewAudio(sounds fs.FS, log *zap.SugaredLogger) *Audio {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Audio{
		sounds:  sounds,
		log:     log,
		players: make(map[string]*audio.Player),
	}
}

// Init opens the shared audio context. It is idempotent.
func (a *Audio) Init(ctx context.Context) error {
	if a.ctx != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c := audio.CurrentContext(); c != nil {
		a.ctx = c
	} else {
		a.ctx = audio.NewContext(SampleRate)
	}
	a.log.Debugw("audio initialized", "sample_rate", SampleRate)
	return nil
}

// Ready reports whether Init has run
func (a *Audio) Ready() bool {
	return a.ctx != nil
}

// Play starts a cue at volume (0..1). Looping cues replace the current music.
func (a *Audio) Play(id string, volume float64, loop bool) {
	if a.ctx == nil || id == "" {
		return
	}

	if loop && a.musicID == id && a.music != nil && a.music.IsPlaying() {
		return
	}

	p, err := a.player(id, loop)
	if err != nil {
		a.log.Warnw("audio cue unavailable", "id", id, "error", err)
		return
	}
	p.SetVolume(volume)

	if loop {
		if a.music != nil && a.music != p {
			a.music.Pause()
		}
		a.music = p
		a.musicID = id
	}

	if err := p.Rewind(); err != nil {
		a.log.Warnw("audio rewind failed", "id", id, "error", err)
	}
	p.Play()
}

// MusicID returns the id of the current music, empty if none
func (a *Audio) MusicID() string {
	return a.musicID
}

// PauseMusic pauses the current music
func (a *Audio) PauseMusic() {
	if a.music != nil {
		a.music.Pause()
	}
}

// ResumeMusic resumes the current music
func (a *Audio) ResumeMusic() {
	if a.music != nil {
		a.music.Play()
	}
}

// StopAllSounds pauses every player and forgets the current music
func (a *Audio) StopAllSounds() {
	for _, p := range a.players {
		p.Pause()
	}
	a.music = nil
	a.musicID = ""
}

// SetListener sets the position source used by UpdateListenerPosition
func (a *Audio) SetListener(fn func() (x, y float64)) {
	a.listener = fn
}

// UpdateListenerPosition samples the listener. It returns false without one.
func (a *Audio) UpdateListenerPosition() bool {
	if a.listener == nil {
		return false
	}
	a.listenerX, a.listenerY = a.listener()
	return true
}

// ListenerPosition returns the last sampled listener position
func (a *Audio) ListenerPosition() (x, y float64) {
	return a.listenerX, a.listenerY
}

// Close releases every cached player
func (a *Audio) Close() {
	a.StopAllSounds()
	for id, p := range a.players {
		if err := p.Close(); err != nil {
			a.log.Debugw("audio close failed", "id", id, "error", err)
		}
	}
	clear(a.players)
}

func (a *Audio) player(id string, loop bool) (*audio.Player, error) {
	key := id
	if loop {
		key = "loop:" + id
	}
	if p, ok := a.players[key]; ok {
		return p, nil
	}
	if a.sounds == nil {
		return nil, fmt.Errorf("no sound source")
	}

	data, err := fs.ReadFile(a.sounds, path.Clean(id+".wav"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	stream, err := wav.DecodeF32(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}

	var src io.Reader = stream
	if loop {
		src = audio.NewInfiniteLoopF32(stream, stream.Length())
	}
	p, err := a.ctx.NewPlayerF32(src)
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", id, err)
	}
	a.players[key] = p
	return p, nil
}
