package state

import "time"

// PlaybackState scrubs a wall-clock window [Start,End] at a speed
// multiplier, over the absolute instants a Schedule's flight plans
// carry.
type PlaybackState struct {
	Start, End time.Time
	Current    time.Time
	Speed      float64 // playback speed multiplier (1.0 = real-time)
	Playing    bool
	lastTick   time.Time
}

// NewPlaybackState creates a playback cursor starting at the window's
// beginning.
func NewPlaybackState(start, end time.Time) *PlaybackState {
	return &PlaybackState{Start: start, End: end, Current: start, Speed: 60, lastTick: time.Now()}
}

// TogglePlay toggles playback on/off, restarting from the window start
// if playback had reached the end.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastTick = time.Now()
		if !p.Current.Before(p.End) {
			p.Current = p.Start
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() { p.Playing = false }

// Reset rewinds to the window start.
func (p *PlaybackState) Reset() {
	p.Current = p.Start
	p.Playing = false
}

// Advance moves Current forward by the wall-clock time elapsed since
// the last Advance, scaled by Speed; called once per animation frame.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	elapsed := now.Sub(p.lastTick)
	p.lastTick = now

	p.Current = p.Current.Add(time.Duration(float64(elapsed) * p.Speed))
	if !p.Current.Before(p.End) {
		p.Current = p.End
		p.Playing = false
	}
}

// SetTime jumps directly to t, clamped to the playback window.
func (p *PlaybackState) SetTime(t time.Time) {
	if t.Before(p.Start) {
		t = p.Start
	}
	if t.After(p.End) {
		t = p.End
	}
	p.Current = t
}

// step returns 1% of the window's span, floored at one second.
func (p *PlaybackState) step() time.Duration {
	s := p.End.Sub(p.Start) / 100
	if s < time.Second {
		s = time.Second
	}
	return s
}

// StepForward pauses and advances by one step.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(p.Current.Add(p.step()))
}

// StepBack pauses and rewinds by one step.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(p.Current.Add(-p.step()))
}

// SetSpeed clamps the playback speed multiplier to [0.1, 10000];
// schedules span hours, so the ceiling is far above real-time.
func (p *PlaybackState) SetSpeed(speed float64) {
	if speed < 0.1 {
		speed = 0.1
	}
	if speed > 10000 {
		speed = 10000
	}
	p.Speed = speed
}

// Progress returns playback position as a 0-1 fraction of the window.
func (p *PlaybackState) Progress() float64 {
	total := p.End.Sub(p.Start)
	if total <= 0 {
		return 0
	}
	return p.Current.Sub(p.Start).Seconds() / total.Seconds()
}
