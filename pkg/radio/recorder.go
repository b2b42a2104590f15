package radio

import (
	"fmt"
	"sync"
	"time"
)

// Pulse is a span of time the pin spent at one level.
type Pulse struct {
	Level    Level
	Duration time.Duration
}

func (p Pulse) String() string {
	return fmt.Sprintf("%s/%s", p.Level, p.Duration)
}

// Recorder is a Driver that captures the waveform instead of timing it.
// Every delay is recorded as one Pulse carrying the level the pin held.
type Recorder struct {
	mu         sync.Mutex
	configured map[Pin]bool
	level      map[Pin]Level
	last       Pin
	pulses     []Pulse
}

func NewRecorder() *Recorder {
	return &Recorder{configured: map[Pin]bool{}, level: map[Pin]Level{}}
}

func (r *Recorder) ConfigureOutput(pin Pin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configured[pin] = true
	r.level[pin] = Low
	return nil
}

func (r *Recorder) WriteDigital(pin Pin, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.level[pin] = level
	r.last = pin
}

func (r *Recorder) DelayMicroseconds(us uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := time.Duration(us) * time.Microsecond
	r.pulses = append(r.pulses, Pulse{Level: r.level[r.last], Duration: d})
}

// Configured reports whether pin was configured for output.
func (r *Recorder) Configured(pin Pin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configured[pin]
}

// Pulses returns a copy of the recorded waveform.
func (r *Recorder) Pulses() []Pulse {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pulse, len(r.pulses))
	copy(out, r.pulses)
	return out
}

// Total is the summed duration of every recorded pulse.
func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var d time.Duration
	for _, p := range r.pulses {
		d += p.Duration
	}
	return d
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = nil
}
