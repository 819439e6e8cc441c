package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"uttr/log"
)

// LevelBuckets is the number of bars reported per capture chunk.
const LevelBuckets = 16

var ErrNotRecording = errors.New("not recording")

// RecordingManager buffers one recording at a time from a capture device.
// The device is opened on first use and reused across recordings.
type RecordingManager struct {
	ctx    Context
	device *DeviceInfo

	mu      sync.Mutex
	capture CaptureDevice
	active  bool
	samples []float32
	levels  func([]float32)
}

// NewRecordingManager records from device, or the system default when
// device is nil.
func NewRecordingManager(ctx Context, device *DeviceInfo) *RecordingManager {
	return &RecordingManager{ctx: ctx, device: device}
}

// OnLevels sets a callback receiving LevelBuckets values in [0, 1] for
// every captured chunk. It runs on the audio thread and must not block.
func (r *RecordingManager) OnLevels(fn func([]float32)) {
	r.mu.Lock()
	r.levels = fn
	r.mu.Unlock()
}

func (r *RecordingManager) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return errors.New("already recording")
	}
	if r.capture == nil {
		capture, err := r.ctx.NewCapture(r.device, CaptureConfig{SampleRate: SampleRate, Channels: 1})
		if err != nil {
			return fmt.Errorf("open capture device: %w", err)
		}
		r.capture = capture
	}

	r.samples = r.samples[:0]
	r.capture.SetCallback(r.onData)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		return fmt.Errorf("start capture: %w", err)
	}
	r.active = true
	log.Debugf("recording started (device=%s)", r.deviceName())
	return nil
}

func (r *RecordingManager) onData(data []byte, frameCount uint32) {
	n := min(int(frameCount), len(data)/2)
	chunk := make([]float32, n)
	for i := range chunk {
		chunk[i] = float32(int16(binary.LittleEndian.Uint16(data[i*2:]))) / 32768
	}

	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.samples = append(r.samples, chunk...)
	levels := r.levels
	r.mu.Unlock()

	if levels != nil && n > 0 {
		levels(Levels(chunk, LevelBuckets))
	}
}

// Stop ends the recording and returns everything captured since Start.
func (r *RecordingManager) Stop() ([]float32, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.active = false
	capture := r.capture
	r.mu.Unlock()

	capture.ClearCallback()
	capture.Stop()

	r.mu.Lock()
	out := make([]float32, len(r.samples))
	copy(out, r.samples)
	r.samples = r.samples[:0]
	r.mu.Unlock()

	log.Debugf("recording stopped: %d samples", len(out))
	return out, nil
}

// Cancel discards the current recording. It does nothing when idle.
func (r *RecordingManager) Cancel() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	r.samples = r.samples[:0]
	capture := r.capture
	r.mu.Unlock()

	capture.ClearCallback()
	capture.Stop()
	log.Debug("recording cancelled")
}

func (r *RecordingManager) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Close releases the capture device.
func (r *RecordingManager) Close() {
	r.Cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture != nil {
		r.capture.Close()
		r.capture = nil
	}
}

func (r *RecordingManager) deviceName() string {
	if r.device != nil {
		return r.device.Name
	}
	return "default"
}

// Levels splits samples into n equal segments and returns the RMS of
// each, scaled so normal speech reaches the top of the range.
func Levels(samples []float32, n int) []float32 {
	out := make([]float32, n)
	if len(samples) == 0 {
		return out
	}
	for b := range out {
		lo := b * len(samples) / n
		hi := (b + 1) * len(samples) / n
		if hi <= lo {
			continue
		}
		var sum float64
		for _, s := range samples[lo:hi] {
			sum += float64(s) * float64(s)
		}
		rms := math.Sqrt(sum / float64(hi-lo))
		out[b] = float32(math.Min(rms*4, 1))
	}
	return out
}
