// Package encoder turns captured float samples into an upload payload.
package encoder

import (
	"fmt"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	EncodeTime() time.Duration
	// FileName and ContentType describe the multipart file part.
	FileName() string
	ContentType() string
}

// New returns an encoder for an upload format ("wav" or "flac").
func New(format string) (Encoder, error) {
	switch format {
	case "", "wav":
		return NewWAV(), nil
	case "flac":
		return NewFlac()
	default:
		return nil, fmt.Errorf("unknown upload format %q", format)
	}
}

// PCM16 converts normalized samples to 16-bit PCM. Values outside [-1, 1]
// are clipped.
func PCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// Encode feeds samples through enc in BlockSize blocks and closes it.
func Encode(enc Encoder, samples []float32) ([]byte, error) {
	pcm := PCM16(samples)
	for i := 0; i < len(pcm); i += BlockSize {
		end := min(i+BlockSize, len(pcm))
		if err := enc.EncodeBlock(pcm[i:end]); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
