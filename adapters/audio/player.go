package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PCMPlayer plays little-endian 16-bit mono PCM on the default output
// device. One playback at a time; Stop aborts it.
type PCMPlayer struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPCMPlayer initializes portaudio for playback.
func NewPCMPlayer() (*PCMPlayer, error) {
	if err := initPortAudio(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &PCMPlayer{}, nil
}

// Play drains the chunk channel into the output stream. It returns when
// the channel closes, the context ends, or Stop is called.
func (p *PCMPlayer) Play(ctx context.Context, sampleRate int, pcm <-chan []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	buffer := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(sampleRate), FramesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer stream.Stop()

	var pending []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-pcm:
			if !ok {
				return p.flush(stream, buffer, pending)
			}
			pending = append(pending, chunk...)

			for len(pending) >= len(buffer)*2 {
				for i := range buffer {
					buffer[i] = int16(binary.LittleEndian.Uint16(pending[i*2:]))
				}
				pending = pending[len(buffer)*2:]
				if err := stream.Write(); err != nil {
					return fmt.Errorf("write output stream: %w", err)
				}
			}
		}
	}
}

// Stop aborts the playback in progress, if any.
func (p *PCMPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// flush pads the tail with silence so the final samples still play.
func (p *PCMPlayer) flush(stream *portaudio.Stream, buffer []int16, pending []byte) error {
	if len(pending) == 0 {
		return nil
	}

	for i := range buffer {
		if i*2+1 < len(pending) {
			buffer[i] = int16(binary.LittleEndian.Uint16(pending[i*2:]))
		} else {
			buffer[i] = 0
		}
	}
	if err := stream.Write(); err != nil {
		return fmt.Errorf("write output stream: %w", err)
	}
	return nil
}
