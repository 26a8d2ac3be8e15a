// Package audio provides microphone capture and PCM playback through
// portaudio.
package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate matches what the recognition engines expect.
	SampleRate = 16000
	// Channels is mono capture.
	Channels = 1
	// FramesPerBuffer is the capture buffer size.
	FramesPerBuffer = 1024
)

var initOnce sync.Once

func initPortAudio() error {
	var err error
	initOnce.Do(func() {
		err = portaudio.Initialize()
	})
	return err
}

// Microphone captures mono 16kHz PCM from the default input device and
// delivers it as little-endian 16-bit frames.
type Microphone struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []int16
	frames  chan []byte
	running bool
	done    chan struct{}
}

// NewMicrophone initializes portaudio and prepares a capture buffer.
func NewMicrophone() (*Microphone, error) {
	if err := initPortAudio(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &Microphone{
		buffer: make([]int16, FramesPerBuffer),
	}, nil
}

// Start opens the default input stream and begins capturing. No-op when
// already running.
func (m *Microphone) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	stream, err := portaudio.OpenDefaultStream(
		Channels,
		0,
		SampleRate,
		FramesPerBuffer,
		m.buffer,
	)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	m.stream = stream
	m.running = true
	m.frames = make(chan []byte, 32)
	m.done = make(chan struct{})

	go m.captureLoop()
	return nil
}

// Frames returns the channel of captured PCM chunks. The channel closes
// when capture stops.
func (m *Microphone) Frames() <-chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Stop ends capture and closes the frame channel.
func (m *Microphone) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stream := m.stream
	m.stream = nil
	done := m.done
	m.mu.Unlock()

	stream.Stop()
	<-done
	stream.Close()
}

func (m *Microphone) captureLoop() {
	defer func() {
		close(m.frames)
		close(m.done)
	}()

	for {
		m.mu.Lock()
		running := m.running
		stream := m.stream
		m.mu.Unlock()

		if !running || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			return
		}

		chunk := make([]byte, len(m.buffer)*2)
		for i, sample := range m.buffer {
			binary.LittleEndian.PutUint16(chunk[i*2:], uint16(sample))
		}

		select {
		case m.frames <- chunk:
		default:
			// Drop the frame rather than stall capture.
		}
	}
}
