// Package stt provides Recognizer adapters for speech input.
package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

// FrameSource supplies PCM frames for recognition, typically a microphone.
type FrameSource interface {
	Start() error
	Frames() <-chan []byte
	Stop()
}

// GoogleRecognizer implements Recognizer with Google Cloud streaming
// recognition. One Start captures one utterance: interim results are off,
// single-utterance mode is on, and only the first alternative of the final
// result is delivered.
type GoogleRecognizer struct {
	source FrameSource
	config repositories.RecognitionConfig
	logger *zap.Logger
	events chan repositories.RecognitionEvent

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// Ensure GoogleRecognizer implements the Recognizer interface
var _ repositories.Recognizer = (*GoogleRecognizer)(nil)

// NewGoogleRecognizer creates a recognizer reading from the given source.
func NewGoogleRecognizer(source FrameSource, config repositories.RecognitionConfig, logger *zap.Logger) *GoogleRecognizer {
	if config.SampleRate == 0 {
		config.SampleRate = 16000
	}
	if config.Language == "" {
		config.Language = "en-IN"
	}
	return &GoogleRecognizer{
		source: source,
		config: config,
		logger: logger,
		events: make(chan repositories.RecognitionEvent, 16),
	}
}

// Events returns the lifecycle event stream.
func (g *GoogleRecognizer) Events() <-chan repositories.RecognitionEvent {
	return g.events
}

// Start begins a single recognition attempt.
func (g *GoogleRecognizer) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return fmt.Errorf("recognition already in progress")
	}
	g.running = true
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	client, err := speech.NewClient(ctx)
	if err != nil {
		g.finish(cancel)
		return fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		g.finish(cancel)
		return fmt.Errorf("failed to open recognize stream: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(g.config.SampleRate),
					LanguageCode:    g.config.Language,
					MaxAlternatives: 1,
				},
				InterimResults:  false,
				SingleUtterance: true,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		g.finish(cancel)
		return fmt.Errorf("failed to send streaming config: %w", err)
	}

	if err := g.source.Start(); err != nil {
		stream.CloseSend()
		client.Close()
		g.finish(cancel)
		return fmt.Errorf("failed to start audio source: %w", err)
	}

	g.events <- repositories.RecognitionEvent{Kind: repositories.RecognitionStarted}

	go g.sendLoop(ctx, stream)
	go g.receiveLoop(ctx, client, stream, cancel)

	return nil
}

// Stop aborts the attempt in progress; the terminal ended event still
// arrives through the receive loop.
func (g *GoogleRecognizer) Stop() {
	g.mu.Lock()
	cancel := g.cancel
	g.mu.Unlock()

	g.source.Stop()
	if cancel != nil {
		cancel()
	}
}

func (g *GoogleRecognizer) finish(cancel context.CancelFunc) {
	cancel()
	g.mu.Lock()
	g.running = false
	g.cancel = nil
	g.mu.Unlock()
}

func (g *GoogleRecognizer) sendLoop(ctx context.Context, stream speechpb.Speech_StreamingRecognizeClient) {
	defer stream.CloseSend()

	frames := g.source.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: frame,
				},
			}); err != nil {
				g.logger.Debug("audio send ended", zap.Error(err))
				return
			}
		}
	}
}

func (g *GoogleRecognizer) receiveLoop(ctx context.Context, client *speech.Client, stream speechpb.Speech_StreamingRecognizeClient, cancel context.CancelFunc) {
	defer func() {
		g.source.Stop()
		client.Close()
		g.finish(cancel)
		g.events <- repositories.RecognitionEvent{Kind: repositories.RecognitionEnded}
	}()

	for {
		resp, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return
		}
		if err != nil {
			g.events <- repositories.RecognitionEvent{
				Kind: repositories.RecognitionError,
				Err:  fmt.Errorf("recognition stream: %w", err),
			}
			return
		}

		for _, result := range resp.Results {
			if !result.IsFinal || len(result.Alternatives) == 0 {
				continue
			}
			g.events <- repositories.RecognitionEvent{
				Kind:       repositories.RecognitionResult,
				Transcript: result.Alternatives[0].Transcript,
			}
			return
		}
	}
}
