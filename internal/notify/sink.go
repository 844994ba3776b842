// Package notify delivers reminder messages to the well-known logging
// channel on the chat platform.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/guilherme-santos/calremind"
)

// Sink resolves the logging channel lazily on first use and caches the
// handle for the lifetime of the process. A failed resolution fails only
// that send; the next send tries again.
type Sink struct {
	messenger calremind.Messenger
	channelID string
	logger    *slog.Logger

	mu      sync.Mutex
	channel calremind.Channel
}

func NewSink(messenger calremind.Messenger, channelID string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		messenger: messenger,
		channelID: channelID,
		logger:    logger,
	}
}

func (s *Sink) Send(ctx context.Context, text string) error {
	channel, err := s.resolve(ctx)
	if err != nil {
		return fmt.Errorf("notify: resolving channel %s: %w", s.channelID, err)
	}

	if err := channel.Send(ctx, text); err != nil {
		return fmt.Errorf("notify: sending to channel %s: %w", s.channelID, err)
	}

	s.logger.Debug("notification dispatched", "channel_id", s.channelID)
	return nil
}

func (s *Sink) resolve(ctx context.Context) (calremind.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		return s.channel, nil
	}

	channel, err := s.messenger.Channel(ctx, s.channelID)
	if err != nil {
		return nil, err
	}
	s.channel = channel
	return channel, nil
}
