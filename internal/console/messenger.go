// Package console is a stdin/stdout Messenger used for local runs and
// manual testing. Each input line becomes an inbound message in the
// configured guild; sends, DMs and reactions are printed to the writer.
// The production chat client plugs in behind the same interface.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/guilherme-santos/calremind"
)

type Messenger struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	guildID string
	userID  string

	mu       sync.Mutex
	handlers []func(ctx context.Context, msg calremind.Message)
	nextID   int
}

func New(in io.Reader, out io.Writer, guildID, userID string, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{
		in:      in,
		out:     out,
		logger:  logger,
		guildID: guildID,
		userID:  userID,
	}
}

// Connect starts reading input lines and dispatching them to the
// registered handlers. It returns immediately.
func (m *Messenger) Connect(ctx context.Context) error {
	go m.readLoop(ctx)
	return nil
}

func (m *Messenger) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(m.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		m.mu.Lock()
		m.nextID++
		msg := calremind.Message{
			ID:        fmt.Sprintf("console-%d", m.nextID),
			ChannelID: "console",
			UserID:    m.userID,
			GuildID:   m.guildID,
			Content:   scanner.Text(),
		}
		handlers := make([]func(context.Context, calremind.Message), len(m.handlers))
		copy(handlers, m.handlers)
		m.mu.Unlock()

		for _, handler := range handlers {
			handler(ctx, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		m.logger.Error("console input closed", "error", err)
	}
}

func (m *Messenger) OnMessage(handler func(ctx context.Context, msg calremind.Message)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

func (m *Messenger) Channel(_ context.Context, id string) (calremind.Channel, error) {
	return &channel{out: m.out, id: id, mu: &m.mu}, nil
}

func (m *Messenger) DirectMessage(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := fmt.Fprintf(m.out, "[dm:%s] %s\n", userID, text)
	return err
}

func (m *Messenger) React(_ context.Context, msg calremind.Message, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := fmt.Fprintf(m.out, "[react:%s] %s\n", msg.ID, emoji)
	return err
}

func (m *Messenger) Close() error {
	return nil
}

type channel struct {
	out io.Writer
	id  string
	mu  *sync.Mutex
}

func (c *channel) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[%s] %s\n", c.id, text)
	return err
}
