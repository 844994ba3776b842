// Package bot turns inbound chat messages into authorization and
// scheduler actions. The command surface is intentionally small:
//
//	login        begin the grant flow, consent URL goes out by DM (admins)
//	link <code>  complete the grant flow with the one-time code
//	forcerun     run the reminder pipeline out of band
//
// Outcomes are acknowledged with a visible reaction so a malformed
// command never disappears into the logs.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guilherme-santos/calremind"
)

const (
	reactOK   = "✅"
	reactFail = "❌"
)

// Flow is the slice of the authorization flow driven by commands.
type Flow interface {
	BeginGrant(ctx context.Context, tenant calremind.Tenant) (string, error)
	CompleteGrant(ctx context.Context, tenant calremind.Tenant, code string) error
}

// Scheduler triggers a manual pipeline run.
type Scheduler interface {
	ForceRun()
}

type Handler struct {
	messenger calremind.Messenger
	flow      Flow
	scheduler Scheduler
	logger    *slog.Logger

	admins map[string]bool
	guilds map[string]bool
}

type HandlerConfig struct {
	Messenger calremind.Messenger
	Flow      Flow
	Scheduler Scheduler
	Logger    *slog.Logger
	// Admins may run `login`. Guilds is the tenant allowlist; empty
	// means every guild is accepted.
	Admins []string
	Guilds []string
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	admins := make(map[string]bool, len(cfg.Admins))
	for _, id := range cfg.Admins {
		admins[id] = true
	}
	guilds := make(map[string]bool, len(cfg.Guilds))
	for _, id := range cfg.Guilds {
		guilds[id] = true
	}

	return &Handler{
		messenger: cfg.Messenger,
		flow:      cfg.Flow,
		scheduler: cfg.Scheduler,
		logger:    logger,
		admins:    admins,
		guilds:    guilds,
	}
}

// Register installs the handler on the messenger.
func (h *Handler) Register() {
	h.messenger.OnMessage(h.HandleMessage)
}

func (h *Handler) HandleMessage(ctx context.Context, msg calremind.Message) {
	if len(h.guilds) > 0 && !h.guilds[msg.GuildID] {
		return
	}

	fields := strings.Fields(msg.Content)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "login":
		h.login(ctx, msg)
	case "link":
		h.link(ctx, msg, fields)
	case "forcerun":
		h.forceRun(ctx, msg)
	}
}

func (h *Handler) login(ctx context.Context, msg calremind.Message) {
	if !h.admins[msg.UserID] {
		h.logger.Warn("login refused, user is not an admin", "user_id", msg.UserID)
		h.react(ctx, msg, reactFail)
		return
	}

	url, err := h.flow.BeginGrant(ctx, calremind.Tenant(msg.GuildID))
	if err != nil {
		h.logger.Error("unable to begin grant", "guild_id", msg.GuildID, "error", err)
		h.react(ctx, msg, reactFail)
		return
	}

	dm := fmt.Sprintf("Navigate to the URL:\n<%s>\nand type `link paste-code-here` back in the server.", url)
	if err := h.messenger.DirectMessage(ctx, msg.UserID, dm); err != nil {
		h.logger.Error("unable to DM consent URL", "user_id", msg.UserID, "error", err)
		h.react(ctx, msg, reactFail)
		return
	}

	h.react(ctx, msg, reactOK)
}

func (h *Handler) link(ctx context.Context, msg calremind.Message, fields []string) {
	if len(fields) < 2 {
		h.react(ctx, msg, reactFail)
		return
	}

	err := h.flow.CompleteGrant(ctx, calremind.Tenant(msg.GuildID), fields[1])
	if err != nil {
		h.logger.Error("unable to complete grant", "guild_id", msg.GuildID, "error", err)
		h.react(ctx, msg, reactFail)
		return
	}

	h.react(ctx, msg, reactOK)
}

func (h *Handler) forceRun(ctx context.Context, msg calremind.Message) {
	h.logger.Info("manual run requested", "user_id", msg.UserID)
	h.scheduler.ForceRun()
	h.react(ctx, msg, reactOK)
}

func (h *Handler) react(ctx context.Context, msg calremind.Message, emoji string) {
	if err := h.messenger.React(ctx, msg, emoji); err != nil {
		h.logger.Error("unable to react", "message_id", msg.ID, "error", err)
	}
}
