package calremind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrCredentialNotFound is returned by a CredentialStore when a tenant
	// was never authorized. It is an expected state, not a failure.
	ErrCredentialNotFound = errors.New("calremind: credential not found")

	// ErrNotAuthorized is returned when an operation needs a valid
	// credential and the tenant has none, or the stored grant was revoked.
	ErrNotAuthorized = errors.New("calremind: tenant is not authorized")
)

// Tenant identifies the logical owner of a credential, a guild or
// workspace id on the chat platform.
type Tenant string

func (t Tenant) String() string {
	return string(t)
}

// Calendar is a single calendar to be polled for events.
type Calendar struct {
	ID       string `yaml:"id"`
	Platform string `yaml:"platform"`
	Name     string `yaml:"name"`
}

func (c Calendar) String() string {
	return fmt.Sprintf("%s/%s", c.Platform, c.ID)
}

// Event is a normalized calendar event. All-day events carry local
// midnight boundaries derived from the provider's date-only fields.
type Event struct {
	ID       string
	Name     string
	AllDay   bool
	StartsAt time.Time
	EndsAt   time.Time
	Location string
}

// Rules maps an exact event name to the reminder message sent when an
// event with that name is found. Immutable after configuration load.
type Rules map[string]string

// CredentialStore persists one renewable oauth token per tenant.
// Load and Save are atomic with respect to each other for a tenant.
type CredentialStore interface {
	// Load returns ErrCredentialNotFound when the tenant never authorized.
	Load(ctx context.Context, tenant Tenant) (*oauth2.Token, error)
	Save(ctx context.Context, tenant Tenant, token *oauth2.Token) error
}

// Iterator walks events streamed from a provider.
type Iterator interface {
	Next() bool
	Event() *Event
	Err() error
}

// Provider fetches events from one calendar platform using the tenant's
// credential. Events come back in the provider's own start-time order.
type Provider interface {
	Events(_ context.Context, _ *oauth2.Token, calendarID string, from, to time.Time) (Iterator, error)
}

// Mux resolves the Provider registered for a platform.
type Mux interface {
	Get(platform string) (Provider, error)
}

// Message is an inbound chat message handed to the command handler.
type Message struct {
	ID        string
	ChannelID string
	UserID    string
	GuildID   string
	Content   string
}

// Channel is an outbound chat destination.
type Channel interface {
	Send(ctx context.Context, text string) error
}

// Messenger is the chat platform collaborator. The client itself
// (connect, login, gateway) is outside the core; the core only consumes
// inbound commands and produces sends and reactions.
type Messenger interface {
	Connect(ctx context.Context) error
	OnMessage(handler func(ctx context.Context, msg Message))
	Channel(ctx context.Context, id string) (Channel, error)
	DirectMessage(ctx context.Context, userID, text string) error
	React(ctx context.Context, msg Message, emoji string) error
	Close() error
}
