package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/calremind/calendar"
	"github.com/guilherme-santos/calremind/calendar/google"
	"github.com/guilherme-santos/calremind/internal/authflow"
	"github.com/guilherme-santos/calremind/internal/bot"
	"github.com/guilherme-santos/calremind/internal/config"
	"github.com/guilherme-santos/calremind/internal/console"
	"github.com/guilherme-santos/calremind/internal/fetcher"
	"github.com/guilherme-santos/calremind/internal/notify"
	"github.com/guilherme-santos/calremind/internal/reminder"
	"github.com/guilherme-santos/calremind/internal/schedule"
	"github.com/guilherme-santos/calremind/internal/sqlite"
)

const googleProvider = "google"

var flags struct {
	once        bool
	calendarIDs stringsFlag
}

func init() {
	flag.BoolVar(&flags.once, "once", false, "run a single tick and exit")
	flag.Var(&flags.calendarIDs, "calendar-id", "additional google calendar id to poll (repeatable)")
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		logger.Info("signal received, shutting down")
		cancel()
	}()

	credJSON, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Error("unable to read google credentials file", "error", err)
		os.Exit(1)
	}
	oauthCfg, err := authflow.ConfigFromCredentials(credJSON)
	if err != nil {
		logger.Error("unable to parse google credentials", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("unable to resolve timezone", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open(sqlite.DriverName, cfg.DatabaseFile)
	if err != nil {
		logger.Error("unable to open credential database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := sqlite.NewStorage(db, googleProvider)
	flow := authflow.New(oauthCfg, store, logger)

	mux := calendar.NewMux()
	mux.Register(googleProvider, google.NewClient(logger))

	calendars := cfg.File.Calendars
	for _, id := range flags.calendarIDs {
		calendars = append(calendars, calremindCalendar(id))
	}

	// The console messenger stands in for the chat client; a gateway
	// client would be constructed here from cfg.BotToken instead.
	messenger := console.New(os.Stdin, os.Stdout, cfg.Tenant().String(), cfg.File.Admins[0], logger)
	sink := notify.NewSink(messenger, cfg.LogChannelID, logger)

	svc := reminder.NewService(reminder.ServiceConfig{
		Flow:      flow,
		Fetcher:   fetcher.New(mux, logger),
		Sink:      sink,
		Logger:    logger,
		Tenant:    cfg.Tenant(),
		Calendars: calendars,
		Rules:     cfg.Rules(),
		Now:       func() time.Time { return time.Now().In(loc) },
	})

	if flags.once {
		svc.Run(ctx)
		return
	}

	sched := schedule.New(ctx, svc.Run, loc, logger)
	if err := sched.Start(cfg.File.Cron); err != nil {
		logger.Error("unable to install trigger", "error", err)
		os.Exit(1)
	}

	handler := bot.NewHandler(bot.HandlerConfig{
		Messenger: messenger,
		Flow:      flow,
		Scheduler: sched,
		Logger:    logger,
		Admins:    cfg.File.Admins,
		Guilds:    cfg.File.Guilds,
	})
	handler.Register()

	if err := messenger.Connect(ctx); err != nil {
		logger.Error("unable to connect messenger", "error", err)
		os.Exit(1)
	}

	if !flow.IsAuthorized(ctx, cfg.Tenant()) {
		nudgeAuthorization(ctx, flow, sink, cfg, logger)
	}

	logger.Info("calremind started",
		"tenant", cfg.Tenant(),
		"cron", cfg.File.Cron,
		"calendars", len(calendars),
		"reminders", len(cfg.Rules()),
	)

	<-ctx.Done()

	stopped := sched.Stop()
	<-stopped.Done()
	messenger.Close()
	logger.Info("calremind exiting")
}

// nudgeAuthorization posts the consent URL to the logging channel at
// startup so an unauthorized deployment is visible immediately instead
// of failing silently until the first tick.
func nudgeAuthorization(ctx context.Context, flow *authflow.Flow, sink *notify.Sink, cfg *config.Config, logger *slog.Logger) {
	url, err := flow.BeginGrant(ctx, cfg.Tenant())
	if err != nil {
		logger.Error("unable to begin grant", "error", err)
		return
	}
	msg := "Google Calendar is not authorized! Navigate to the URL:\n<" + url + ">\nand type `link paste-code-here`."
	if err := sink.Send(ctx, msg); err != nil {
		logger.Error("unable to post authorization notice", "error", err)
	}
}
