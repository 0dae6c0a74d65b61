package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"board/internal/auth"
	"board/internal/config"
	"board/internal/db"
	"board/internal/handlers"
	"board/internal/models"
	"board/internal/observability"
	"board/internal/repository"
	"board/internal/seed"
	"board/internal/service"
)

const usage = `usage: board [-json] [-reveal] <command> [args]

commands:
  init                              create the schema and default user
  posts                             list posts, newest first
  post show ID                      show a post and its replies
  post new -title T -content C [-tag TAG]
  post edit ID [-title T] [-content C] [-tag TAG]
  post rm ID
  post like ID                      toggle your like
  comments POST_ID
  comment new POST_ID -content C
  comment edit ID -content C
  comment rm ID
  comment like ID                   toggle your like
  seed [-posts N] [-comments N] [-likes PCT]
  stats                             data-layer metrics for this run
`

func main() {
	os.Exit(run())
}

func run() int {
	jsonOut := flag.Bool("json", false, "print JSON instead of text")
	reveal := flag.Bool("reveal", false, "show Nsfw and Spoiler content")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	observability.SetupLogger(os.Stderr, level, cfg.IsProduction())
	observability.MetricsEnabled = cfg.MetricsEnabled

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName: "board",
		Environment: cfg.Env,
		Enabled:     cfg.TracingEnabled,
		Writer:      os.Stderr,
	})
	if err != nil {
		log.Printf("tracing: %v", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			observability.Logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider := db.NewProvider(cfg.DBPath,
		db.WithBusyTimeout(time.Duration(cfg.DBBusyTimeoutMS)*time.Millisecond),
		db.WithSchema(),
	)
	defer provider.Close()

	posts := repository.NewPostRepository(provider)
	comments := repository.NewCommentRepository(provider)
	users := repository.NewUserRepository(provider)

	svc := service.NewBoardService(posts, comments)
	sessions := auth.NewManager(users, cfg.CurrentUserID)
	seeder := seed.NewFactory(posts, comments, time.Now().UnixNano())

	h := handlers.New(svc, sessions, seeder, os.Stdout)
	h.JSON = *jsonOut
	h.Reveal = *reveal

	if err := h.Dispatch(ctx, flag.Args()); err != nil {
		return report(err)
	}
	return 0
}

// report prints err for the user and picks the exit status.
func report(err error) int {
	switch {
	case errors.Is(err, handlers.ErrUsage):
		fmt.Fprintf(os.Stderr, "board: %v\n\n%s", err, usage)
		return 2
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrNotFound):
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		return 1
	default:
		observability.Logger.Error("command failed", "error", err, "code", models.CodeOf(err))
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		return 1
	}
}
