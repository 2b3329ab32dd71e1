// Command feedwatch polls a moodfeed server and prints the merged feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"moodfeed/internal/config"
	"moodfeed/internal/feed"
	"moodfeed/internal/middleware"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseURL := flag.String("url", "http://localhost:"+cfg.Port+"/api/v1", "API base URL")
	identifier := flag.String("user", "", "Email or username to log in as")
	password := flag.String("password", "", "Password for -user")
	draft := flag.String("post", "", "Submit this text before watching")
	interval := flag.Duration("interval", cfg.FeedPollInterval(), "Poll interval")
	once := flag.Bool("once", false, "Print a single snapshot and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := feed.NewClient(*baseURL, nil)
	var opts []feed.Option
	opts = append(opts, feed.WithLogger(middleware.Logger))
	if *identifier != "" {
		user, err := client.Login(ctx, *identifier, *password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		opts = append(opts, feed.WithAuthor(user.Snapshot()))
		middleware.Logger.Info("Logged in", slog.String("username", user.Username))
	}

	f := feed.New(client, opts...)

	if err := f.Poll(ctx); err != nil {
		return fmt.Errorf("initial fetch: %w", err)
	}
	if *draft != "" {
		entry, err := f.Submit(ctx, *draft)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		middleware.Logger.Info("Posted", slog.String("id", entry.Post.ID), slog.String("emoji", entry.Post.FeelingEmoji))
	}
	if *once {
		render(os.Stdout, f.Items())
		return nil
	}

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				render(os.Stdout, f.Items())
			}
		}
	}()

	err = f.Run(ctx, *interval)
	f.Stop()
	return err
}

func render(w io.Writer, items []feed.Item) {
	_, _ = fmt.Fprintf(w, "\n── %s ── %d posts\n", time.Now().Format(time.TimeOnly), len(items))
	for _, it := range items {
		p := it.Post
		marker := " "
		if it.Pending {
			marker = "…"
		}
		edited := ""
		if p.Edited() {
			edited = " (edited)"
		}
		content := strings.ReplaceAll(p.Content, "\n", " ")
		_, _ = fmt.Fprintf(w, "%s %s  @%s: %s%s\n", marker, p.FeelingEmoji, p.OwnerName("unknown"), content, edited)
	}
}
