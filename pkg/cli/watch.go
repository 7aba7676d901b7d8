package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
	"github.com/ourhour-lab/ourhour-go/pkg/cli/config"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/sse"
	"github.com/ourhour-lab/ourhour-go/pkg/usecase"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/async"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdWatch() *cli.Command {
	var clientCfg config.Client
	var credsCfg config.Credentials
	var bell bool
	var pageSize int

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "bell",
			Usage:       "Ring the terminal bell on new notifications",
			Value:       true,
			Sources:     cli.EnvVars("OURHOUR_BELL"),
			Destination: &bell,
		},
		&cli.IntFlag{
			Name:        "page-size",
			Usage:       "Notification page size",
			Value:       20,
			Sources:     cli.EnvVars("OURHOUR_PAGE_SIZE"),
			Destination: &pageSize,
		},
	}
	flags = append(flags, clientCfg.Flags()...)
	flags = append(flags, credsCfg.Flags()...)

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Stream live notifications to the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			watchCtx, stop := context.WithCancel(ctx)
			defer stop()

			client, err := clientCfg.Configure(
				apiclient.WithSessionExpiredHook(func() {
					logging.Default().Error("session expired, shutting down")
					stop()
				}),
			)
			if err != nil {
				return err
			}

			if err := credsCfg.SignIn(watchCtx, client); err != nil {
				return err
			}

			feedOpts := []usecase.FeedOption{usecase.WithPageSize(pageSize)}
			if bell {
				feedOpts = append(feedOpts, usecase.WithNotifier(newTerminalNotifier(os.Stdout)))
			}
			feed := usecase.NewFeed(client, feedOpts...)

			if err := feed.Refresh(watchCtx); err != nil {
				return goerr.Wrap(err, "failed to load notification feed")
			}
			printFeedSummary(feed)

			streamURL := strings.TrimSuffix(client.BaseURL(), "/") + "/api/notifications/stream"
			manager := sse.NewManager(sse.Config{
				URL:           streamURL,
				HasToken:      client.Session().Authenticated,
				ExchangeToken: client.Auth.SSEToken,
				Dialer:        sse.NewDialer(client.CookieJar()),
				OnEvent: func(ctx context.Context, ev *model.StreamEvent) {
					// The settle refetch hits the network; keep it off the
					// stream's read goroutine.
					async.Dispatch(ctx, func(ctx context.Context) error {
						feed.HandleEvent(ctx, ev)
						printStreamEvent(ev, feed)
						return nil
					})
				},
				OnOpen: func(ctx context.Context) {
					feed.HandleOpen(ctx)
					color.Green("-- live updates connected --")
				},
				OnError: feed.HandleStreamError,
			})

			manager.Connect(watchCtx)
			defer manager.Disconnect()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logging.From(watchCtx).Info("Received shutdown signal", "signal", sig)
			case <-watchCtx.Done():
			}

			manager.Disconnect()
			return nil
		},
	}
}

func printFeedSummary(feed *usecase.Feed) {
	unread := feed.UnreadCount()
	total := len(feed.Notifications())
	fmt.Printf("%d notifications, %s\n", total,
		color.New(color.Bold).Sprintf("%d unread", unread))

	for _, n := range feed.Notifications() {
		printNotification(&n)
	}
}

func printStreamEvent(ev *model.StreamEvent, feed *usecase.Feed) {
	if ev.Notification != nil {
		printNotification(ev.Notification)
		return
	}
	if msg := feed.StreamError(); msg != "" {
		color.Yellow("-- %s --", msg)
	}
}

func printNotification(n *model.Notification) {
	marker := " "
	if !n.IsRead {
		marker = color.New(color.FgCyan).Sprint("*")
	}
	fmt.Printf("%s [%s] %s: %s\n", marker, n.Type, n.Title, n.Message)
}
