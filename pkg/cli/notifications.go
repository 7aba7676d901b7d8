package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
	"github.com/ourhour-lab/ourhour-go/pkg/cli/config"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdNotifications() *cli.Command {
	var clientCfg config.Client
	var credsCfg config.Credentials

	sharedFlags := append(clientCfg.Flags(), credsCfg.Flags()...)

	signedInClient := func(ctx context.Context) (*apiclient.Client, error) {
		client, err := clientCfg.Configure()
		if err != nil {
			return nil, err
		}
		if err := credsCfg.SignIn(ctx, client); err != nil {
			return nil, err
		}
		return client, nil
	}

	var page, size int

	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"n"},
		Usage:   "Manage the notification feed",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notifications",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1, Destination: &page},
					&cli.IntFlag{Name: "size", Value: 20, Destination: &size},
				}, sharedFlags...),
				Action: func(ctx context.Context, c *cli.Command) error {
					cc, err := signedInClient(ctx)
					if err != nil {
						return err
					}
					result, err := cc.Notifications.List(ctx, page, size)
					if err != nil {
						return err
					}
					for _, n := range result.Notifications {
						printNotification(&n)
					}
					if result.CurrentPage == 1 {
						fmt.Printf("%s, hasNext=%v\n",
							color.New(color.Bold).Sprintf("%d unread", result.UnreadCount),
							result.HasNext)
					}
					return nil
				},
			},
			{
				Name:      "read",
				Usage:     "Mark one notification as read",
				ArgsUsage: "<notification-id>",
				Flags:     sharedFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("notification ID argument is required")
					}
					id, err := strconv.ParseInt(c.Args().First(), 10, 64)
					if err != nil {
						return goerr.Wrap(err, "invalid notification ID",
							goerr.V("arg", c.Args().First()))
					}
					cc, err := signedInClient(ctx)
					if err != nil {
						return err
					}
					return cc.Notifications.MarkRead(ctx, types.NotificationID(id))
				},
			},
			{
				Name:  "read-all",
				Usage: "Mark every notification as read",
				Flags: sharedFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					cc, err := signedInClient(ctx)
					if err != nil {
						return err
					}
					changed, err := cc.Notifications.MarkAllRead(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("marked %d notifications as read\n", changed)
					return nil
				},
			},
			{
				Name:  "unread-count",
				Usage: "Show the unread badge count",
				Flags: sharedFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					cc, err := signedInClient(ctx)
					if err != nil {
						return err
					}
					count, err := cc.Notifications.UnreadCount(ctx)
					if err != nil {
						return err
					}
					fmt.Println(count)
					return nil
				},
			},
		},
	}
}
