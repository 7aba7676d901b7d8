package cli

import (
	"context"

	"github.com/ourhour-lab/ourhour-go/pkg/cli/config"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/errutil"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "ourhour",
		Usage:   "OurHour groupware command line client",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting ourhour", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdLogin(),
			cmdWatch(),
			cmdNotifications(),
			cmdMe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}
