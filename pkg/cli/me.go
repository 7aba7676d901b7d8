package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/ourhour-lab/ourhour-go/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdMe() *cli.Command {
	var clientCfg config.Client
	var credsCfg config.Credentials
	var orgID int64

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "org",
			Usage:       "Organization ID to show member info for (0 lists organizations)",
			Sources:     cli.EnvVars("OURHOUR_ORG_ID"),
			Destination: &orgID,
		},
	}
	flags = append(flags, clientCfg.Flags()...)
	flags = append(flags, credsCfg.Flags()...)

	return &cli.Command{
		Name:  "me",
		Usage: "Show the signed-in user's organizations or member profile",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := clientCfg.Configure()
			if err != nil {
				return err
			}
			if err := credsCfg.SignIn(ctx, client); err != nil {
				return err
			}

			if orgID == 0 {
				orgs, err := client.Org.MyOrganizations(ctx)
				if err != nil {
					return err
				}
				for _, org := range orgs {
					fmt.Printf("%d  %s", org.OrgID, color.New(color.Bold).Sprint(org.Name))
					if org.Role != "" {
						fmt.Printf("  (%s)", org.Role)
					}
					fmt.Println()
				}
				return nil
			}

			member, err := client.Org.MyMemberInfo(ctx, orgID)
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>\n", color.New(color.Bold).Sprint(member.Name), member.Email)
			if member.Position != "" || member.Dept != "" {
				fmt.Printf("  %s %s\n", member.Position, member.Dept)
			}
			return nil
		},
	}
}
