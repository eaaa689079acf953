package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Dosada05/tichu-tournament/db"
	"github.com/Dosada05/tichu-tournament/services"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tichuctl",
		Usage: "operator tasks for the tichu tournament service",
		Commands: []*cli.Command{
			newDBCommand(),
			newHashPasswordCommand(),
		},
	}
}

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply the embedded schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "database-url",
						Usage:    "postgres connection string",
						EnvVars:  []string{"DATABASE_URL"},
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 10 * time.Second,
						Usage: "connect and migrate timeout",
					},
				},
				Action: func(c *cli.Context) error {
					timeout := c.Duration("timeout")
					conn, err := db.Connect(c.String("database-url"), timeout)
					if err != nil {
						return err
					}
					defer conn.Close()

					ctx, cancel := context.WithTimeout(c.Context, timeout)
					defer cancel()
					if err := db.Migrate(ctx, conn); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "schema applied")
					return nil
				},
			},
			{
				Name:  "schema",
				Usage: "print the schema DDL",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprint(c.App.Writer, db.Schema())
					return err
				},
			},
		},
	}
}

func newHashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print a bcrypt hash for ORGANIZER_PASSWORD_HASH",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" || c.Args().Len() > 1 {
				return cli.Exit("exactly one password argument is required", 2)
			}
			hash, err := services.HashOrganizerPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}
