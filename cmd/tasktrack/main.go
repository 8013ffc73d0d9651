// @title			tasktrack API
// @version		1.0
// @description	Task tracker with comments, activity log and filtered listing.
// @BasePath		/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Type "Bearer" followed by a space and the JWT.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mtlprog/tasktrack/internal/config"
	"github.com/mtlprog/tasktrack/internal/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	// Flags read EnvVars while parsing, so the dotenv file is loaded first.
	if err := loadEnvFile(envFilePath()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "tasktrack",
		Usage: "Task tracker with comments and activity log",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		}, serveFlags()...),
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run migrations and start the web server",
				Flags:  serveFlags(),
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: runMigrate,
			},
			{
				Name:  "create-user",
				Usage: "Create a user and print its id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Unique username",
						Required: true,
					},
				},
				Action: runCreateUser,
			},
			{
				Name:  "issue-token",
				Usage: "Print a signed bearer token for an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user-id",
						Usage:    "User UUID",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Value: config.DefaultTokenTTL,
						Usage: "Token lifetime",
					},
					jwtSecretFlag(),
				},
				Action: runIssueToken,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   config.DefaultPort,
			Usage:   "HTTP server port",
			EnvVars: []string{"PORT"},
		},
		&cli.IntFlag{
			Name:    "db-max-conns",
			Value:   config.DefaultMaxConns,
			Usage:   "Maximum database pool connections",
			EnvVars: []string{"DB_MAX_CONNS"},
		},
		jwtSecretFlag(),
	}
}

func jwtSecretFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "jwt-secret",
		Usage:   "HS256 secret shared with the identity provider",
		EnvVars: []string{"JWT_SECRET"},
	}
}
