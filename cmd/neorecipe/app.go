package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	neorecipe "github.com/saulfrancisco-ruizacevedo/go-neorecipe"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/catalog"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/logging"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/server"
)

const name = "neorecipe"

// app carries state shared by the subcommands once the root Before hook has
// loaded configuration.
type app struct {
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Recipe catalog backed by Neo4j",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or TOML config file",
				Sources: cli.EnvVars("NEORECIPE_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json); overrides the config file",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.serveCmd(),
			a.seedCmd(),
			a.matchCmd(),
			a.verifyCmd(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.SetDefault(cfg.Log.Format, cfg.Log.Level, nil)
	return ctx, nil
}

// connect opens the executor and builds a Manager over it. The returned
// close function releases the driver.
func (a *app) connect() (*neorecipe.Manager, func(context.Context), error) {
	n := a.cfg.Neo4j
	exec, err := neorecipe.NewNeo4jExecutor(n.URI, n.Username, n.Password, n.Database,
		neorecipe.WithQueryTimeout(n.QueryTimeout),
		neorecipe.WithExecutorLogger(a.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func(ctx context.Context) {
		if err := exec.Close(ctx); err != nil {
			a.logger.Warn("closing driver", "error", err)
		}
	}

	m, err := neorecipe.NewManager(exec, neorecipe.WithLogger(a.logger))
	if err != nil {
		closeFn(context.Background())
		return nil, nil, err
	}
	return m, closeFn, nil
}

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port; overrides the config file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.IsSet("port") {
				a.cfg.Server.Port = int(cmd.Int("port"))
			}

			m, closeFn, err := a.connect()
			if err != nil {
				return err
			}
			defer closeFn(context.Background())

			if err := m.Verify(ctx); err != nil {
				a.logger.Warn("neo4j not reachable yet; /ready will report it", "error", err)
			}

			return server.NewServer(a.cfg.Server, m, server.WithLogger(a.logger)).Run(ctx)
		},
	}
}

func (a *app) seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load ingredients and recipes from a YAML catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Catalog file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := catalog.LoadFile(cmd.String("file"))
			if err != nil {
				return err
			}

			m, closeFn, err := a.connect()
			if err != nil {
				return err
			}
			defer closeFn(context.Background())

			sum, err := catalog.Seed(ctx, m, c, a.logger)
			if err != nil {
				return fmt.Errorf("seed %s: %w", cmd.String("file"), err)
			}
			return a.printJSON(sum)
		},
	}
}

func (a *app) matchCmd() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Rank recipes by the ingredients at hand, fewest missing first",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "ingredient",
				Aliases: []string{"i"},
				Usage:   "Available ingredient id (can be repeated)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Print at most this many recipes (0 for all)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, closeFn, err := a.connect()
			if err != nil {
				return err
			}
			defer closeFn(context.Background())

			ranked, err := m.GetRecipesByIngredients(ctx, cmd.StringSlice("ingredient"))
			if err != nil {
				return err
			}
			if limit := int(cmd.Int("limit")); limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}
			return a.printJSON(ranked)
		},
	}
}

func (a *app) verifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check connectivity to the configured Neo4j database",
		Action: func(ctx context.Context, _ *cli.Command) error {
			m, closeFn, err := a.connect()
			if err != nil {
				return err
			}
			defer closeFn(context.Background())

			if err := m.Verify(ctx); err != nil {
				return fmt.Errorf("could not connect to %s: %w", a.cfg.Neo4j.URI, err)
			}
			_, err = fmt.Fprintf(a.out, "connection to %s ok\n", a.cfg.Neo4j.URI)
			return err
		},
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
