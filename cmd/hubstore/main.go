package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nexusbridge/hubstore/config"
	"github.com/nexusbridge/hubstore/internal/branchview"
	"github.com/nexusbridge/hubstore/internal/hub/githubclient"
	"github.com/nexusbridge/hubstore/internal/snapshot"
	"github.com/nexusbridge/hubstore/internal/store"
	"github.com/nexusbridge/hubstore/internal/store/memstore"
	"github.com/nexusbridge/hubstore/internal/syncengine"
	"github.com/nexusbridge/hubstore/output"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "dversion"
	date    = "unknown"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	cfg, err := config.Load("hubstore.yaml")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	ctx := context.Background()
	st := memstore.New()
	pub := st.Branch(cfg.PubBranch)
	priv := st.Branch(cfg.PrivBranch)
	client := githubclient.New(ctx, cfg.Token)
	printer := output.New(os.Stdout)

	engine := &syncengine.Engine{
		Pub:    pub,
		Priv:   priv,
		Client: client,
		Dry:    cfg.DryUpdates,
	}

	app := &cli.App{
		Name:                 "hubstore",
		Usage:                "Bridge a GitHub-like remote into a versioned file store",
		HideVersion:          true,
		Version:              fmt.Sprintf("%s : %s : %s\n", version, date, commit[:8]),
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Suppress Hub writes",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Show verbose logging",
			},
			&cli.BoolFlag{
				Name:  "profile",
				Usage: "Show per-tick step timing",
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				cfg.Verbose = true
			}
			if c.IsSet("dry-run") {
				engine.Dry = true
			}
			if c.IsSet("profile") {
				engine.ProfilingEnable()
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if c.IsSet("profile") {
				return engine.ProfilingSummary()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the sync engine with the configured policy (by default continuously, reacting to branch changes)",
				Action: func(c *cli.Context) error {
					before, err := branchSnapshot(pub)
					if err != nil {
						return err
					}
					policy := syncengine.Repeat
					if cfg.Policy == config.PolicyOnce {
						policy = syncengine.Once
					}
					if err := engine.Run(ctx, policy); err != nil {
						return err
					}
					after, err := branchSnapshot(pub)
					if err != nil {
						return err
					}
					output.TickSummary(printer, before, after)
					return nil
				},
			},
			{
				Name:  "once",
				Usage: "Run a single sync tick and exit",
				Action: func(c *cli.Context) error {
					before, err := branchSnapshot(pub)
					if err != nil {
						return err
					}
					if err := engine.Run(ctx, syncengine.Once); err != nil {
						return err
					}
					after, err := branchSnapshot(pub)
					if err != nil {
						return err
					}
					output.TickSummary(printer, before, after)
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Show version info",
				Action: func(c *cli.Context) error {
					return cli.Exit(c.App.Version, 0)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// branchSnapshot reads branch's current snapshot without holding a
// transaction open, for before/after reporting around a tick.
func branchSnapshot(branch store.Branch) (snapshot.Snapshot, error) {
	v, err := branchview.Open(branch, nil)
	if err != nil {
		return snapshot.Empty(), err
	}
	if err := v.Abort(); err != nil {
		return snapshot.Empty(), err
	}
	return v.Snapshot, nil
}
