package main

import (
	"context"
	"flag"
	"time"

	"github.com/Playbex/Velocity-CTD/internal/diagnostics"
	"github.com/Playbex/Velocity-CTD/locale"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// ServeCMD keeps the process alive so the diagnostics ledger and the
// metrics loop run continuously, the way the teacher's proxy subcommands
// block on ctx.Done() once a session is up.
type ServeCMD struct {
	ledgerPath      string
	metricsInterval time.Duration
}

func (*ServeCMD) Name() string     { return "serve" }
func (*ServeCMD) Synopsis() string { return "run the diagnostics ledger and metrics loop" }
func (*ServeCMD) Usage() string    { return "serve [-ledger path] [-metrics-interval dur]\n" }

func (c *ServeCMD) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerPath, "ledger", "", "path to the violation ledger (defaults to config value)")
	f.DurationVar(&c.metricsInterval, "metrics-interval", 0, "memory metrics sample interval (defaults to config value)")
}

func (c *ServeCMD) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := configFromContext(ctx)

	ledgerPath := c.ledgerPath
	if ledgerPath == "" {
		ledgerPath = cfg.DiagnosticsPath
	}
	ledger, err := diagnostics.OpenLedger(ledgerPath)
	if err != nil {
		logrus.Error(locale.Loc("cli.ledgerOpenFailed", locale.Strmap{"Path": ledgerPath, "Err": err}))
		return subcommands.ExitFailure
	}
	defer ledger.Close()

	interval := c.metricsInterval
	if interval <= 0 {
		interval = time.Duration(cfg.MetricsInterval) * time.Second
	}

	logrus.Info(locale.Loc("cli.starting", locale.Strmap{"Addr": cfg.ListenAddress}))
	diagnostics.RunMetricsLoop(ctx, interval)
	return subcommands.ExitSuccess
}
