package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/Playbex/Velocity-CTD/internal/diagnostics"
	"github.com/Playbex/Velocity-CTD/locale"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// StatsCMD dumps every violation recorded in the ledger, newest last.
type StatsCMD struct {
	ledgerPath string
}

func (*StatsCMD) Name() string     { return "stats" }
func (*StatsCMD) Synopsis() string { return "print recorded protocol/invariant violations" }
func (*StatsCMD) Usage() string    { return "stats [-ledger path]\n" }

func (c *StatsCMD) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerPath, "ledger", "", "path to the violation ledger (defaults to config value)")
}

func (c *StatsCMD) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	records, err := ledger.All()
	if err != nil {
		logrus.Error(err)
		return subcommands.ExitFailure
	}
	if len(records) == 0 {
		fmt.Println(locale.Loc("cli.noViolations", nil))
		return subcommands.ExitSuccess
	}
	for _, r := range records {
		fmt.Println(locale.Loc("cli.violationLine", locale.Strmap{
			"Kind":    r.Kind,
			"Player":  r.Player,
			"When":    r.RecordedAt.Format("2006-01-02 15:04:05"),
			"Message": r.Message,
		}))
	}
	return subcommands.ExitSuccess
}
