// Command chatqueue-inspector runs and inspects chat-ordering sessions
// outside of a live proxy: replaying captured packet logs through a
// ChatQueue, reporting persisted protocol/invariant violations, and
// checking for updates.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/Playbex/Velocity-CTD/internal/config"
	"github.com/Playbex/Velocity-CTD/locale"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

var version string

func main() {
	logrus.SetLevel(logrus.InfoLevel)
	if version != "" {
		logrus.Infof("chatqueue-inspector version: %s", version)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var configPath string
	var debug bool
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.BoolVar(&debug, "debug", false, "debug logging")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&ServeCMD{}, "")
	subcommands.Register(&StatsCMD{}, "")
	subcommands.Register(&ReplayCMD{}, "")
	subcommands.Register(&UpdateCMD{}, "")
	subcommands.ImportantFlag("config")
	subcommands.ImportantFlag("debug")

	if len(os.Args) < 2 {
		fmt.Println("Available commands:\n\tserve\tstats\treplay\tupdate\thelp")
		fmt.Printf("Input command: ")
		reader := bufio.NewReader(os.Stdin)
		target, _ := reader.ReadString('\n')
		r := regexp.MustCompile(`[\n\r]`)
		target = string(r.ReplaceAll([]byte(target), []byte("")))
		os.Args = append(os.Args, target)
	}

	flag.Parse()

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Warn(locale.Loc("cli.configLoadFailed", locale.Strmap{"Path": configPath, "Err": err}))
	}
	ctx = context.WithValue(ctx, configKey{}, cfg)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logrus.Info(locale.Loc("cli.stopping", nil))
		cancel()
	}()

	ret := subcommands.Execute(ctx)
	os.Exit(int(ret))
}

type configKey struct{}

func configFromContext(ctx context.Context) config.Config {
	cfg, _ := ctx.Value(configKey{}).(config.Config)
	return cfg
}
