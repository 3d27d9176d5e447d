package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/username/tradedata/src/cli"
	"github.com/username/tradedata/src/config"
	"github.com/username/tradedata/src/logger"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	commander := subcommands.NewCommander(flag.CommandLine, "tradedata")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
