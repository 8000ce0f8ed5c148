package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/youta-t/flarc"

	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	subconfig "github.com/dstackai/dstack/cmd/dstack/subcommands/config"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/logger"
	subpull "github.com/dstackai/dstack/cmd/dstack/subcommands/pull"
	subpush "github.com/dstackai/dstack/cmd/dstack/subcommands/push"
	subserver "github.com/dstackai/dstack/cmd/dstack/subcommands/server"
	substack "github.com/dstackai/dstack/cmd/dstack/subcommands/stack"
	subver "github.com/dstackai/dstack/cmd/dstack/subcommands/version"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags()).OrFatal(logger)
	config := try.To(subconfig.New()).OrFatal(logger)
	push := try.To(subpush.New()).OrFatal(logger)
	pull := try.To(subpull.New()).OrFatal(logger)
	stack := try.To(substack.New()).OrFatal(logger)
	server := try.To(subserver.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	dstack := try.To(
		flarc.NewCommandGroup(
			"dstack commandline interface",
			cf,
			flarc.WithSubcommand("config", config),
			flarc.WithSubcommand("push", push),
			flarc.WithSubcommand("pull", pull),
			flarc.WithSubcommand("stack", stack),
			flarc.WithSubcommand("server", server),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, dstack, flarc.WithHelp(true)))
}
