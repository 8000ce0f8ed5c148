package find

import (
	"context"
	"encoding/json"
	"log"

	"github.com/youta-t/flarc"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	kargs "github.com/dstackai/dstack/pkg/utils/args"
)

type Flags struct {
	User  string        `flag:"user" alias:"u" metavar:"NAME" help:"find stacks owned by this user only"`
	Param *kargs.Params `flag:"param" alias:"p" metavar:"KEY:VALUE..." help:"find stacks whose head carries all of these params. Repeatable."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find stacks visible to you.",
		Flags{
			Param: &kargs.Params{},
		},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Find stacks. Without flags, every stack you are allowed to see is listed:
your own stacks and public stacks of others.
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		profile profiles.Profile,
		client krst.Client,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()

		ps := kargs.Params{}
		if flags.Param != nil {
			ps = *flags.Param
		}
		stacks, err := client.FindStacks(ctx, flags.User, ps)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(stacks)
	}
}
