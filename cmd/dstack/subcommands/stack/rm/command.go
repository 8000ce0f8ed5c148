package rm

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/youta-t/flarc"

	apistacks "github.com/dstackai/dstack/api/types/stacks"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
)

type Flags struct {
	Force bool `flag:"force" alias:"f" help:"do not ask for confirmation"`
}

const ARG_STACK = "STACK"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove a stack with all of its frames.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_STACK, Required: true,
				Help: `Stack to remove, named as STACK or USER/STACK.`,
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Remove a stack. Every frame and every pushed payload of the stack is
removed with it. This cannot be undone.
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
		path, err := apistacks.ParsePath(cl.Args()[ARG_STACK][0], profile.User)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		if !cl.Flags().Force {
			fmt.Fprintf(cl.Stdout(), "remove stack %s? [y/N]: ", path)
			answer, err := bufio.NewReader(cl.Stdin()).ReadString('\n')
			if err != nil {
				return err
			}
			switch strings.TrimSpace(strings.ToLower(answer)) {
			case "y", "yes":
				// proceed
			default:
				logger.Println("canceled")
				return nil
			}
		}

		if err := client.DeleteStack(ctx, path); err != nil {
			return err
		}

		fmt.Fprintf(cl.Stdout(), "removed: %s\n", path)
		return nil
	}
}
