package access

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	apistacks "github.com/dstackai/dstack/api/types/stacks"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
)

const (
	ARG_STACK  = "STACK"
	ARG_ACCESS = "private|public"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Make a stack private or public.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_STACK, Required: true,
				Help: `Stack to change, named as STACK or USER/STACK.`,
			},
			{
				Name: ARG_ACCESS, Required: true,
				Help: `"private": only you see the stack. "public": everyone sees it.`,
			},
		},
		common.NewTask(Task()),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		profile profiles.Profile,
		client krst.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		path, err := apistacks.ParsePath(cl.Args()[ARG_STACK][0], profile.User)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		var private bool
		switch access := cl.Args()[ARG_ACCESS][0]; access {
		case "private":
			private = true
		case "public":
			private = false
		default:
			return fmt.Errorf(
				`%w: access should be "private" or "public": %s`, flarc.ErrUsage, access,
			)
		}

		stack, err := client.SetStackAccess(ctx, path, private)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(stack)
	}
}
