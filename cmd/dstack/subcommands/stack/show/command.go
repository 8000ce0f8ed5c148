package show

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

const ARG_STACK = "STACK"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show a stack: its head frame and push history.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_STACK, Required: true,
				Help: `Stack to show, named as STACK or USER/STACK.`,
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

		stack, err := client.GetStack(ctx, path)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(stack)
	}
}
