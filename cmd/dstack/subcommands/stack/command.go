package stack

import (
	"github.com/youta-t/flarc"

	stack_access "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/access"
	stack_find "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/find"
	stack_rm "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/rm"
	stack_show "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/show"
)

func New() (flarc.Command, error) {
	find, err := stack_find.New()
	if err != nil {
		return nil, err
	}
	show, err := stack_show.New()
	if err != nil {
		return nil, err
	}
	rm, err := stack_rm.New()
	if err != nil {
		return nil, err
	}
	access, err := stack_access.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect and manage stacks.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("rm", rm),
		flarc.WithSubcommand("access", access),
	)
}
