package config

import (
	"github.com/youta-t/flarc"

	config_add "github.com/dstackai/dstack/cmd/dstack/subcommands/config/add"
	config_list "github.com/dstackai/dstack/cmd/dstack/subcommands/config/list"
	config_remove "github.com/dstackai/dstack/cmd/dstack/subcommands/config/remove"
)

func New() (flarc.Command, error) {
	add, err := config_add.New()
	if err != nil {
		return nil, err
	}
	list, err := config_list.New()
	if err != nil {
		return nil, err
	}
	remove, err := config_remove.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage profiles in the config file.",
		struct{}{},
		flarc.WithSubcommand("add", add),
		flarc.WithSubcommand("list", list),
		flarc.WithSubcommand("remove", remove),
	)
}
