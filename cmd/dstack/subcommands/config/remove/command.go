package remove

import (
	"context"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
)

const ARG_PROFILE = "PROFILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Remove a profile from the config file.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROFILE, Required: false,
				Help: `Name of the profile to be removed. Default: the --profile value.`,
			},
		},
		common.NewTaskWithCommonFlag(Task()),
	)
}

func Task() common.TaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		name := commonFlag.Profile
		if args := cl.Args()[ARG_PROFILE]; 0 < len(args) {
			name = args[0]
		}

		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			return err
		}

		if _, ok := store[name]; !ok {
			return fmt.Errorf(
				"profile '%s' not found in the config file (%s)",
				name, commonFlag.ProfileStore,
			)
		}
		delete(store, name)

		if err := store.Save(commonFlag.ProfileStore); err != nil {
			return err
		}

		fmt.Fprintf(cl.Stdout(), "profile '%s' is removed\n", name)
		return nil
	}
}
