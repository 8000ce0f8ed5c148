package common

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krest "github.com/dstackai/dstack/cmd/dstack/rest"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		commonFlag, rest, ok := takeCommonFlags(pos)
		if !ok {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(
			cl.Stderr(), fmt.Sprintf("[%s] ", cl.Fullname()), log.LstdFlags,
		)

		return task(ctx, logger, commonFlag, cl, rest)
	}
}

// takeCommonFlags pulls the CommonFlags value out of the positional
// parameters the command group passes down.
func takeCommonFlags(pos []any) (CommonFlags, []any, bool) {
	var cf CommonFlags
	found := false
	rest := make([]any, 0, len(pos))
	for _, p := range pos {
		if v, ok := p.(CommonFlags); ok {
			cf = v
			found = true
			continue
		}
		rest = append(rest, p)
	}
	return cf, rest, found
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	profile profiles.Profile,
	client krest.Client,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {

	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			if errors.Is(err, profiles.ErrProfileStoreNotFound) {
				return fmt.Errorf(
					"%w. Please try `dstack config add` first",
					err,
				)
			}
			return fmt.Errorf(
				"%w: failed to load profiles (%s)",
				err, commonFlag.ProfileStore,
			)
		}
		prof, ok := store[commonFlag.Profile]
		if !ok {
			return fmt.Errorf(
				"profile '%s' not found in the config file (%s)",
				commonFlag.Profile, commonFlag.ProfileStore,
			)
		}

		client, err := krest.NewClient(prof)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create client. Your profile (%s in %s) can be broken.\n\nFix it with `dstack config add`",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, *prof, client, cl, params)
	})
}
