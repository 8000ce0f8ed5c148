package add

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/youta-t/flarc"

	apiusers "github.com/dstackai/dstack/api/types/users"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	krst "github.com/dstackai/dstack/cmd/dstack/rest"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	"github.com/dstackai/dstack/pkg/utils/pointer"
)

type Flags struct {
	User     string `flag:"user" alias:"u" metavar:"NAME" help:"user name on the server"`
	Token    string `flag:"token" alias:"t" metavar:"TOKEN" help:"access token of the user"`
	Server   string `flag:"server" alias:"s" metavar:"URL" help:"server endpoint. Leave empty for the default."`
	NoVerify bool   `flag:"no-verify" help:"do not verify TLS certificates of the server"`
	Check    bool   `flag:"check" help:"verify the token against the server before saving"`
}

// Checker resolves a profile's token to the user owning it.
type Checker func(ctx context.Context, prof *profiles.Profile) (apiusers.Detail, error)

type Option struct {
	check Checker
}

func WithChecker(check Checker) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.check = check
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		check: CheckByWhoami,
	}
	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Save a profile into the config file.",
		Flags{},
		flarc.Args{},
		common.NewTaskWithCommonFlag(Task(option.check)),
		flarc.WithDescription(`
Save user, token and server of a profile into the config file.

The profile to save to is selected with --profile (default: "default").
Fields not passed keep their stored values, so

	{{ .Command }} --token NEW_TOKEN

updates the token only.

With --check, the token is sent to the server and the profile is saved
only when the server accepts it.
`),
	)
}

func Task(check Checker) common.TaskWithCommonFlag[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			if !errors.Is(err, profiles.ErrProfileStoreNotFound) {
				return err
			}
			store = profiles.ProfileStore{}
		}

		prof, ok := store[commonFlag.Profile]
		if !ok {
			prof = &profiles.Profile{}
			store[commonFlag.Profile] = prof
		}

		flags := cl.Flags()
		if flags.User != "" {
			prof.User = flags.User
		}
		if flags.Token != "" {
			prof.Token = flags.Token
		}
		if flags.Server != "" {
			prof.Server = flags.Server
		}
		if flags.NoVerify {
			prof.VerifyTLS = pointer.Ref(false)
		}

		if err := prof.Verify(); err != nil {
			return fmt.Errorf("%w: pass --user and --token", err)
		}

		if flags.Check {
			user, err := check(ctx, prof)
			if err != nil {
				return fmt.Errorf("%w: the profile is not saved", err)
			}
			logger.Printf("token is accepted. user: %s", user.Name)
		}

		if err := store.Save(commonFlag.ProfileStore); err != nil {
			return err
		}

		fmt.Fprintf(
			cl.Stdout(), "profile '%s' is saved in %s\n",
			commonFlag.Profile, commonFlag.ProfileStore,
		)
		return nil
	}
}

// CheckByWhoami asks the server which user the token belongs to.
func CheckByWhoami(ctx context.Context, prof *profiles.Profile) (apiusers.Detail, error) {
	client, err := krst.NewClient(prof)
	if err != nil {
		return apiusers.Detail{}, err
	}
	return client.Whoami(ctx)
}
