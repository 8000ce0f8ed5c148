package common

import (
	"os"
	"path/filepath"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
)

// CommonFlags are accepted by every subcommand talking to a dstack server.
type CommonFlags struct {
	Profile      string `flag:"profile" help:"profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to the config file holding profiles"`
}

// DefaultProfile is used when --profile is not passed.
const DefaultProfile = "default"

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags builds the default CommonFlags.
//
// The profile store defaults to ~/.dstack/config.yaml and the profile
// name to "default", overridable by the DSTACK_PROFILE environment
// variable.
func Flags(opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{
		home: "",
	}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	store := ""
	if detparam.home != "" {
		store = filepath.Join(detparam.home, ".dstack", "config.yaml")
	} else {
		p, err := profiles.DefaultPath()
		if err != nil {
			return CommonFlags{}, err
		}
		store = p
	}

	profile := DefaultProfile
	if p := os.Getenv("DSTACK_PROFILE"); p != "" {
		profile = p
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: store,
	}, nil
}

type CommonFlagOption func(*CommonFlags) *CommonFlags

func WithProfile(profile string, store string) CommonFlagOption {
	return func(opt *CommonFlags) *CommonFlags {
		opt.Profile = profile
		opt.ProfileStore = store
		return opt
	}
}
