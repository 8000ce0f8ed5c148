package common_test

import (
	"path/filepath"
	"testing"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestFlags(t *testing.T) {
	t.Run("it locates the profile store in the user's home by default", func(t *testing.T) {
		t.Setenv("DSTACK_PROFILE", "")

		cf := try.To(common.Flags()).OrFatal(t)

		want := try.To(profiles.DefaultPath()).OrFatal(t)
		if cf.ProfileStore != want {
			t.Errorf("profile store: got %s, want %s", cf.ProfileStore, want)
		}
		if cf.Profile != common.DefaultProfile {
			t.Errorf("profile: got %s, want %s", cf.Profile, common.DefaultProfile)
		}
	})

	t.Run("it locates the profile store under the home passed by WithHome", func(t *testing.T) {
		t.Setenv("DSTACK_PROFILE", "")

		home := t.TempDir()
		cf := try.To(common.Flags(common.WithHome(home))).OrFatal(t)

		want := filepath.Join(home, ".dstack", "config.yaml")
		if cf.ProfileStore != want {
			t.Errorf("profile store: got %s, want %s", cf.ProfileStore, want)
		}
	})

	t.Run("it takes the profile name from DSTACK_PROFILE", func(t *testing.T) {
		t.Setenv("DSTACK_PROFILE", "staging")

		cf := try.To(common.Flags(common.WithHome(t.TempDir()))).OrFatal(t)

		if cf.Profile != "staging" {
			t.Errorf("profile: got %s, want staging", cf.Profile)
		}
	})
}
