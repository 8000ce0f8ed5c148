package add_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apiusers "github.com/dstackai/dstack/api/types/users"
	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	config_add "github.com/dstackai/dstack/cmd/dstack/subcommands/config/add"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/internal/commandline"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/logger"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestAddCommand(t *testing.T) {
	run := func(
		t *testing.T,
		store string,
		profile string,
		flags config_add.Flags,
		check config_add.Checker,
	) error {
		t.Helper()

		if check == nil {
			check = func(context.Context, *profiles.Profile) (apiusers.Detail, error) {
				t.Fatal("check should not be called")
				return apiusers.Detail{}, nil
			}
		}

		testee := config_add.Task(check)
		return testee(
			context.Background(),
			logger.Null(),
			common.CommonFlags{Profile: profile, ProfileStore: store},
			commandline.MockCommandline[config_add.Flags]{
				Fullname_: "dstack config add",
				Stdout_:   new(strings.Builder),
				Stderr_:   new(strings.Builder),
				Flags_:    flags,
				Args_:     map[string][]string{},
			},
			[]any{},
		)
	}

	t.Run("it creates the config file with a new profile", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")

		err := run(t, store, "default", config_add.Flags{
			User: "alice", Token: "secret", Server: "https://dstack.example.com",
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		saved := try.To(profiles.LoadProfileStore(store)).OrFatal(t)
		p, ok := saved["default"]
		if !ok {
			t.Fatal("profile is not saved")
		}
		if p.User != "alice" || p.Token != "secret" || p.ServerURL() != "https://dstack.example.com" {
			t.Errorf("unexpected profile: %+v", p)
		}
		if !p.ShouldVerify() {
			t.Error("verify should default to true")
		}
	})

	t.Run("it updates only the passed fields of an existing profile", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")
		existing := profiles.ProfileStore{
			"default": {User: "alice", Token: "old-token", Server: "https://dstack.example.com"},
		}
		if err := existing.Save(store); err != nil {
			t.Fatal(err)
		}

		err := run(t, store, "default", config_add.Flags{Token: "new-token"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		saved := try.To(profiles.LoadProfileStore(store)).OrFatal(t)
		p := saved["default"]
		if p.User != "alice" {
			t.Errorf("user should be kept: %s", p.User)
		}
		if p.Token != "new-token" {
			t.Errorf("token should be updated: %s", p.Token)
		}
		if p.ServerURL() != "https://dstack.example.com" {
			t.Errorf("server should be kept: %s", p.ServerURL())
		}
	})

	t.Run("--no-verify turns TLS verification off", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")

		err := run(t, store, "default", config_add.Flags{
			User: "alice", Token: "secret", NoVerify: true,
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		saved := try.To(profiles.LoadProfileStore(store)).OrFatal(t)
		if saved["default"].ShouldVerify() {
			t.Error("verify should be false")
		}
	})

	t.Run("an incomplete profile is rejected", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")

		err := run(t, store, "default", config_add.Flags{User: "alice"}, nil)
		if !errors.Is(err, profiles.ErrProfileInvalid) {
			t.Errorf("ErrProfileInvalid is expected, but: %+v", err)
		}
	})

	t.Run("with --check, the profile is saved when the server accepts the token", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")

		checked := 0
		check := func(ctx context.Context, prof *profiles.Profile) (apiusers.Detail, error) {
			checked += 1
			return apiusers.Detail{
				Name: prof.User,
				CreatedAt: rfctime.RFC3339(try.To(
					time.Parse(time.RFC3339, "2024-04-01T12:00:00+00:00"),
				).OrFatal(t)),
			}, nil
		}

		err := run(t, store, "default", config_add.Flags{
			User: "alice", Token: "secret", Check: true,
		}, check)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if checked != 1 {
			t.Errorf("check should be called once: %d", checked)
		}

		saved := try.To(profiles.LoadProfileStore(store)).OrFatal(t)
		if _, ok := saved["default"]; !ok {
			t.Error("profile is not saved")
		}
	})

	t.Run("with --check, the profile is not saved when the server rejects the token", func(t *testing.T) {
		store := filepath.Join(t.TempDir(), "config.yaml")

		expectedError := errors.New("fake error")
		check := func(ctx context.Context, prof *profiles.Profile) (apiusers.Detail, error) {
			return apiusers.Detail{}, expectedError
		}

		err := run(t, store, "default", config_add.Flags{
			User: "alice", Token: "secret", Check: true,
		}, check)
		if !errors.Is(err, expectedError) {
			t.Errorf("wrong error: %+v", err)
		}

		if _, err := profiles.LoadProfileStore(store); !errors.Is(err, profiles.ErrProfileStoreNotFound) {
			t.Errorf("the config file should not be created: %+v", err)
		}
	})
}
