package find_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	kprof "github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/rest/mock"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/internal/commandline"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/logger"
	stack_find "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/find"
	"github.com/dstackai/dstack/pkg/cmp"
	kargs "github.com/dstackai/dstack/pkg/utils/args"
	"github.com/dstackai/dstack/pkg/utils/try"
)

func TestFindCommand(t *testing.T) {
	found := []apistacks.Summary{
		{
			User: "alice", Name: "sine-curve", Private: false,
			CreatedAt: rfctime.RFC3339(try.To(
				time.Parse(time.RFC3339, "2024-04-01T12:00:00+00:00"),
			).OrFatal(t)),
		},
		{
			User: "bob", Name: "noise", Private: false,
			CreatedAt: rfctime.RFC3339(try.To(
				time.Parse(time.RFC3339, "2024-04-02T12:00:00+00:00"),
			).OrFatal(t)),
		},
	}

	type when struct {
		flags     stack_find.Flags
		findError error
	}

	type then struct {
		owner  string
		params []apiparams.Param
		err    error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.FindStacks = func(
				ctx context.Context, owner string, params []apiparams.Param,
			) ([]apistacks.Summary, error) {
				return found, when.findError
			}

			testee := stack_find.Task()

			stdout := new(strings.Builder)
			err := testee(
				context.Background(),
				logger.Null(),
				kprof.Profile{User: "alice", Token: "token"},
				client,
				commandline.MockCommandline[stack_find.Flags]{
					Fullname_: "dstack stack find",
					Stdout_:   stdout,
					Stderr_:   new(strings.Builder),
					Flags_:    when.flags,
					Args_:     map[string][]string{},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, then.err)
			}

			if len(client.Calls.FindStacks) != 1 {
				t.Fatalf("unexpected FindStacks calls: %+v", client.Calls.FindStacks)
			}
			call := client.Calls.FindStacks[0]
			if call.Owner != then.owner {
				t.Errorf("unexpected owner: %s", call.Owner)
			}
			if !cmp.SliceEqWith(call.Params, then.params, apiparams.Param.Equal) {
				t.Errorf("unexpected params: %+v", call.Params)
			}
			if then.err != nil {
				return
			}

			actual := []apistacks.Summary{}
			if err := json.Unmarshal([]byte(stdout.String()), &actual); err != nil {
				t.Fatalf("output is not json: %s", stdout.String())
			}
			if !cmp.SliceEqWith(actual, found, apistacks.Summary.Equal) {
				t.Errorf("unexpected output: %s", stdout.String())
			}
		}
	}

	t.Run("when called without flags, it lists everything visible", theory(
		when{flags: stack_find.Flags{Param: &kargs.Params{}}},
		then{owner: "", params: []apiparams.Param{}},
	))
	t.Run("when called with --user, the owner is passed through", theory(
		when{flags: stack_find.Flags{User: "bob", Param: &kargs.Params{}}},
		then{owner: "bob", params: []apiparams.Param{}},
	))
	t.Run("when called with --param, the params are passed through", theory(
		when{flags: stack_find.Flags{Param: &kargs.Params{
			{Key: "country", Value: "DE"},
		}}},
		then{owner: "", params: []apiparams.Param{{Key: "country", Value: "DE"}}},
	))

	t.Run("when the server fails, the error is returned", func(t *testing.T) {
		expectedError := errors.New("fake error")
		theory(
			when{flags: stack_find.Flags{Param: &kargs.Params{}}, findError: expectedError},
			then{owner: "", params: []apiparams.Param{}, err: expectedError},
		)(t)
	})
}
