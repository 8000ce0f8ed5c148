package rm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	apistacks "github.com/dstackai/dstack/api/types/stacks"
	kprof "github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/rest/mock"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/internal/commandline"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/logger"
	stack_rm "github.com/dstackai/dstack/cmd/dstack/subcommands/stack/rm"
)

func TestRmCommand(t *testing.T) {
	type when struct {
		flags       stack_rm.Flags
		stdin       string
		deleteError error
	}

	type then struct {
		deleted []apistacks.Path
		err     error
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)
			client.Impl.DeleteStack = func(
				ctx context.Context, path apistacks.Path,
			) error {
				return when.deleteError
			}

			testee := stack_rm.Task()

			err := testee(
				context.Background(),
				logger.Null(),
				kprof.Profile{User: "alice", Token: "token"},
				client,
				commandline.MockCommandline[stack_rm.Flags]{
					Fullname_: "dstack stack rm",
					Stdin_:    strings.NewReader(when.stdin),
					Stdout_:   new(strings.Builder),
					Stderr_:   new(strings.Builder),
					Flags_:    when.flags,
					Args_: map[string][]string{
						stack_rm.ARG_STACK: {"sine-curve"},
					},
				},
				[]any{},
			)

			if !errors.Is(err, then.err) {
				t.Errorf("wrong error: (actual, expected) = (%v, %v)", err, then.err)
			}

			if len(client.Calls.DeleteStack) != len(then.deleted) {
				t.Fatalf("unexpected DeleteStack calls: %+v", client.Calls.DeleteStack)
			}
			for i, path := range then.deleted {
				if client.Calls.DeleteStack[i] != path {
					t.Errorf("unexpected DeleteStack call: %+v", client.Calls.DeleteStack[i])
				}
			}
		}
	}

	path := apistacks.Path{User: "alice", Name: "sine-curve"}

	t.Run("when called with --force, it removes the stack without asking", theory(
		when{flags: stack_rm.Flags{Force: true}},
		then{deleted: []apistacks.Path{path}},
	))
	t.Run("when the user answers y, it removes the stack", theory(
		when{stdin: "y\n"},
		then{deleted: []apistacks.Path{path}},
	))
	t.Run("when the user answers yes, it removes the stack", theory(
		when{stdin: "YES\n"},
		then{deleted: []apistacks.Path{path}},
	))
	t.Run("when the user answers n, it does nothing", theory(
		when{stdin: "n\n"},
		then{deleted: []apistacks.Path{}},
	))
	t.Run("when the user answers nothing, it does nothing", theory(
		when{stdin: "\n"},
		then{deleted: []apistacks.Path{}},
	))

	t.Run("when the server fails, the error is returned", func(t *testing.T) {
		expectedError := errors.New("fake error")
		theory(
			when{flags: stack_rm.Flags{Force: true}, deleteError: expectedError},
			then{deleted: []apistacks.Path{path}, err: expectedError},
		)(t)
	})
}
