package start

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/youta-t/flarc"
)

type Flags struct {
	Port   int    `flag:"port" metavar:"PORT" help:"port the server listens on"`
	Home   string `flag:"home" metavar:"DIR" help:"directory where pushed payloads are stored"`
	Config string `flag:"config" metavar:"FILE" help:"path to the server config file"`
	Db     string `flag:"db" metavar:"URL" help:"postgres URL of the metadata database"`
}

// ServerBinary is the name of the server executable launched by this command.
const ServerBinary = "dstackd"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Start a dstack server on this machine.",
		Flags{},
		flarc.Args{},
		Task(),
		flarc.WithDescription(`
Start the locally installed dstack server ({{ .Command }} looks for the
"`+ServerBinary+`" binary next to this executable, then on PATH).

Flags are passed to the server as its environment:

	--port PORT   -> DSTACK_PORT
	--home DIR    -> DSTACK_BLOB_ROOT
	--db URL      -> DSTACK_DATABASE
	--config FILE -> DSTACK_SERVER_CONFIG
`),
	)
}

func Task() flarc.Task[Flags] {
	return func(ctx context.Context, cl flarc.Commandline[Flags], params []any) error {
		bin, err := lookupServerBinary()
		if err != nil {
			return err
		}

		flags := cl.Flags()
		env := os.Environ()
		if 0 < flags.Port {
			env = append(env, "DSTACK_PORT="+strconv.Itoa(flags.Port))
		}
		if flags.Home != "" {
			env = append(env, "DSTACK_BLOB_ROOT="+flags.Home)
		}
		if flags.Db != "" {
			env = append(env, "DSTACK_DATABASE="+flags.Db)
		}
		if flags.Config != "" {
			env = append(env, "DSTACK_SERVER_CONFIG="+flags.Config)
		}

		cmd := exec.CommandContext(ctx, bin)
		cmd.Env = env
		cmd.Stdin = cl.Stdin()
		cmd.Stdout = cl.Stdout()
		cmd.Stderr = cl.Stderr()

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s exited", err, bin)
		}
		return nil
	}
}

// lookupServerBinary finds the server executable: first next to the
// running binary, then on PATH.
func lookupServerBinary() (string, error) {
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), ServerBinary)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			return candidate, nil
		}
	}

	bin, err := exec.LookPath(ServerBinary)
	if err != nil {
		return "", fmt.Errorf(
			"%w: install the %s binary next to this executable or on PATH",
			err, ServerBinary,
		)
	}
	return bin, nil
}
