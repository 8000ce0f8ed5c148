package server

import (
	"github.com/youta-t/flarc"

	server_start "github.com/dstackai/dstack/cmd/dstack/subcommands/server/start"
)

func New() (flarc.Command, error) {
	start, err := server_start.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Run a dstack server on this machine.",
		struct{}{},
		flarc.WithSubcommand("start", start),
	)
}
