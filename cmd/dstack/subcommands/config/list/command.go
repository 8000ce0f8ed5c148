package list

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/youta-t/flarc"

	"github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/cmd/dstack/subcommands/common"
	"github.com/dstackai/dstack/pkg/utils"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List profiles in the config file.",
		struct{}{},
		flarc.Args{},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
List profiles saved in the config file. Tokens are shown masked.
`),
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
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			return err
		}

		names := utils.KeysOf(store)
		sort.Strings(names)

		w := tabwriter.NewWriter(cl.Stdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROFILE\tUSER\tSERVER\tTOKEN\tVERIFY")
		for _, name := range names {
			p := store[name]
			fmt.Fprintf(
				w, "%s\t%s\t%s\t%s\t%t\n",
				name, p.User, p.ServerURL(), MaskToken(p.Token), p.ShouldVerify(),
			)
		}
		return w.Flush()
	}
}

// MaskToken hides all but the first 4 characters of a token.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-4)
}
