package args

import (
	"strings"

	"github.com/dstackai/dstack/api/types/params"
	"github.com/dstackai/dstack/pkg/utils"
)

// Params is a repeatable "--param KEY:VALUE" commandline flag.
//
// It implements flag.Value.
type Params []params.Param

func (p *Params) String() string {
	if p == nil || len(*p) == 0 {
		return ""
	}
	return strings.Join(utils.Map(*p, params.Param.String), " ")
}

func (p *Params) Set(v string) error {
	var param params.Param
	if err := param.Parse(v); err != nil {
		return err
	}
	*p = append(*p, param)
	return nil
}
