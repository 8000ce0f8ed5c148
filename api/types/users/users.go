package users

import (
	"github.com/dstackai/dstack/api/types/misc/rfctime"
)

// Detail describes the user a token belongs to.
type Detail struct {
	Name      string          `json:"user"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Name == o.Name && d.CreatedAt.Equal(o.CreatedAt)
}
