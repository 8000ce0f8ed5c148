package users

import (
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apiusers "github.com/dstackai/dstack/api/types/users"
	ddb "github.com/dstackai/dstack/pkg/db"
)

func ComposeDetail(u ddb.User) apiusers.Detail {
	return apiusers.Detail{
		Name:      u.Name,
		CreatedAt: rfctime.RFC3339(u.CreatedAt),
	}
}
