package stacks

import (
	apiframes "github.com/dstackai/dstack/api/types/frames"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	bindframes "github.com/dstackai/dstack/pkg/bindings/frames"
	ddb "github.com/dstackai/dstack/pkg/db"
	"github.com/dstackai/dstack/pkg/utils"
)

// ComposeSummary binds a stack with its head frame, when it has one.
func ComposeSummary(s ddb.Stack, head *ddb.Frame) apistacks.Summary {
	var headSummary *apiframes.Summary
	if head != nil {
		h := bindframes.ComposeSummary(*head)
		headSummary = &h
	}
	return apistacks.Summary{
		User:      s.UserName,
		Name:      s.Name,
		Private:   s.Private,
		CreatedAt: rfctime.RFC3339(s.CreatedAt),
		Head:      headSummary,
	}
}

// ComposeDetail binds a stack with its head frame and frame history.
//
// closed filters the history down to closed frames, newest first.
func ComposeDetail(s ddb.Stack, head *ddb.Frame, history []ddb.Frame) apistacks.Detail {
	var headDetail *apiframes.Detail
	if head != nil {
		h := bindframes.ComposeDetail(*head)
		headDetail = &h
	}

	closed := utils.Filter(history, func(f ddb.Frame) bool { return f.ClosedAt != nil })

	return apistacks.Detail{
		User:      s.UserName,
		Name:      s.Name,
		Private:   s.Private,
		CreatedAt: rfctime.RFC3339(s.CreatedAt),
		Head:      headDetail,
		Frames:    utils.Map(closed, bindframes.ComposeSummary),
	}
}
