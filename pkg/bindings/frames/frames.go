package frames

import (
	apiframes "github.com/dstackai/dstack/api/types/frames"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
	apiparams "github.com/dstackai/dstack/api/types/params"
	ddb "github.com/dstackai/dstack/pkg/db"
	"github.com/dstackai/dstack/pkg/utils"
)

func ComposeAttachment(a ddb.Attachment) apiframes.Attachment {
	return apiframes.Attachment{
		Index:       a.Index,
		Description: a.Description,
		ContentType: a.ContentType,
		Application: a.Application,
		Length:      a.Length,
		Checksum:    a.Checksum,
		Params: utils.Map(
			a.Params,
			func(p ddb.Param) apiparams.Param {
				return apiparams.Param{Key: p.Key, Value: p.Value}
			},
		),
	}
}

func ComposeSummary(f ddb.Frame) apiframes.Summary {
	var closedAt *rfctime.RFC3339
	if f.ClosedAt != nil {
		t := rfctime.RFC3339(*f.ClosedAt)
		closedAt = &t
	}
	return apiframes.Summary{
		FrameId:   f.FrameId,
		User:      f.UserName,
		Stack:     f.StackName,
		Message:   f.Message,
		CreatedAt: rfctime.RFC3339(f.CreatedAt),
		ClosedAt:  closedAt,
	}
}

func ComposeDetail(f ddb.Frame) apiframes.Detail {
	return apiframes.Detail{
		Summary:     ComposeSummary(f),
		Attachments: utils.Map(f.Attachments, ComposeAttachment),
	}
}
