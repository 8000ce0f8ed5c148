package rest

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
	apiusers "github.com/dstackai/dstack/api/types/users"
	dprof "github.com/dstackai/dstack/cmd/dstack/config/profiles"
	"github.com/dstackai/dstack/pkg/utils"
)

// AttachmentSource describes the metadata of a payload to be uploaded.
type AttachmentSource struct {
	// Description is a human readable note on the payload.
	Description string

	// ContentType is the media type of the payload.
	// When empty, "application/octet-stream" is assumed by the server.
	ContentType string

	// Application is the name of the application which generated the payload.
	Application string

	// Params distinguish this payload from its siblings in a frame.
	Params []apiparams.Param
}

type Client interface {
	// Whoami resolves the profile's token to the user it belongs to.
	//
	// Returns
	//
	// - apiusers.Detail: the user owning the token
	//
	// - error
	Whoami(ctx context.Context) (apiusers.Detail, error)

	// FindStacks lists stacks visible to the requester.
	//
	// Args
	//
	// - context.Context
	//
	// - owner: restrict to stacks of this user. Empty means everyone.
	//
	// - params: restrict to stacks whose head carries all of these params.
	//
	// Returns
	//
	// - []apistacks.Summary: found stacks
	//
	// - error
	FindStacks(ctx context.Context, owner string, params []apiparams.Param) ([]apistacks.Summary, error)

	// GetStack fetches a stack detail, head frame and history included.
	GetStack(ctx context.Context, path apistacks.Path) (apistacks.Detail, error)

	// DeleteStack removes a stack with all of its frames and payloads.
	DeleteStack(ctx context.Context, path apistacks.Path) error

	// SetStackAccess makes a stack private or public.
	//
	// Returns
	//
	// - apistacks.Summary: the stack after the change
	//
	// - error
	SetStackAccess(ctx context.Context, path apistacks.Path, private bool) (apistacks.Summary, error)

	// NewFrame opens a frame on a stack. The stack is created when it
	// does not exist yet.
	NewFrame(ctx context.Context, path apistacks.Path, message string) (apiframes.Summary, error)

	// GetFrame fetches a frame detail. Attachments carry pre-signed
	// download URLs.
	GetFrame(ctx context.Context, frameId string) (apiframes.Detail, error)

	// CloseFrame closes a frame and moves the stack head to it.
	CloseFrame(ctx context.Context, frameId string) (apiframes.Detail, error)

	// PostAttachment streams a payload into an open frame.
	//
	// Args
	//
	// - context.Context
	//
	// - frameId: frame to attach the payload to
	//
	// - source: payload content
	//
	// - size: payload length in bytes. Used for progress reporting only.
	//
	// - spec: metadata of the payload
	//
	// Returns
	//
	// - Progress[*apiframes.Attachment]: tracker of the running upload
	PostAttachment(ctx context.Context, frameId string, source io.Reader, size int64, spec AttachmentSource) Progress[*apiframes.Attachment]

	// GetAttachment downloads a payload and verifies its checksum.
	//
	// Args
	//
	// - frameId, index: locate the attachment
	//
	// - handler: function to be called for the raw stream.
	// If handler returns an error, downloading is stopped and the error is returned.
	//
	// Returns
	//
	// - error: error occured when starting downloading,
	// or ErrChecksumUnmatch after the stream has been consumed.
	GetAttachment(ctx context.Context, frameId string, index int, handler func(io.Reader) error) error
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

// create new client for a Profile
//
// # Args
//
// - *dprof.Profile
//
// # Return
//
// - Client: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *dprof.Profile) (Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if !prof.ShouldVerify() {
		tran := http.DefaultTransport.(*http.Transport).Clone()
		tran.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		httpclient.Transport = tran
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ServerURL(), "/") + "/api",
		token:      prof.Token,
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

// authorize sets the Bearer token of the profile on a request.
func (c *client) authorize(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req
}
