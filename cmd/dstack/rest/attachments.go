package rest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	kio "github.com/dstackai/dstack/pkg/utils/io"
)

var (
	ErrChecksumUnmatch = errors.New("checksum unmatch")
)

// checksumHeader carries the hex MD5 of a payload: as a request trailer
// on upload, as a response header on download.
const checksumHeader = "x-checksum-md5"

type Progress[T any] interface {
	// EstimatedTotalSize returns the total size of the payload to be sent.
	EstimatedTotalSize() int64

	// ProgressedSize returns the size sent so far.
	//
	// This size is updated during the upload.
	ProgressedSize() int64

	// Error returns error caused during the upload.
	Error() error

	// Result returns the result of the operation.
	//
	// # Returns
	//
	// - T: the result of the operation.
	//
	// - bool: true if the operation has been done.
	Result() (T, bool)

	// Done returns a channel which is closed when the whole operation is over.
	Done() <-chan struct{}

	// Sent returns a channel which is closed when the payload is sent to the server.
	Sent() <-chan struct{}
}

type progress struct {
	total      int64
	progressed int64
	e          error
	result     *apiframes.Attachment
	resultOk   bool
	done       chan struct{}
	sent       chan struct{}
}

func (p *progress) EstimatedTotalSize() int64 {
	return p.total
}

func (p *progress) ProgressedSize() int64 {
	return atomic.LoadInt64(&p.progressed)
}

func (p *progress) Error() error {
	return p.e
}

func (p *progress) Result() (*apiframes.Attachment, bool) {
	return p.result, p.resultOk
}

func (p *progress) Done() <-chan struct{} {
	return p.done
}

func (p *progress) Sent() <-chan struct{} {
	return p.sent
}

// countingReader counts bytes read through it into *n.
type countingReader struct {
	r io.Reader
	n *int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	atomic.AddInt64(cr.n, int64(n))
	return n, err
}

func (c *client) PostAttachment(
	ctx context.Context, frameId string, source io.Reader, size int64, spec AttachmentSource,
) Progress[*apiframes.Attachment] {
	prog := &progress{
		total: size,
		sent:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	md5reader := kio.NewMD5Reader(&countingReader{r: source, n: &prog.progressed})
	treader := kio.NewTriggerReader(md5reader)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("frames", frameId, "attachments"), treader,
	)
	if err != nil {
		prog.e = err
		close(prog.done)
		return prog
	}

	q := req.URL.Query()
	if spec.Description != "" {
		q.Add("description", spec.Description)
	}
	if spec.Application != "" {
		q.Add("application", spec.Application)
	}
	for _, p := range spec.Params {
		q.Add("param", p.String())
	}
	req.URL.RawQuery = q.Encode()

	contentType := spec.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	treader.OnEnd(func() {
		req.Trailer.Add(checksumHeader, hex.EncodeToString(md5reader.Sum()))
		close(prog.sent)
	})

	req.Trailer = http.Header{}
	req.Header.Add("Content-Type", contentType)
	req.Header.Add("Transfer-Encoding", "chunked")
	req.Header.Add("Trailer", checksumHeader)

	go func() {
		defer close(prog.done)

		resp, err := c.httpclient.Do(c.authorize(req))
		if err != nil {
			prog.e = err
			return
		}
		defer resp.Body.Close()

		res := &apiframes.Attachment{}
		if err := unmarshalJsonResponse(
			resp, res,
			MessageFor{
				Status4xx: fmt.Sprintf("sending attachment is rejected by server (status code = %d)", resp.StatusCode),
				Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
			},
		); err != nil {
			prog.e = err
			return
		}

		prog.result = res
		prog.resultOk = true
	}()

	return prog
}

func (c *client) GetAttachment(
	ctx context.Context, frameId string, index int, handler func(io.Reader) error,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("frames", frameId, "attachments", strconv.Itoa(index)),
		nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("attachment %s/%d is not found for you (status code = %d)", frameId, index, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return err
	}

	chr := kio.NewMD5Reader(r)
	tr := kio.NewTriggerReader(chr)
	var hasherr error
	tr.OnEnd(func() {
		serverChecksum := resp.Header.Get(checksumHeader)
		if serverChecksum == "" {
			hasherr = fmt.Errorf("%w: server response is incompleted", ErrChecksumUnmatch)
			return
		}

		actualChecksum := hex.EncodeToString(chr.Sum())
		if serverChecksum == actualChecksum {
			return
		}
		hasherr = fmt.Errorf(
			"%w: server sent: %s, calcurated: %s",
			ErrChecksumUnmatch, serverChecksum, actualChecksum,
		)
	})

	if err := handler(tr); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, tr); err != nil {
		// drain rest of the payload.
		return err
	}

	return hasherr
}
