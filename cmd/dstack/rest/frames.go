package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apiframes "github.com/dstackai/dstack/api/types/frames"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
)

func (c *client) NewFrame(
	ctx context.Context, path apistacks.Path, message string,
) (apiframes.Summary, error) {
	reqBody, err := json.Marshal(apiframes.NewFrame{Message: message})
	if err != nil {
		return apiframes.Summary{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("stacks", path.User, path.Name, "frames"),
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return apiframes.Summary{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apiframes.Summary{}, err
	}
	defer resp.Body.Close()

	res := apiframes.Summary{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("opening a frame on stack %s is rejected by server (status code = %d)", path, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiframes.Summary{}, err
	}

	return res, nil
}

func (c *client) GetFrame(ctx context.Context, frameId string) (apiframes.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("frames", frameId), nil,
	)
	if err != nil {
		return apiframes.Detail{}, err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apiframes.Detail{}, err
	}
	defer resp.Body.Close()

	res := apiframes.Detail{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("frame %s is not found for you (status code = %d)", frameId, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiframes.Detail{}, err
	}

	return res, nil
}

func (c *client) CloseFrame(ctx context.Context, frameId string) (apiframes.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("frames", frameId, "close"), nil,
	)
	if err != nil {
		return apiframes.Detail{}, err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apiframes.Detail{}, err
	}
	defer resp.Body.Close()

	res := apiframes.Detail{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("closing frame %s is rejected by server (status code = %d)", frameId, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiframes.Detail{}, err
	}

	return res, nil
}
