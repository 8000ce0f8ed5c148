package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apiparams "github.com/dstackai/dstack/api/types/params"
	apistacks "github.com/dstackai/dstack/api/types/stacks"
)

func (c *client) FindStacks(
	ctx context.Context, owner string, params []apiparams.Param,
) ([]apistacks.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("stacks"), nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if owner != "" {
		q.Add("user", owner)
	}
	for _, p := range params {
		q.Add("param", p.String())
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	stacks := make([]apistacks.Summary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &stacks,
		MessageFor{
			Status4xx: fmt.Sprintf("finding stacks is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return stacks, nil
}

func (c *client) GetStack(ctx context.Context, path apistacks.Path) (apistacks.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("stacks", path.User, path.Name), nil,
	)
	if err != nil {
		return apistacks.Detail{}, err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apistacks.Detail{}, err
	}
	defer resp.Body.Close()

	res := apistacks.Detail{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("stack %s is not found for you (status code = %d)", path, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apistacks.Detail{}, err
	}

	return res, nil
}

func (c *client) DeleteStack(ctx context.Context, path apistacks.Path) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.apipath("stacks", path.User, path.Name), nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("deleting stack %s is rejected by server (status code = %d)", path, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
}

func (c *client) SetStackAccess(
	ctx context.Context, path apistacks.Path, private bool,
) (apistacks.Summary, error) {
	reqBody, err := json.Marshal(apistacks.AccessChange{Private: private})
	if err != nil {
		return apistacks.Summary{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.apipath("stacks", path.User, path.Name, "access"),
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return apistacks.Summary{}, err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apistacks.Summary{}, err
	}
	defer resp.Body.Close()

	res := apistacks.Summary{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("changing access of stack %s is rejected by server (status code = %d)", path, resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apistacks.Summary{}, err
	}

	return res, nil
}
