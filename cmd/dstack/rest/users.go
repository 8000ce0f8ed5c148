package rest

import (
	"context"
	"fmt"
	"net/http"

	apiusers "github.com/dstackai/dstack/api/types/users"
)

func (c *client) Whoami(ctx context.Context) (apiusers.Detail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("users", "me"), nil)
	if err != nil {
		return apiusers.Detail{}, err
	}

	resp, err := c.httpclient.Do(c.authorize(req))
	if err != nil {
		return apiusers.Detail{}, err
	}
	defer resp.Body.Close()

	res := apiusers.Detail{}
	if err := unmarshalJsonResponse(
		resp, &res,
		MessageFor{
			Status4xx: fmt.Sprintf("token is rejected by server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return apiusers.Detail{}, err
	}

	return res, nil
}
