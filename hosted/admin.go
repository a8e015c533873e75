package hosted

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-portal"
)

const (
	defaultUsersPerPage = 200
	maxUserPages        = 500
)

var errServiceKeyMissing = goerrors.New("hosted service key is not configured", goerrors.CategoryInternal)

type listUsersResponse struct {
	Users []portal.Identity `json:"users"`
}

// ListUsers returns one page of hosted users. Pages start at 1.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]portal.Identity, error) {
	if c.cfg.ServiceKey == "" {
		return nil, errServiceKeyMissing
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultUsersPerPage
	}
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	var resp listUsersResponse
	key := c.cfg.ServiceKey
	if err := c.request(ctx, "list_users", http.MethodGet, authPrefix+"/admin/users", query, key, key, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// EmailRegistered implements portal.EmailDirectory by scanning the user list
// and comparing emails case insensitively.
func (c *Client) EmailRegistered(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	for page := 1; page <= maxUserPages; page++ {
		users, err := c.ListUsers(ctx, page, defaultUsersPerPage)
		if err != nil {
			return false, err
		}
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return true, nil
			}
		}
		if len(users) < defaultUsersPerPage {
			return false, nil
		}
	}
	return false, nil
}
