package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
)

// GetUser fetches a public profile by username
func GetUser(ctx context.Context, username string) (*Profile, error) {
	logger.Debug("Fetching user", "username", username)

	var env Envelope[Profile]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Get(fmt.Sprintf("/users/%s", url.PathEscape(username)))

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GetUserQuestions retrieves one page of questions asked by username
func GetUserQuestions(ctx context.Context, username string, page int) (*Page[Question], error) {
	logger.Debug("Fetching user questions", "username", username, "page", page)

	var response Page[Question]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(fmt.Sprintf("/users/%s/questions", url.PathEscape(username)))

	if err := decode(resp, err, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
