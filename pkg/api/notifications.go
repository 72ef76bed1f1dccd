package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
)

// GetNotifications retrieves notifications with pagination
func GetNotifications(ctx context.Context, page int) (*Page[Notification], error) {
	logger.Debug("Fetching notifications", "page", page)

	var response Page[Notification]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get("/notifications")

	if err := decode(resp, err, &response); err != nil {
		return nil, err
	}
	for i := range response.Data {
		response.Data[i].Type = response.Data[i].Type.Normalize()
	}
	return &response, nil
}

// MarkNotificationAsRead marks a single notification as read
func MarkNotificationAsRead(ctx context.Context, id int64) error {
	logger.Debug("Marking notification as read", "notification_id", id)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Post(fmt.Sprintf("/notifications/%d/set-read", id))

	return CheckResponse(resp, err)
}
