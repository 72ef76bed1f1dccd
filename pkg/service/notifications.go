package service

import (
	"context"
	"fmt"
	"time"

	"github.com/salqa/sal/cli/pkg/api"
	clierrors "github.com/salqa/sal/cli/pkg/errors"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/query"
)

// NotificationService provides notification-related operations
type NotificationService struct {
	env   *Env
	inbox *query.Infinite[api.Notification]
}

// NewNotificationService creates a new notification service
func NewNotificationService(env *Env) *NotificationService {
	return &NotificationService{
		env:   env,
		inbox: query.NewInfinite(env.Cache, query.Key{Kind: query.KindNotifications}, env.StaleTime, fetchNotifications),
	}
}

func fetchNotifications(ctx context.Context, page int) (*api.Page[api.Notification], error) {
	return api.GetNotifications(ctx, page)
}

// ListNotifications displays the user's notifications
func (ns *NotificationService) ListNotifications(ctx context.Context, opts PageOptions, unreadOnly bool) error {
	logger.Debug("Listing notifications", "unread_only", unreadOnly)

	err := browse(ctx, ns.env, ns.inbox, opts, func(batch []api.Notification) {
		if unreadOnly {
			batch = unread(batch)
		}
		_ = output.PrintList(batch, formatter.NotificationHeaders, formatter.NotificationRows(batch))
	})
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	if len(ns.inbox.Items()) == 0 {
		output.PrintInfo("No notifications.")
	}
	return nil
}

// MarkNotificationAsRead marks a notification as read
func (ns *NotificationService) MarkNotificationAsRead(ctx context.Context, id int64) error {
	logger.Debug("Marking notification as read", "notification_id", id)

	if err := api.MarkNotificationAsRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	ns.env.Invalidate(query.KindNotifications)
	output.PrintSuccess("Notification #%d marked as read.", id)
	return nil
}

// WatchNotifications polls the first page every interval and prints
// notifications not seen before. Unread items present at start are
// summarized once. It returns nil when ctx is cancelled and a session
// expired error once the server rejects the token.
func (ns *NotificationService) WatchNotifications(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger.Debug("Starting notification watcher", "interval", interval)

	seen := make(map[int64]bool)
	first, err := ns.poll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}
	for _, n := range first {
		seen[n.ID] = true
	}

	output.PrintInfo("Watching notifications every %s. Press Ctrl+C to stop.", interval)
	if n := len(unread(first)); n > 0 {
		output.PrintInfo("%d unread notification%s.", n, pluralize(n))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Notification watcher stopped")
			return nil
		case <-ticker.C:
			items, err := ns.poll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if api.IsUnauthorized(err) {
					logger.Info("Notification watcher stopped, session expired")
					return clierrors.SessionExpiredError(err)
				}
				// keep watching through transient failures
				logger.Warn("Notification poll failed", "error", err)
				continue
			}

			var fresh []api.Notification
			for _, n := range items {
				if !seen[n.ID] {
					seen[n.ID] = true
					fresh = append(fresh, n)
				}
			}
			if len(fresh) > 0 {
				ns.announce(fresh)
			}
		}
	}
}

func (ns *NotificationService) poll(ctx context.Context) ([]api.Notification, error) {
	ns.env.Invalidate(query.KindNotifications)
	page, err := query.Fetch(ctx, ns.env.Cache, query.Key{Kind: query.KindNotifications, Page: 1}, ns.env.StaleTime,
		func(ctx context.Context) (*api.Page[api.Notification], error) {
			return fetchNotifications(ctx, 1)
		})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (ns *NotificationService) announce(items []api.Notification) {
	for _, n := range items {
		fmt.Fprintf(output.Out, "%s %s %s\n",
			formatter.Info.Sprint("●"),
			formatter.Bold.Sprintf("[%s]", formatter.NotificationLabel(n.Type)),
			n.Message)
	}
}

func unread(items []api.Notification) []api.Notification {
	var out []api.Notification
	for _, n := range items {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}
