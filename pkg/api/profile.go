package api

import (
	"context"
	"fmt"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
)

// GetProfile fetches the signed-in viewer's profile.
func GetProfile(ctx context.Context) (*Profile, error) {
	logger.Debug("Fetching profile")

	var env Envelope[Profile]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Get("/profile")

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("failed to fetch profile: %s", orDefault(env.Message, "unsuccessful response"))
	}

	logger.Debug("Profile fetched", "username", env.Data.Username)
	return &env.Data, nil
}

// UpdateProfile applies a partial update to the viewer's profile.
func UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	logger.Debug("Updating profile")

	var env Envelope[Profile]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(req).
		Patch("/profile")

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
