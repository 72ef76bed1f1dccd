package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/validation"
)

// ErrNothingToUpdate is returned by UpdateProfile when no field is set.
var ErrNothingToUpdate = errors.New("nothing to update")

// ProfileService provides profile viewing and editing
type ProfileService struct {
	env *Env
}

// NewProfileService creates a new profile service
func NewProfileService(env *Env) *ProfileService {
	return &ProfileService{env: env}
}

// GetProfile returns the viewer's profile, cached for the profile stale time.
func (ps *ProfileService) GetProfile(ctx context.Context) (*api.Profile, error) {
	return query.Fetch(ctx, ps.env.Cache, query.Key{Kind: query.KindProfile}, ps.env.ProfileStaleTime, api.GetProfile)
}

// ShowProfile displays the viewer's profile
func (ps *ProfileService) ShowProfile(ctx context.Context) error {
	p, err := ps.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	return output.PrintRecord("Your profile", p, formatter.ProfileFields(p))
}

// UpdateProfile validates and applies a partial update
func (ps *ProfileService) UpdateProfile(ctx context.Context, form validation.ProfileUpdate) (*api.Profile, error) {
	req := api.UpdateProfileRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Job:       form.Job,
		Bio:       form.Bio,
	}
	if req.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	p, err := ps.apply(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	output.PrintSuccess("Profile updated.")
	return p, nil
}

// UploadAvatar uploads an image and sets it as the avatar
func (ps *ProfileService) UploadAvatar(ctx context.Context, path string) (*api.Profile, error) {
	logger.Debug("Uploading avatar", "file_path", path)

	stored, err := api.UploadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	p, err := ps.apply(ctx, api.UpdateProfileRequest{Avatar: &stored})
	if err != nil {
		return nil, fmt.Errorf("avatar uploaded but profile update failed: %w", err)
	}
	output.PrintSuccess("Avatar updated.")
	return p, nil
}

// RemoveAvatar clears the avatar after confirmation
func (ps *ProfileService) RemoveAvatar(ctx context.Context, skipConfirm bool) (bool, error) {
	ok, err := ps.env.confirm(skipConfirm, "Remove your avatar?")
	if err != nil || !ok {
		if err == nil {
			output.PrintInfo("Cancelled.")
		}
		return false, err
	}

	empty := ""
	if _, err := ps.apply(ctx, api.UpdateProfileRequest{Avatar: &empty}); err != nil {
		return false, fmt.Errorf("failed to remove avatar: %w", err)
	}
	output.PrintSuccess("Avatar removed.")
	return true, nil
}

func (ps *ProfileService) apply(ctx context.Context, req api.UpdateProfileRequest) (*api.Profile, error) {
	p, err := api.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	ps.env.Invalidate(query.KindProfile, query.KindUserProfile)
	return p, nil
}
