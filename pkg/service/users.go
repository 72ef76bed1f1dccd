package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/vote"
)

// UserService shows other users' public profiles
type UserService struct {
	env *Env

	mu        sync.Mutex
	questions map[string]*query.Infinite[api.Question]
}

// NewUserService creates a new user service
func NewUserService(env *Env) *UserService {
	return &UserService{env: env, questions: make(map[string]*query.Infinite[api.Question])}
}

// ShowUser displays a public profile
func (us *UserService) ShowUser(ctx context.Context, username string) error {
	username = strings.TrimPrefix(username, "@")

	u, err := query.Fetch(ctx, us.env.Cache, query.Key{Kind: query.KindUserProfile, Username: username}, us.env.ProfileStaleTime,
		func(ctx context.Context) (*api.Profile, error) {
			return api.GetUser(ctx, username)
		})
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", username, err)
	}
	return output.PrintRecord("@"+u.Username, u, formatter.ProfileFields(u))
}

// Questions returns the paginated questions asked by username.
func (us *UserService) Questions(username string) *query.Infinite[api.Question] {
	username = strings.TrimPrefix(username, "@")

	us.mu.Lock()
	defer us.mu.Unlock()
	if in, ok := us.questions[username]; ok {
		return in
	}
	in := query.NewInfinite(us.env.Cache, query.Key{Kind: query.KindUserQuestions, Username: username}, us.env.StaleTime,
		func(ctx context.Context, page int) (*api.Page[api.Question], error) {
			return api.GetUserQuestions(ctx, username, page)
		})
	us.questions[username] = in
	return in
}

// ListUserQuestions prints the questions asked by username
func (us *UserService) ListUserQuestions(ctx context.Context, username string, opts PageOptions) error {
	in := us.Questions(username)
	tally := func(id int64) (vote.Tally, bool) {
		return us.env.Votes.Get(questionRef(id))
	}

	err := browse(ctx, us.env, in, opts, func(batch []api.Question) {
		_ = output.PrintList(batch, formatter.QuestionHeaders, formatter.QuestionRows(batch, tally))
	})
	if err != nil {
		return fmt.Errorf("failed to list questions of %s: %w", username, err)
	}

	if len(in.Items()) == 0 {
		output.PrintInfo("@%s has not asked anything yet.", strings.TrimPrefix(username, "@"))
	}
	return nil
}
