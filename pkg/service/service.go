package service

import (
	"context"
	"errors"
	"time"

	"github.com/salqa/sal/cli/pkg/config"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/prompter"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/vote"
)

// Env is the per-process state shared by all views: one query cache and one
// vote board.
type Env struct {
	Cache            *query.Cache
	Votes            *vote.Board
	StaleTime        time.Duration
	ProfileStaleTime time.Duration

	// Confirm asks a yes/no question. Tests replace it.
	Confirm func(label string) (bool, error)
}

// NewEnv builds an Env from configuration.
func NewEnv() *Env {
	env := &Env{
		Cache:            query.New(),
		StaleTime:        config.GetDuration("cache.stale_time"),
		ProfileStaleTime: config.GetDuration("cache.profile_stale_time"),
		Confirm:          prompter.PromptConfirm,
	}
	env.Votes = vote.NewBoard(env.voteCommitted)
	return env
}

// Invalidate marks the given kinds stale.
func (e *Env) Invalidate(kinds ...query.Kind) {
	e.Cache.Invalidate(kinds...)
}

func (e *Env) voteCommitted(ref vote.Ref) {
	switch ref.Kind {
	case vote.KindQuestion:
		e.Invalidate(questionKinds...)
	case vote.KindAnswer:
		e.Invalidate(answerKinds...)
	}
}

var (
	questionKinds = []query.Kind{query.KindQuestions, query.KindQuestion, query.KindUserQuestions}
	answerKinds   = []query.Kind{query.KindAnswers, query.KindQuestion}
	// posting or deleting an answer changes answers_count on every question listing
	answerCountKinds = []query.Kind{query.KindAnswers, query.KindQuestion, query.KindQuestions, query.KindUserQuestions}
	allKinds         = []query.Kind{
		query.KindQuestions, query.KindQuestion, query.KindAnswers, query.KindNotifications,
		query.KindProfile, query.KindUserProfile, query.KindUserQuestions,
	}
)

// PageOptions controls how a paginated list is walked.
type PageOptions struct {
	// All loads every page without asking.
	All bool
}

// browse loads pages of in and hands each new batch to render. Between pages
// the user is asked whether to continue unless opts.All is set. JSON output
// renders once, after loading.
func browse[T any](ctx context.Context, env *Env, in *query.Infinite[T], opts PageOptions, render func(batch []T)) error {
	jsonMode := output.GetOutputFormat() == output.FormatJSON
	printed := 0

	for {
		if _, err := in.LoadNextPage(ctx); err != nil {
			return err
		}

		items := in.Items()
		if !jsonMode && len(items) > printed {
			render(items[printed:])
			printed = len(items)
		}

		if !in.HasNextPage() {
			break
		}
		if opts.All {
			continue
		}
		if jsonMode {
			break
		}

		more, err := env.Confirm("Load more?")
		if err != nil {
			if errors.Is(err, prompter.ErrNoInput) {
				break
			}
			return err
		}
		if !more {
			break
		}
	}

	if jsonMode {
		render(in.Items())
	}
	logger.Debug("Browsed collection", "pages", in.PagesLoaded(), "items", len(in.Items()))
	return nil
}

// confirm asks before a destructive action unless skip is set.
func (e *Env) confirm(skip bool, label string) (bool, error) {
	if skip {
		return true, nil
	}
	ok, err := e.Confirm(label)
	if errors.Is(err, prompter.ErrNoInput) {
		return false, nil
	}
	return ok, err
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
