package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/prompter"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/salqa/sal/cli/pkg/vote"
)

// QuestionService provides the question feed and question mutations
type QuestionService struct {
	env  *Env
	feed *query.Infinite[api.Question]
}

// NewQuestionService creates a new question service
func NewQuestionService(env *Env) *QuestionService {
	return &QuestionService{
		env: env,
		feed: query.NewInfinite(env.Cache, query.Key{Kind: query.KindQuestions}, env.StaleTime,
			func(ctx context.Context, page int) (*api.Page[api.Question], error) {
				return api.GetQuestions(ctx, page)
			}),
	}
}

// Feed exposes the paginated question list.
func (s *QuestionService) Feed() *query.Infinite[api.Question] {
	return s.feed
}

// ListQuestions prints the question feed page by page
func (s *QuestionService) ListQuestions(ctx context.Context, opts PageOptions) error {
	logger.Debug("Listing questions", "all", opts.All)

	err := browse(ctx, s.env, s.feed, opts, func(batch []api.Question) {
		s.seed(batch)
		_ = output.PrintList(batch, formatter.QuestionHeaders, formatter.QuestionRows(batch, s.localTally))
	})
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}

	if len(s.feed.Items()) == 0 {
		output.PrintInfo("No questions yet. Ask one with 'sal questions ask'.")
	}
	return nil
}

// GetQuestion returns a question, served from cache while fresh.
func (s *QuestionService) GetQuestion(ctx context.Context, id int64) (*api.Question, error) {
	q, err := query.Fetch(ctx, s.env.Cache, query.Key{Kind: query.KindQuestion, ID: id}, s.env.StaleTime,
		func(ctx context.Context) (*api.Question, error) {
			return api.GetQuestion(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	s.seed([]api.Question{*q})
	return q, nil
}

// ShowQuestion prints one question followed by its answers
func (s *QuestionService) ShowQuestion(ctx context.Context, id int64, answers *AnswerService, opts AnswerListOptions) error {
	logger.Debug("Showing question", "question_id", id)

	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load question %d: %w", id, err)
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", q)
	}

	tally, _ := s.env.Votes.Get(questionRef(id))
	if err := output.PrintRecord(fmt.Sprintf("Question #%d", q.ID), q, formatter.QuestionFields(q, tally)); err != nil {
		return err
	}
	output.Println()

	if answers == nil {
		return nil
	}
	return answers.ListAnswers(ctx, id, opts)
}

// AskQuestion posts a new question. An empty content is read from the prompt.
func (s *QuestionService) AskQuestion(ctx context.Context, content string) (*api.Question, error) {
	if strings.TrimSpace(content) == "" {
		var err error
		content, err = prompter.PromptMultiline("Your question")
		if err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(validation.Post{Content: content}); err != nil {
		return nil, err
	}

	logger.Debug("Asking question", "length", len(content))
	q, err := api.CreateQuestion(ctx, strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("failed to post question: %w", err)
	}

	s.env.Invalidate(questionKinds...)
	output.PrintSuccess("Question #%d posted.", q.ID)
	return q, nil
}

// VoteQuestion applies a vote optimistically and sends it. Voting the same
// direction twice retracts the vote.
func (s *QuestionService) VoteQuestion(ctx context.Context, id int64, dir vote.Direction) (vote.Tally, error) {
	ref := questionRef(id)
	if _, ok := s.env.Votes.Get(ref); !ok {
		if _, err := s.GetQuestion(ctx, id); err != nil {
			return vote.Tally{}, fmt.Errorf("failed to load question %d: %w", id, err)
		}
	}

	tally, err := s.env.Votes.Cast(ctx, ref, dir, func(ctx context.Context, sent vote.Direction) error {
		return api.VoteQuestion(ctx, id, sent)
	})
	if err != nil {
		return tally, fmt.Errorf("vote on question %d failed: %w", id, err)
	}

	output.PrintSuccess("Question #%d: %s", id, formatter.VoteDetail(tally))
	return tally, nil
}

// DeleteQuestion deletes a question after confirmation. On success it is
// removed from the loaded feed; on failure it stays.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64, skipConfirm bool) (bool, error) {
	ok, err := s.env.confirm(skipConfirm, fmt.Sprintf("Delete question #%d?", id))
	if err != nil {
		return false, err
	}
	if !ok {
		output.PrintInfo("Cancelled.")
		return false, nil
	}

	if err := api.DeleteQuestion(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete question %d: %w", id, err)
	}

	s.feed.Remove(func(q api.Question) bool { return q.ID == id })
	s.env.Invalidate(questionKinds...)
	output.PrintSuccess("Question #%d deleted.", id)
	return true, nil
}

func (s *QuestionService) seed(questions []api.Question) {
	for _, q := range questions {
		s.env.Votes.Seed(questionRef(q.ID), q.Tally())
	}
}

func (s *QuestionService) localTally(id int64) (vote.Tally, bool) {
	return s.env.Votes.Get(questionRef(id))
}

func questionRef(id int64) vote.Ref {
	return vote.Ref{Kind: vote.KindQuestion, ID: id}
}
