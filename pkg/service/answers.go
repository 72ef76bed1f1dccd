package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/formatter"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/prompter"
	"github.com/salqa/sal/cli/pkg/query"
	"github.com/salqa/sal/cli/pkg/validation"
	"github.com/salqa/sal/cli/pkg/vote"
)

// AnswerSort orders an answer list.
type AnswerSort string

const (
	SortByScore  AnswerSort = "score"
	SortByNewest AnswerSort = "newest"
	SortByOldest AnswerSort = "oldest"
)

// ParseAnswerSort accepts score, newest or oldest.
func ParseAnswerSort(s string) (AnswerSort, error) {
	switch AnswerSort(strings.ToLower(s)) {
	case "", SortByScore:
		return SortByScore, nil
	case SortByNewest:
		return SortByNewest, nil
	case SortByOldest:
		return SortByOldest, nil
	}
	return "", fmt.Errorf("invalid sort %q (want score, newest or oldest)", s)
}

// AnswerListOptions controls answer listing.
type AnswerListOptions struct {
	Sort   AnswerSort
	Search string
}

// SortAnswers orders answers in place. Ties keep server order.
func SortAnswers(answers []api.Answer, by AnswerSort) {
	switch by {
	case SortByNewest:
		sort.SliceStable(answers, func(i, j int) bool { return answers[i].CreatedAt.After(answers[j].CreatedAt) })
	case SortByOldest:
		sort.SliceStable(answers, func(i, j int) bool { return answers[i].CreatedAt.Before(answers[j].CreatedAt) })
	default:
		sort.SliceStable(answers, func(i, j int) bool { return answers[i].Score() > answers[j].Score() })
	}
}

// FilterAnswers keeps answers whose content, author name, username or job
// contains term, case-insensitively.
func FilterAnswers(answers []api.Answer, term string) []api.Answer {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return answers
	}

	var out []api.Answer
	for _, a := range answers {
		haystack := strings.ToLower(strings.Join([]string{
			a.Content, a.User.DisplayName(), a.User.Username, a.User.Job,
		}, "\n"))
		if strings.Contains(haystack, term) {
			out = append(out, a)
		}
	}
	return out
}

// AnswerService provides answer listing and mutations
type AnswerService struct {
	env *Env

	mu    sync.Mutex
	lists map[int64]*query.Infinite[api.Answer]
	owner map[int64]int64
}

// NewAnswerService creates a new answer service
func NewAnswerService(env *Env) *AnswerService {
	return &AnswerService{
		env:   env,
		lists: make(map[int64]*query.Infinite[api.Answer]),
		owner: make(map[int64]int64),
	}
}

// Answers returns the paginated answers of a question.
func (s *AnswerService) Answers(questionID int64) *query.Infinite[api.Answer] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in, ok := s.lists[questionID]; ok {
		return in
	}
	in := query.NewInfinite(s.env.Cache, query.Key{Kind: query.KindAnswers, ID: questionID}, s.env.StaleTime,
		func(ctx context.Context, page int) (*api.Page[api.Answer], error) {
			return api.GetAnswers(ctx, questionID, page)
		})
	s.lists[questionID] = in
	return in
}

// ListAnswers prints the answers of a question, sorted and filtered. Sorting
// needs the whole set, so every page is loaded first.
func (s *AnswerService) ListAnswers(ctx context.Context, questionID int64, opts AnswerListOptions) error {
	logger.Debug("Listing answers", "question_id", questionID, "sort", opts.Sort, "search", opts.Search)

	in := s.Answers(questionID)
	for {
		loaded, err := in.LoadNextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}
		if !loaded {
			break
		}
	}

	all := in.Items()
	s.track(questionID, all)

	answers := FilterAnswers(all, opts.Search)
	SortAnswers(answers, opts.Sort)

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", answers)
	}

	switch {
	case len(all) == 0:
		output.PrintInfo("No answers yet.")
		return nil
	case len(answers) == 0:
		output.PrintInfo("No answers match %q.", opts.Search)
		return nil
	}

	formatter.Bold.Fprintf(output.Out, "%d answer%s\n", len(answers), pluralize(len(answers)))
	return output.PrintList(answers, formatter.AnswerHeaders, formatter.AnswerRows(answers, s.localTally))
}

// PostAnswer answers a question. An empty content is read from the prompt.
func (s *AnswerService) PostAnswer(ctx context.Context, questionID int64, content string) (*api.Answer, error) {
	if strings.TrimSpace(content) == "" {
		var err error
		content, err = prompter.PromptMultiline("Your answer")
		if err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(validation.Post{Content: content}); err != nil {
		return nil, err
	}

	a, err := api.CreateAnswer(ctx, questionID, strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("failed to post answer: %w", err)
	}

	s.env.Invalidate(answerCountKinds...)
	output.PrintSuccess("Answer #%d posted to question #%d.", a.ID, questionID)
	return a, nil
}

// VoteAnswer applies a vote optimistically and sends it. When the answer's
// current tally is unknown it is looked up in the answers of questionID.
func (s *AnswerService) VoteAnswer(ctx context.Context, questionID, answerID int64, dir vote.Direction) (vote.Tally, error) {
	ref := answerRef(answerID)
	if _, ok := s.env.Votes.Get(ref); !ok {
		if err := s.locate(ctx, questionID, answerID); err != nil {
			return vote.Tally{}, err
		}
	}

	tally, err := s.env.Votes.Cast(ctx, ref, dir, func(ctx context.Context, sent vote.Direction) error {
		return api.VoteAnswer(ctx, answerID, sent)
	})
	if err != nil {
		return tally, fmt.Errorf("vote on answer %d failed: %w", answerID, err)
	}

	output.PrintSuccess("Answer #%d: %s", answerID, formatter.VoteDetail(tally))
	return tally, nil
}

// DeleteAnswer deletes an answer after confirmation and drops it from the
// loaded list of its question.
func (s *AnswerService) DeleteAnswer(ctx context.Context, answerID int64, skipConfirm bool) (bool, error) {
	ok, err := s.env.confirm(skipConfirm, fmt.Sprintf("Delete answer #%d?", answerID))
	if err != nil {
		return false, err
	}
	if !ok {
		output.PrintInfo("Cancelled.")
		return false, nil
	}

	if err := api.DeleteAnswer(ctx, answerID); err != nil {
		return false, fmt.Errorf("failed to delete answer %d: %w", answerID, err)
	}

	s.mu.Lock()
	questionID, known := s.owner[answerID]
	in := s.lists[questionID]
	s.mu.Unlock()
	if known && in != nil {
		in.Remove(func(a api.Answer) bool { return a.ID == answerID })
	}

	s.env.Invalidate(answerCountKinds...)
	output.PrintSuccess("Answer #%d deleted.", answerID)
	return true, nil
}

func (s *AnswerService) locate(ctx context.Context, questionID, answerID int64) error {
	if questionID == 0 {
		return fmt.Errorf("answer %d is not loaded; pass the question id", answerID)
	}

	in := s.Answers(questionID)
	for {
		s.track(questionID, in.Items())
		if _, ok := s.env.Votes.Get(answerRef(answerID)); ok {
			return nil
		}
		loaded, err := in.LoadNextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to load answers of question %d: %w", questionID, err)
		}
		if !loaded {
			return fmt.Errorf("answer %d not found on question %d", answerID, questionID)
		}
	}
}

func (s *AnswerService) track(questionID int64, answers []api.Answer) {
	s.mu.Lock()
	for _, a := range answers {
		s.owner[a.ID] = questionID
	}
	s.mu.Unlock()

	for _, a := range answers {
		s.env.Votes.Seed(answerRef(a.ID), a.Tally())
	}
}

func (s *AnswerService) localTally(id int64) (vote.Tally, bool) {
	return s.env.Votes.Get(answerRef(id))
}

func answerRef(id int64) vote.Ref {
	return vote.Ref{Kind: vote.KindAnswer, ID: id}
}
