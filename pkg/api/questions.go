package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/vote"
)

// GetQuestions retrieves one page of the question feed
func GetQuestions(ctx context.Context, page int) (*Page[Question], error) {
	logger.Debug("Fetching questions", "page", page)

	var response Page[Question]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get("/questions")

	if err := decode(resp, err, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetQuestion retrieves a single question
func GetQuestion(ctx context.Context, id int64) (*Question, error) {
	logger.Debug("Fetching question", "question_id", id)

	var env Envelope[Question]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Get(fmt.Sprintf("/questions/%d", id))

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateQuestion asks a new question
func CreateQuestion(ctx context.Context, content string) (*Question, error) {
	logger.Debug("Creating question", "length", len(content))

	var env Envelope[Question]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(CreateQuestionRequest{Content: content}).
		Post("/questions")

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteQuestion deletes a question owned by the viewer
func DeleteQuestion(ctx context.Context, id int64) error {
	logger.Debug("Deleting question", "question_id", id)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/questions/%d", id))

	return CheckResponse(resp, err)
}

// VoteQuestion sends the resolved vote direction for a question
func VoteQuestion(ctx context.Context, id int64, dir vote.Direction) error {
	logger.Debug("Voting on question", "question_id", id, "vote", dir)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(VoteRequest{Vote: int(dir)}).
		Post(fmt.Sprintf("/questions/%d/vote", id))

	return CheckResponse(resp, err)
}
