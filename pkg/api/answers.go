package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/salqa/sal/cli/pkg/client"
	"github.com/salqa/sal/cli/pkg/logger"
	"github.com/salqa/sal/cli/pkg/vote"
)

// GetAnswers retrieves one page of answers to a question
func GetAnswers(ctx context.Context, questionID int64, page int) (*Page[Answer], error) {
	logger.Debug("Fetching answers", "question_id", questionID, "page", page)

	var response Page[Answer]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(fmt.Sprintf("/questions/%d/answers", questionID))

	if err := decode(resp, err, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateAnswer posts an answer to a question
func CreateAnswer(ctx context.Context, questionID int64, content string) (*Answer, error) {
	logger.Debug("Posting answer", "question_id", questionID)

	var env Envelope[Answer]
	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(CreateAnswerRequest{Content: content, QuestionID: questionID}).
		Post("/answers")

	if err := decode(resp, err, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteAnswer deletes an answer owned by the viewer
func DeleteAnswer(ctx context.Context, id int64) error {
	logger.Debug("Deleting answer", "answer_id", id)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/answers/%d", id))

	return CheckResponse(resp, err)
}

// VoteAnswer sends the resolved vote direction for an answer
func VoteAnswer(ctx context.Context, id int64, dir vote.Direction) error {
	logger.Debug("Voting on answer", "answer_id", id, "vote", dir)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetBody(VoteRequest{Vote: int(dir)}).
		Post(fmt.Sprintf("/answers/%d/vote", id))

	return CheckResponse(resp, err)
}
