package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/salqa/sal/cli/pkg/vote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questionPage = `{
  "data": [
    {"id": 1, "content": "How do channels close?", "upvotes": 5, "downvotes": 1, "answers_count": 2,
     "created_at": "2024-05-01T10:00:00Z", "viewer_vote": true,
     "user": {"id": 7, "username": "ada", "first_name": "Ada", "last_name": "Lovelace"}},
    {"id": 2, "content": "Why nil maps?", "upvotes": 0, "downvotes": 0, "answers_count": 0,
     "created_at": "2024-05-02T10:00:00Z", "viewer_vote": null,
     "user": {"id": 8, "username": "alan", "first_name": "Alan", "last_name": "Turing", "job": "Mathematician"}}
  ],
  "meta": {"current_page": 1, "total_pages": 3, "total_items": 25, "per_page": 10}
}`

func TestGetQuestions_DecodesPage(t *testing.T) {
	b := newBackend(t, http.StatusOK, questionPage)

	page, err := GetQuestions(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "/questions", b.last().Path)
	assert.Equal(t, "1", b.last().Page)

	require.Len(t, page.Data, 2)
	assert.Equal(t, PageMeta{CurrentPage: 1, TotalPages: 3, TotalItems: 25, PerPage: 10}, page.Meta)
	assert.True(t, page.Meta.HasNext())

	first := page.Data[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, vote.Up, first.ViewerVote)
	assert.Equal(t, vote.Tally{Upvotes: 5, Downvotes: 1, Viewer: vote.Up}, first.Tally())
	assert.Equal(t, "Ada Lovelace", first.User.DisplayName())
	assert.Equal(t, vote.None, page.Data[1].ViewerVote)
}

func TestGetQuestion(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true,"data":{"id":42,"content":"Q","upvotes":1,"downvotes":0,"user":{"id":1,"username":"u"}}}`)

	q, err := GetQuestion(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "/questions/42", b.last().Path)
	assert.Equal(t, int64(42), q.ID)
}

func TestGetQuestion_NotFound(t *testing.T) {
	newBackend(t, http.StatusNotFound, `{"success":false,"message":"Question not found"}`)

	_, err := GetQuestion(context.Background(), 404)
	assert.True(t, IsNotFound(err))
}

func TestCreateQuestion(t *testing.T) {
	b := newBackend(t, http.StatusCreated, `{"success":true,"data":{"id":3,"content":"New?"}}`)

	q, err := CreateQuestion(context.Background(), "New?")
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.ID)
	assert.Equal(t, http.MethodPost, b.last().Method)
	assert.JSONEq(t, `{"content":"New?"}`, b.last().Body)
}

func TestDeleteQuestion(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, DeleteQuestion(context.Background(), 5))
	assert.Equal(t, http.MethodDelete, b.last().Method)
	assert.Equal(t, "/questions/5", b.last().Path)
}

func TestVoteQuestion_WireValues(t *testing.T) {
	b := newBackend(t, http.StatusOK, `{"success":true}`)

	for dir, want := range map[vote.Direction]string{vote.None: `{"vote":0}`, vote.Up: `{"vote":1}`, vote.Down: `{"vote":2}`} {
		require.NoError(t, VoteQuestion(context.Background(), 9, dir))
		assert.Equal(t, "/questions/9/vote", b.last().Path)
		assert.JSONEq(t, want, b.last().Body)
	}
}

func TestVoteQuestion_ServerError(t *testing.T) {
	newBackend(t, http.StatusServiceUnavailable, ``)

	err := VoteQuestion(context.Background(), 9, vote.Up)
	require.Error(t, err)
	assert.True(t, IsServerError(err))
	assert.Contains(t, err.Error(), "Service Unavailable")
}
