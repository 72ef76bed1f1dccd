package api

import (
	"time"

	"github.com/salqa/sal/cli/pkg/vote"
)

// Envelope is the backend's single-record response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    T      `json:"data"`
}

// PageMeta describes one page of a collection.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

// HasNext reports whether a page after this one exists.
func (m PageMeta) HasNext() bool {
	return m.CurrentPage < m.TotalPages
}

// Page is the paginated collection wrapper used for every list endpoint.
type Page[T any] struct {
	Data []T     `json:"data"`
	Meta PageMeta `json:"meta"`
}

// Auth Request Types
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Profile is the signed-in viewer's own record.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
	Job       string `json:"job,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// DisplayName returns the full name, falling back to the username.
func (p Profile) DisplayName() string {
	return displayName(p.FullName, p.FirstName, p.LastName, p.Username)
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Job       *string `json:"job,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Avatar == nil && r.Job == nil && r.Bio == nil
}

// UserSummary is the author block embedded in questions and answers.
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Job       string `json:"job,omitempty"`
}

// DisplayName returns the full name, falling back to the username.
func (u UserSummary) DisplayName() string {
	return displayName(u.FullName, u.FirstName, u.LastName, u.Username)
}

// Question Response Types
type Question struct {
	ID           int64          `json:"id"`
	User         UserSummary    `json:"user"`
	Content      string         `json:"content"`
	Upvotes      int            `json:"upvotes"`
	Downvotes    int            `json:"downvotes"`
	AnswersCount int            `json:"answers_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
	ViewerVote   vote.Direction `json:"viewer_vote"`
}

// Tally returns the vote counters as seen by the viewer.
func (q Question) Tally() vote.Tally {
	return vote.Tally{Upvotes: q.Upvotes, Downvotes: q.Downvotes, Viewer: q.ViewerVote}
}

type CreateQuestionRequest struct {
	Content string `json:"content"`
}

// Answer Response Types
type Answer struct {
	ID         int64          `json:"id"`
	QuestionID int64          `json:"question_id,omitempty"`
	User       UserSummary    `json:"user"`
	Content    string         `json:"content"`
	Upvotes    int            `json:"upvotes"`
	Downvotes  int            `json:"downvotes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
	Images     []string       `json:"images,omitempty"`
	ViewerVote vote.Direction `json:"viewer_vote"`
}

// Tally returns the vote counters as seen by the viewer.
func (a Answer) Tally() vote.Tally {
	return vote.Tally{Upvotes: a.Upvotes, Downvotes: a.Downvotes, Viewer: a.ViewerVote}
}

// Score is upvotes minus downvotes.
func (a Answer) Score() int {
	return a.Upvotes - a.Downvotes
}

type CreateAnswerRequest struct {
	Content    string `json:"content"`
	QuestionID int64  `json:"question_id"`
}

// VoteRequest carries the resolved direction: 0 neutral, 1 up, 2 down.
type VoteRequest struct {
	Vote int `json:"vote"`
}

// NotificationType enumerates what a notification is about.
type NotificationType string

const (
	NotificationNewAnswer      NotificationType = "new_answer"
	NotificationNewQuestion    NotificationType = "new_question"
	NotificationVote           NotificationType = "vote"
	NotificationAcceptedAnswer NotificationType = "accepted_answer"
	NotificationMention        NotificationType = "mention"
	NotificationOther          NotificationType = "other"
)

// Normalize maps unknown wire values to NotificationOther.
func (t NotificationType) Normalize() NotificationType {
	switch t {
	case NotificationNewAnswer, NotificationNewQuestion, NotificationVote,
		NotificationAcceptedAnswer, NotificationMention:
		return t
	default:
		return NotificationOther
	}
}

// Notification Response
type Notification struct {
	ID         int64            `json:"id"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	CreatedAt  time.Time        `json:"created_at"`
	IsRead     bool             `json:"is_read"`
	QuestionID *int64           `json:"question_id,omitempty"`
}

// UploadResponse is returned by the multipart upload endpoint.
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
}

// Error Response
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Errors  map[string][]string    `json:"errors,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func displayName(full, first, last, username string) string {
	if full != "" {
		return full
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return username
	}
}
