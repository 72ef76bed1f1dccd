package formatter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/salqa/sal/cli/pkg/api"
	"github.com/salqa/sal/cli/pkg/output"
	"github.com/salqa/sal/cli/pkg/vote"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// Now is the clock used for relative times.
var Now = time.Now

var (
	QuestionHeaders     = []string{"ID", "Votes", "Answers", "Author", "Asked", "Question"}
	AnswerHeaders       = []string{"ID", "Votes", "Author", "Answered", "Answer"}
	NotificationHeaders = []string{"ID", "", "Type", "When", "Message"}
)

// Truncate shortens s to at most n runes, collapsing whitespace.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// RelativeTime renders t as "3m ago", "2d ago" or a date for old values.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := Now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// Votes renders a tally as "+4 ▲" with the viewer's vote marked.
func Votes(t vote.Tally) string {
	score := fmt.Sprintf("%+d", t.Score())
	if t.Score() == 0 {
		score = "0"
	}
	switch t.Viewer {
	case vote.Up:
		return score + " " + Success.Sprint("▲")
	case vote.Down:
		return score + " " + Error.Sprint("▼")
	default:
		return score
	}
}

// VoteDetail renders the full counters, e.g. "6 up, 1 down (you: up)".
func VoteDetail(t vote.Tally) string {
	s := fmt.Sprintf("%d up, %d down", t.Upvotes, t.Downvotes)
	if t.Viewer != vote.None {
		s += fmt.Sprintf(" (you: %s)", t.Viewer)
	}
	return s
}

// Author renders "Display Name (@username)".
func Author(u api.UserSummary) string {
	name := u.DisplayName()
	if name == u.Username || u.Username == "" {
		return name
	}
	return fmt.Sprintf("%s (@%s)", name, u.Username)
}

// QuestionRows builds table rows for a question list. tallies overrides the
// counters of questions with local vote state.
func QuestionRows(questions []api.Question, tallies func(id int64) (vote.Tally, bool)) [][]string {
	rows := make([][]string, 0, len(questions))
	for _, q := range questions {
		t := q.Tally()
		if tallies != nil {
			if local, ok := tallies(q.ID); ok {
				t = local
			}
		}
		rows = append(rows, []string{
			fmt.Sprint(q.ID),
			Votes(t),
			fmt.Sprint(q.AnswersCount),
			"@" + q.User.Username,
			RelativeTime(q.CreatedAt),
			Truncate(q.Content, 60),
		})
	}
	return rows
}

// AnswerRows builds table rows for an answer list.
func AnswerRows(answers []api.Answer, tallies func(id int64) (vote.Tally, bool)) [][]string {
	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		t := a.Tally()
		if tallies != nil {
			if local, ok := tallies(a.ID); ok {
				t = local
			}
		}
		rows = append(rows, []string{
			fmt.Sprint(a.ID),
			Votes(t),
			"@" + a.User.Username,
			RelativeTime(a.CreatedAt),
			Truncate(a.Content, 70),
		})
	}
	return rows
}

// NotificationRows builds table rows, marking unread items with a dot.
func NotificationRows(notifications []api.Notification) [][]string {
	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		marker := ""
		if !n.IsRead {
			marker = Info.Sprint("●")
		}
		rows = append(rows, []string{
			fmt.Sprint(n.ID),
			marker,
			NotificationLabel(n.Type),
			RelativeTime(n.CreatedAt),
			Truncate(n.Message, 70),
		})
	}
	return rows
}

// NotificationLabel is the human label for a notification type.
func NotificationLabel(t api.NotificationType) string {
	switch t.Normalize() {
	case api.NotificationNewAnswer:
		return "answer"
	case api.NotificationNewQuestion:
		return "question"
	case api.NotificationVote:
		return "vote"
	case api.NotificationAcceptedAnswer:
		return "accepted"
	case api.NotificationMention:
		return "mention"
	default:
		return "other"
	}
}

// ProfileFields lists the displayable fields of a profile, skipping blanks.
func ProfileFields(p *api.Profile) []output.Field {
	fields := []output.Field{
		{Key: "Username", Value: "@" + p.Username},
		{Key: "Name", Value: p.DisplayName()},
	}
	optional := []output.Field{
		{Key: "Email", Value: p.Email},
		{Key: "Job", Value: p.Job},
		{Key: "Bio", Value: p.Bio},
		{Key: "Avatar", Value: p.Avatar},
	}
	for _, f := range optional {
		if s, _ := f.Value.(string); s != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// QuestionFields lists the detail view of one question.
func QuestionFields(q *api.Question, t vote.Tally) []output.Field {
	return []output.Field{
		{Key: "ID", Value: q.ID},
		{Key: "Author", Value: Author(q.User)},
		{Key: "Asked", Value: RelativeTime(q.CreatedAt)},
		{Key: "Votes", Value: VoteDetail(t)},
		{Key: "Answers", Value: q.AnswersCount},
		{Key: "Question", Value: q.Content},
	}
}
