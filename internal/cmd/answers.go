package cmd

import (
	"strings"

	"github.com/salqa/sal/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	answersSort     string
	answersSearch   string
	answersQuestion int64
)

var answersCmd = &cobra.Command{
	Use:     "answers",
	Aliases: []string{"a"},
	Short:   "Answer commands",
	Long:    "List, post, vote on and delete answers",
}

var answersListCmd = requireAuth(&cobra.Command{
	Use:   "list <question-id>",
	Short: "List the answers to a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, err := parseID(args[0], "question")
		if err != nil {
			return err
		}
		sortBy, err := service.ParseAnswerSort(answersSort)
		if err != nil {
			return err
		}

		answerSvc := service.NewAnswerService(app.env)
		return answerSvc.ListAnswers(cmd.Context(), questionID, service.AnswerListOptions{
			Sort:   sortBy,
			Search: answersSearch,
		})
	},
})

var answersPostCmd = requireAuth(&cobra.Command{
	Use:   "post <question-id> [answer]",
	Short: "Answer a question",
	Long:  "Answer a question. Without an answer argument the text is read from the terminal.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, err := parseID(args[0], "question")
		if err != nil {
			return err
		}
		answerSvc := service.NewAnswerService(app.env)
		_, err = answerSvc.PostAnswer(cmd.Context(), questionID, strings.Join(args[1:], " "))
		return err
	},
})

var answersVoteCmd = requireAuth(&cobra.Command{
	Use:   "vote <answer-id> <up|down|none>",
	Short: "Vote on an answer",
	Long:  "Vote on an answer. Voting the same direction again removes your vote.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		answerID, err := parseID(args[0], "answer")
		if err != nil {
			return err
		}
		dir, err := parseVote(args[1])
		if err != nil {
			return err
		}

		answerSvc := service.NewAnswerService(app.env)
		_, err = answerSvc.VoteAnswer(cmd.Context(), answersQuestion, answerID, dir)
		return err
	},
})

var answersDeleteCmd = requireAuth(&cobra.Command{
	Use:   "delete <answer-id>",
	Short: "Delete one of your answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answerID, err := parseID(args[0], "answer")
		if err != nil {
			return err
		}
		answerSvc := service.NewAnswerService(app.env)
		_, err = answerSvc.DeleteAnswer(cmd.Context(), answerID, assumeYes)
		return err
	},
})

func init() {
	answersListCmd.Flags().StringVar(&answersSort, "sort", "score", "Order: score, newest, oldest")
	answersListCmd.Flags().StringVar(&answersSearch, "search", "", "Only show answers containing this text")
	answersVoteCmd.Flags().Int64Var(&answersQuestion, "question", 0, "Question the answer belongs to (required)")
	_ = answersVoteCmd.MarkFlagRequired("question")

	answersCmd.AddCommand(answersListCmd)
	answersCmd.AddCommand(answersPostCmd)
	answersCmd.AddCommand(answersVoteCmd)
	answersCmd.AddCommand(answersDeleteCmd)
}
