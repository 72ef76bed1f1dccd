package cmd

import (
	"strings"

	"github.com/salqa/sal/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	questionsAll bool
	showSort     string
	showSearch   string
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "Question commands",
	Long:    "Browse, ask, vote on and delete questions",
}

var questionsListCmd = requireAuth(&cobra.Command{
	Use:   "list",
	Short: "Show the question feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		questionSvc := service.NewQuestionService(app.env)
		return questionSvc.ListQuestions(cmd.Context(), service.PageOptions{All: questionsAll})
	},
})

var questionsShowCmd = requireAuth(&cobra.Command{
	Use:   "show <question-id>",
	Short: "Show a question and its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "question")
		if err != nil {
			return err
		}
		sortBy, err := service.ParseAnswerSort(showSort)
		if err != nil {
			return err
		}

		questionSvc := service.NewQuestionService(app.env)
		answerSvc := service.NewAnswerService(app.env)
		return questionSvc.ShowQuestion(cmd.Context(), id, answerSvc, service.AnswerListOptions{
			Sort:   sortBy,
			Search: showSearch,
		})
	},
})

var questionsAskCmd = requireAuth(&cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a new question",
	Long:  "Ask a new question. Without an argument the question is read from the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		questionSvc := service.NewQuestionService(app.env)
		_, err := questionSvc.AskQuestion(cmd.Context(), strings.Join(args, " "))
		return err
	},
})

var questionsVoteCmd = requireAuth(&cobra.Command{
	Use:   "vote <question-id> <up|down|none>",
	Short: "Vote on a question",
	Long:  "Vote on a question. Voting the same direction again removes your vote.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "question")
		if err != nil {
			return err
		}
		dir, err := parseVote(args[1])
		if err != nil {
			return err
		}

		questionSvc := service.NewQuestionService(app.env)
		_, err = questionSvc.VoteQuestion(cmd.Context(), id, dir)
		return err
	},
})

var questionsDeleteCmd = requireAuth(&cobra.Command{
	Use:   "delete <question-id>",
	Short: "Delete one of your questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "question")
		if err != nil {
			return err
		}
		questionSvc := service.NewQuestionService(app.env)
		_, err = questionSvc.DeleteQuestion(cmd.Context(), id, assumeYes)
		return err
	},
})

func init() {
	questionsListCmd.Flags().BoolVar(&questionsAll, "all", false, "Load every page without asking")
	questionsShowCmd.Flags().StringVar(&showSort, "sort", "score", "Answer order: score, newest, oldest")
	questionsShowCmd.Flags().StringVar(&showSearch, "search", "", "Only show answers containing this text")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
	questionsCmd.AddCommand(questionsAskCmd)
	questionsCmd.AddCommand(questionsVoteCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
}
