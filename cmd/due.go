package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/dates"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show problems due for review today",
	Run: func(cmd *cobra.Command, args []string) {
		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		due, err := e.DueToday(context.Background())
		if err != nil {
			fmt.Println("❌ Error building due queue:", err)
			return
		}

		if len(due) == 0 {
			fmt.Println("✅ No problems due today! Good job.")
			return
		}

		fmt.Printf("🔥 %d problem(s) due today:\n\n", len(due))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tProblem\tDiff\tDue\tOverdue\tTags")
		fmt.Fprintln(w, "--\t-------\t----\t---\t-------\t----")

		now := time.Now()
		for _, item := range due {
			var tagNames []string
			for _, t := range item.Problem.Tags {
				tagNames = append(tagNames, t.Name)
			}

			overdue := "today"
			if d := dates.DaysBetween(item.Review.NextReview, now); d > 0 {
				overdue = fmt.Sprintf("%dd", d)
			}

			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
				item.Problem.ID, item.Problem.Name, item.Problem.Difficulty,
				item.Review.NextReview.Format("2006-01-02"), overdue,
				strings.Join(tagNames, ", "))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)
}
