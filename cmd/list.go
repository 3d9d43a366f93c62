package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked problems",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		ctx := context.Background()
		problems, err := store.ListProblems(ctx)
		if err != nil {
			fmt.Println("❌ Error listing problems:", err)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tProblem\tDiff\tNext Review\tInterval\tTags")
		fmt.Fprintln(w, "--\t-------\t----\t-----------\t--------\t----")

		for _, p := range problems {
			var tagNames []string
			for _, t := range p.Tags {
				tagNames = append(tagNames, t.Name)
			}

			nextReview, interval := "-", "-"
			if st, err := store.GetReviewState(ctx, p.ID); err == nil && st != nil {
				nextReview = st.NextReview.Format("2006-01-02")
				interval = fmtDays(st.Interval)
			}

			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Difficulty, nextReview, interval,
				strings.Join(tagNames, ", "))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
