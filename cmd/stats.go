package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review counts for the last 7 days",
	Run: func(cmd *cobra.Command, args []string) {
		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		weekly, err := e.WeeklyStats(context.Background())
		if err != nil {
			fmt.Println("❌ Error computing stats:", err)
			return
		}

		fmt.Println("📊 Last 7 days")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Date\tReviewed\tAgain\tHard\tGood\tEasy")
		fmt.Fprintln(w, "----\t--------\t-----\t----\t----\t----")
		for _, d := range weekly.Days {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
				d.Date.Format("Mon 01-02"), d.Reviewed, d.Again, d.Hard, d.Good, d.Easy)
		}
		w.Flush()

		fmt.Printf("\nWeekly total:  %d review(s)\n", weekly.Total)
		fmt.Printf("Daily average: %.1f\n", weekly.DailyAverage)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
