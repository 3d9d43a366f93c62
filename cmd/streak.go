package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your current and longest review streaks",
	Run: func(cmd *cobra.Command, args []string) {
		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		s, err := e.Streak(context.Background())
		if err != nil {
			fmt.Println("❌ Error computing streak:", err)
			return
		}

		fmt.Println("🔥 Streak")
		fmt.Println("---------")
		fmt.Printf("Current:  %d day(s)\n", s.Current)
		fmt.Printf("Longest:  %d day(s)\n", s.Longest)
		if s.LastReviewDate.IsZero() {
			fmt.Println("Last review: never")
			return
		}
		fmt.Printf("Last review: %s\n", s.LastReviewDate.Format("2006-01-02"))
		if s.ReviewedToday {
			fmt.Println("✅ You already reviewed today.")
		} else if s.Current > 0 {
			fmt.Println("⏳ Review something today to keep the streak alive!")
		}
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
}
