package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/engine"
)

var todayCmd = &cobra.Command{
	Use:   "today [id]",
	Short: "Force a problem into today's review queue",
	Long: `Force an enrolled problem to surface in today's queue without
changing its scheduling state. Useful when you want another look at a
problem ahead of schedule.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("❌ Invalid ID")
			return
		}

		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		if err := e.AddToTodayQueue(context.Background(), id); err != nil {
			if errors.Is(err, engine.ErrNotEnrolled) {
				fmt.Println("❌ Problem is not enrolled in review. Use 'mastery add' first.")
				return
			}
			fmt.Println("❌ Error:", err)
			return
		}

		fmt.Println("✅ Problem added to today's queue.")
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
}
