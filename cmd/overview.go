package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/dates"
	"github.com/oracleot/algos-mastery-sub001/internal/db"
	"github.com/oracleot/algos-mastery-sub001/internal/engine"
)

var overviewWatch bool

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show a dashboard of due problems, streak and weekly activity",
	Run: func(cmd *cobra.Command, args []string) {
		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		if !overviewWatch {
			renderOverview(e, store)
			return
		}

		// watch mode: re-render whenever the store changes or the
		// calendar day flips under us. The changefeed only carries
		// writes made by this process; another terminal writing to the
		// same database is invisible to it, so a poll ticker picks
		// those up.
		refresh := make(chan struct{}, 1)
		unsubscribe := store.Subscribe(func(db.Change) {
			select {
			case refresh <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		poll := time.NewTicker(30 * time.Second)
		defer poll.Stop()

		for {
			renderOverview(e, store)
			fmt.Println("\n(watching for changes, Ctrl-C to exit)")

			midnight := time.NewTimer(time.Until(dates.AddDays(dates.StartOfDay(time.Now()), 1)))
			select {
			case <-refresh:
			case <-poll.C:
			case <-midnight.C:
			case <-stop:
				midnight.Stop()
				return
			}
			midnight.Stop()
			fmt.Println()
		}
	},
}

func renderOverview(e *engine.Engine, store *db.Store) {
	ctx := context.Background()

	problems, err := store.ListProblems(ctx)
	if err != nil {
		fmt.Println("❌ Error fetching problems:", err)
		return
	}
	due, err := e.DueToday(ctx)
	if err != nil {
		fmt.Println("❌ Error building due queue:", err)
		return
	}
	streak, err := e.Streak(ctx)
	if err != nil {
		fmt.Println("❌ Error computing streak:", err)
		return
	}
	weekly, err := e.WeeklyStats(ctx)
	if err != nil {
		fmt.Println("❌ Error computing stats:", err)
		return
	}

	fmt.Println("📊 Overview")
	fmt.Println("===========")
	fmt.Printf("Tracked problems: %d\n", len(problems))
	fmt.Printf("Due today:        %d\n", len(due))
	fmt.Printf("Current streak:   %d day(s)\n", streak.Current)
	fmt.Printf("Longest streak:   %d day(s)\n", streak.Longest)
	fmt.Printf("Reviews this week: %d (%.1f/day)\n", weekly.Total, weekly.DailyAverage)
	if !streak.ReviewedToday && len(due) > 0 {
		fmt.Println("\n⏳ Run 'mastery review' to work through today's queue.")
	}
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().BoolVarP(&overviewWatch, "watch", "w", false, "Keep the dashboard open and refresh on changes")
}
