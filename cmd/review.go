package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

var reviewOpen bool

var reviewCmd = &cobra.Command{
	Use:   "review [optional problem name]",
	Short: "Start a review session",
	Long: `Start a review session.
If a problem name is provided, review that specific problem.
If no name provided, review all problems due today.`,
	Run: func(cmd *cobra.Command, args []string) {
		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		ctx := context.Background()
		var queue []models.DueItem

		if len(args) > 0 {
			name := strings.Join(args, " ")
			p, err := store.GetProblemByName(ctx, name)
			if err != nil {
				fmt.Println("❌ Error:", err)
				return
			}
			if p == nil {
				fmt.Println("❌ Problem not found:", name)
				return
			}
			queue = append(queue, models.DueItem{Problem: *p})
		} else {
			queue, err = e.DueToday(ctx)
			if err != nil {
				fmt.Println("❌ Error fetching due problems:", err)
				return
			}
			if len(queue) == 0 {
				fmt.Println("✅ No problems due for review today!")
				return
			}
		}

		reader := bufio.NewReader(os.Stdin)
		reviewed := 0

		for i := 0; i < len(queue); i++ {
			item := queue[i]
			p := item.Problem

			fmt.Println("\n========================================")
			fmt.Printf("Reviewing [%d/%d]: %s\n", i+1, len(queue), p.Name)
			if p.URL != "" {
				fmt.Printf("URL: %s\n", p.URL)
			}
			if p.Notes != "" {
				fmt.Printf("Notes: %s\n", p.Notes)
			}
			fmt.Println("========================================")

			if reviewOpen && p.URL != "" {
				fmt.Println("🌐 Opening URL in browser...")
				openBrowser(p.URL)
			}

			fmt.Println("Press Enter when you have attempted the problem...")
			reader.ReadString('\n')

			preview, err := e.PreviewIntervals(ctx, p.ID)
			if err != nil {
				fmt.Println("❌ Error:", err)
				return
			}
			fmt.Printf("[1] Again (%s)  [2] Hard (%s)  [3] Good (%s)  [4] Easy (%s)  [s] skip  [q] quit\n",
				fmtDays(preview[models.Again]), fmtDays(preview[models.Hard]),
				fmtDays(preview[models.Good]), fmtDays(preview[models.Easy]))
			fmt.Print("How did it go? ")

			input, _ := reader.ReadString('\n')
			input = strings.TrimSpace(input)

			switch input {
			case "q":
				fmt.Printf("\n🎉 Session ended. %d problem(s) reviewed.\n", reviewed)
				return
			case "s":
				fmt.Println("⏭ Skipped.")
				continue
			}

			rating, ok := parseRatingKey(input)
			if !ok {
				fmt.Println("⚠️ Enter 1-4, s or q.")
				i-- // re-show the same problem
				continue
			}

			st, err := e.RecordReview(ctx, p.ID, rating)
			if err != nil {
				// the problem stays unrated so it can be re-attempted
				fmt.Println("❌ Failed to record review, please retry:", err)
				i--
				continue
			}
			reviewed++
			fmt.Printf("✅ Recorded %s. Next review in %s.\n", rating, fmtDays(st.Interval))
		}

		fmt.Printf("\n🎉 Review session complete! %d problem(s) reviewed.\n", reviewed)
	},
}

// parseRatingKey maps the 1-4 shortcut keys to the four ratings.
func parseRatingKey(input string) (models.Rating, bool) {
	switch input {
	case "1":
		return models.Again, true
	case "2":
		return models.Hard, true
	case "3":
		return models.Good, true
	case "4":
		return models.Easy, true
	}
	return 0, false
}

func fmtDays(n int) string {
	return fmt.Sprintf("%dd", n)
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().BoolVarP(&reviewOpen, "open", "o", false, "Open problem URL in browser")
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	if err != nil {
		fmt.Printf("❌ Failed to open browser: %v\n", err)
	}
}
