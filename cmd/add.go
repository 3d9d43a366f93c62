package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

var (
	addURL   string
	addNotes string
	addTags  string
)

var addCmd = &cobra.Command{
	Use:   "add [name] [difficulty 1-5]",
	Short: "Add a new problem and enroll it for review",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		difficulty := 0
		fmt.Sscanf(args[1], "%d", &difficulty)
		if difficulty < 1 || difficulty > 5 {
			fmt.Println("❌ Difficulty must be between 1 and 5")
			return
		}

		e, store, err := openEngine()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		var tags []models.Tag
		if addTags != "" {
			for _, part := range strings.Split(addTags, ",") {
				if t := strings.TrimSpace(part); t != "" {
					tags = append(tags, models.Tag{Name: t})
				}
			}
		}

		ctx := context.Background()
		id, err := store.AddProblem(ctx, models.Problem{
			Name:       name,
			URL:        addURL,
			Notes:      addNotes,
			Difficulty: difficulty,
			Tags:       tags,
		})
		if err != nil {
			fmt.Println("❌ Error adding problem:", err)
			return
		}

		st, err := e.AddToReview(ctx, id)
		if err != nil {
			fmt.Println("❌ Error enrolling problem for review:", err)
			return
		}

		fmt.Printf("✅ Added '%s' (due for first review: %s)\n", name, st.NextReview.Format("2006-01-02"))
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addURL, "url", "u", "", "URL to the problem")
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "Notes about the problem")
	addCmd.Flags().StringVarP(&addTags, "tags", "t", "", "Comma-separated tags (e.g. array,dp)")
}
