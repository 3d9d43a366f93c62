package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/models"
)

var (
	editName       string
	editURL        string
	editNotes      string
	editTags       string
	editDifficulty int
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a problem's details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("❌ Invalid ID")
			return
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		ctx := context.Background()
		target, err := store.GetProblemByID(ctx, id)
		if err != nil {
			fmt.Println("❌ Error fetching problem:", err)
			return
		}
		if target == nil {
			fmt.Println("❌ Problem not found with ID:", id)
			return
		}

		if cmd.Flags().Changed("name") {
			target.Name = editName
		}
		if cmd.Flags().Changed("url") {
			target.URL = editURL
		}
		if cmd.Flags().Changed("notes") {
			target.Notes = editNotes
		}
		if cmd.Flags().Changed("difficulty") {
			if editDifficulty < 1 || editDifficulty > 5 {
				fmt.Println("❌ Difficulty must be between 1 and 5")
				return
			}
			target.Difficulty = editDifficulty
		}
		if cmd.Flags().Changed("tags") {
			var newTags []models.Tag
			for _, part := range strings.Split(editTags, ",") {
				if t := strings.TrimSpace(part); t != "" {
					newTags = append(newTags, models.Tag{Name: t})
				}
			}
			target.Tags = newTags
		}

		if err := store.UpdateProblemDetails(ctx, *target); err != nil {
			fmt.Println("❌ Error updating problem:", err)
			return
		}

		fmt.Println("✅ Problem updated successfully!")
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVar(&editURL, "url", "", "New URL")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "New notes")
	editCmd.Flags().IntVar(&editDifficulty, "difficulty", 0, "New difficulty (1-5)")
	editCmd.Flags().StringVar(&editTags, "tags", "", "Comma-separated tags (replaces existing)")
}
