package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var forceDelete bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a problem",
	Long: `Delete a problem. Its review history stays in the log for streak
and stats purposes, but the problem no longer appears in any queue.`,
	Args: cobra.ExactArgs(1),
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

		if !forceDelete {
			fmt.Printf("Delete '%s'? [y/N] ", target.Name)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := store.DeleteProblem(ctx, id); err != nil {
			fmt.Println("❌ Error deleting problem:", err)
			return
		}

		fmt.Printf("🗑 Deleted '%s'.\n", target.Name)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Skip confirmation")
}
