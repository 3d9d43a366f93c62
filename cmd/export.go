package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/backup"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all tracking data to a JSON file",
	Long: `Export problems, review states and the full review history to a
JSON file (or stdout if no file is given). The file can be re-imported
with 'mastery import'.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		payload, err := backup.Export(context.Background(), store)
		if err != nil {
			fmt.Println("❌ Error exporting data:", err)
			return
		}

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				fmt.Println("❌ Error creating file:", err)
				return
			}
			defer f.Close()
			out = f
		}

		if err := payload.Write(out); err != nil {
			fmt.Println("❌ Error writing backup:", err)
			return
		}

		if len(args) == 1 {
			fmt.Printf("✅ Exported %d problem(s), %d review state(s), %d history entries to %s\n",
				len(payload.Problems), len(payload.ReviewStates), len(payload.ReviewHistory), args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
