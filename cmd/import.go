package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oracleot/algos-mastery-sub001/internal/backup"
)

var forceImport bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import tracking data from a JSON export",
	Long: `Import a backup created by 'mastery export'. The file is validated
before anything is written; on success it replaces all existing data in
one transaction.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Println("❌ Error opening file:", err)
			return
		}
		defer f.Close()

		payload, err := backup.Read(f)
		if err != nil {
			fmt.Println("❌ Invalid backup:", err)
			return
		}

		if !forceImport {
			fmt.Printf("Replace ALL existing data with %d problem(s), %d review state(s), %d history entries? [y/N] ",
				len(payload.Problems), len(payload.ReviewStates), len(payload.ReviewHistory))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("Aborted.")
				return
			}
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		if err := backup.Import(context.Background(), store, payload); err != nil {
			fmt.Println("❌ Error importing backup:", err)
			return
		}

		fmt.Println("✅ Import complete.")
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVarP(&forceImport, "force", "f", false, "Skip confirmation")
}
