package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-item response statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := s.Events().ItemUsage(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No responses recorded yet.")
			return nil
		}

		fmt.Printf("%-24s  %9s  %8s  %7s  %9s\n", "Item", "Responses", "Correct", "P+", "Mean Ms")
		fmt.Println(strings.Repeat("─", 66))
		for _, it := range items {
			fmt.Printf("%-24s  %9d  %8d  %6.1f%%  %9.0f\n",
				truncate(it.ItemID, 24),
				it.Responses,
				it.Correct,
				100*float64(it.Correct)/float64(it.Responses),
				it.MeanTimeMs,
			)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 30, "Number of items to show (0 = all)")
}
