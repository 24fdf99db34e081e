package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded hint and description LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.Events().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		shown := 0
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if failedOnly && e.Success {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-5s  %-19s  %-12s  %-28s  %-6s  %-6s  %-7s  %-9s  %s\n",
					"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "Cost", "OK")
				fmt.Println(strings.Repeat("─", 108))
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-28s  %-6d  %-6d  %-7d  %-9s  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				formatCost(e.CostUSD),
				ok,
			)
			shown++
		}
		if shown == 0 {
			fmt.Println("No LLM calls found.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of an LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.Events().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("ID:        %d (seq %d)\n", e.ID, e.Sequence)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Cost:      %s\n", formatCost(e.CostUSD))
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		printBody("REQUEST", e.RequestBody)
		printBody("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.Events().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		rule := strings.Repeat("─", 72)
		fmt.Println("Usage by Purpose")
		fmt.Println(rule)
		fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Println(rule)

		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
				st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}
		fmt.Println(rule)
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

		models, err := s.Events().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(models) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Estimated Cost (USD)")
		fmt.Println(rule)
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(rule)

		var total float64
		var unpriced []string
		for _, mu := range models {
			cost, known := modelCost(mu)
			if !known {
				unpriced = append(unpriced, mu.Model)
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
				continue
			}
			total += cost
			fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
				truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(cost))
		}
		fmt.Println(rule)
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// modelCost prefers the cost recorded at call time and falls back to the
// current price table.
func modelCost(mu store.LLMModelUsage) (float64, bool) {
	if mu.CostUSD > 0 {
		return mu.CostUSD, true
	}
	price := llm.LookupCost(mu.Model)
	if price == nil {
		return 0, false
	}
	return price.Cost(mu.InputTokens, mu.OutputTokens), true
}

func printBody(title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Println()
	fmt.Println(sep)
	fmt.Println(title)
	fmt.Println(sep)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (hint, description, check)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
