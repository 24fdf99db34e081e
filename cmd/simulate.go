package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate examinees and report estimation accuracy",
	Long: "Runs simulated sessions in which each examinee answers with the 3PL " +
		"probability at a known true ability, then compares the final estimates " +
		"with the truth.",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("examinees")
		theta, _ := cmd.Flags().GetFloat64("theta")
		lo, _ := cmd.Flags().GetFloat64("min")
		hi, _ := cmd.Flags().GetFloat64("max")
		seed, _ := cmd.Flags().GetUint64("seed")
		workers, _ := cmd.Flags().GetInt("concurrency")
		rtMs, _ := cmd.Flags().GetInt64("response-ms")
		perSection, _ := cmd.Flags().GetInt("per-section")
		guessing, _ := cmd.Flags().GetFloat64("guessing")
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		names, _ := cmd.Flags().GetStringSlice("sections")

		sections, err := parseSections(names)
		if err != nil {
			return err
		}

		var bank *itembank.Bank
		if perSection > 0 {
			secs := sections
			if len(secs) == 0 {
				secs = itembank.AllSections()
			}
			bank, err = simulate.SyntheticBank("v0.0.0-sim", secs, perSection, guessing)
		} else {
			bank, err = itembank.Seed()
		}
		if err != nil {
			return err
		}

		engine, err := config.LoadEngine()
		if err != nil {
			return err
		}

		log := logger.Nop()
		if verbose {
			if log, err = logger.New(logger.Options{Level: "debug"}); err != nil {
				return err
			}
			defer log.Sync()
		}

		rep, err := simulate.Run(cmd.Context(), engine, bank, simulate.Options{
			N:              n,
			Theta:          theta,
			ThetaMin:       lo,
			ThetaMax:       hi,
			Sections:       sections,
			Seed:           seed,
			Concurrency:    workers,
			ResponseTimeMs: rtMs,
		}, log)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		fmt.Printf("Bank:           %s (%d items)\n", bank.Version(), bank.Len())
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("Examinees:      %d\n", rep.N)
		fmt.Printf("Mean true θ:    %+.3f\n", rep.MeanTrue)
		fmt.Printf("Mean estimate:  %+.3f\n", rep.MeanEstimate)
		fmt.Printf("Bias:           %+.3f\n", rep.Bias)
		fmt.Printf("MAE:            %.3f\n", rep.MAE)
		fmt.Printf("RMSE:           %.3f\n", rep.RMSE)
		fmt.Printf("Mean items:     %.1f\n", rep.MeanItems)
		fmt.Printf("Mean EIQ:       %.1f\n", rep.MeanEIQ)
		fmt.Printf("Unreliable:     %d\n", rep.Unreliable)
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.IntP("examinees", "n", 200, "Number of simulated examinees")
	f.Float64("theta", 0, "True ability of every examinee")
	f.Float64("min", 0, "Lower bound of a uniform true-ability range")
	f.Float64("max", 0, "Upper bound of a uniform true-ability range")
	f.Uint64("seed", 1, "Random seed")
	f.Int("concurrency", 0, "Parallel sessions (0 = GOMAXPROCS)")
	f.Int64("response-ms", 20000, "Response time reported for every simulated answer")
	f.Int("per-section", 0, "Use a synthetic bank with this many items per section instead of the built-in bank")
	f.Float64("guessing", 0.2, "Guessing parameter of synthetic items")
	f.StringSlice("sections", nil, "Sections to assess (default all)")
	f.Bool("json", false, "Print the report as JSON")
	f.BoolP("verbose", "v", false, "Log every simulated session")
}
