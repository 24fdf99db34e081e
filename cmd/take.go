package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/app"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/session"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take an assessment in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			return fmt.Errorf("--user is required when $USER is not set")
		}
		names, _ := cmd.Flags().GetStringSlice("sections")
		sections, err := parseSections(names)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		banks, err := loadBanks(ctx, st)
		if err != nil {
			return err
		}

		// Log output would corrupt the alternate screen.
		log := logger.Nop()
		engine, err := config.LoadEngine()
		if err != nil {
			return err
		}
		svc, err := session.NewService(engine, session.Options{
			Banks:    banks,
			Store:    st.Sessions(),
			Exposure: st.Exposure(session.DefaultExposureWindow),
			Events:   st.Events(),
			Logger:   log,
			Hints:    newHintGenerator(ctx, st.Events(), log),
		})
		if err != nil {
			return fmt.Errorf("build session service: %w", err)
		}

		return app.Run(app.Options{
			Service:  svc,
			Bank:     banks.Current(),
			UserID:   userID,
			Sections: sections,
		})
	},
}

// parseSections maps section names to sections, rejecting unknown ones.
func parseSections(names []string) ([]itembank.Section, error) {
	var out []itembank.Section
	for _, n := range names {
		s := itembank.Section(n)
		if !slices.Contains(itembank.AllSections(), s) {
			return nil, fmt.Errorf("unknown section %q (want one of %v)", n, itembank.AllSections())
		}
		out = append(out, s)
	}
	return out, nil
}

func init() {
	takeCmd.Flags().StringP("user", "u", os.Getenv("USER"), "User id to assess")
	takeCmd.Flags().StringSlice("sections", nil, "Sections to preselect (core_math, applied_reasoning, ai_conceptual)")
}
