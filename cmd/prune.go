package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/reaper"
	"github.com/abhisek/adaptiq/internal/session"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Abandon idle sessions and drop stale exposure records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		idle, _ := cmd.Flags().GetDuration("idle")
		window, _ := cmd.Flags().GetInt("window")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		banks, err := loadBanks(ctx, s)
		if err != nil {
			return err
		}
		engine, err := config.LoadEngine()
		if err != nil {
			return err
		}
		svc, err := session.NewService(engine, session.Options{
			Banks:    banks,
			Store:    s.Sessions(),
			Exposure: s.Exposure(window),
			Events:   s.Events(),
		})
		if err != nil {
			return err
		}

		abandoned := reaper.New(svc, idle, idle, logger.Nop()).Sweep(ctx)
		dropped, err := s.Exposure(window).Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Abandoned %d idle session(s), dropped %d exposure record(s).\n", abandoned, dropped)
		return nil
	},
}

func init() {
	pruneCmd.Flags().Duration("idle", 30*time.Minute, "Abandon active sessions idle for longer than this")
	pruneCmd.Flags().Int("window", session.DefaultExposureWindow, "Exposure records to keep per user")
}
