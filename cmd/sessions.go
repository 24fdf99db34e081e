package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect persisted assessment sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		user, _ := cmd.Flags().GetString("user")
		status, _ := cmd.Flags().GetString("status")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := s.Sessions().List(cmd.Context(), store.ListOpts{
			UserID: user,
			Status: session.Status(status),
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-10s  %-8s  %4s  %7s  %s\n",
			"ID", "User", "Status", "Bank", "Qs", "Theta", "Updated")
		fmt.Println(strings.Repeat("─", 110))
		for _, r := range rows {
			fmt.Printf("%-36s  %-16s  %-10s  %-8s  %4d  %+7.3f  %s\n",
				truncate(r.ID, 36),
				truncate(r.UserID, 16),
				r.Status,
				r.BankVersion,
				r.Questions,
				r.Theta,
				r.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's state and event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sess, err := s.Sessions().LoadSession(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", sess.ID)
		fmt.Printf("User:      %s\n", sess.UserID)
		fmt.Printf("Status:    %s\n", sess.Status)
		fmt.Printf("Bank:      %s\n", sess.BankVersion)
		fmt.Printf("Started:   %s\n", sess.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Responses: %d\n", len(sess.Responses))
		fmt.Printf("Theta:     %+.3f (SE %.3f)\n", sess.Theta, sess.StandardError)
		if sess.StopReason != "" {
			fmt.Printf("Stopped:   %s\n", sess.StopReason)
		}
		if sess.Result != nil {
			fmt.Printf("EIQ:       %d (IQ %d, %s)\n", sess.Result.EIQ, sess.Result.IQ, sess.Result.Placement)
		}

		log, err := s.Events().SessionLog(ctx, sess.ID)
		if err != nil {
			return err
		}
		sep := strings.Repeat("─", 60)
		fmt.Println()
		fmt.Println(sep)
		fmt.Println("EVENTS")
		fmt.Println(sep)
		for _, e := range log {
			fmt.Printf("%5d  %s  %-8s  %s\n",
				e.Sequence, e.Timestamp.Local().Format("15:04:05"), e.Kind, e.Summary)
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	sessionsListCmd.Flags().StringP("user", "u", "", "Filter by user id")
	sessionsListCmd.Flags().String("status", "", "Filter by status (active, completed, abandoned)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}
