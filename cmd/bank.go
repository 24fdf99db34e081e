package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/itembank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage item bank versions",
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived item bank versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reg, err := loadBanks(ctx, s)
		if err != nil {
			return err
		}
		infos, err := s.Banks().List(ctx)
		if err != nil {
			return fmt.Errorf("list banks: %w", err)
		}

		fmt.Printf("%-12s  %6s  %-19s  %s\n", "Version", "Items", "Published", "")
		fmt.Println(strings.Repeat("─", 50))
		for _, bi := range infos {
			mark := ""
			if bi.Version == reg.Current().Version() {
				mark = "current"
			}
			fmt.Printf("%-12s  %6d  %-19s  %s\n",
				bi.Version, bi.Items, bi.PublishedAt.Local().Format("2006-01-02 15:04:05"), mark)
		}
		return nil
	},
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a bank file without publishing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readBankFile(cmd, args[0])
		if err != nil {
			return err
		}
		printBankSummary(b)
		return nil
	},
}

var bankPublishCmd = &cobra.Command{
	Use:     "publish <file>",
	Aliases: []string{"import"},
	Short:   "Publish a new item bank version",
	Long: "Validates the bank and archives it as the current version. The version " +
		"must be newer than every published one. Sessions already in progress " +
		"keep the version they started with.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := readBankFile(cmd, args[0])
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reg, err := loadBanks(ctx, s)
		if err != nil {
			return err
		}
		if err := reg.Publish(b); err != nil {
			return err
		}
		if err := s.Banks().Save(ctx, b, time.Now()); err != nil {
			return err
		}
		fmt.Printf("Published %s.\n", b.Version())
		printBankSummary(b)
		return nil
	},
}

var bankExportCmd = &cobra.Command{
	Use:   "export [version]",
	Short: "Write an archived bank as YAML to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reg, err := loadBanks(ctx, s)
		if err != nil {
			return err
		}
		b := reg.Current()
		if len(args) == 1 {
			if b, err = reg.Version(args[0]); err != nil {
				return err
			}
		}
		data, err := itembank.MarshalYAML(b)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

// readBankFile parses a bank in the native format, or in the legacy
// authoring export when --legacy is set.
func readBankFile(cmd *cobra.Command, path string) (*itembank.Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	legacy, _ := cmd.Flags().GetBool("legacy")
	if !legacy {
		return itembank.LoadYAML(f)
	}
	version, _ := cmd.Flags().GetString("version")
	if version == "" {
		return nil, fmt.Errorf("--version is required with --legacy")
	}
	return itembank.LoadLegacyYAML(version, f)
}

func printBankSummary(b *itembank.Bank) {
	fmt.Printf("Version %s: %d items\n", b.Version(), b.Len())
	for _, sec := range b.Sections() {
		fmt.Printf("  %-20s %4d\n", itembank.SectionDisplayName(sec), b.SectionSize(sec))
	}
}

func init() {
	for _, c := range []*cobra.Command{bankValidateCmd, bankPublishCmd} {
		c.Flags().Bool("legacy", false, "Read the legacy authoring export (1-5 difficulty, no calibration)")
		c.Flags().String("version", "", "Bank version for a legacy import (e.g. v1.1.0)")
	}

	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankPublishCmd)
	bankCmd.AddCommand(bankExportCmd)
}
