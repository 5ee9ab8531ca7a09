package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"market-dashboard/config"
	"market-dashboard/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.LogDebug)

	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Real-estate market dashboard",
		Long: `dashboard turns monthly market survey spreadsheets into the
indicator tables of the market dashboard: IVV, offers, sales, launches,
VGL/VGV, price per m² and the neighborhood × rooms cross-tabs.

Sections are filtered per access profile from the profiles file.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("input", cfg.InputPath, "market spreadsheet (.xlsx)")
	rootCmd.PersistentFlags().Bool("from-db", false, "read raw rows from the database instead of --input")

	a := &app{cfg: cfg, logger: logger}
	rootCmd.AddCommand(buildCmd(a))
	rootCmd.AddCommand(summaryCmd(a))
	rootCmd.AddCommand(launchesCmd(a))
	rootCmd.AddCommand(storeCmd(a))

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func buildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the dashboard for a user, a profile or every profile",
		Long: `Render the dashboard in the requested formats.

Example:
  dashboard build --user ana@example.com
  dashboard build --profile diretoria --format html,pdf
  dashboard build --all-profiles --format xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			profile, _ := cmd.Flags().GetString("profile")
			user, _ := cmd.Flags().GetString("user")
			allProfiles, _ := cmd.Flags().GetBool("all-profiles")
			formats, _ := cmd.Flags().GetStringSlice("format")

			targets, err := a.targets(user, profile, allProfiles)
			if err != nil {
				return err
			}
			outputs, err := parseFormats(formats)
			if err != nil {
				return err
			}

			d, summary, err := a.dashboard(cmd)
			if err != nil {
				return err
			}
			return a.render(cmd.Context(), d, summary, targets, outputs, out)
		},
	}
	cmd.Flags().String("out", a.cfg.OutputDir, "output directory")
	cmd.Flags().String("profile", "", "render for this profile id")
	cmd.Flags().String("user", "", "render for this user's profile (e-mail)")
	cmd.Flags().Bool("all-profiles", false, "render one dashboard per profile")
	cmd.Flags().StringSlice("format", []string{formatHTML}, "output formats: html, xlsx, pdf, csv")
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the headline indicators of the latest month and year",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, summary, err := a.dashboard(cmd)
			if err != nil {
				return err
			}
			a.insights().Print(summary)
			return nil
		},
	}
}

func launchesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launches",
		Short: "List the projects launched each month",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, _ := cmd.Flags().GetString("profile")
			d, _, err := a.dashboard(cmd)
			if err != nil {
				return err
			}
			mask, err := a.masking(profile)
			if err != nil {
				return err
			}
			printLaunches(os.Stdout, d, mask)
			return nil
		},
	}
	cmd.Flags().String("profile", "", "mask names as this profile sees them (default: unmasked)")
	return cmd
}

func storeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Load the spreadsheet's raw rows into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			csvPath, _ := cmd.Flags().GetString("csv")
			n, err := a.store(cmd.Context(), input, csvPath)
			if err != nil {
				return err
			}
			fmt.Printf("Stored %d raw rows (%s)\n", n, a.cfg.DBDriver)
			return nil
		},
	}
	cmd.Flags().String("csv", "", "also save the raw rows to this CSV file")
	return cmd
}
