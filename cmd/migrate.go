package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/speakwise/speech-api/internal/database"
	"github.com/speakwise/speech-api/internal/models"
	"github.com/speakwise/speech-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage database migrations for the SpeakWise API.

Migrations are applied with GORM auto-migration over the registered models
(videos, analysis results, jobs).

Available subcommands:
  up      - Apply all pending schema changes
  status  - Show the current schema status`,
}

// migrateUpCmd applies pending schema changes
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending schema changes",
	Long: `Apply all pending schema changes to the database.

Creates or alters the videos, analysis_results and jobs tables so the
schema matches the registered models.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	Long:  `Display which model tables currently exist in the database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		for _, name := range []string{"videos", "analysis_results", "jobs"} {
			fmt.Printf("  would migrate table %q\n", name)
		}
		return nil
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Video{}, &models.AnalysisResult{}, &models.Job{}); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	fmt.Println("Migrations applied")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	fmt.Println("Database Schema Status")
	fmt.Println(repeatString("=", 40))

	migrator := db.DB.Migrator()
	for _, m := range []interface{}{&models.Video{}, &models.AnalysisResult{}, &models.Job{}} {
		state := "missing"
		if migrator.HasTable(m) {
			state = "present"
		}
		fmt.Printf("  %-20T %s\n", m, state)
	}

	return nil
}

// repeatString repeats a string n times
func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
