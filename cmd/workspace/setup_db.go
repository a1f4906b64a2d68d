package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

var (
	printSchema    bool
	seedCategories []string
)

var setupDBCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the workspace tables",
	Long: `Apply the embedded schema to the configured PostgreSQL or SQLite database.
Every statement is idempotent. Supabase projects manage their schema through
the Supabase dashboard, so use --print and paste the output there.`,
	RunE: runSetupDB,
}

func init() {
	setupDBCmd.Flags().BoolVar(&printSchema, "print", false, "Print the PostgreSQL schema instead of applying it")
	setupDBCmd.Flags().StringSliceVar(&seedCategories, "seed-categories", nil, "Category names to create when the categories table is empty")
}

func runSetupDB(cmd *cobra.Command, args []string) error {
	if printSchema {
		ddl, err := database.Schema(database.DialectPostgres)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ddl)
		return nil
	}

	cfg := config.GetCached()
	ctx := context.Background()
	log := logger.CLI()

	var db *database.SQLDatabase
	var err error
	switch {
	case cfg.PostgresDSN != "":
		db, err = database.OpenPostgres(cfg.PostgresDSN)
		if err == nil {
			err = database.ApplySchema(ctx, db.DB(), database.DialectPostgres)
		}
	case cfg.SQLitePath != "":
		// OpenSQLite applies the schema itself
		db, err = database.OpenSQLite(cfg.SQLitePath)
	default:
		return fmt.Errorf("setup-db needs POSTGRES_DSN or SQLITE_PATH; for Supabase run with --print")
	}
	if err != nil {
		return err
	}
	defer db.Close()
	log.WithField("dialect", db.Dialect()).Info("schema applied")

	return seed(ctx, db, seedCategories)
}

// seed creates the given categories, cycling through the palette, unless
// categories already exist.
func seed(ctx context.Context, db database.DatabaseInterface, names []string) error {
	if len(names) == 0 {
		return nil
	}
	existing, err := db.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.CLI().WithField("count", len(existing)).Info("categories already present, skipping seed")
		return nil
	}

	created := 0
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c := &models.Category{Name: name, Color: models.CategoryPalette[i%len(models.CategoryPalette)]}
		if err := db.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		created++
	}
	logger.CLI().WithField("count", created).Info("categories seeded")
	return nil
}
