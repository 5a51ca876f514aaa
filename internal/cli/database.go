package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/greenbim/carbonledger/internal/materials"
)

// newDatabaseCmd creates the "database" command group.
func newDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Material database utilities",
	}
	cmd.AddCommand(newDatabaseValidateCmd())
	return cmd
}

// newDatabaseValidateCmd creates "database validate": load a database,
// run the same structural validation and version gating a calculation run
// would, and print what was found.
func newDatabaseValidateCmd() *cobra.Command {
	var databasePath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a material database file",
		Example: `  carbonledger database validate --database materials.yaml
  carbonledger database validate --database materials.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeDatabaseValidate(cmd, databasePath)
		},
	}

	cmd.Flags().StringVar(&databasePath, "database", "",
		"Path to material database (JSON or YAML)")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}

func executeDatabaseValidate(cmd *cobra.Command, databasePath string) error {
	ctx := cmd.Context()
	cfg := configFromCmd(cmd)

	if databasePath == "" {
		return errors.New("no material database given")
	}

	db, err := materials.LoadDatabase(ctx, databasePath)
	if err != nil {
		return err
	}
	if err := db.CheckVersion(cfg.Database.MinVersion); err != nil {
		return err
	}

	meta := db.Metadata()
	cmd.Printf("Database OK: %s\n", databasePath)
	if meta.Name != "" {
		cmd.Printf("  Name:    %s\n", meta.Name)
	}
	if meta.Version != "" {
		cmd.Printf("  Version: %s\n", meta.Version)
	}
	if meta.Source != "" {
		cmd.Printf("  Source:  %s\n", meta.Source)
	}

	categories := db.Categories()
	cmd.Printf("  Categories: %d\n", len(categories))
	for _, name := range categories {
		subcategories := db.Subcategories(name)
		cmd.Printf("    %s: %d subcategories\n", name, len(subcategories))
	}
	cmd.Printf("  Steel reinforcement factor: %g kg CO2e/kg\n", db.SteelReinforcementCO2Factor())

	return nil
}
