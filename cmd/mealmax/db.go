package main

import (
	"fmt"

	"github.com/maloquacious/mealmax/internal/store"
	"github.com/maloquacious/mealmax/internal/store/sqlite"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create and initialize the datastore",
		RunE:  runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema integrity and version",
		RunE:  runDBVerify,
	}
	dbResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the meals table from the create table script",
		RunE:  runDBReset,
	}
	dbScriptCmd := &cobra.Command{
		Use:   "script",
		Short: "Print the default create table script",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), sqlite.DefaultCreateTableScript)
			return err
		},
	}

	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd, dbResetCmd, dbScriptCmd)
	return dbCmd
}

func runDBCreate(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.CheckState()
	if err != nil {
		return err
	}
	switch state {
	case store.StateReady:
		log.Info("db create: datastore %s already initialized", cfg.DBPath)
		return nil
	case store.StateVersionMismatch:
		return fmt.Errorf("datastore %s has a different schema version", cfg.DBPath)
	}

	if err := db.InitSchema(schemaVersion); err != nil {
		return err
	}
	log.Info("db create: initialized %s at schema %s", cfg.DBPath, schemaVersion)
	return nil
}

func runDBVerify(cmd *cobra.Command, args []string) error {
	exists, err := store.CheckExists(cfg.DBPath)
	if err != nil {
		return err
	}
	summary := map[string]string{
		"path":           cfg.DBPath,
		"expectedSchema": schemaVersion,
		"state":          store.StateMissing.String(),
	}
	if !exists {
		return printJSON(cmd, summary)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.CheckState()
	if err != nil {
		return err
	}
	summary["state"] = state.String()
	if state != store.StateUninitialized {
		v, err := db.GetSchemaVersion()
		if err != nil {
			return err
		}
		summary["schema"] = v
	}
	return printJSON(cmd, summary)
}

func runDBReset(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.ClearMeals(cmd.Context())
}
