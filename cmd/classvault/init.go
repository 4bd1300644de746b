package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/output"
)

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create the LMS database schema",
	Annotations: map[string]string{"skipDB": ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		seed, _ := cmd.Flags().GetBool("seed")

		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating database directory: %w", err), output.ErrGeneral)
		}

		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		if err := db.Initialize(conn); err != nil {
			return cmdErr(fmt.Errorf("initializing schema: %w", err), output.ErrGeneral)
		}

		if seed {
			if err := db.Seed(conn); err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
		}

		msg := fmt.Sprintf("Initialized database at %s", cfg.DBPath)
		if seed {
			msg += " with demo data"
		}
		w.Success(map[string]any{"db_path": cfg.DBPath, "seeded": seed}, msg)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("seed", false, "Insert demo data after creating the schema")
	rootCmd.AddCommand(initCmd)
}
