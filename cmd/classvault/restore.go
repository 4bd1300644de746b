package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/archive"
	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/logging"
	"github.com/classvault/classvault/internal/output"
	"github.com/classvault/classvault/internal/render"
	"github.com/classvault/classvault/internal/restore"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore the database from a snapshot archive",
	Long: `Restore wipes every registered table and reinserts the archive's rows in
foreign-key-safe order. A reinsert failure aborts without rollback and leaves
the database partially restored, so restore into a disposable target first
unless you have a fresh pre-restore snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		log := logging.New(getVerbose(cmd))

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")
		skipChecksum, _ := cmd.Flags().GetBool("skip-checksum")

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("reading archive: %w", err), output.ErrGeneral)
		}

		// Compressed vs. raw is a filename convention, not content sniffing.
		if archive.IsCompressed(args[0]) {
			raw, err = archive.Decompress(raw)
			if err != nil {
				return cmdErr(err, output.ErrInvalidFormat)
			}
		}

		doc, err := restore.Decode(raw)
		if err != nil {
			return cmdErr(err, output.ErrInvalidFormat)
		}

		reg, err := db.BuildRegistry(conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		engine := &restore.Engine{
			DB:       &db.Conn{DB: conn},
			Registry: reg,
			Log:      log,
		}

		validation := engine.Validate(doc)

		if err := restore.VerifyChecksum(doc); err != nil {
			if !skipChecksum {
				return cmdErr(fmt.Errorf("%w (use --skip-checksum to restore anyway)", err), output.ErrInvalidFormat)
			}
			log.Warn("checksum verification overridden", "error", err)
			w.Warn("Checksum mismatch ignored: %v", err)
		}

		if dryRun {
			w.Success(validation, render.RenderValidation(validation)+"\n\nDry run: no changes were made.")
			return nil
		}

		// Irreversible-action guard: wipe-and-reinsert needs an explicit yes
		// unless --force is given for automation.
		if !force && !w.JSONMode {
			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf(
							"This will DELETE all rows in %d tables and replace them with %d records from the archive. Continue?",
							reg.Len(), validation.TotalRecords,
						)).
						Affirmative("Yes, restore").
						Negative("Cancel").
						Value(&confirmed),
				),
			)

			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return cmdErr(fmt.Errorf("restore cancelled"), output.ErrGeneral)
				}
				return cmdErr(fmt.Errorf("interactive confirmation failed: %w", err), output.ErrGeneral)
			}
			if !confirmed {
				return cmdErr(fmt.Errorf("restore cancelled"), output.ErrGeneral)
			}
		} else if !force {
			// JSON mode is for automation; require the explicit bypass flag
			// rather than silently skipping the guard.
			return cmdErr(fmt.Errorf("restore requires --force in JSON mode"), output.ErrValidation)
		}

		report, err := engine.Run(doc)
		if err != nil {
			var perr *restore.PartialRestoreError
			if errors.As(err, &perr) {
				return cmdErr(err, output.ErrPartialRestore)
			}
			return cmdErr(err, output.ErrGeneral)
		}

		w.Success(report, render.RenderRestoreReport(report))
		return nil
	},
}

func init() {
	restoreCmd.Flags().Bool("dry-run", false, "Validate and report without mutating the database")
	restoreCmd.Flags().Bool("force", false, "Skip the interactive confirmation")
	restoreCmd.Flags().Bool("skip-checksum", false, "Restore even if the metadata checksum does not match")
	rootCmd.AddCommand(restoreCmd)
}
