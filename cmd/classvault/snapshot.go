package main

import (
	"errors"
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/blob"
	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/logging"
	"github.com/classvault/classvault/internal/output"
	"github.com/classvault/classvault/internal/pipeline"
	"github.com/classvault/classvault/internal/render"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export a snapshot, upload it, and sweep expired archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		conn := getDB(cmd)
		log := logging.New(getVerbose(cmd))

		reg, err := db.BuildRegistry(conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		store, err := getStore(cmd)
		if err != nil {
			return cmdErr(err, output.ErrStorage)
		}

		p := &pipeline.Pipeline{
			DB:            conn,
			Registry:      reg,
			Store:         store,
			Environment:   cfg.Environment,
			RetentionDays: cfg.RetentionDays,
			Log:           log,
		}

		result, err := p.Run()
		if err != nil {
			var serr *blob.StorageError
			if errors.As(err, &serr) {
				return cmdErr(err, output.ErrStorage)
			}
			return cmdErr(err, output.ErrGeneral)
		}

		msg := fmt.Sprintf("Snapshot uploaded to %s (%s records, %s compressed)",
			result.Key,
			humanize.Comma(int64(result.TotalRecords)),
			humanize.Bytes(uint64(result.SizeBytes)),
		)
		if result.Swept.DeletedCount > 0 {
			msg += fmt.Sprintf(", swept %d expired archives", result.Swept.DeletedCount)
		}
		msg += "\n\n" + render.RenderTableCounts(result.TableCounts)
		w.Success(result, msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
