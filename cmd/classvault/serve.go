package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/db"
	"github.com/classvault/classvault/internal/logging"
	"github.com/classvault/classvault/internal/output"
	"github.com/classvault/classvault/internal/pipeline"
	"github.com/classvault/classvault/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP trigger and status endpoints for the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		srv := server.New(p, store, cfg.Secret, cfg.DevMode, log)

		if cfg.Secret == "" && cfg.DevMode {
			log.Warn("running without authentication: CLASSVAULT_SECRET is empty and dev mode is on")
		}
		log.Info("listening", "addr", cfg.ListenAddr, "environment", cfg.Environment)

		if err := http.ListenAndServe(cfg.ListenAddr, srv); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
