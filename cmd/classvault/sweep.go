package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/logging"
	"github.com/classvault/classvault/internal/output"
	"github.com/classvault/classvault/internal/sweeper"
)

var sweepCmd = &cobra.Command{
	Use:         "sweep",
	Short:       "Delete archives older than the retention window",
	Annotations: map[string]string{"skipDB": ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		log := logging.New(getVerbose(cmd))

		days := cfg.RetentionDays
		if cmd.Flags().Changed("retention-days") {
			days, _ = cmd.Flags().GetInt("retention-days")
			if days < 0 {
				return cmdErr(fmt.Errorf("retention days must be non-negative"), output.ErrValidation)
			}
		}

		store, err := getStore(cmd)
		if err != nil {
			return cmdErr(err, output.ErrStorage)
		}

		result, err := sweeper.Sweep(store, days, time.Now().UTC(), log)
		if err != nil {
			return cmdErr(err, output.ErrStorage)
		}

		msg := fmt.Sprintf("Deleted %d archives older than %d days", result.DeletedCount, days)
		if result.DeletedCount == 0 {
			msg = fmt.Sprintf("No archives older than %d days", days)
		}
		w.Success(result, msg)
		return nil
	},
}

func init() {
	sweepCmd.Flags().Int("retention-days", 0, "Override the configured retention window")
	rootCmd.AddCommand(sweepCmd)
}
