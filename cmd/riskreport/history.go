package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aigoflow/risk-reporter/internal/models"
)

var historyLimit int

// historyCmd lists recent runs from the journal.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent risk table runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeJournal := openJournal(cfg)
		defer closeJournal()
		if repo == nil {
			return fmt.Errorf("run journal %s is not available", cfg.DBPath)
		}

		runs, err := repo.Run().ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			pterm.Info.Println("No runs recorded yet")
			return nil
		}

		return pterm.DefaultTable.WithHasHeader().WithData(historyTable(runs)).Render()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
}

func historyTable(runs []*models.RunLog) pterm.TableData {
	data := pterm.TableData{{"Time", "Request", "Projection", "Status", "Rows", "Rejected", "Duration", "Output"}}
	for _, run := range runs {
		data = append(data, []string{
			run.Timestamp.Local().Format(time.DateTime),
			run.RequestID,
			run.Projection,
			run.Status,
			strconv.Itoa(run.RowsWritten),
			strconv.Itoa(run.Rejections),
			(time.Duration(run.DurationMs) * time.Millisecond).String(),
			run.OutputPath,
		})
	}
	return data
}
