package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/hitl"
	"github.com/curationd/taxora/internal/model"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Work the review queue",
	}

	cmd.AddCommand(tasksListCmd())
	cmd.AddCommand(tasksCompleteCmd())
	cmd.AddCommand(tasksStatsCmd())

	return cmd
}

func tasksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending review tasks, most uncertain first",
		RunE:  runTasksList,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum tasks to show")
	cmd.Flags().String("priority", "", "Filter by priority (urgent, high, normal, low)")
	cmd.Flags().Float64("min-confidence", -1, "Minimum confidence filter")
	cmd.Flags().Float64("max-confidence", -1, "Maximum confidence filter")

	return cmd
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	priorityStr, _ := cmd.Flags().GetString("priority")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	maxConf, _ := cmd.Flags().GetFloat64("max-confidence")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	queue := hitl.NewQueue(store, slog.Default())

	filter := hitl.ListFilter{Limit: limit}
	if priorityStr != "" {
		p := model.Priority(priorityStr)
		if !model.ValidPriority(p) {
			return fmt.Errorf("unknown priority %q", priorityStr)
		}
		filter.Priority = &p
	}
	if minConf >= 0 {
		filter.MinConfidence = &minConf
	}
	if maxConf >= 0 {
		filter.MaxConfidence = &maxConf
	}

	tasks, err := queue.ListPending(ctx, filter)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		cmd.Println("No pending review tasks.")
		return nil
	}

	for _, task := range tasks {
		line := fmt.Sprintf("%s  %.3f  %-6s  %s -> %s",
			task.ID,
			task.Confidence,
			task.Priority,
			task.FragmentID,
			task.SuggestedPath.String())
		if len(task.AlternativePaths) > 0 {
			alts := make([]string, len(task.AlternativePaths))
			for i, p := range task.AlternativePaths {
				alts[i] = p.String()
			}
			line += fmt.Sprintf("  (alternatives: %s)", strings.Join(alts, ", "))
		}
		cmd.Println(line)
	}

	return nil
}

func tasksCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <task-id> <approved-path>",
		Short: "Complete a review task with the approved taxonomy path",
		Long: `Complete a review task. The approved path is "/"-separated.

Example:
  taxora tasks complete 6f4c... "Technology/AI/Machine Learning"
  taxora tasks complete 6f4c... "Business/Finance" --confidence 0.8`,
		Args: cobra.ExactArgs(2),
		RunE: runTasksComplete,
	}

	cmd.Flags().Float64("confidence", -1, "Confidence override (defaults to 1.0)")

	return cmd
}

func runTasksComplete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	taskID := args[0]
	approvedPath := model.ParsePath(args[1])
	if len(approvedPath) == 0 {
		return fmt.Errorf("approved path %q has no labels", args[1])
	}

	var override *float64
	if conf, _ := cmd.Flags().GetFloat64("confidence"); conf >= 0 {
		override = &conf
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	queue := hitl.NewQueue(store, slog.Default())

	if err := queue.Complete(ctx, taskID, approvedPath, override); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return common.NewUserError(fmt.Sprintf("No review task with id %s", taskID), err)
		case errors.Is(err, common.ErrTaskCompleted):
			return common.NewUserError(fmt.Sprintf("Task %s was already completed by another reviewer", taskID), err)
		}
		return err
	}

	cmd.Printf("Task %s completed with path %s\n", taskID, approvedPath.String())
	return nil
}

func tasksStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics for the pending queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			queue := hitl.NewQueue(store, slog.Default())

			stats, err := queue.Stats(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("Pending tasks:  %d\n", stats.PendingCount)
			if stats.PendingCount > 0 {
				cmd.Printf("Avg confidence: %.3f\n", stats.AvgConfidence)
				cmd.Printf("Min confidence: %.3f\n", stats.MinConfidence)
				cmd.Printf("Max confidence: %.3f\n", stats.MaxConfidence)
			}
			return nil
		},
	}
}
