package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/curationd/taxora/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single text fragment",
		Long: `Classify a text fragment into the taxonomy and report the outcome.

Low-confidence or drifting classifications are escalated to the review queue
automatically.

Examples:
  taxora classify --id frag-42 --text "confidential financial report"
  cat chunk.txt | taxora classify --id frag-43
  taxora classify --id frag-44 --text "..." --hint "Technology/AI" --priority high`,
		RunE: runClassify,
	}

	cmd.Flags().String("id", "", "Fragment identifier (required)")
	cmd.Flags().String("text", "", "Fragment text (reads stdin when empty)")
	cmd.Flags().StringSlice("hint", nil, "Candidate taxonomy path hint (repeatable, \"/\"-separated)")
	cmd.Flags().String("priority", "normal", "Review priority if escalated (urgent, high, normal, low)")
	_ = cmd.MarkFlagRequired("id")

	_ = viper.BindPFlag("classification.priority", cmd.Flags().Lookup("priority"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fragmentID, _ := cmd.Flags().GetString("id")
	text, _ := cmd.Flags().GetString("text")
	hints, _ := cmd.Flags().GetStringSlice("hint")
	priority := viper.GetString("classification.priority")

	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read fragment text from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
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

	orch, stage, err := buildOrchestrator(store)
	if err != nil {
		return err
	}
	defer func() { _ = stage.Close() }()

	hintPaths := make([]model.Path, 0, len(hints))
	for _, h := range hints {
		hintPaths = append(hintPaths, model.ParsePath(h))
	}

	outcome, err := orch.Classify(ctx, model.ClassificationRequest{
		FragmentID: fragmentID,
		Text:       text,
		HintPaths:  hintPaths,
		Priority:   model.Priority(priority),
	})
	if err != nil {
		return err
	}

	printOutcome(cmd, outcome)
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *model.ClassificationOutcome) {
	cmd.Printf("Fragment:   %s\n", outcome.FragmentID)
	cmd.Printf("Path:       %s\n", outcome.CanonicalPath.String())
	cmd.Printf("Confidence: %.3f\n", outcome.Confidence)
	cmd.Printf("Method:     %s\n", outcome.Method)
	if len(outcome.CandidatePaths) > 0 {
		alts := make([]string, len(outcome.CandidatePaths))
		for i, p := range outcome.CandidatePaths {
			alts[i] = p.String()
		}
		cmd.Printf("Candidates: %s\n", strings.Join(alts, ", "))
	}
	if outcome.DriftDetected {
		cmd.Println("Drift:      detected")
	}
	if outcome.RequiresReview {
		cmd.Println("Status:     escalated for review")
	} else {
		cmd.Println("Status:     committed")
	}
}
