package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/curationd/taxora/internal/model"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Classify a file of fragments",
		Long: `Classify every non-empty line of a file as an independent fragment.

Lines may be either plain text (fragment ids are generated) or
"id<TAB>text" pairs.

Example:
  taxora batch chunks.txt --priority low`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().String("priority", "normal", "Review priority for escalated fragments")
	_ = viper.BindPFlag("classification.batch_priority", cmd.Flags().Lookup("priority"))

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	priority := model.Priority(viper.GetString("classification.batch_priority"))

	requests, err := readBatchFile(args[0], priority)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no fragments found in %s", args[0])
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

	bar := progressbar.NewOptions(len(requests),
		progressbar.OptionSetDescription("Classifying fragments"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var committed, escalated int
	for _, req := range requests {
		outcome, classifyErr := orch.Classify(ctx, req)
		if classifyErr != nil {
			return fmt.Errorf("failed to classify fragment %s: %w", req.FragmentID, classifyErr)
		}

		if outcome.RequiresReview {
			escalated++
		} else {
			committed++
		}
		_ = bar.Add(1)
	}

	cmd.Printf("Classified %d fragments: %d committed, %d escalated for review\n",
		len(requests), committed, escalated)

	return nil
}

// readBatchFile parses one fragment per non-empty line. A tab splits an
// explicit fragment id from its text; lines without a tab get generated ids.
func readBatchFile(path string, priority model.Priority) ([]model.ClassificationRequest, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied input path
	if err != nil {
		return nil, fmt.Errorf("failed to open fragments file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var requests []model.ClassificationRequest

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), model.MaxFragmentChars+1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id := uuid.NewString()
		text := line
		if idx := strings.IndexByte(line, '\t'); idx > 0 {
			id = strings.TrimSpace(line[:idx])
			text = strings.TrimSpace(line[idx+1:])
		}

		requests = append(requests, model.ClassificationRequest{
			FragmentID: id,
			Text:       text,
			Priority:   priority,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fragments file: %w", err)
	}

	return requests, nil
}
