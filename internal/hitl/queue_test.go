package hitl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/hitl"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/testutil"
)

func setupQueue(t *testing.T) (*hitl.Queue, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return hitl.NewQueue(db.Storage, nil), db
}

func TestQueue_Enqueue(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	taskID, err := queue.Enqueue(ctx, hitl.EnqueueParams{
		FragmentID:       "frag-1",
		SuggestedPath:    model.Path{"Technology", "AI"},
		AlternativePaths: []model.Path{{"Technology", "Data Formats"}},
		Confidence:       0.55,
	})
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	task, err := queue.Get(ctx, taskID)
	require.NoError(t, err)

	assert.Equal(t, "frag-1", task.FragmentID)
	assert.Equal(t, model.Path{"Technology", "AI"}, task.SuggestedPath)
	assert.Equal(t, []model.Path{{"Technology", "Data Formats"}}, task.AlternativePaths)
	assert.Equal(t, model.TaskPending, task.Status)
	// Unspecified priority defaults to normal.
	assert.Equal(t, model.PriorityNormal, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestQueue_EnqueueUnknownFragment(t *testing.T) {
	queue, _ := setupQueue(t)

	_, err := queue.Enqueue(context.Background(), hitl.EnqueueParams{
		FragmentID:    "never-stored",
		SuggestedPath: model.Path{"Legal"},
		Confidence:    0.5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQueue_EnqueueGeneratesUniqueIDs(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id, err := queue.Enqueue(ctx, hitl.EnqueueParams{
			FragmentID:    "frag-1",
			SuggestedPath: model.Path{"Legal"},
			Confidence:    0.5,
		})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestQueue_CompleteDefaultsToFullConfidence(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	taskID, err := queue.Enqueue(ctx, hitl.EnqueueParams{
		FragmentID:    "frag-1",
		SuggestedPath: model.Path{"Legal"},
		Confidence:    0.4,
	})
	require.NoError(t, err)

	require.NoError(t, queue.Complete(ctx, taskID, model.Path{"Legal", "Contracts"}, nil))

	task, err := queue.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, task.Status)
	assert.Equal(t, model.Path{"Legal", "Contracts"}, task.ApprovedPath)
	assert.InDelta(t, 1.0, task.Confidence, 1e-9)
}

func TestQueue_CompleteTwiceFails(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	taskID, err := queue.Enqueue(ctx, hitl.EnqueueParams{
		FragmentID:    "frag-1",
		SuggestedPath: model.Path{"Legal"},
		Confidence:    0.4,
	})
	require.NoError(t, err)

	require.NoError(t, queue.Complete(ctx, taskID, model.Path{"Legal"}, nil))
	err = queue.Complete(ctx, taskID, model.Path{"Business"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTaskCompleted)
}

func TestQueue_ListPendingAndStats(t *testing.T) {
	queue, db := setupQueue(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	for _, conf := range []float64{0.9, 0.3, 0.6} {
		_, err := queue.Enqueue(ctx, hitl.EnqueueParams{
			FragmentID:    "frag-1",
			SuggestedPath: model.Path{"Legal"},
			Confidence:    conf,
		})
		require.NoError(t, err)
	}

	tasks, err := queue.ListPending(ctx, hitl.ListFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.InDelta(t, 0.3, tasks[0].Confidence, 1e-9)
	assert.InDelta(t, 0.6, tasks[1].Confidence, 1e-9)
	assert.InDelta(t, 0.9, tasks[2].Confidence, 1e-9)

	stats, err := queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PendingCount)
	assert.InDelta(t, 0.6, stats.AvgConfidence, 1e-9)
}
