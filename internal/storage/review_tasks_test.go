package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/model"
	"github.com/curationd/taxora/internal/service"
	"github.com/curationd/taxora/internal/testutil"
)

func pendingTask(id, fragmentID string, confidence float64, createdAt time.Time) *model.ReviewTask {
	return &model.ReviewTask{
		ID:            id,
		FragmentID:    fragmentID,
		SuggestedPath: model.Path{"Technology", "AI"},
		Confidence:    confidence,
		Priority:      model.PriorityNormal,
		Status:        model.TaskPending,
		CreatedAt:     createdAt,
	}
}

func TestCreateReviewTask_RequiresFragment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	task := pendingTask("task-1", "missing-fragment", 0.5, time.Now().UTC())
	err := db.Storage.CreateReviewTask(ctx, task)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateReviewTask_DuplicateID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.5, time.Now().UTC())))

	err := db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.6, time.Now().UTC()))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestListPendingTasks_OrderedByConfidence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, conf := range []float64{0.9, 0.3, 0.6} {
		task := pendingTask(taskID(i), "frag-1", conf, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, db.Storage.CreateReviewTask(ctx, task))
	}

	tasks, err := db.Storage.ListPendingTasks(ctx, service.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.InDelta(t, 0.3, tasks[0].Confidence, 1e-9)
	assert.InDelta(t, 0.6, tasks[1].Confidence, 1e-9)
	assert.InDelta(t, 0.9, tasks[2].Confidence, 1e-9)
}

func TestListPendingTasks_FIFOWithinEqualConfidence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-later", "frag-1", 0.5, base.Add(time.Hour))))
	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-earlier", "frag-1", 0.5, base)))

	tasks, err := db.Storage.ListPendingTasks(ctx, service.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "task-earlier", tasks[0].ID)
	assert.Equal(t, "task-later", tasks[1].ID)
}

func TestListPendingTasks_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	urgent := pendingTask("task-urgent", "frag-1", 0.2, base)
	urgent.Priority = model.PriorityUrgent
	require.NoError(t, db.Storage.CreateReviewTask(ctx, urgent))
	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-mid", "frag-1", 0.5, base)))
	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-high", "frag-1", 0.65, base)))

	prio := model.PriorityUrgent
	tasks, err := db.Storage.ListPendingTasks(ctx, service.TaskFilter{Priority: &prio})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-urgent", tasks[0].ID)

	minConf, maxConf := 0.4, 0.6
	tasks, err = db.Storage.ListPendingTasks(ctx, service.TaskFilter{MinConfidence: &minConf, MaxConfidence: &maxConf})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-mid", tasks[0].ID)

	tasks, err = db.Storage.ListPendingTasks(ctx, service.TaskFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCompleteReviewTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	task := pendingTask("task-1", "frag-1", 0.4, time.Now().UTC())
	require.NoError(t, db.Storage.CreateReviewTask(ctx, task))

	approved := model.Path{"Business", "Finance"}
	require.NoError(t, db.Storage.CompleteReviewTask(ctx, "task-1", approved, nil))

	got, err := db.Storage.GetReviewTask(ctx, "task-1")
	require.NoError(t, err)

	assert.Equal(t, model.TaskCompleted, got.Status)
	assert.Equal(t, approved, got.ApprovedPath)
	// Human approval without an override records full confidence.
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Nil(t, got.ConfidenceOverride)
	require.NotNil(t, got.CompletedAt)
}

func TestCompleteReviewTask_WithOverride(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.4, time.Now().UTC())))

	override := 0.85
	require.NoError(t, db.Storage.CompleteReviewTask(ctx, "task-1", model.Path{"Legal"}, &override))

	got, err := db.Storage.GetReviewTask(ctx, "task-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
	require.NotNil(t, got.ConfidenceOverride)
	assert.InDelta(t, 0.85, *got.ConfidenceOverride, 1e-9)
}

func TestCompleteReviewTask_RejectsInvalidOverride(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.4, time.Now().UTC())))

	for _, override := range []float64{-0.1, 1.1} {
		err := db.Storage.CompleteReviewTask(ctx, "task-1", model.Path{"Legal"}, &override)
		assert.Error(t, err)
	}
}

func TestCompleteReviewTask_SecondCompletionFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.4, time.Now().UTC())))
	require.NoError(t, db.Storage.CompleteReviewTask(ctx, "task-1", model.Path{"Legal"}, nil))

	err := db.Storage.CompleteReviewTask(ctx, "task-1", model.Path{"Business"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTaskCompleted)

	// The first decision must be preserved.
	got, err := db.Storage.GetReviewTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, model.Path{"Legal"}, got.ApprovedPath)
}

func TestCompleteReviewTask_UnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)

	err := db.Storage.CompleteReviewTask(context.Background(), "no-such-task", model.Path{"Legal"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCompletedTasksLeaveTheQueue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	db.SeedFragment("frag-1", "some text")

	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-1", "frag-1", 0.4, time.Now().UTC())))
	require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask("task-2", "frag-1", 0.6, time.Now().UTC())))
	require.NoError(t, db.Storage.CompleteReviewTask(ctx, "task-1", model.Path{"Legal"}, nil))

	tasks, err := db.Storage.ListPendingTasks(ctx, service.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-2", tasks[0].ID)
}

func TestPendingTaskStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	stats, err := db.Storage.PendingTaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount)
	assert.Zero(t, stats.AvgConfidence)

	db.SeedFragment("frag-1", "some text")
	base := time.Now().UTC()
	for i, conf := range []float64{0.2, 0.4, 0.6} {
		require.NoError(t, db.Storage.CreateReviewTask(ctx, pendingTask(taskID(i), "frag-1", conf, base)))
	}

	stats, err = db.Storage.PendingTaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PendingCount)
	assert.InDelta(t, 0.4, stats.AvgConfidence, 1e-9)
	assert.InDelta(t, 0.2, stats.MinConfidence, 1e-9)
	assert.InDelta(t, 0.6, stats.MaxConfidence, 1e-9)
}

func taskID(i int) string {
	return "task-" + string(rune('a'+i))
}
