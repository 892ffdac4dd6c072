package kambam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/models"
)

func TestComputeStatsEmptyBoard(t *testing.T) {
	s := ComputeStats(nil)
	assert.Zero(t, s.TotalTasks)
	assert.Zero(t, s.ProgressPercent)
	assert.Zero(t, s.TotalHours)
}

func TestComputeStats(t *testing.T) {
	tasks := []*models.Task{
		{Status: models.ColumnCompleted, Hours: 4},
		{Status: models.ColumnInProgress, Hours: 2},
		{Status: models.ColumnTodo, Hours: 6},
	}
	s := ComputeStats(tasks)
	assert.Equal(t, 3, s.TotalTasks)
	assert.Equal(t, 1, s.CompletedTasks)
	assert.Equal(t, 1, s.InProgressTasks)
	assert.Equal(t, 12.0, s.TotalHours)
	assert.Equal(t, 8.0, s.RemainingHours)
	assert.Equal(t, 33, s.ProgressPercent)
}

func TestComputeLeaderboardScores(t *testing.T) {
	tasks := []*models.Task{
		{CreatedBy: "ana"},
		{CreatedBy: "ana", AssignedTo: "ana", Validated: true, ValidatedBy: "ana"},
		{CreatedBy: "bob"},
	}
	scores := ComputeLeaderboard(tasks)
	require.Len(t, scores, 2)

	// ana: created 2, assigned 1, validated 1 = 2*1.0 + 1*1.2 + 1*1.5 = 4.7
	ana := scores[0]
	assert.Equal(t, "ana", ana.Username)
	assert.Equal(t, 2, ana.Created)
	assert.Equal(t, 1, ana.Assigned)
	assert.Equal(t, 1, ana.Validated)
	assert.Equal(t, 2, ana.Total, "one task counts once even with several roles")
	assert.Equal(t, 4.7, ana.Score)

	assert.Equal(t, "bob", scores[1].Username)
	assert.Equal(t, 1.0, scores[1].Score)
}

func TestComputeLeaderboardStableOnTies(t *testing.T) {
	tasks := []*models.Task{
		{CreatedBy: "first"},
		{CreatedBy: "second"},
	}
	scores := ComputeLeaderboard(tasks)
	require.Len(t, scores, 2)
	assert.Equal(t, "first", scores[0].Username)
	assert.Equal(t, "second", scores[1].Username)
}

func TestComputeBurndownIdealLine(t *testing.T) {
	sprint := models.SprintRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	tasks := []*models.Task{
		{Hours: 70, Status: models.ColumnTodo},
		{Hours: 30, Status: models.ColumnCompleted},
	}
	today := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)

	points := ComputeBurndown(tasks, sprint, today)
	require.Len(t, points, 15)

	assert.Equal(t, 100.0, points[0].Ideal)
	assert.Equal(t, 0.0, points[14].Ideal)

	// Today (day 7) carries the real remaining hours.
	require.NotNil(t, points[7].Actual)
	assert.True(t, points[7].IsToday)
	assert.Equal(t, 70.0, *points[7].Actual)

	// Earlier days interpolate the completed hours.
	require.NotNil(t, points[0].Actual)
	assert.Equal(t, 100.0, *points[0].Actual)

	// Future days have no actual value.
	assert.Nil(t, points[8].Actual)
	assert.Nil(t, points[14].Actual)
}

func TestComputeBurndownBeforeSprintStart(t *testing.T) {
	sprint := models.SprintRange{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	points := ComputeBurndown([]*models.Task{{Hours: 10}}, sprint, today)
	require.Len(t, points, 5)
	for _, p := range points {
		assert.Nil(t, p.Actual)
		assert.False(t, p.IsToday)
	}
}

func TestSprintRangeDefault(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()
	signIn(t, board, "ana", "developer")

	_, err := board.CreateTask(ctx, &models.Task{Title: "anchor"})
	require.NoError(t, err)

	sprint, err := board.SprintRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, sprint.Start.AddDate(0, 0, 14), sprint.End, "default window spans two weeks")

	// A saved range wins over the derived default.
	want := models.SprintRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, board.SetSprintRange(ctx, want))
	got, err := board.SprintRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetSprintRangeRejectsInvertedWindow(t *testing.T) {
	board, _ := newTestBoard(t)
	err := board.SetSprintRange(context.Background(), models.SprintRange{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
