package kambam

import (
	"context"
	"math"
	"time"

	"github.com/joelosiris11/kambam/pkg/models"
)

// Derivations computed from the task snapshot: board stats, the
// competitiveness leaderboard and the sprint burndown series. All three are
// pure functions over a task slice so they can be exercised without a store.

// Stats summarizes the board.
type Stats struct {
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	InProgressTasks int     `json:"in_progress_tasks"`
	TotalHours      float64 `json:"total_hours"`
	RemainingHours  float64 `json:"remaining_hours"`
	ProgressPercent int     `json:"progress_percent"`
}

// ComputeStats aggregates task counts and hours. An empty board yields all
// zeroes, including the progress percentage.
func ComputeStats(tasks []*models.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.TotalTasks++
		s.TotalHours += t.Hours
		switch t.Status {
		case models.ColumnCompleted:
			s.CompletedTasks++
		case models.ColumnInProgress:
			s.InProgressTasks++
			s.RemainingHours += t.Hours
		default:
			s.RemainingHours += t.Hours
		}
	}
	if s.TotalTasks > 0 {
		s.ProgressPercent = int(math.Round(100 * float64(s.CompletedTasks) / float64(s.TotalTasks)))
	}
	return s
}

// Scoring weights: later stages of the task lifecycle earn more.
const (
	scoreCreated   = 1.0
	scoreAssigned  = 1.2
	scoreValidated = 1.5
	scoreCompleted = 1.8
)

// UserScore is one leaderboard row.
type UserScore struct {
	Username   string  `json:"username"`
	Created    int     `json:"created"`
	Assigned   int     `json:"assigned"`
	Validated  int     `json:"validated"`
	Completed  int     `json:"completed"`
	InProgress int     `json:"in_progress"`
	Total      int     `json:"total"`
	Score      float64 `json:"score"`
}

// ComputeLeaderboard scores every user that appears on a task, in any role.
// Total counts a task once per user even when the user holds several roles on
// it. The sort is stable: ties keep first-appearance order.
func ComputeLeaderboard(tasks []*models.Task) []UserScore {
	index := map[string]*UserScore{}
	var order []string

	row := func(username string) *UserScore {
		if username == "" {
			return nil
		}
		if r, ok := index[username]; ok {
			return r
		}
		r := &UserScore{Username: username}
		index[username] = r
		order = append(order, username)
		return r
	}

	for _, t := range tasks {
		participants := map[string]bool{}
		touch := func(username string) {
			if username != "" {
				participants[username] = true
			}
		}

		if r := row(t.CreatedBy); r != nil {
			r.Created++
			touch(t.CreatedBy)
		}
		if r := row(t.AssignedTo); r != nil {
			r.Assigned++
			touch(t.AssignedTo)
			if t.Completed() {
				r.Completed++
			}
			if t.Status == models.ColumnInProgress {
				r.InProgress++
			}
		}
		if t.Validated {
			if r := row(t.ValidatedBy); r != nil {
				r.Validated++
				touch(t.ValidatedBy)
			}
		}

		for username := range participants {
			index[username].Total++
		}
	}

	scores := make([]UserScore, 0, len(order))
	for _, username := range order {
		r := index[username]
		r.Score = round1(float64(r.Created)*scoreCreated +
			float64(r.Assigned)*scoreAssigned +
			float64(r.Validated)*scoreValidated +
			float64(r.Completed)*scoreCompleted)
		scores = append(scores, *r)
	}
	sortScores(scores)
	return scores
}

func sortScores(scores []UserScore) {
	// Insertion keeps the sort stable over first-appearance order.
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].Score > scores[j-1].Score; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

// BurndownPoint is one day of the sprint series. Actual is nil for days that
// have not happened yet.
type BurndownPoint struct {
	Day     int       `json:"day"`
	Date    time.Time `json:"date"`
	Ideal   float64   `json:"ideal"`
	Actual  *float64  `json:"actual"`
	IsToday bool      `json:"is_today"`
}

// ComputeBurndown builds the day-by-day series for the sprint window. The
// ideal line burns the total hours linearly to zero on the last day. The
// actual line is known up to today: today carries the real remaining hours
// and earlier days interpolate the completed hours linearly.
func ComputeBurndown(tasks []*models.Task, sprint models.SprintRange, today time.Time) []BurndownPoint {
	start := dateOnly(sprint.Start)
	end := dateOnly(sprint.End)
	totalDays := int(end.Sub(start).Hours()/24) + 1
	if totalDays <= 0 {
		return nil
	}

	var totalHours, completedHours float64
	for _, t := range tasks {
		totalHours += t.Hours
		if t.Completed() {
			completedHours += t.Hours
		}
	}

	denominator := totalDays - 1
	if denominator < 1 {
		denominator = 1
	}
	dailyBurn := totalHours / float64(denominator)

	daysElapsed := int(dateOnly(today).Sub(start).Hours() / 24)
	if daysElapsed > totalDays-1 {
		daysElapsed = totalDays - 1
	}

	points := make([]BurndownPoint, 0, totalDays)
	for day := 0; day < totalDays; day++ {
		ideal := totalHours - dailyBurn*float64(day)
		if ideal < 0 {
			ideal = 0
		}

		p := BurndownPoint{
			Day:     day,
			Date:    start.AddDate(0, 0, day),
			Ideal:   round1(ideal),
			IsToday: day == daysElapsed && daysElapsed >= 0,
		}

		if daysElapsed >= 0 && day <= daysElapsed {
			var actual float64
			switch {
			case day == daysElapsed:
				actual = totalHours - completedHours
			case daysElapsed > 0:
				actual = totalHours - completedHours*float64(day)/float64(daysElapsed)
			default:
				actual = totalHours
			}
			actual = round1(actual)
			p.Actual = &actual
		}

		points = append(points, p)
	}
	return points
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Board wrappers over the snapshot.

func (b *Board) Stats() Stats {
	return ComputeStats(b.Tasks())
}

func (b *Board) Leaderboard() []UserScore {
	return ComputeLeaderboard(b.Tasks())
}

// SprintRange returns the configured sprint window, deriving a default one
// (earliest task date plus two weeks) when none was saved yet.
func (b *Board) SprintRange(ctx context.Context) (models.SprintRange, error) {
	saved, err := b.prefs.SprintRange(ctx)
	if err != nil {
		return models.SprintRange{}, err
	}
	if saved != nil {
		return *saved, nil
	}

	start := dateOnly(time.Now())
	for _, t := range b.Tasks() {
		if day := dateOnly(t.CreatedAt); day.Before(start) {
			start = day
		}
	}
	return models.SprintRange{Start: start, End: start.AddDate(0, 0, 14)}, nil
}

// SetSprintRange persists the sprint window.
func (b *Board) SetSprintRange(ctx context.Context, r models.SprintRange) error {
	if !dateOnly(r.End).After(dateOnly(r.Start)) {
		return invalidf("end", "must be after the sprint start")
	}
	return b.prefs.SaveSprintRange(ctx, r)
}

// Burndown computes the series for the configured sprint window.
func (b *Board) Burndown(ctx context.Context) ([]BurndownPoint, error) {
	sprint, err := b.SprintRange(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeBurndown(b.Tasks(), sprint, time.Now()), nil
}
