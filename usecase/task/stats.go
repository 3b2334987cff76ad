package task

import (
	"context"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/usecase"
)

// DayStat is one calendar-date bucket of the monthly rollup. Total counts
// tasks scheduled on the day; Completed and Skipped count by the instant the
// transition happened, which may be a different day than the schedule.
type DayStat struct {
	Total               int               `json:"total"`
	Completed           int               `json:"completed"`
	Overdue             int               `json:"overdue"`
	Skipped             int               `json:"skipped"`
	CompletedCategories []domain.Category `json:"completed_categories,omitempty"`
}

// MonthlyStats maps YYYY-MM-DD date strings to their bucket. Dates with no
// activity are absent.
type MonthlyStats map[string]*DayStat

// GetMonthlyStats aggregates all tasks touching the month, whether by
// schedule, completion or skip date, into per-day buckets.
//
// A task contributes to up to three distinct buckets. Each counter is
// evaluated against the bucket's own date: total on the schedule day (with
// overdue when still pending and the day is behind today), completed on the
// completion day, skipped on the skip day. Overdue uses today at aggregation
// time, so stats for past months shift as time passes.
func (uc *UseCase) GetMonthlyStats(ctx context.Context, userID, month string) (MonthlyStats, error) {
	if !clock.ValidMonth(month) {
		return nil, domain.NewError(domain.ErrCodeValidation, "month must be YYYY-MM")
	}

	var cached MonthlyStats
	if uc.cacheGet(ctx, userID, usecase.CacheMonth, month, &cached) {
		return cached, nil
	}

	start, end, err := uc.clock.MonthRange(month)
	if err != nil {
		return nil, uc.classify(err, "failed to compute month range")
	}
	firstDate := uc.clock.FormatDate(start)
	lastDate := uc.clock.FormatDate(end)
	today := uc.clock.Today()

	tasks, err := uc.tasks.ListMonthWindow(ctx, userID, firstDate, lastDate, start, end)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}

	stats := make(MonthlyStats)
	// Per bucket, categories of completed tasks deduplicated by id.
	seenCategories := make(map[string]map[string]struct{})

	for i := range tasks {
		t := &tasks[i]

		scheduledDate := t.ScheduledAt
		var completedDate, skippedDate string
		if t.CompletedAt != nil {
			completedDate = uc.clock.FormatDate(*t.CompletedAt)
		}
		if t.SkippedAt != nil {
			skippedDate = uc.clock.FormatDate(*t.SkippedAt)
		}

		// Distinct calendar dates this task touches inside the month.
		buckets := make(map[string]struct{}, 3)
		if scheduledDate != "" && scheduledDate >= firstDate && scheduledDate <= lastDate {
			buckets[scheduledDate] = struct{}{}
		}
		if completedDate != "" && !t.CompletedAt.Before(start) && !t.CompletedAt.After(end) {
			buckets[completedDate] = struct{}{}
		}
		if skippedDate != "" && !t.SkippedAt.Before(start) && !t.SkippedAt.After(end) {
			buckets[skippedDate] = struct{}{}
		}

		for date := range buckets {
			stat, ok := stats[date]
			if !ok {
				stat = &DayStat{}
				stats[date] = stat
			}

			if scheduledDate == date {
				stat.Total++
				if t.Status == domain.StatusPending && date < today {
					stat.Overdue++
				}
			}

			if completedDate == date {
				stat.Completed++
				if t.Category != nil {
					seen, ok := seenCategories[date]
					if !ok {
						seen = make(map[string]struct{})
						seenCategories[date] = seen
					}
					if _, dup := seen[t.Category.ID]; !dup {
						seen[t.Category.ID] = struct{}{}
						stat.CompletedCategories = append(stat.CompletedCategories, domain.Category{
							ID:    t.Category.ID,
							Name:  t.Category.Name,
							Color: t.Category.Color,
						})
					}
				}
			}

			if skippedDate == date {
				stat.Skipped++
			}
		}
	}

	uc.cacheSet(ctx, userID, usecase.CacheMonth, month, stats)
	return stats, nil
}
