package task

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/repository"
)

// stubTaskRepo is an in-memory TaskRepository honoring the ordering contracts
// of the Postgres implementation.
type stubTaskRepo struct {
	tasks      map[string]*domain.Task
	categories map[string]*domain.Category
	seq        time.Time

	failReorder error
}

func newStubRepo() *stubTaskRepo {
	return &stubTaskRepo{
		tasks:      make(map[string]*domain.Task),
		categories: make(map[string]*domain.Category),
		seq:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *stubTaskRepo) nextInstant() time.Time {
	r.seq = r.seq.Add(time.Second)
	return r.seq
}

func (r *stubTaskRepo) addCategory(userID, id, name, color string) {
	r.categories[id] = &domain.Category{ID: id, UserID: userID, Name: name, Color: color}
}

// seed inserts a task directly, bypassing the use case.
func (r *stubTaskRepo) seed(t domain.Task) *domain.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.nextInstant()
	}
	t.UpdatedAt = t.CreatedAt
	stored := t
	r.tasks[t.ID] = &stored
	return &stored
}

func (r *stubTaskRepo) clone(t *domain.Task) *domain.Task {
	cp := *t
	if cp.CategoryID != "" {
		if cat, ok := r.categories[cp.CategoryID]; ok {
			cc := domain.Category{ID: cat.ID, Name: cat.Name, Color: cat.Color}
			cp.Category = &cc
		}
	} else {
		cp.Category = nil
	}
	return &cp
}

func (r *stubTaskRepo) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return r.clone(t), nil
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = r.nextInstant()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	r.tasks[task.ID] = &stored
	return task, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = r.nextInstant()
	stored := *task
	stored.Category = nil
	r.tasks[task.ID] = &stored
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, userID, id string) error {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) all(userID string) []*domain.Task {
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// defaultSort: display_order ascending NULLS LAST, created_at descending.
func defaultSort(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DisplayOrder, tasks[j].DisplayOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

func (r *stubTaskRepo) collect(userID string, keep func(*domain.Task) bool) []domain.Task {
	var out []domain.Task
	for _, t := range r.all(userID) {
		if keep(t) {
			out = append(out, *r.clone(t))
		}
	}
	return out
}

func (r *stubTaskRepo) ListScheduledOn(_ context.Context, userID, date string, pendingOnly bool) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		if t.ScheduledAt != date {
			return false
		}
		return !pendingOnly || t.Status == domain.StatusPending
	})
	defaultSort(out)
	return out, nil
}

func (r *stubTaskRepo) ListCompletedBetween(_ context.Context, userID string, start, end time.Time) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		return t.Status == domain.StatusCompleted && t.CompletedAt != nil &&
			!t.CompletedAt.Before(start) && !t.CompletedAt.After(end)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}

func (r *stubTaskRepo) ListSkippedBetween(_ context.Context, userID string, start, end time.Time) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		return t.Status == domain.StatusSkipped && t.SkippedAt != nil &&
			!t.SkippedAt.Before(start) && !t.SkippedAt.After(end)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SkippedAt.After(*out[j].SkippedAt)
	})
	return out, nil
}

func (r *stubTaskRepo) ListOverdue(_ context.Context, userID, today string) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		return t.Status == domain.StatusPending && t.ScheduledAt != "" && t.ScheduledAt < today
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt < out[j].ScheduledAt
	})
	return out, nil
}

func (r *stubTaskRepo) ListUndated(_ context.Context, userID string) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		return t.Status == domain.StatusPending && t.ScheduledAt == ""
	})
	defaultSort(out)
	return out, nil
}

func (r *stubTaskRepo) ListMonthWindow(_ context.Context, userID, firstDate, lastDate string, start, end time.Time) ([]domain.Task, error) {
	within := func(ts *time.Time) bool {
		return ts != nil && !ts.Before(start) && !ts.After(end)
	}
	out := r.collect(userID, func(t *domain.Task) bool {
		scheduledIn := t.ScheduledAt != "" && t.ScheduledAt >= firstDate && t.ScheduledAt <= lastDate
		return scheduledIn || within(t.CompletedAt) || within(t.SkippedAt)
	})
	defaultSort(out)
	return out, nil
}

func (r *stubTaskRepo) ListAll(_ context.Context, userID string, categoryID *string) ([]domain.Task, error) {
	out := r.collect(userID, func(t *domain.Task) bool {
		if categoryID == nil {
			return true
		}
		return t.CategoryID == *categoryID
	})
	defaultSort(out)
	return out, nil
}

func (r *stubTaskRepo) Search(_ context.Context, filter repository.SearchFilter) ([]domain.Task, error) {
	kw := strings.ToLower(strings.TrimSpace(filter.Keyword))
	out := r.collect(filter.UserID, func(t *domain.Task) bool {
		if kw != "" &&
			!strings.Contains(strings.ToLower(t.Title), kw) &&
			!strings.Contains(strings.ToLower(t.Memo), kw) {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			return false
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			return false
		}
		if filter.DateFrom != "" && (t.ScheduledAt == "" || t.ScheduledAt < filter.DateFrom) {
			return false
		}
		if filter.DateTo != "" && (t.ScheduledAt == "" || t.ScheduledAt > filter.DateTo) {
			return false
		}
		return true
	})
	defaultSort(out)
	return out, nil
}

func (r *stubTaskRepo) Reorder(_ context.Context, userID string, orderedIDs []string) error {
	if r.failReorder != nil {
		return r.failReorder
	}
	for _, id := range orderedIDs {
		t, ok := r.tasks[id]
		if !ok || t.UserID != userID {
			return domain.ErrTaskNotFound
		}
	}
	for idx, id := range orderedIDs {
		order := idx
		r.tasks[id].DisplayOrder = &order
	}
	return nil
}

var _ repository.TaskRepository = (*stubTaskRepo)(nil)

// stubCategoryRepo shares the category map of the task stub so joins line up.
type stubCategoryRepo struct {
	repo *stubTaskRepo
}

func (r *stubCategoryRepo) GetByID(_ context.Context, userID, id string) (*domain.Category, error) {
	cat, ok := r.repo.categories[id]
	if !ok || cat.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	cp := *cat
	return &cp, nil
}

func (r *stubCategoryRepo) List(_ context.Context, userID string) ([]domain.Category, error) {
	var out []domain.Category
	for _, cat := range r.repo.categories {
		if cat.UserID == userID {
			out = append(out, *cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubCategoryRepo) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	stored := *category
	r.repo.categories[category.ID] = &stored
	return category, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	existing, ok := r.repo.categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return domain.ErrCategoryNotFound
	}
	stored := *category
	r.repo.categories[category.ID] = &stored
	return nil
}

func (r *stubCategoryRepo) DeleteAndDetach(_ context.Context, userID, id string) error {
	cat, ok := r.repo.categories[id]
	if !ok || cat.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	for _, t := range r.repo.tasks {
		if t.CategoryID == id {
			t.CategoryID = ""
		}
	}
	delete(r.repo.categories, id)
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// newTestUseCase wires a use case over the stub, with "now" fixed at noon JST
// of the given date.
func newTestUseCase(today string) (*UseCase, *stubTaskRepo) {
	repo := newStubRepo()
	clk := clock.New(clock.JST, func() time.Time {
		d, _ := time.ParseInLocation(clock.DateLayout, today, clock.JST)
		return d.Add(12 * time.Hour)
	})
	uc := New(repo, &stubCategoryRepo{repo: repo}, clk, nil, nil, nil)
	return uc, repo
}

// at builds an instant at the given JST date and hour, for seeding timestamps.
func at(date string, hour int) time.Time {
	d, _ := time.ParseInLocation(clock.DateLayout, date, clock.JST)
	return d.Add(time.Duration(hour) * time.Hour)
}

func ptr(t time.Time) *time.Time { return &t }
