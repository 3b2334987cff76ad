package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/clock"
)

func TestCreateTaskValidation(t *testing.T) {
	uc, _ := newTestUseCase("2024-03-15")
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateTaskInput
	}{
		{"empty title", CreateTaskInput{UserID: "u1", Title: "   "}},
		{"title too long", CreateTaskInput{UserID: "u1", Title: strings.Repeat("a", domain.TaskTitleMaxLength+1)}},
		{"memo too long", CreateTaskInput{UserID: "u1", Title: "ok", Memo: strings.Repeat("m", domain.TaskMemoMaxLength+1)}},
		{"bad date", CreateTaskInput{UserID: "u1", Title: "ok", ScheduledAt: "15-03-2024"}},
		{"bad priority", CreateTaskInput{UserID: "u1", Title: "ok", Priority: "URGENT"}},
	}
	for _, tc := range cases {
		if _, err := uc.CreateTask(ctx, tc.input); !domain.IsDomainError(err, domain.ErrCodeValidation) {
			t.Errorf("%s: want VALIDATION_ERROR, got %v", tc.name, err)
		}
	}
}

func TestLengthLimitsCountRunes(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	ctx := context.Background()

	// Each of these is within its limit in runes but over it in bytes.
	created, err := uc.CreateTask(ctx, CreateTaskInput{
		UserID: "u1",
		Title:  strings.Repeat("あ", domain.TaskTitleMaxLength),
		Memo:   strings.Repeat("め", domain.TaskMemoMaxLength),
	})
	if err != nil {
		t.Fatalf("CreateTask with multibyte fields: %v", err)
	}

	if _, err := uc.SkipTask(ctx, "u1", created.ID, strings.Repeat("忙", domain.TaskSkipReasonMaxLength)); err != nil {
		t.Fatalf("SkipTask with multibyte reason: %v", err)
	}

	over := strings.Repeat("あ", domain.TaskTitleMaxLength+1)
	if _, err := uc.CreateTask(ctx, CreateTaskInput{UserID: "u1", Title: over}); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("title one rune over: want VALIDATION_ERROR, got %v", err)
	}

	seeded := repo.seed(domain.Task{UserID: "u1", Title: "x", Status: domain.StatusPending})
	if _, err := uc.UpdateTask(ctx, UpdateTaskInput{
		UserID: "u1", ID: seeded.ID,
		Title: strptr(strings.Repeat("い", domain.TaskTitleMaxLength)),
		Memo:  strptr(strings.Repeat("も", domain.TaskMemoMaxLength)),
	}); err != nil {
		t.Fatalf("UpdateTask with multibyte patch: %v", err)
	}
}

func TestCreateTaskTrimsAndDefaults(t *testing.T) {
	uc, _ := newTestUseCase("2024-03-15")

	created, err := uc.CreateTask(context.Background(), CreateTaskInput{
		UserID:      "u1",
		Title:       "  write report  ",
		Memo:        "  notes  ",
		ScheduledAt: "2024-03-20",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Title != "write report" || created.Memo != "notes" {
		t.Fatalf("fields not trimmed: %q / %q", created.Title, created.Memo)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("status = %s, want PENDING", created.Status)
	}
	if created.CompletedAt != nil || created.SkippedAt != nil {
		t.Fatal("new task must carry no terminal stamps")
	}
}

func TestCreateTaskUnknownCategory(t *testing.T) {
	uc, _ := newTestUseCase("2024-03-15")

	_, err := uc.CreateTask(context.Background(), CreateTaskInput{
		UserID: "u1", Title: "ok", CategoryID: "missing",
	})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestCreateTaskForeignCategory(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	repo.addCategory("u2", "cat-other", "Theirs", "#123456")

	_, err := uc.CreateTask(context.Background(), CreateTaskInput{
		UserID: "u1", Title: "ok", CategoryID: "cat-other",
	})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want NOT_FOUND for foreign category, got %v", err)
	}
}

func TestCompleteClearsSkipState(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{
		UserID:     "u1",
		Title:      "flip-flop",
		Status:     domain.StatusSkipped,
		SkippedAt:  ptr(at("2024-03-14", 9)),
		SkipReason: "was busy",
	})

	got, err := uc.CompleteTask(context.Background(), "u1", seeded.ID)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("CompletedAt not stamped")
	}
	if got.SkippedAt != nil || got.SkipReason != "" {
		t.Fatalf("skip state must be cleared: %v %q", got.SkippedAt, got.SkipReason)
	}
}

func TestSkipClearsCompletionState(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{
		UserID:      "u1",
		Title:       "flip-flop",
		Status:      domain.StatusCompleted,
		CompletedAt: ptr(at("2024-03-14", 9)),
	})

	got, err := uc.SkipTask(context.Background(), "u1", seeded.ID, "  moved out  ")
	if err != nil {
		t.Fatalf("SkipTask: %v", err)
	}
	if got.Status != domain.StatusSkipped || got.SkippedAt == nil {
		t.Fatalf("skip not applied: %+v", got)
	}
	if got.SkipReason != "moved out" {
		t.Fatalf("reason = %q", got.SkipReason)
	}
	if got.CompletedAt != nil {
		t.Fatal("completion state must be cleared")
	}
}

func TestSkipReasonTooLong(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{UserID: "u1", Title: "x", Status: domain.StatusPending})

	_, err := uc.SkipTask(context.Background(), "u1", seeded.ID, strings.Repeat("r", domain.TaskSkipReasonMaxLength+1))
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}
}

func TestCompleteThenUncompleteRoundTrip(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{
		UserID:      "u1",
		Title:       "round trip",
		Memo:        "unchanged",
		Status:      domain.StatusPending,
		ScheduledAt: "2024-03-15",
		Priority:    domain.PriorityMedium,
	})
	ctx := context.Background()

	if _, err := uc.CompleteTask(ctx, "u1", seeded.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	got, err := uc.UncompleteTask(ctx, "u1", seeded.ID)
	if err != nil {
		t.Fatalf("UncompleteTask: %v", err)
	}

	if got.Status != domain.StatusPending || got.CompletedAt != nil {
		t.Fatalf("not reverted: %+v", got)
	}
	if got.Title != seeded.Title || got.Memo != seeded.Memo ||
		got.ScheduledAt != seeded.ScheduledAt || got.Priority != seeded.Priority {
		t.Fatalf("round trip changed unrelated fields: %+v", got)
	}
}

func TestUncompleteRevertsToPending(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{
		UserID:      "u1",
		Title:       "done then not",
		Status:      domain.StatusCompleted,
		CompletedAt: ptr(at("2024-03-14", 9)),
	})

	got, err := uc.UncompleteTask(context.Background(), "u1", seeded.ID)
	if err != nil {
		t.Fatalf("UncompleteTask: %v", err)
	}
	if got.Status != domain.StatusPending || got.CompletedAt != nil {
		t.Fatalf("revert failed: %+v", got)
	}
}

func TestUnskipRevertsToPending(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{
		UserID:     "u1",
		Title:      "skipped then not",
		Status:     domain.StatusSkipped,
		SkippedAt:  ptr(at("2024-03-14", 9)),
		SkipReason: "rain",
	})

	got, err := uc.UnskipTask(context.Background(), "u1", seeded.ID)
	if err != nil {
		t.Fatalf("UnskipTask: %v", err)
	}
	if got.Status != domain.StatusPending || got.SkippedAt != nil || got.SkipReason != "" {
		t.Fatalf("revert failed: %+v", got)
	}
}

func TestUpdateTaskPatchSemantics(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	repo.addCategory("u1", "cat-work", "Work", "#FF0000")
	seeded := repo.seed(domain.Task{
		UserID:      "u1",
		Title:       "original",
		Memo:        "keep me",
		Status:      domain.StatusPending,
		ScheduledAt: "2024-03-20",
		CategoryID:  "cat-work",
	})

	// Patch touching only the title leaves everything else alone.
	got, err := uc.UpdateTask(context.Background(), UpdateTaskInput{
		UserID: "u1", ID: seeded.ID, Title: strptr("renamed"),
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != "renamed" || got.Memo != "keep me" || got.ScheduledAt != "2024-03-20" || got.CategoryID != "cat-work" {
		t.Fatalf("patch bled into untouched fields: %+v", got)
	}
	if got.Category == nil || got.Category.Name != "Work" {
		t.Fatalf("response missing joined category: %+v", got.Category)
	}

	// Pointers at empty values clear the nullable fields.
	got, err = uc.UpdateTask(context.Background(), UpdateTaskInput{
		UserID:      "u1",
		ID:          seeded.ID,
		Memo:        strptr(""),
		ScheduledAt: strptr(""),
		CategoryID:  strptr(""),
	})
	if err != nil {
		t.Fatalf("UpdateTask clear: %v", err)
	}
	if got.Memo != "" || got.ScheduledAt != "" || got.CategoryID != "" || got.Category != nil {
		t.Fatalf("clear patch did not clear: %+v", got)
	}
	if got.Title != "renamed" {
		t.Fatalf("title lost: %q", got.Title)
	}
}

func TestUpdateTaskInvalidPatchTouchesNothing(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{UserID: "u1", Title: "safe", Status: domain.StatusPending})

	_, err := uc.UpdateTask(context.Background(), UpdateTaskInput{
		UserID: "u1", ID: seeded.ID, Title: strptr(""), Memo: strptr("new memo"),
	})
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("want VALIDATION_ERROR, got %v", err)
	}

	stored, err := repo.GetByID(context.Background(), "u1", seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Title != "safe" || stored.Memo != "" {
		t.Fatalf("rejected patch mutated state: %+v", stored)
	}
}

func TestMutationsRejectForeignOwner(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{UserID: "u2", Title: "theirs", Status: domain.StatusPending})
	ctx := context.Background()

	calls := map[string]func() error{
		"update": func() error {
			_, err := uc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", ID: seeded.ID, Title: strptr("mine now")})
			return err
		},
		"complete":   func() error { _, err := uc.CompleteTask(ctx, "u1", seeded.ID); return err },
		"uncomplete": func() error { _, err := uc.UncompleteTask(ctx, "u1", seeded.ID); return err },
		"skip":       func() error { _, err := uc.SkipTask(ctx, "u1", seeded.ID, ""); return err },
		"unskip":     func() error { _, err := uc.UnskipTask(ctx, "u1", seeded.ID); return err },
		"delete":     func() error { return uc.DeleteTask(ctx, "u1", seeded.ID) },
	}
	for name, call := range calls {
		if err := call(); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Errorf("%s: want NOT_FOUND, got %v", name, err)
		}
	}
}

func TestDeleteTaskRemoves(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	seeded := repo.seed(domain.Task{UserID: "u1", Title: "gone soon", Status: domain.StatusPending})
	ctx := context.Background()

	if err := uc.DeleteTask(ctx, "u1", seeded.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := repo.GetByID(ctx, "u1", seeded.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("task still present: %v", err)
	}
}

func TestReorderTasksValidation(t *testing.T) {
	uc, _ := newTestUseCase("2024-03-15")
	ctx := context.Background()

	if err := uc.ReorderTasks(ctx, "u1", nil); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("empty list: want VALIDATION_ERROR, got %v", err)
	}
	if err := uc.ReorderTasks(ctx, "u1", []string{"a", "", "b"}); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("blank id: want VALIDATION_ERROR, got %v", err)
	}
	if err := uc.ReorderTasks(ctx, "u1", []string{"a", "b", "a"}); !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("duplicate id: want VALIDATION_ERROR, got %v", err)
	}
}

func TestReorderTasksForeignIDFailsWhole(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	ctx := context.Background()
	a := repo.seed(domain.Task{UserID: "u1", Title: "a", Status: domain.StatusPending})
	b := repo.seed(domain.Task{UserID: "u1", Title: "b", Status: domain.StatusPending})
	theirs := repo.seed(domain.Task{UserID: "u2", Title: "theirs", Status: domain.StatusPending})

	err := uc.ReorderTasks(ctx, "u1", []string{a.ID, theirs.ID, b.ID})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
	for _, seeded := range []*domain.Task{a, b} {
		stored, _ := repo.GetByID(ctx, "u1", seeded.ID)
		if stored.DisplayOrder != nil {
			t.Fatalf("failed reorder assigned order to %s", stored.Title)
		}
	}
}

// recordingJournal captures reorder entries for assertions.
type recordingJournal struct {
	reorders [][]string
}

func (j *recordingJournal) RecordTask(context.Context, string, *domain.Task, *domain.Task) error {
	return nil
}

func (j *recordingJournal) RecordCategory(context.Context, string, *domain.Category, *domain.Category) error {
	return nil
}

func (j *recordingJournal) RecordReorder(_ context.Context, _ string, orderedIDs []string) error {
	j.reorders = append(j.reorders, orderedIDs)
	return nil
}

func TestReorderTasksJournalsNewOrder(t *testing.T) {
	repo := newStubRepo()
	clk := clock.New(clock.JST, func() time.Time {
		d, _ := time.ParseInLocation(clock.DateLayout, "2024-03-15", clock.JST)
		return d.Add(12 * time.Hour)
	})
	trail := &recordingJournal{}
	uc := New(repo, &stubCategoryRepo{repo: repo}, clk, nil, trail, nil)

	a := repo.seed(domain.Task{UserID: "u1", Title: "a", Status: domain.StatusPending})
	b := repo.seed(domain.Task{UserID: "u1", Title: "b", Status: domain.StatusPending})

	order := []string{b.ID, a.ID}
	if err := uc.ReorderTasks(context.Background(), "u1", order); err != nil {
		t.Fatalf("ReorderTasks: %v", err)
	}

	if len(trail.reorders) != 1 {
		t.Fatalf("journaled reorders = %d, want 1", len(trail.reorders))
	}
	got := trail.reorders[0]
	if len(got) != 2 || got[0] != b.ID || got[1] != a.ID {
		t.Fatalf("journaled order = %v, want %v", got, order)
	}
}

func TestReorderTasksAssignsByPosition(t *testing.T) {
	uc, repo := newTestUseCase("2024-03-15")
	ctx := context.Background()
	a := repo.seed(domain.Task{UserID: "u1", Title: "a", Status: domain.StatusPending})
	b := repo.seed(domain.Task{UserID: "u1", Title: "b", Status: domain.StatusPending})
	c := repo.seed(domain.Task{UserID: "u1", Title: "c", Status: domain.StatusPending})

	if err := uc.ReorderTasks(ctx, "u1", []string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("ReorderTasks: %v", err)
	}

	all, err := uc.GetAllTasks(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("GetAllTasks: %v", err)
	}
	want := []string{c.ID, a.ID, b.ID}
	got := ids(all)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func strptr(s string) *string { return &s }
