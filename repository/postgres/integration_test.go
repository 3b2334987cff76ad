package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// These tests run against a real database and skip when DATABASE_URL is not
// set. Each test works under a fresh user so parallel runs do not collide.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	applyMigrations(t, pool)
	return pool
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	path := filepath.Join("..", "..", "assets", "migrations", "000001_init.up.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(context.Background(), string(b)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
}

func testUser(t *testing.T, users repository.UserRepository) string {
	t.Helper()
	id := uuid.NewString()
	err := users.Upsert(context.Background(), &domain.User{
		ID:    id,
		Email: id + "@example.test",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestTaskRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	categories := NewCategoryRepository(pool)

	userID := testUser(t, users)

	cat, err := categories.Create(ctx, &domain.Category{
		UserID: userID, Name: "Work", Color: "#FF8800",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	created, err := tasks.Create(ctx, &domain.Task{
		UserID:      userID,
		Title:       "draft proposal",
		Memo:        "two pages",
		Status:      domain.StatusPending,
		Priority:    domain.PriorityHigh,
		ScheduledAt: "2024-05-10",
		CategoryID:  cat.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := tasks.GetByID(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != "draft proposal" || got.ScheduledAt != "2024-05-10" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Category == nil || got.Category.Name != "Work" {
		t.Fatalf("category join missing: %+v", got.Category)
	}

	listed, err := tasks.ListScheduledOn(ctx, userID, "2024-05-10", true)
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("scheduled list = %+v", listed)
	}

	// Ownership gate: another user sees nothing.
	if _, err := tasks.GetByID(ctx, uuid.NewString(), created.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("foreign read: want NOT_FOUND, got %v", err)
	}
}

func TestTaskRepositorySearchEscapesLikeMetacharacters(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	userID := testUser(t, users)

	if _, err := tasks.Create(ctx, &domain.Task{
		UserID: userID, Title: "review 100% coverage", Status: domain.StatusPending,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(ctx, &domain.Task{
		UserID: userID, Title: "review 100 things", Status: domain.StatusPending,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := tasks.Search(ctx, repository.SearchFilter{UserID: userID, Keyword: "100%"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Title != "review 100% coverage" {
		t.Fatalf("%% must match literally, got %+v", found)
	}
}

func TestTaskRepositoryReorderRejectsForeignIDs(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	owner := testUser(t, users)
	other := testUser(t, users)

	mine, err := tasks.Create(ctx, &domain.Task{UserID: owner, Title: "mine", Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	theirs, err := tasks.Create(ctx, &domain.Task{UserID: other, Title: "theirs", Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := tasks.Reorder(ctx, owner, []string{mine.ID, theirs.ID}); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}

	got, err := tasks.GetByID(ctx, owner, mine.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DisplayOrder != nil {
		t.Fatal("failed reorder must not assign order")
	}
}

func TestCategoryDeleteDetachesTasks(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	categories := NewCategoryRepository(pool)

	userID := testUser(t, users)

	cat, err := categories.Create(ctx, &domain.Category{UserID: userID, Name: "Gone", Color: "#112233"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := tasks.Create(ctx, &domain.Task{
		UserID: userID, Title: "survivor", Status: domain.StatusPending, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := categories.DeleteAndDetach(ctx, userID, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := tasks.GetByID(ctx, userID, task.ID)
	if err != nil {
		t.Fatalf("task must survive category deletion: %v", err)
	}
	if got.CategoryID != "" || got.Category != nil {
		t.Fatalf("task still attached: %+v", got)
	}
}

func TestCategoryColorUnsetRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	categories := NewCategoryRepository(pool)

	userID := testUser(t, users)

	// An unset color is stored as NULL and must round-trip back to "".
	cat, err := categories.Create(ctx, &domain.Category{UserID: userID, Name: "Plain"})
	if err != nil {
		t.Fatalf("create category without color: %v", err)
	}

	got, err := categories.GetByID(ctx, userID, cat.ID)
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if got.Color != "" {
		t.Fatalf("color = %q, want unset", got.Color)
	}

	// Clearing a previously set color must also persist.
	got.Color = "#445566"
	if err := categories.Update(ctx, got); err != nil {
		t.Fatalf("set color: %v", err)
	}
	got.Color = ""
	if err := categories.Update(ctx, got); err != nil {
		t.Fatalf("clear color: %v", err)
	}
	cleared, err := categories.GetByID(ctx, userID, cat.ID)
	if err != nil {
		t.Fatalf("reload category: %v", err)
	}
	if cleared.Color != "" {
		t.Fatalf("color = %q after clearing, want unset", cleared.Color)
	}
}

func TestUserDeleteCascade(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	categories := NewCategoryRepository(pool)

	userID := testUser(t, users)

	cat, err := categories.Create(ctx, &domain.Category{UserID: userID, Name: "Stuff", Color: "#445566"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := tasks.Create(ctx, &domain.Task{
		UserID: userID, Title: "doomed", Status: domain.StatusPending, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := users.DeleteCascade(ctx, userID); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	if _, err := users.GetByID(ctx, userID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("user survived: %v", err)
	}
	if _, err := tasks.GetByID(ctx, userID, task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("task survived: %v", err)
	}
	if _, err := categories.GetByID(ctx, userID, cat.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("category survived: %v", err)
	}
}
