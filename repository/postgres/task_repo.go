package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// taskColumns lists the task row joined with its optional category. Every
// query in this repository selects the same shape so scanTask stays single.
const taskColumns = `
	t.id, t.user_id, t.title, t.memo, t.status, t.priority,
	t.scheduled_at, t.completed_at, t.skipped_at, t.skip_reason,
	t.category_id, t.display_order, t.created_at, t.updated_at,
	c.id, c.name, c.color`

const taskFrom = `
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

// defaultOrder is the manual-ordering sort: display_order ascending with
// unordered tasks last, newest-first among ties.
const defaultOrder = ` ORDER BY t.display_order ASC NULLS LAST, t.created_at DESC`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.id = $1 AND t.user_id = $2`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTask(row)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, memo, status, priority, scheduled_at, category_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		nullString(task.Memo),
		task.Status,
		nullString(string(task.Priority)),
		nullString(task.ScheduledAt),
		nullString(task.CategoryID),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		memo = $4,
		status = $5,
		priority = $6,
		scheduled_at = $7::date,
		completed_at = $8,
		skipped_at = $9,
		skip_reason = $10,
		category_id = $11,
		display_order = $12,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		nullString(task.Memo),
		task.Status,
		nullString(string(task.Priority)),
		nullString(task.ScheduledAt),
		task.CompletedAt,
		task.SkippedAt,
		nullString(task.SkipReason),
		nullString(task.CategoryID),
		task.DisplayOrder,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ListScheduledOn(ctx context.Context, userID, date string, pendingOnly bool) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND t.scheduled_at = $2::date
	  AND ($3 = false OR t.status = 'PENDING')` + defaultOrder
	rows, err := r.pool.Query(ctx, query, userID, date, pendingOnly)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListCompletedBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND t.status = 'COMPLETED'
	  AND t.completed_at >= $2 AND t.completed_at <= $3
	ORDER BY t.completed_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListSkippedBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND t.status = 'SKIPPED'
	  AND t.skipped_at >= $2 AND t.skipped_at <= $3
	ORDER BY t.skipped_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListOverdue(ctx context.Context, userID, today string) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND t.status = 'PENDING'
	  AND t.scheduled_at < $2::date
	ORDER BY t.scheduled_at ASC`
	rows, err := r.pool.Query(ctx, query, userID, today)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListUndated(ctx context.Context, userID string) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND t.status = 'PENDING'
	  AND t.scheduled_at IS NULL` + defaultOrder
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListMonthWindow(ctx context.Context, userID, firstDate, lastDate string, start, end time.Time) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1
	  AND (
		(t.scheduled_at >= $2::date AND t.scheduled_at <= $3::date)
		OR (t.completed_at >= $4 AND t.completed_at <= $5)
		OR (t.skipped_at >= $4 AND t.skipped_at <= $5)
	  )` + defaultOrder
	rows, err := r.pool.Query(ctx, query, userID, firstDate, lastDate, start, end)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListAll(ctx context.Context, userID string, categoryID *string) ([]domain.Task, error) {
	query := `SELECT` + taskColumns + taskFrom + `
	WHERE t.user_id = $1`
	args := []interface{}{userID}

	if categoryID != nil {
		if *categoryID == "" {
			query += ` AND t.category_id IS NULL`
		} else {
			query += ` AND t.category_id = $2`
			args = append(args, *categoryID)
		}
	}
	query += defaultOrder

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]domain.Task, error) {
	var (
		conds = []string{"t.user_id = $1"}
		args  = []interface{}{filter.UserID}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		p := arg("%" + escapeLike(kw) + "%")
		conds = append(conds, fmt.Sprintf("(t.title ILIKE %s OR t.memo ILIKE %s)", p, p))
	}
	if filter.Status != "" {
		conds = append(conds, "t.status = "+arg(filter.Status))
	}
	if filter.CategoryID != nil {
		if *filter.CategoryID == "" {
			conds = append(conds, "t.category_id IS NULL")
		} else {
			conds = append(conds, "t.category_id = "+arg(*filter.CategoryID))
		}
	}
	if filter.Priority != "" {
		conds = append(conds, "t.priority = "+arg(filter.Priority))
	}
	if filter.DateFrom != "" {
		conds = append(conds, "t.scheduled_at >= "+arg(filter.DateFrom)+"::date")
	}
	if filter.DateTo != "" {
		conds = append(conds, "t.scheduled_at <= "+arg(filter.DateTo)+"::date")
	}

	query := `SELECT` + taskColumns + taskFrom + `
	WHERE ` + strings.Join(conds, "\n	  AND ") + defaultOrder

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Ownership gate: every id must resolve to a row of this user, otherwise
	// nothing moves.
	var owned int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND id = ANY($2)`,
		userID, orderedIDs,
	).Scan(&owned); err != nil {
		return err
	}
	if owned != len(orderedIDs) {
		return domain.ErrTaskNotFound
	}

	batch := &pgx.Batch{}
	for idx, id := range orderedIDs {
		batch.Queue(
			`UPDATE tasks SET display_order = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
			idx, id, userID,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range orderedIDs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var (
		task          domain.Task
		memo          *string
		priority      *string
		scheduledAt   *time.Time
		skipReason    *string
		categoryID    *string
		displayOrder  *int
		joinedCatID   *string
		joinedCatName *string
		joinedColor   *string
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&memo,
		&task.Status,
		&priority,
		&scheduledAt,
		&task.CompletedAt,
		&task.SkippedAt,
		&skipReason,
		&categoryID,
		&displayOrder,
		&task.CreatedAt,
		&task.UpdatedAt,
		&joinedCatID,
		&joinedCatName,
		&joinedColor,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if memo != nil {
		task.Memo = *memo
	}
	if priority != nil {
		task.Priority = domain.TaskPriority(*priority)
	}
	if scheduledAt != nil {
		// DATE column: pgx yields UTC midnight of the stored calendar day, so
		// formatting it directly preserves the date.
		task.ScheduledAt = scheduledAt.Format("2006-01-02")
	}
	if skipReason != nil {
		task.SkipReason = *skipReason
	}
	if categoryID != nil {
		task.CategoryID = *categoryID
	}
	task.DisplayOrder = displayOrder
	if joinedCatID != nil {
		cat := &domain.Category{ID: *joinedCatID}
		if joinedCatName != nil {
			cat.Name = *joinedCatName
		}
		if joinedColor != nil {
			cat.Color = *joinedColor
		}
		task.Category = cat
	}
	return &task, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
