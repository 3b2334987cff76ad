package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/httpcontext"
	"github.com/taskdeck/backend/repository"
	taskUC "github.com/taskdeck/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Today's tasks, classified
// @Tags tasks
// @Router /api/v1/tasks/today [get]
func (h *TaskHandler) GetToday(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.GetTodayTasks(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Tasks for one calendar date
// @Tags tasks
// @Router /api/v1/tasks/date/{date} [get]
func (h *TaskHandler) GetByDate(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.GetTasksByDate(stdCtx, userID, h.pathValue(ctx, "date"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Search tasks
// @Tags tasks
// @Router /api/v1/tasks/search [get]
func (h *TaskHandler) Search(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	filter := repository.SearchFilter{
		UserID:   userID,
		Keyword:  string(args.Peek("q")),
		Status:   domain.TaskStatus(args.Peek("status")),
		Priority: domain.TaskPriority(args.Peek("priority")),
		DateFrom: string(args.Peek("date_from")),
		DateTo:   string(args.Peek("date_to")),
	}
	// category_id present but empty filters to uncategorized tasks.
	if args.Has("category_id") {
		categoryID := string(args.Peek("category_id"))
		filter.CategoryID = &categoryID
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.SearchTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Monthly per-day statistics
// @Tags tasks
// @Router /api/v1/tasks/stats/{month} [get]
func (h *TaskHandler) GetMonthlyStats(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.GetMonthlyStats(stdCtx, userID, h.pathValue(ctx, "month"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary List all tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var categoryID *string
	if ctx.QueryArgs().Has("category_id") {
		v := string(ctx.QueryArgs().Peek("category_id"))
		categoryID = &v
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.GetAllTasks(stdCtx, userID, categoryID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, http.StatusOK, tasks, len(tasks))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, taskUC.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Memo:        req.Memo,
		ScheduledAt: req.ScheduledAt,
		CategoryID:  req.CategoryID,
		Priority:    domain.TaskPriority(req.Priority),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondBadRequest(ctx, "missing task id")
		return
	}

	var req transport.UpdateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}

	input := taskUC.UpdateTaskInput{
		UserID:      userID,
		ID:          id,
		Title:       req.Title,
		Memo:        req.Memo,
		ScheduledAt: req.ScheduledAt,
		CategoryID:  req.CategoryID,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		input.Priority = &p
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondBadRequest(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Complete task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.CompleteTask)
}

// @Summary Revert completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/uncomplete [post]
func (h *TaskHandler) Uncomplete(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.UncompleteTask)
}

// @Summary Skip task
// @Tags tasks
// @Router /api/v1/tasks/{id}/skip [post]
func (h *TaskHandler) Skip(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondBadRequest(ctx, "missing task id")
		return
	}

	// The reason is optional, an empty body is fine.
	var req transport.SkipTaskRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.respondBadRequest(ctx, "invalid payload")
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.SkipTask(stdCtx, userID, id, req.Reason)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Revert skip
// @Tags tasks
// @Router /api/v1/tasks/{id}/unskip [post]
func (h *TaskHandler) Unskip(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.UnskipTask)
}

// @Summary Reorder tasks
// @Tags tasks
// @Router /api/v1/tasks/reorder [put]
func (h *TaskHandler) Reorder(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ReorderTasksRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondBadRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ReorderTasks(stdCtx, userID, req.TaskIDs); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

type transitionFunc func(ctx context.Context, userID, id string) (*domain.Task, error)

func (h *TaskHandler) transition(ctx *fasthttp.RequestCtx, fn transitionFunc) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathValue(ctx, "id")
	if id == "" {
		h.respondBadRequest(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := fn(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
