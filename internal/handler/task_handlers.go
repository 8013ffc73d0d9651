package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/handler/dto"
	"github.com/mtlprog/tasktrack/internal/service"
)

// handleListTasks returns a page of tasks with filters.
// @Summary List tasks
// @Description Get a page of tasks, most recently updated first
// @Tags tasks
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (1-100, default 10)"
// @Param assignee query string false "Filter by assignee: 'me' or user UUID"
// @Param status query string false "Filter by status: todo, in_progress, done"
// @Param priority query string false "Filter by priority: low, medium, high"
// @Param search query string false "Case-insensitive substring of the title"
// @Success 200 {object} dto.TasksListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filters, err := parseListFilters(r, userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	params := service.ListTasksParams{
		Page:       filters.Page,
		Limit:      filters.Limit,
		AssigneeID: filters.Assignee,
		Search:     filters.Search,
	}
	if filters.Status != nil {
		status := domain.TaskStatus(*filters.Status)
		params.Status = &status
	}
	if filters.Priority != nil {
		priority := domain.TaskPriority(*filters.Priority)
		params.Priority = &priority
	}

	page, err := h.taskService.ListTasks(ctx, params)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		respondDomainError(w, err)
		return
	}

	tasks := make([]dto.TaskResponse, len(page.Tasks))
	for i, task := range page.Tasks {
		tasks[i] = dto.ToTaskResponse(task, page.Usernames)
	}

	respondJSON(w, http.StatusOK, dto.TasksListResponse{
		Tasks: tasks,
		Count: page.Count,
	})
}

// parseListFilters reads the listing query string. "assignee=me" names the caller.
func parseListFilters(r *http.Request, userID string) (dto.ListTasksFilters, error) {
	query := r.URL.Query()
	filters := dto.ListTasksFilters{
		Search: strings.TrimSpace(query.Get("search")),
	}

	var err error
	if filters.Page, err = positiveInt(query.Get("page"), "page"); err != nil {
		return filters, err
	}
	if filters.Limit, err = positiveInt(query.Get("limit"), "limit"); err != nil {
		return filters, err
	}

	if assignee := query.Get("assignee"); assignee != "" {
		if assignee == "me" {
			assignee = userID
		}
		filters.Assignee = &assignee
	}
	if status := query.Get("status"); status != "" {
		filters.Status = &status
	}
	if priority := query.Get("priority"); priority != "" {
		filters.Priority = &priority
	}

	return filters, nil
}

// positiveInt parses an optional query value. Empty yields 0 so the service default applies.
func positiveInt(value, name string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}

// handleCreateTask creates a new task attributed to the caller.
// @Summary Create a new task
// @Description Creates a new task. Status defaults to todo and priority to medium.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.taskService.CreateTask(ctx, service.CreateTaskParams{
		CreatedBy:   userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		AssigneeID:  req.Assignee,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(result.Task, result.Usernames))
}

// handleGetTask retrieves a single task.
// @Summary Get a task
// @Description Get a task with its comments and activity log
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	result, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(result.Task, result.Usernames))
}

// handleUpdateTask overwrites the named fields of a task.
// @Summary Update a task
// @Description Overwrites only the fields present in the body. Null clears assignee and due_date. Unknown keys are rejected.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body: "+err.Error())
		return
	}

	result, err := h.taskService.UpdateTask(ctx, taskID, userID, req.ToTaskUpdate())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(result.Task, result.Usernames))
}

// handleDeleteTask permanently removes a task.
// @Summary Delete a task
// @Description Hard delete. Succeeds whether or not the task existed.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted"})
}

// handleAddComment appends a comment to a task.
// @Summary Add a comment
// @Description Appends a comment and an "added comment" activity entry. Returns every comment on the task.
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.AddCommentRequest true "Comment"
// @Success 200 {array} dto.CommentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/comments [post]
func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.taskService.AddComment(ctx, taskID, userID, req.Text)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToCommentResponses(result.Task.Comments, result.Usernames))
}

// handleGetActivity returns the activity log of a task.
// @Summary Get task activity
// @Description Returns the activity log in insertion order
// @Tags activity
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} dto.ActivityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/activity [get]
func (h *Handler) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	result, err := h.taskService.GetActivity(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToActivityResponses(result.Task.Activity, result.Usernames))
}
