package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"taskboard/internal/middleware"
	"taskboard/internal/repositories"
	"taskboard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles the task list and the task mutation routes. All of its
// routes sit behind the session middleware.
type TaskHandler struct {
	taskService *services.TaskService
	validate    *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the task routes on a session-protected router.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tasks", h.HandleListTasks)
	router.Post("/tasks", h.HandleCreateTask)
	router.Get("/complete/:id", h.HandleCompleteTask)
	router.Get("/toggle/:id", h.HandleToggleTask)
	router.Get("/edit/:id", h.HandleEditTaskForm)
	router.Post("/edit/:id", h.HandleEditTask)
	router.Get("/delete/:id", h.HandleDeleteTask)
}

// TaskForm represents the create/edit form fields. The empty-content check
// lives in the service so create and edit keep their different rules.
type TaskForm struct {
	Content string `form:"content" validate:"max=200"`
	DueDate string `form:"due_date"`
}

// notFound renders the generic not-found page.
func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{})
}

// taskID parses the :id route parameter.
func taskID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id %q", c.Params("id"))
	}
	return uint(id), nil
}

// HandleListTasks renders the task list, optionally narrowed by the filter
// query parameter (today, overdue, pending).
func (h *TaskHandler) HandleListTasks(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	filter := c.Query("filter")

	incomplete, completed, notice, err := h.taskService.ListTasks(userID, filter)
	if err != nil {
		log.Printf("Error listing tasks for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{})
	}

	flashes := popFlashes(c)
	if notice != "" {
		category := "info"
		if filter == services.FilterOverdue {
			category = "warning"
		}
		flashes = append(flashes, Flash{Category: category, Message: notice})
	}

	return c.Render("tasks", fiber.Map{
		"IncompleteTasks": incomplete,
		"CompletedTasks":  completed,
		"Flashes":         flashes,
		"Filter":          filter,
		"Today":           services.DateOnly(time.Now()),
	})
}

// HandleCreateTask creates a task and redirects back to the list. Empty
// content and a malformed due date are rejected with distinct messages.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var form TaskForm
	if err := c.BodyParser(&form); err != nil {
		setFlash(c, "danger", "Invalid form submission.")
		return c.Redirect("/tasks")
	}
	if err := h.validate.Struct(form); err != nil {
		setFlash(c, "danger", "Task content is too long.")
		return c.Redirect("/tasks")
	}

	if _, err := h.taskService.CreateTask(userID, form.Content, form.DueDate); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDueDate):
			setFlash(c, "danger", "Invalid due date format. Please use YYYY-MM-DD.")
		case errors.Is(err, services.ErrEmptyContent):
			setFlash(c, "danger", "Task content cannot be empty!")
		default:
			log.Printf("Error adding task for user %d: %v", userID, err)
			setFlash(c, "danger", "Error adding task.")
		}
		return c.Redirect("/tasks")
	}

	setFlash(c, "success", "Task added successfully!")
	return c.Redirect("/tasks")
}

// HandleCompleteTask marks a task completed.
func (h *TaskHandler) HandleCompleteTask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		return notFound(c)
	}

	if err := h.taskService.CompleteTask(id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error completing task %d: %v", id, err)
		setFlash(c, "danger", "Error updating task.")
	}
	return c.Redirect("/tasks")
}

// HandleToggleTask flips a task's completed flag.
func (h *TaskHandler) HandleToggleTask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		return notFound(c)
	}

	if err := h.taskService.ToggleTask(id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error toggling task %d: %v", id, err)
		setFlash(c, "danger", "Error updating task.")
		return c.Redirect("/tasks")
	}

	setFlash(c, "info", "Task status updated.")
	return c.Redirect("/tasks")
}

// HandleEditTaskForm renders the edit form for a task.
func (h *TaskHandler) HandleEditTaskForm(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		return notFound(c)
	}

	task, err := h.taskService.GetTask(id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error loading task %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{})
	}

	dueDateValue := ""
	if task.DueDate != nil {
		dueDateValue = task.DueDate.Format("2006-01-02")
	}
	return c.Render("edit_task", fiber.Map{
		"Task":         task,
		"DueDateValue": dueDateValue,
		"Flashes":      popFlashes(c),
	})
}

// HandleEditTask applies an edit. A malformed due date aborts the edit and
// returns to the edit form; content replaces unconditionally.
func (h *TaskHandler) HandleEditTask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		return notFound(c)
	}

	var form TaskForm
	if err := c.BodyParser(&form); err != nil {
		setFlash(c, "danger", "Invalid form submission.")
		return c.Redirect(fmt.Sprintf("/edit/%d", id))
	}
	if err := h.validate.Struct(form); err != nil {
		setFlash(c, "danger", "Task content is too long.")
		return c.Redirect(fmt.Sprintf("/edit/%d", id))
	}

	if err := h.taskService.EditTask(id, userID, form.Content, form.DueDate); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDueDate):
			setFlash(c, "danger", "Invalid due date format.")
			return c.Redirect(fmt.Sprintf("/edit/%d", id))
		case errors.Is(err, repositories.ErrNotFound):
			return notFound(c)
		default:
			log.Printf("Error updating task %d: %v", id, err)
			setFlash(c, "danger", "Error updating task.")
			return c.Redirect("/tasks")
		}
	}

	setFlash(c, "success", "Task updated successfully!")
	return c.Redirect("/tasks")
}

// HandleDeleteTask permanently removes a task.
func (h *TaskHandler) HandleDeleteTask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	id, err := taskID(c)
	if err != nil {
		return notFound(c)
	}

	if err := h.taskService.DeleteTask(id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		log.Printf("Error deleting task %d: %v", id, err)
		setFlash(c, "danger", "Error deleting task.")
	}
	return c.Redirect("/tasks")
}
