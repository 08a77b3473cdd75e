package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
	"taskboard/pkg/events"
)

var (
	// ErrEmptyContent is returned when a new task has no content.
	ErrEmptyContent = errors.New("task content cannot be empty")

	// ErrInvalidDueDate is returned when a due date string is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("invalid due date format")
)

// Filter keywords accepted by ListTasks. Any other value (including the
// empty string) disables filtering.
const (
	FilterToday   = "today"
	FilterOverdue = "overdue"
	FilterPending = "pending"
)

const dueDateLayout = "2006-01-02"

// DateOnly truncates a time to midnight UTC on its calendar date. All due
// date storage and comparison goes through this so date equality is exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDueDate parses an optional YYYY-MM-DD form value. An empty string
// means no due date; anything else that fails to parse is ErrInvalidDueDate.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	d := DateOnly(t)
	return &d, nil
}

// TaskService handles business logic for tasks: the filter/query engine for
// the list view plus the mutation operations around it.
type TaskService struct {
	repo     repositories.TaskRepository
	mqClient *events.Client // nil disables event publishing
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo repositories.TaskRepository, mqClient *events.Client) *TaskService {
	return &TaskService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// ListTasks produces the two display sets for a user's task list:
//
//   - completed: all completed tasks, most recently created first. The
//     filter keyword never affects this set.
//   - incomplete: all incomplete tasks, optionally narrowed by filter
//     ("today" = due today, "overdue" = due before today, "pending" = due
//     after today; a task with no due date matches none of the three).
//     Ordered by due date ascending with undated tasks sorted last, ties
//     broken by creation time descending.
//
// The returned notice describes the active filter, or is empty when no
// recognized filter is applied.
func (s *TaskService) ListTasks(userID uint, filter string) (incomplete, completed []models.Task, notice string, err error) {
	tasks, err := s.repo.ListByOwner(userID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to list tasks: %w", err)
	}

	today := DateOnly(time.Now())

	incomplete = make([]models.Task, 0, len(tasks))
	completed = make([]models.Task, 0)
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			incomplete = append(incomplete, t)
		}
	}

	switch filter {
	case FilterToday:
		incomplete = filterByDue(incomplete, func(due time.Time) bool { return due.Equal(today) })
		notice = "Showing tasks due today."
	case FilterOverdue:
		incomplete = filterByDue(incomplete, func(due time.Time) bool { return due.Before(today) })
		notice = "Showing overdue tasks."
	case FilterPending:
		incomplete = filterByDue(incomplete, func(due time.Time) bool { return due.After(today) })
		notice = "Showing pending tasks."
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	sort.SliceStable(incomplete, func(i, j int) bool {
		return taskLess(incomplete[i], incomplete[j])
	})
	return incomplete, completed, notice, nil
}

// filterByDue keeps tasks whose due date satisfies match. Tasks without a
// due date are always dropped.
func filterByDue(tasks []models.Task, match func(due time.Time) bool) []models.Task {
	filtered := tasks[:0]
	for _, t := range tasks {
		if t.DueDate != nil && match(*t.DueDate) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// taskLess orders incomplete tasks: due date ascending, undated tasks last,
// equal (or both absent) due dates broken by creation time descending.
func taskLess(a, b models.Task) bool {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return a.CreatedAt.After(b.CreatedAt)
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	case a.DueDate.Equal(*b.DueDate):
		return a.CreatedAt.After(b.CreatedAt)
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}

// CreateTask creates an incomplete task for a user. The due date string is
// parsed before the content check, so a malformed date wins when both inputs
// are bad.
func (s *TaskService) CreateTask(userID uint, content, dueDateStr string) (*models.Task, error) {
	dueDate, err := ParseDueDate(dueDateStr)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	task := &models.Task{
		Content: content,
		UserID:  userID,
		DueDate: dueDate,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	s.publishEvent(events.TaskCreated, task)
	return task, nil
}

// GetTask retrieves a single task owned by the user.
func (s *TaskService) GetTask(id, userID uint) (*models.Task, error) {
	return s.repo.GetByID(id, userID)
}

// EditTask replaces a task's content and due date. Content is replaced
// unconditionally, with no empty check; an absent due date string clears the
// stored due date.
func (s *TaskService) EditTask(id, userID uint, content, dueDateStr string) error {
	dueDate, err := ParseDueDate(dueDateStr)
	if err != nil {
		return err
	}

	task, err := s.repo.GetByID(id, userID)
	if err != nil {
		return err
	}

	task.Content = content
	task.DueDate = dueDate
	return s.repo.Update(task)
}

// CompleteTask marks a task completed. Completing an already-completed task
// is a no-op that still succeeds.
func (s *TaskService) CompleteTask(id, userID uint) error {
	task, err := s.repo.GetByID(id, userID)
	if err != nil {
		return err
	}

	task.Completed = true
	if err := s.repo.Update(task); err != nil {
		return err
	}

	s.publishEvent(events.TaskCompleted, task)
	return nil
}

// ToggleTask flips a task's completed flag.
func (s *TaskService) ToggleTask(id, userID uint) error {
	task, err := s.repo.GetByID(id, userID)
	if err != nil {
		return err
	}

	task.Completed = !task.Completed
	if err := s.repo.Update(task); err != nil {
		return err
	}

	if task.Completed {
		s.publishEvent(events.TaskCompleted, task)
	}
	return nil
}

// DeleteTask permanently removes a task.
func (s *TaskService) DeleteTask(id, userID uint) error {
	if err := s.repo.Delete(id, userID); err != nil {
		return err
	}

	s.publishEvent(events.TaskDeleted, &models.Task{ID: id, UserID: userID})
	return nil
}

// publishEvent sends a task lifecycle event to the broker, if one is
// configured. Publish failures are logged and never fail the request.
func (s *TaskService) publishEvent(kind string, task *models.Task) {
	err := s.mqClient.PublishTaskEvent(kind, map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
	})
	if err != nil {
		log.Printf("Warning: failed to publish %s event for task %d: %v", kind, task.ID, err)
	}
}
