package repositories

import "taskboard/internal/models"

// TaskRepository defines the interface for task data access. Every lookup and
// mutation is scoped to the owning user; a task id that exists but belongs to
// another user behaves exactly like a missing id (ErrNotFound).
type TaskRepository interface {
	Create(task *models.Task) error
	GetByID(id, userID uint) (*models.Task, error)
	ListByOwner(userID uint) ([]models.Task, error)
	Update(task *models.Task) error
	Delete(id, userID uint) error
}
