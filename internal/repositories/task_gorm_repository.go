package repositories

import (
	"errors"
	"fmt"

	"taskboard/internal/models"

	"gorm.io/gorm"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// Create inserts a new task inside a transaction.
func (r *GORMTaskRepository) Create(task *models.Task) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(task).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a single task by its ID, scoped to the owning user.
func (r *GORMTaskRepository) GetByID(id, userID uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID %d: %w", id, err)
	}
	return &task, nil
}

// ListByOwner retrieves all tasks belonging to a user. Ordering is left to
// the service layer, which partitions and sorts the display sets.
func (r *GORMTaskRepository) ListByOwner(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Find(&tasks, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

// Update persists the mutable fields of a task inside a transaction. The
// update is keyed on both id and user_id so a task owned by someone else is
// indistinguishable from a missing one. Updates uses a map so zero values
// (completed=false, due_date=NULL) are written too.
func (r *GORMTaskRepository) Update(task *models.Task) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", task.ID, task.UserID).
			Updates(map[string]interface{}{
				"content":   task.Content,
				"due_date":  task.DueDate,
				"completed": task.Completed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return nil
}

// Delete removes a task by its ID, scoped to the owning user.
func (r *GORMTaskRepository) Delete(id, userID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Task{}, "id = ? AND user_id = ?", id, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}
