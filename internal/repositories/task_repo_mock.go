package repositories

import (
	"sync"
	"time"

	"taskboard/internal/models"
)

// MockTaskRepository is an in-memory implementation of TaskRepository.
type MockTaskRepository struct {
	tasks  map[uint]models.Task
	nextID uint
	mu     sync.RWMutex
}

// NewMockTaskRepository creates a new instance of MockTaskRepository.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		tasks:  make(map[uint]models.Task),
		nextID: 1,
	}
}

// Create stores a new task, assigning an ID and creation timestamp the way
// the database would.
func (r *MockTaskRepository) Create(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == 0 {
		task.ID = r.nextID
		r.nextID++
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.tasks[task.ID] = *task
	return nil
}

// GetByID returns a task by its ID, scoped to the owning user.
func (r *MockTaskRepository) GetByID(id, userID uint) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, ErrNotFound
	}
	return &task, nil
}

// ListByOwner returns all tasks belonging to a user.
func (r *MockTaskRepository) ListByOwner(userID uint) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	taskList := make([]models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if t.UserID == userID {
			taskList = append(taskList, t)
		}
	}
	return taskList, nil
}

// Update replaces the stored task if it exists and is owned by task.UserID.
func (r *MockTaskRepository) Update(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return ErrNotFound
	}
	existing.Content = task.Content
	existing.DueDate = task.DueDate
	existing.Completed = task.Completed
	r.tasks[task.ID] = existing
	return nil
}

// Delete removes a task by its ID, scoped to the owning user.
func (r *MockTaskRepository) Delete(id, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
