package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/botyak1234/marketplace-task/models"
)

// TaskRepository is thin data access over the tasks table. Mutating calls
// take effect against whatever *gorm.DB the repository is bound to, so a
// caller that needs atomicity rebinds with WithTx inside a transaction.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByIDForUpdate loads the task row with a FOR UPDATE lock so concurrent
// claims or reviews of the same task serialize on the row.
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetByIDWithUser(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("TakenBy").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetAllWithUser(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("TakenBy").
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) GetByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("TakenBy").
		Where("status = ?", status).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// GetByUserIDOrNotTaken returns the tasks a regular user may see: unclaimed
// ones plus the ones claimed by that user.
func (r *TaskRepository) GetByUserIDOrNotTaken(ctx context.Context, userID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("TakenBy").
		Where("taken_by_id IS NULL OR taken_by_id = ?", userID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// GetSorted returns all tasks ordered by the given column with id as the
// tiebreak, ascending ids within equal keys keeping the order stable.
func (r *TaskRepository) GetSorted(ctx context.Context, column string, desc bool) ([]models.Task, error) {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q := r.db.WithContext(ctx).
		Preload("TakenBy").
		Order(column + " " + dir)
	if column != "id" {
		q = q.Order("id ASC")
	}
	var tasks []models.Task
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) Save(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}
