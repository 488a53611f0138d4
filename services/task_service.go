package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/repositories"
)

// UpdateTaskInput is the administrative full overwrite of a task. It bypasses
// the transition path on purpose; this is the override an admin uses to pull
// a task out of a terminal state.
type UpdateTaskInput struct {
	Title       string
	Description string
	Reward      int
	Status      models.TaskStatus
	TakenByID   *uint
}

// TaskService owns every status transition and the points side effect.
// Business rule violations are detected and rejected here and nowhere else.
type TaskService struct {
	db    *gorm.DB
	tasks *repositories.TaskRepository
	users *repositories.UserRepository
}

func NewTaskService(db *gorm.DB, tasks *repositories.TaskRepository, users *repositories.UserRepository) *TaskService {
	return &TaskService{db: db, tasks: tasks, users: users}
}

// List returns every task for admins. Regular users only see unclaimed tasks
// and tasks they claimed themselves.
func (s *TaskService) List(ctx context.Context, userID uint, role models.Role) ([]models.Task, error) {
	if role == models.RoleAdmin {
		return s.tasks.GetAllWithUser(ctx)
	}
	return s.tasks.GetByUserIDOrNotTaken(ctx, userID)
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.tasks.GetByIDWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, title, description string, reward int) (*models.Task, error) {
	if err := validateTaskFields(title, description, reward); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	task := &models.Task{
		Title:       strings.TrimSpace(title),
		Description: description,
		Reward:      reward,
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update is the admin-only full overwrite. No transition validation runs
// here; the status guard lives in Take/Submit/Review only.
func (s *TaskService) Update(ctx context.Context, id uint, in UpdateTaskInput) (*models.Task, error) {
	if err := validateTaskFields(in.Title, in.Description, in.Reward); err != nil {
		return nil, err
	}
	var updated *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		task.Title = strings.TrimSpace(in.Title)
		task.Description = in.Description
		task.Reward = in.Reward
		task.Status = in.Status
		task.TakenByID = in.TakenByID
		task.UpdatedAt = time.Now().UTC()
		if err := tasks.Save(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.tasks.Delete(ctx, task)
}

// Take claims an unclaimed New task for userID. An already-claimed task and a
// task past New are both rejected as the same rule violation; callers do not
// get to tell the two causes apart.
func (s *TaskService) Take(ctx context.Context, id, userID uint) (*models.Task, error) {
	var taken *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if task.TakenByID != nil || task.Status != models.StatusNew {
			return fmt.Errorf("%w: cannot take task", ErrRuleViolation)
		}
		task.TakenByID = &userID
		task.Status = models.StatusTaken
		task.UpdatedAt = time.Now().UTC()
		if err := tasks.Save(ctx, task); err != nil {
			return err
		}
		taken = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// Submit moves a task the requester claimed from Taken to Submitted.
func (s *TaskService) Submit(ctx context.Context, id, userID uint) (*models.Task, error) {
	var submitted *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		task, err := tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if task.TakenByID == nil || *task.TakenByID != userID || task.Status != models.StatusTaken {
			return fmt.Errorf("%w: task must be taken by you and be in 'Taken' status", ErrRuleViolation)
		}
		task.Status = models.StatusSubmitted
		task.UpdatedAt = time.Now().UTC()
		if err := tasks.Save(ctx, task); err != nil {
			return err
		}
		submitted = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// Review finalizes a task as Approved or Rejected. Approval credits the
// claiming user's points with the task reward inside the same transaction as
// the status change, so the two never commit apart. There is no status
// precondition: reviewing an already-Approved task re-credits the reward.
func (s *TaskService) Review(ctx context.Context, id uint, decision string) (*models.Task, error) {
	var reviewed *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		users := s.users.WithTx(tx)

		task, err := tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch {
		case strings.EqualFold(decision, string(models.StatusApproved)):
			task.Status = models.StatusApproved
			if task.TakenByID != nil {
				user, err := users.GetByIDForUpdate(ctx, *task.TakenByID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if user != nil {
					user.Points += task.Reward
					if err := users.Save(ctx, user); err != nil {
						return err
					}
				}
			}
		case strings.EqualFold(decision, string(models.StatusRejected)):
			task.Status = models.StatusRejected
		default:
			return fmt.Errorf("%w: invalid decision, allowed values: Approved, Rejected", ErrInvalidArgument)
		}

		task.UpdatedAt = time.Now().UTC()
		if err := tasks.Save(ctx, task); err != nil {
			return err
		}
		reviewed = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// ListByStatus filters tasks by an exact status match. An unparseable status
// is an invalid argument, not an empty result.
func (s *TaskService) ListByStatus(ctx context.Context, status string) ([]models.Task, error) {
	parsed, err := models.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status, allowed values: New, Taken, Submitted, Approved, Rejected", ErrInvalidArgument)
	}
	return s.tasks.GetByStatus(ctx, parsed)
}

// ListSorted orders tasks by creation time, update time, or id. Unknown sort
// keys fall back to id ordering; order defaults to ascending. Ties within the
// chosen key always break by id ascending.
func (s *TaskService) ListSorted(ctx context.Context, sortKey, order string) ([]models.Task, error) {
	desc := strings.EqualFold(order, "desc")
	var column string
	switch strings.ToLower(sortKey) {
	case "created":
		column = "created_at"
	case "updated":
		column = "updated_at"
	default:
		column = "id"
	}
	return s.tasks.GetSorted(ctx, column, desc)
}

func validateTaskFields(title, description string, reward int) error {
	// Limits count characters, not bytes; non-ASCII titles are normal input.
	titleLen := utf8.RuneCountInString(strings.TrimSpace(title))
	if titleLen < 3 || titleLen > 100 {
		return fmt.Errorf("%w: title must be 3-100 characters", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(description) > 500 {
		return fmt.Errorf("%w: description must not exceed 500 characters", ErrInvalidArgument)
	}
	if reward < 1 || reward > 1000 {
		return fmt.Errorf("%w: reward must be between 1 and 1000", ErrInvalidArgument)
	}
	return nil
}
