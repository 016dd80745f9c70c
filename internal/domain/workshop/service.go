package workshop

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/domain/events"
	"woodline/pkg/logger"
)

// Service provides workshop task logic.
type Service struct {
	repo        Repository
	saleFlagger SaleFlagger
	numerator   numerator.Generator
	txManager   tx.Manager
	outbox      events.Outbox
}

// NewService creates a new workshop service.
func NewService(
	repo Repository,
	saleFlagger SaleFlagger,
	numerator numerator.Generator,
	txManager tx.Manager,
	outbox events.Outbox,
) *Service {
	return &Service{
		repo:        repo,
		saleFlagger: saleFlagger,
		numerator:   numerator,
		txManager:   txManager,
		outbox:      outbox,
	}
}

// CreateForSale spawns the sale's single pending task inside the
// caller's transaction. lineID points at the line that triggered it.
func (s *Service) CreateForSale(ctx context.Context, saleID, lineID, customerID, serviceTypeID id.ID, serviceName, description string, createdBy id.ID) (*Task, error) {
	t := NewTask(saleID, lineID, customerID, serviceTypeID, serviceName, createdBy)
	t.Description = description
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("W"), time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	t.Number = number

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	err = s.outbox.Enqueue(ctx, events.New(events.TypeWorkshopTaskCreated, events.RoomWorkshop, events.WorkshopTaskPayload{
		TaskID:      t.ID,
		SaleID:      t.SaleID,
		ServiceName: t.ServiceName,
		Status:      string(t.Status),
	}))
	if err != nil {
		return nil, fmt.Errorf("enqueue event: %w", err)
	}

	return t, nil
}

// Start assigns a pending task to the calling master.
func (s *Service) Start(ctx context.Context, taskID, masterID id.ID) (*Task, error) {
	var task *Task
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return apperror.NewNotFound("task", taskID.String())
		}
		if err := t.Start(masterID); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "workshop task started", "task_id", taskID, "master_id", masterID)
	return task, nil
}

// Complete finishes a task. When it is the last open task on its sale,
// the sale's workshop flag flips in the same transaction.
func (s *Service) Complete(ctx context.Context, taskID id.ID) (*Task, error) {
	var task *Task
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return apperror.NewNotFound("task", taskID.String())
		}
		if err := t.Complete(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		siblings, err := s.repo.GetBySale(ctx, t.SaleID)
		if err != nil {
			return fmt.Errorf("load sale tasks: %w", err)
		}
		allDone := true
		for _, sib := range siblings {
			if !sib.IsFinal() {
				allDone = false
				break
			}
		}
		if allDone {
			if err := s.saleFlagger.MarkWorkshopDone(ctx, t.SaleID); err != nil {
				return fmt.Errorf("mark sale workshop done: %w", err)
			}
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeWorkshopTaskDone, events.RoomWorkshop, events.WorkshopTaskPayload{
			TaskID:      t.ID,
			SaleID:      t.SaleID,
			ServiceName: t.ServiceName,
			Status:      string(t.Status),
			AssigneeID:  t.AssigneeID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}

		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "workshop task completed", "task_id", taskID, "sale_id", task.SaleID)
	return task, nil
}

// CancelForSale voids all unfinished tasks of a sale inside the caller's
// transaction.
func (s *Service) CancelForSale(ctx context.Context, saleID id.ID) error {
	tasks, err := s.repo.GetBySale(ctx, saleID)
	if err != nil {
		return fmt.Errorf("load sale tasks: %w", err)
	}
	for i := range tasks {
		t := &tasks[i]
		if t.IsFinal() {
			continue
		}
		if err := t.Cancel(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return fmt.Errorf("cancel task: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a task.
func (s *Service) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperror.NewNotFound("task", taskID.String())
	}
	return t, nil
}

// List lists tasks with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Task, int, error) {
	return s.repo.List(ctx, filter)
}
