// Package workshop provides repair and assembly task tracking.
// Tasks are spawned from sales that include workshop services and worked
// by masters.
package workshop

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Task represents one unit of workshop work.
type Task struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	SaleID         id.ID `db:"sale_id" json:"saleId"`
	SaleItemLineID id.ID `db:"sale_item_line_id" json:"saleItemLineId"`
	CustomerID     id.ID `db:"customer_id" json:"customerId"`

	ServiceTypeID id.ID  `db:"service_type_id" json:"serviceTypeId"`
	ServiceName   string `db:"service_name" json:"serviceName"`
	Description   string `db:"description" json:"description,omitempty"`

	Status     Status `db:"status" json:"status"`
	AssigneeID *id.ID `db:"assignee_id" json:"assigneeId,omitempty"`

	CreatedBy   id.ID      `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	StartedAt   *time.Time `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// NewTask creates a pending task.
func NewTask(saleID, saleItemLineID, customerID, serviceTypeID id.ID, serviceName string, createdBy id.ID) *Task {
	now := time.Now()
	return &Task{
		ID:             id.New(),
		SaleID:         saleID,
		SaleItemLineID: saleItemLineID,
		CustomerID:     customerID,
		ServiceTypeID:  serviceTypeID,
		ServiceName:    serviceName,
		Status:         StatusPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate implements entity.Validatable.
func (t *Task) Validate(ctx context.Context) error {
	if id.IsNil(t.SaleID) {
		return apperror.NewValidation("sale is required").WithDetail("field", "saleId")
	}
	if t.ServiceName == "" {
		return apperror.NewValidation("service name is required").WithDetail("field", "serviceName")
	}
	return nil
}

// Start moves the task to in_progress for the given master.
func (t *Task) Start(assigneeID id.ID) error {
	if t.Status != StatusPending {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only pending tasks can be started").
			WithDetail("task_id", t.ID.String()).
			WithDetail("status", string(t.Status))
	}
	now := time.Now()
	t.Status = StatusInProgress
	t.AssigneeID = &assigneeID
	t.StartedAt = &now
	t.UpdatedAt = now
	return nil
}

// Complete finishes the task.
func (t *Task) Complete() error {
	if t.Status != StatusInProgress {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only in-progress tasks can be completed").
			WithDetail("task_id", t.ID.String()).
			WithDetail("status", string(t.Status))
	}
	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// Cancel voids the task. Completed work is never cancelled.
func (t *Task) Cancel() error {
	if t.Status == StatusCompleted {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "completed tasks cannot be cancelled").
			WithDetail("task_id", t.ID.String())
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// IsFinal reports whether the task reached a terminal state.
func (t *Task) IsFinal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}
