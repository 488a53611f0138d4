package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Workflow operations only move
// it forward along New -> Taken -> Submitted -> {Approved, Rejected}; the
// administrative overwrite is the single path out of a terminal state.
type TaskStatus string

const (
	StatusNew       TaskStatus = "New"
	StatusTaken     TaskStatus = "Taken"
	StatusSubmitted TaskStatus = "Submitted"
	StatusApproved  TaskStatus = "Approved"
	StatusRejected  TaskStatus = "Rejected"
)

// ParseTaskStatus maps free text to a TaskStatus, case-insensitively.
// Unrecognized input is an error, never a default status.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew, nil
	case "taken":
		return StatusTaken, nil
	case "submitted":
		return StatusSubmitted, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Reward      int        `gorm:"not null" json:"reward"`
	Status      TaskStatus `gorm:"size:20;not null;default:'New';index" json:"status"`
	TakenByID   *uint      `gorm:"column:taken_by_id" json:"taken_by_id"`
	TakenBy     *User      `gorm:"foreignKey:TakenByID;constraint:OnDelete:SET NULL" json:"taken_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
