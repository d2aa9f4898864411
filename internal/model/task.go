package model

import "time"

// Task priorities. The set is open: the column accepts any short string,
// these are the values the clients send.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a user-owned work item.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"type:char(36);not null;index"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description" gorm:"size:1000"`
	Priority    string     `json:"priority" gorm:"size:20;not null;default:'medium'"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
