package entity

import (
	"time"

	"github.com/oapi-codegen/runtime/types"
)

type Task struct {
	ID              int64      `json:"task_id"`
	Title           string     `json:"title" validate:"required,max=255"`
	Description     string     `json:"description"`
	AuthorID        int64      `json:"author_id" validate:"required,gt=0"`
	SectionID       int64      `json:"section_id" validate:"required,gt=0"`
	DueDate         types.Date `json:"due_date"`
	Complete        bool       `json:"complete"`
	RecurringTaskID *int64     `json:"recurring_task_id"`
	Timestamp       time.Time  `json:"timestamp"`
}

// RecurringTask is a weekly template; each set weekday flag yields one task
// per matching day between StartDate and EndDate.
type RecurringTask struct {
	ID          int64       `json:"recurring_task_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	AuthorID    int64       `json:"author_id"`
	SectionID   int64       `json:"section_id"`
	Mon         bool        `json:"mon"`
	Tue         bool        `json:"tue"`
	Wed         bool        `json:"wed"`
	Thu         bool        `json:"thu"`
	Fri         bool        `json:"fri"`
	Sat         bool        `json:"sat"`
	Sun         bool        `json:"sun"`
	StartDate   types.Date  `json:"start_date"`
	EndDate     *types.Date `json:"end_date"`
}

type MaterializeResult struct {
	Date    types.Date `json:"date"`
	Created []int64    `json:"created_task_ids"`
}
