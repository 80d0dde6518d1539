package entity

import "time"

type Announcement struct {
	ID          int64     `json:"announcement_id"`
	AuthorID    int64     `json:"author_id" validate:"required,gt=0"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description"`
	RoleID      *int64    `json:"role_id"`
	Timestamp   time.Time `json:"timestamp"`
}
