package controllers

import (
	"context"
	"log/slog"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/adamanr/shift_service/internal/notifications"
)

const insertAnnouncementSQL = `INSERT INTO announcement (author_id, title, description, role_id)
	VALUES ($1, $2, $3, $4)
	RETURNING announcement_id, timestamp`

type AnnouncementController struct {
	deps *Dependens
}

func NewAnnouncementController(deps *Dependens) *AnnouncementController {
	return &AnnouncementController{
		deps: deps,
	}
}

// Create stores the announcement and notifies its role, or everyone when no
// role is set.
func (c *AnnouncementController) Create(ctx context.Context, a entity.Announcement) (*entity.Announcement, error) {
	if err := c.deps.validateStruct(a); err != nil {
		c.deps.Logger.Warn("Invalid announcement", slog.String("error", err.Error()))
		return nil, err
	}
	if a.RoleID != nil {
		if err := requirePositiveID("role_id", *a.RoleID); err != nil {
			return nil, err
		}
	}

	if err := c.deps.DB.QueryRow(ctx, insertAnnouncementSQL, a.AuthorID, a.Title, a.Description, a.RoleID).Scan(&a.ID, &a.Timestamp); err != nil {
		c.deps.Logger.Error("Error inserting announcement", slog.String("error", err.Error()))
		return nil, storeError("insert announcement", err)
	}

	c.deps.Notifier.Dispatch(ctx, notifications.AnnouncementCreated{
		AnnouncementID: a.ID,
		RoleID:         a.RoleID,
		Title:          a.Title,
	})

	return &a, nil
}
