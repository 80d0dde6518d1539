package controllers

import (
	"context"
	"log/slog"

	"github.com/adamanr/shift_service/internal/entity"
)

const (
	releaseTokenSQL = `DELETE FROM push_token WHERE expo_push_token = $1 AND user_id <> $2`

	insertTokenSQL = `INSERT INTO push_token (user_id, expo_push_token) VALUES ($1, $2)
		ON CONFLICT (user_id, expo_push_token) DO NOTHING`

	deleteTokenSQL = `DELETE FROM push_token WHERE user_id = $1 AND expo_push_token = $2`
)

type PushTokenController struct {
	deps *Dependens
}

func NewPushTokenController(deps *Dependens) *PushTokenController {
	return &PushTokenController{
		deps: deps,
	}
}

// Register binds a device token to a user. A device that was registered
// under another user is moved to this one.
func (c *PushTokenController) Register(ctx context.Context, token entity.PushToken) error {
	if err := c.deps.validateStruct(token); err != nil {
		c.deps.Logger.Warn("Invalid push token", slog.String("error", err.Error()))
		return err
	}

	tx, err := c.deps.DB.Begin(ctx)
	if err != nil {
		c.deps.Logger.Error("Error begin transaction", slog.String("error", err.Error()))
		return storeError("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	released, err := tx.Exec(ctx, releaseTokenSQL, token.ExpoPushToken, token.UserID)
	if err != nil {
		c.deps.Logger.Error("Error release push token", slog.String("error", err.Error()))
		return storeError("release push token", err)
	}

	if _, err := tx.Exec(ctx, insertTokenSQL, token.UserID, token.ExpoPushToken); err != nil {
		c.deps.Logger.Error("Error inserting push token", slog.String("error", err.Error()))
		return storeError("insert push token", err)
	}

	if err := tx.Commit(ctx); err != nil {
		c.deps.Logger.Error("Error commit push token", slog.String("error", err.Error()))
		return storeError("commit", err)
	}

	if released.RowsAffected() > 0 {
		c.deps.Logger.Info("Push token moved to new user", slog.Int64("user_id", token.UserID))
	}

	return nil
}

// Unregister removes the binding. Removing a binding that does not exist
// is not an error.
func (c *PushTokenController) Unregister(ctx context.Context, token entity.PushToken) error {
	if err := c.deps.validateStruct(token); err != nil {
		c.deps.Logger.Warn("Invalid push token", slog.String("error", err.Error()))
		return err
	}

	result, err := c.deps.DB.Exec(ctx, deleteTokenSQL, token.UserID, token.ExpoPushToken)
	if err != nil {
		c.deps.Logger.Error("Error deleting push token", slog.String("error", err.Error()))
		return storeError("delete push token", err)
	}

	if result.RowsAffected() == 0 {
		c.deps.Logger.Debug("Push token was not registered", slog.Int64("user_id", token.UserID))
	}

	return nil
}
