package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adamanr/shift_service/internal/push"
	"github.com/jackc/pgx/v5"
)

type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Resolver maps notification audiences onto the push tokens of active
// employees.
type Resolver struct {
	db     Querier
	logger *slog.Logger
}

func NewResolver(db Querier, logger *slog.Logger) *Resolver {
	return &Resolver{db: db, logger: logger}
}

const employeeTokensSQL = `
	SELECT DISTINCT pt.expo_push_token
	FROM push_token pt
	JOIN employee e ON e.employee_id = pt.user_id
	WHERE pt.user_id = $1 AND e.is_active = TRUE AND pt.expo_push_token <> ''`

const managerTokensSQL = `
	SELECT DISTINCT pt.expo_push_token
	FROM push_token pt
	JOIN employee e ON e.employee_id = pt.user_id
	WHERE e.admin = TRUE AND e.is_active = TRUE AND pt.expo_push_token <> ''`

const activeTokensSQL = `
	SELECT DISTINCT pt.expo_push_token
	FROM push_token pt
	JOIN employee e ON e.employee_id = pt.user_id
	WHERE e.is_active = TRUE AND pt.expo_push_token <> ''`

const roleTokensSQL = activeTokensSQL + ` AND e.primary_role = $1`

const taskSectionSQL = `SELECT section_id, complete FROM task WHERE task_id = $1`

const onDutyTokensSQL = `
	SELECT DISTINCT pt.expo_push_token
	FROM shift s
	JOIN employee e ON e.employee_id = s.employee_id
	JOIN push_token pt ON pt.user_id = e.employee_id
	WHERE s.date = CURRENT_DATE AND s.section_id = $1 AND e.is_active = TRUE AND pt.expo_push_token <> ''`

func (r *Resolver) EmployeeTokens(ctx context.Context, employeeID int64) ([]string, error) {
	return r.tokens(ctx, "employee", employeeTokensSQL, employeeID)
}

func (r *Resolver) ManagerTokens(ctx context.Context) ([]string, error) {
	return r.tokens(ctx, "managers", managerTokensSQL)
}

// RoleTokens targets employees whose primary role is roleID, or every active
// employee when roleID is nil.
func (r *Resolver) RoleTokens(ctx context.Context, roleID *int64) ([]string, error) {
	if roleID == nil {
		return r.tokens(ctx, "all", activeTokensSQL)
	}

	return r.tokens(ctx, "role", roleTokensSQL, *roleID)
}

// OnDutyTokens targets employees with a shift today in the task's section.
// A missing or completed task has no audience.
func (r *Resolver) OnDutyTokens(ctx context.Context, taskID int64) ([]string, error) {
	var (
		sectionID int64
		complete  bool
	)

	err := r.db.QueryRow(ctx, taskSectionSQL, taskID).Scan(&sectionID, &complete)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Warn("Task not found for notification", slog.Int64("task_id", taskID))
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Error get task section", slog.Int64("task_id", taskID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("get task %d: %w", taskID, err)
	}

	if complete {
		return nil, nil
	}

	return r.tokens(ctx, "on_duty", onDutyTokensSQL, sectionID)
}

func (r *Resolver) tokens(ctx context.Context, audience, sql string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("Error query push tokens", slog.String("audience", audience), slog.String("error", err.Error()))
		return nil, fmt.Errorf("resolve %s tokens: %w", audience, err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			r.logger.Error("Error scan push token", slog.String("audience", audience), slog.String("error", err.Error()))
			return nil, fmt.Errorf("resolve %s tokens: %w", audience, err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve %s tokens: %w", audience, err)
	}

	return push.Compact(tokens), nil
}
