package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/db"
)

// SQLitePlanRepo implements PlanRepo using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

func (r *SQLitePlanRepo) Create(ctx context.Context, title string) (int64, error) {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (title, created_at, updated_at) VALUES (?, ?, ?)`, title, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting plan: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLitePlanRepo) Load(ctx context.Context, planID int64) (*contract.PlanPayload, error) {
	p := &contract.PlanPayload{PlanID: planID, Areas: []contract.AreaPayload{}}
	err := r.db.QueryRowContext(ctx, `SELECT title FROM plans WHERE id = ?`, planID).Scan(&p.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}

	areaIdx := map[int64]int{}
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, objective FROM areas
		WHERE plan_id = ? AND deleted_at IS NULL ORDER BY order_index, id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing areas: %w", err)
	}
	err = eachRow(rows, "area", func(rows *sql.Rows) error {
		var id int64
		a := contract.AreaPayload{Strategies: []contract.StrategyPayload{}}
		if err := rows.Scan(&id, &a.Name, &a.Objective); err != nil {
			return err
		}
		a.ID = idPtr(id)
		areaIdx[id] = len(p.Areas)
		p.Areas = append(p.Areas, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	type slot struct{ area, strategy int }
	strategyIdx := map[int64]slot{}
	rows, err = r.db.QueryContext(ctx, `SELECT s.id, s.area_id, s.description, s.completion_pct,
		s.assigned_budget, s.executed_budget
		FROM strategies s JOIN areas a ON a.id = s.area_id
		WHERE a.plan_id = ? AND a.deleted_at IS NULL AND s.deleted_at IS NULL
		ORDER BY s.order_index, s.id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing strategies: %w", err)
	}
	err = eachRow(rows, "strategy", func(rows *sql.Rows) error {
		var id, areaID int64
		s := contract.StrategyPayload{Interventions: []contract.InterventionPayload{}}
		if err := rows.Scan(&id, &areaID, &s.Description, &s.CompletionPct,
			&s.AssignedBudget, &s.ExecutedBudget); err != nil {
			return err
		}
		s.ID = idPtr(id)
		ai := areaIdx[areaID]
		strategyIdx[id] = slot{ai, len(p.Areas[ai].Strategies)}
		p.Areas[ai].Strategies = append(p.Areas[ai].Strategies, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT i.id, i.strategy_id, i.name
		FROM interventions i
		JOIN strategies s ON s.id = i.strategy_id
		JOIN areas a ON a.id = s.area_id
		WHERE a.plan_id = ? AND a.deleted_at IS NULL AND s.deleted_at IS NULL AND i.deleted_at IS NULL
		ORDER BY i.order_index, i.id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing interventions: %w", err)
	}
	err = eachRow(rows, "intervention", func(rows *sql.Rows) error {
		var id, strategyID int64
		var in contract.InterventionPayload
		if err := rows.Scan(&id, &strategyID, &in.Name); err != nil {
			return err
		}
		in.ID = idPtr(id)
		at := strategyIdx[strategyID]
		s := &p.Areas[at.area].Strategies[at.strategy]
		s.Interventions = append(s.Interventions, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLitePlanRepo) Save(ctx context.Context, p contract.PlanPayload) (int64, error) {
	planID := p.PlanID
	if planID == 0 {
		id, err := r.Create(ctx, p.Title)
		if err != nil {
			return 0, err
		}
		planID = id
	} else {
		res, err := r.db.ExecContext(ctx,
			`UPDATE plans SET title = COALESCE(NULLIF(?, ''), title), updated_at = ? WHERE id = ?`,
			p.Title, nowUTC(), planID)
		if err != nil {
			return 0, fmt.Errorf("updating plan: %w", err)
		}
		if err := requireAffected(res, "plan", planID); err != nil {
			return 0, err
		}
	}

	for i, a := range p.Areas {
		areaID, live, err := r.saveArea(ctx, planID, i, a)
		if err != nil {
			return 0, err
		}
		for j, s := range a.Strategies {
			strategyID, strategyLive, err := r.saveStrategy(ctx, areaID, live, j, s)
			if err != nil {
				return 0, err
			}
			for k, in := range s.Interventions {
				if err := r.saveIntervention(ctx, strategyID, strategyLive, k, in); err != nil {
					return 0, err
				}
			}
		}
	}
	return planID, nil
}

// saveArea returns the stored ID and whether the area is still live.
// Children of a deleted area are deleted with it.
func (r *SQLitePlanRepo) saveArea(ctx context.Context, planID int64, order int, a contract.AreaPayload) (int64, bool, error) {
	switch {
	case a.IsDeleted && a.ID == nil:
		return 0, false, nil
	case a.IsDeleted:
		res, err := r.db.ExecContext(ctx, `UPDATE areas SET deleted_at = COALESCE(deleted_at, ?)
			WHERE id = ? AND plan_id = ?`, nowUTC(), *a.ID, planID)
		if err != nil {
			return 0, false, fmt.Errorf("deleting area: %w", err)
		}
		return *a.ID, false, requireAffected(res, "area", *a.ID)
	case a.ID == nil:
		res, err := r.db.ExecContext(ctx, `INSERT INTO areas (plan_id, name, objective, order_index)
			VALUES (?, ?, ?, ?)`, planID, a.Name, a.Objective, order)
		if err != nil {
			return 0, false, fmt.Errorf("inserting area: %w", err)
		}
		id, err := res.LastInsertId()
		return id, true, err
	default:
		res, err := r.db.ExecContext(ctx, `UPDATE areas SET name = ?, objective = ?, order_index = ?
			WHERE id = ? AND plan_id = ? AND deleted_at IS NULL`, a.Name, a.Objective, order, *a.ID, planID)
		if err != nil {
			return 0, false, fmt.Errorf("updating area: %w", err)
		}
		return *a.ID, true, requireAffected(res, "area", *a.ID)
	}
}

func (r *SQLitePlanRepo) saveStrategy(ctx context.Context, areaID int64, areaLive bool, order int, s contract.StrategyPayload) (int64, bool, error) {
	switch {
	case s.ID == nil && (s.IsDeleted || !areaLive):
		return 0, false, nil
	case s.IsDeleted || !areaLive:
		res, err := r.db.ExecContext(ctx, `UPDATE strategies SET deleted_at = COALESCE(deleted_at, ?)
			WHERE id = ? AND area_id = ?`, nowUTC(), *s.ID, areaID)
		if err != nil {
			return 0, false, fmt.Errorf("deleting strategy: %w", err)
		}
		return *s.ID, false, requireAffected(res, "strategy", *s.ID)
	case s.ID == nil:
		res, err := r.db.ExecContext(ctx, `INSERT INTO strategies
			(area_id, description, completion_pct, assigned_budget, executed_budget, order_index)
			VALUES (?, ?, ?, ?, ?, ?)`,
			areaID, s.Description, s.CompletionPct, s.AssignedBudget, s.ExecutedBudget, order)
		if err != nil {
			return 0, false, fmt.Errorf("inserting strategy: %w", err)
		}
		id, err := res.LastInsertId()
		return id, true, err
	default:
		res, err := r.db.ExecContext(ctx, `UPDATE strategies SET description = ?, completion_pct = ?,
			assigned_budget = ?, executed_budget = ?, order_index = ?
			WHERE id = ? AND area_id = ? AND deleted_at IS NULL`,
			s.Description, s.CompletionPct, s.AssignedBudget, s.ExecutedBudget, order, *s.ID, areaID)
		if err != nil {
			return 0, false, fmt.Errorf("updating strategy: %w", err)
		}
		return *s.ID, true, requireAffected(res, "strategy", *s.ID)
	}
}

func (r *SQLitePlanRepo) saveIntervention(ctx context.Context, strategyID int64, strategyLive bool, order int, in contract.InterventionPayload) error {
	switch {
	case in.ID == nil && (in.IsDeleted || !strategyLive):
		return nil
	case in.IsDeleted || !strategyLive:
		res, err := r.db.ExecContext(ctx, `UPDATE interventions SET deleted_at = COALESCE(deleted_at, ?)
			WHERE id = ? AND strategy_id = ?`, nowUTC(), *in.ID, strategyID)
		if err != nil {
			return fmt.Errorf("deleting intervention: %w", err)
		}
		return requireAffected(res, "intervention", *in.ID)
	case in.ID == nil:
		_, err := r.db.ExecContext(ctx, `INSERT INTO interventions (strategy_id, name, order_index)
			VALUES (?, ?, ?)`, strategyID, in.Name, order)
		if err != nil {
			return fmt.Errorf("inserting intervention: %w", err)
		}
		return nil
	default:
		res, err := r.db.ExecContext(ctx, `UPDATE interventions SET name = ?, order_index = ?
			WHERE id = ? AND strategy_id = ? AND deleted_at IS NULL`, in.Name, order, *in.ID, strategyID)
		if err != nil {
			return fmt.Errorf("updating intervention: %w", err)
		}
		return requireAffected(res, "intervention", *in.ID)
	}
}

func (r *SQLitePlanRepo) List(ctx context.Context) ([]contract.PlanSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.id, p.title,
		(SELECT COUNT(*) FROM areas a WHERE a.plan_id = p.id AND a.deleted_at IS NULL)
		FROM plans p ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	var out []contract.PlanSummary
	err = eachRow(rows, "plan", func(rows *sql.Rows) error {
		var s contract.PlanSummary
		if err := rows.Scan(&s.PlanID, &s.Title, &s.AreaCount); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func (r *SQLitePlanRepo) Delete(ctx context.Context, planID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, planID)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return requireAffected(res, "plan", planID)
}

// eachRow scans every row with fn and closes rows.
func eachRow(rows *sql.Rows, what string, fn func(*sql.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("scanning %s row: %w", what, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s rows: %w", what, err)
	}
	return nil
}
