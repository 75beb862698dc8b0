package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/db"
	"github.com/alexanderramin/planner/internal/domain"
)

const (
	kindInstitutional = "institutional"
	kindContribution  = "contribution"
)

// SQLiteEventRepo implements EventRepo using a SQLite database.
type SQLiteEventRepo struct {
	db db.DBTX
}

// NewSQLiteEventRepo creates a new SQLiteEventRepo.
func NewSQLiteEventRepo(conn db.DBTX) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: conn}
}

func (r *SQLiteEventRepo) Load(ctx context.Context, eventID int64) (*contract.EventPayload, error) {
	p := &contract.EventPayload{
		ID:            idPtr(eventID),
		Financing:     []contract.FinancingPayload{},
		Contributions: []contract.FinancingPayload{},
		Dates:         []contract.DatePayload{},
	}
	var interventionID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT plan_id, intervention_id, name, responsible, objective,
		location, start_date, end_date, total_cost FROM events WHERE id = ?`, eventID).Scan(
		&p.PlanID, &interventionID, &p.Name, &p.Responsible, &p.Objective,
		&p.Location, &p.StartDate, &p.EndDate, &p.TotalCost,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	p.InterventionID = parseNullableID(interventionID)

	rows, err := r.db.QueryContext(ctx, `SELECT id, kind, source, amount FROM event_financing
		WHERE event_id = ? ORDER BY order_index, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event financing: %w", err)
	}
	err = eachRow(rows, "financing", func(rows *sql.Rows) error {
		var id int64
		var kind string
		var f contract.FinancingPayload
		if err := rows.Scan(&id, &kind, &f.Source, &f.Amount); err != nil {
			return err
		}
		f.ID = idPtr(id)
		if kind == kindContribution {
			p.Contributions = append(p.Contributions, f)
		} else {
			p.Financing = append(p.Financing, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT id, date, note FROM event_dates
		WHERE event_id = ? ORDER BY order_index, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event dates: %w", err)
	}
	err = eachRow(rows, "date", func(rows *sql.Rows) error {
		var id int64
		var d contract.DatePayload
		if err := rows.Scan(&id, &d.Date, &d.Note); err != nil {
			return err
		}
		d.ID = idPtr(id)
		p.Dates = append(p.Dates, d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT name FROM event_attachments WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event attachments: %w", err)
	}
	err = eachRow(rows, "attachment", func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		p.Attachments = append(p.Attachments, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save inserts or updates the event. Rows listed in the Removed* fields are
// deleted; attachment metadata is appended.
func (r *SQLiteEventRepo) Save(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (int64, error) {
	now := nowUTC()
	var eventID int64
	if p.ID == nil {
		res, err := r.db.ExecContext(ctx, `INSERT INTO events (plan_id, intervention_id, name, responsible,
			objective, location, start_date, end_date, total_cost, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.PlanID, nullableIDToValue(p.InterventionID), p.Name, p.Responsible,
			p.Objective, p.Location, p.StartDate, p.EndDate, p.TotalCost, now, now)
		if err != nil {
			return 0, fmt.Errorf("inserting event: %w", err)
		}
		if eventID, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("reading event id: %w", err)
		}
	} else {
		eventID = *p.ID
		res, err := r.db.ExecContext(ctx, `UPDATE events SET intervention_id = ?, name = ?, responsible = ?,
			objective = ?, location = ?, start_date = ?, end_date = ?, total_cost = ?, updated_at = ?
			WHERE id = ?`,
			nullableIDToValue(p.InterventionID), p.Name, p.Responsible,
			p.Objective, p.Location, p.StartDate, p.EndDate, p.TotalCost, now, eventID)
		if err != nil {
			return 0, fmt.Errorf("updating event: %w", err)
		}
		if err := requireAffected(res, "event", eventID); err != nil {
			return 0, err
		}
	}

	if err := r.deleteRows(ctx, "event_financing", eventID, p.RemovedFinancingIDs); err != nil {
		return 0, err
	}
	if err := r.deleteRows(ctx, "event_financing", eventID, p.RemovedContributionIDs); err != nil {
		return 0, err
	}
	if err := r.deleteRows(ctx, "event_dates", eventID, p.RemovedDateIDs); err != nil {
		return 0, err
	}
	if err := r.saveFinancing(ctx, eventID, kindInstitutional, p.Financing); err != nil {
		return 0, err
	}
	if err := r.saveFinancing(ctx, eventID, kindContribution, p.Contributions); err != nil {
		return 0, err
	}
	if err := r.saveDates(ctx, eventID, p.Dates); err != nil {
		return 0, err
	}
	for _, a := range attachments {
		_, err := r.db.ExecContext(ctx, `INSERT INTO event_attachments (event_id, name, content_type)
			VALUES (?, ?, ?)`, eventID, a.Name, a.ContentType)
		if err != nil {
			return 0, fmt.Errorf("inserting attachment %s: %w", a.Name, err)
		}
	}
	return eventID, nil
}

// deleteRows removes child rows by ID. IDs that are already gone are
// ignored so a retried submit stays idempotent.
func (r *SQLiteEventRepo) deleteRows(ctx context.Context, table string, eventID int64, ids []int64) error {
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE id = ? AND event_id = ?`, id, eventID); err != nil {
			return fmt.Errorf("deleting %s row %d: %w", table, id, err)
		}
	}
	return nil
}

func (r *SQLiteEventRepo) saveFinancing(ctx context.Context, eventID int64, kind string, rows []contract.FinancingPayload) error {
	for i, f := range rows {
		if f.ID == nil {
			_, err := r.db.ExecContext(ctx, `INSERT INTO event_financing (event_id, kind, source, amount, order_index)
				VALUES (?, ?, ?, ?, ?)`, eventID, kind, f.Source, f.Amount, i)
			if err != nil {
				return fmt.Errorf("inserting %s financing: %w", kind, err)
			}
			continue
		}
		res, err := r.db.ExecContext(ctx, `UPDATE event_financing SET source = ?, amount = ?, order_index = ?
			WHERE id = ? AND event_id = ? AND kind = ?`, f.Source, f.Amount, i, *f.ID, eventID, kind)
		if err != nil {
			return fmt.Errorf("updating %s financing: %w", kind, err)
		}
		if err := requireAffected(res, kind+" financing", *f.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteEventRepo) saveDates(ctx context.Context, eventID int64, rows []contract.DatePayload) error {
	for i, d := range rows {
		if d.ID == nil {
			_, err := r.db.ExecContext(ctx, `INSERT INTO event_dates (event_id, date, note, order_index)
				VALUES (?, ?, ?, ?)`, eventID, d.Date, d.Note, i)
			if err != nil {
				return fmt.Errorf("inserting event date: %w", err)
			}
			continue
		}
		res, err := r.db.ExecContext(ctx, `UPDATE event_dates SET date = ?, note = ?, order_index = ?
			WHERE id = ? AND event_id = ?`, d.Date, d.Note, i, *d.ID, eventID)
		if err != nil {
			return fmt.Errorf("updating event date: %w", err)
		}
		if err := requireAffected(res, "event date", *d.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteEventRepo) ListByPlan(ctx context.Context, planID int64) ([]contract.EventSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, start_date, total_cost FROM events
		WHERE plan_id = ? ORDER BY start_date, id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	var out []contract.EventSummary
	err = eachRow(rows, "event", func(rows *sql.Rows) error {
		var s contract.EventSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.TotalCost); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func (r *SQLiteEventRepo) Delete(ctx context.Context, eventID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return requireAffected(res, "event", eventID)
}
