package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by the request_events table and the
// global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *historySequence
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := sqlite.Insert(RequestEventsTable.Name).
		Columns("sequence", "timestamp", "method", "route", "status", "latency_ms",
			"success", "error_message", "idempotency_key").
		Values(seqNum, time.Now().UTC(), data.Method, data.Route, data.Status, data.LatencyMs,
			data.Success, data.ErrorMessage, data.IdempotencyKey).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	t := sqlite.Table(RequestEventsTable.Name)
	sel := sqlite.Select(t.C("id"), t.C("sequence"), t.C("timestamp"), t.C("method"), t.C("route"),
		t.C("status"), t.C("latency_ms"), t.C("success"), t.C("error_message"), t.C("idempotency_key")).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		var e RequestEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Method, &e.Route,
			&e.Status, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
