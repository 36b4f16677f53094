package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/takallem/takallem/internal/course"
)

// snapshotRepo implements SnapshotRepo on the progress_snapshots table.
type snapshotRepo struct {
	db  *sql.DB
	seq *historySequence
}

func (r *snapshotRepo) Save(ctx context.Context, userID int, p course.CourseProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := sqlite.Insert(ProgressSnapshotsTable.Name).
		Columns("sequence", "timestamp", "user_id", "course_name", "data").
		Values(seqNum, time.Now().UTC(), userID, string(p.CourseName), string(data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID int, name course.CourseName) (*Snapshot, error) {
	t := sqlite.Table(ProgressSnapshotsTable.Name)
	query, args := snapshotColumns(t).
		Where(entsql.And(
			entsql.EQ(t.C("user_id"), userID),
			entsql.EQ(t.C("course_name"), string(name)),
		)).
		OrderBy(entsql.Desc(t.C("sequence"))).
		Limit(1).
		Query()

	snaps, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (r *snapshotRepo) LatestPerCourse(ctx context.Context, userID int) ([]*Snapshot, error) {
	t := sqlite.Table(ProgressSnapshotsTable.Name)
	query, args := snapshotColumns(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(entsql.Desc(t.C("sequence"))).
		Query()

	snaps, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	seen := make(map[course.CourseName]bool)
	var latest []*Snapshot
	for _, s := range snaps {
		if seen[s.Progress.CourseName] {
			continue
		}
		seen[s.Progress.CourseName] = true
		latest = append(latest, s)
	}
	sort.Slice(latest, func(i, j int) bool {
		return latest[i].Progress.CourseName < latest[j].Progress.CourseName
	})
	return latest, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	// Find the sequence threshold: the Nth most recent snapshot.
	t := sqlite.Table(ProgressSnapshotsTable.Name)
	query, args := sqlite.Select(t.C("sequence")).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence"))).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = sqlite.Delete(ProgressSnapshotsTable.Name).
		Where(entsql.LTE("sequence", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func snapshotColumns(t *entsql.SelectTable) *entsql.Selector {
	return sqlite.Select(t.C("id"), t.C("sequence"), t.C("timestamp"), t.C("user_id"), t.C("data")).From(t)
}

func (r *snapshotRepo) query(ctx context.Context, query string, args []any) ([]*Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		var (
			s    Snapshot
			data []byte
		)
		if err := rows.Scan(&s.ID, &s.Sequence, &s.Timestamp, &s.UserID, &data); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &s.Progress); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
		}
		snaps = append(snaps, &s)
	}
	return snaps, rows.Err()
}
