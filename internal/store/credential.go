package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds dialect-aware statements for the store's tables.
var sqlite = entsql.Dialect(dialect.SQLite)

// credentialRow is the id of the only row in the credentials table.
const credentialRow = 1

// credentialRepo implements CredentialRepo with a single upserted row.
type credentialRepo struct {
	db *sql.DB
}

func (r *credentialRepo) Save(ctx context.Context, c Credentials) error {
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now()
	}
	query, args := sqlite.Insert(CredentialsTable.Name).
		Columns("id", "server_url", "email", "user_id", "token", "saved_at").
		Values(credentialRow, c.ServerURL, c.Email, c.UserID, c.Token, c.SavedAt.UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (r *credentialRepo) Load(ctx context.Context) (*Credentials, error) {
	t := sqlite.Table(CredentialsTable.Name)
	query, args := sqlite.Select(t.C("server_url"), t.C("email"), t.C("user_id"), t.C("token"), t.C("saved_at")).
		From(t).
		Where(entsql.EQ(t.C("id"), credentialRow)).
		Query()

	var c Credentials
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&c.ServerURL, &c.Email, &c.UserID, &c.Token, &c.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return &c, nil
}

func (r *credentialRepo) Delete(ctx context.Context) error {
	query, args := sqlite.Delete(CredentialsTable.Name).
		Where(entsql.EQ("id", credentialRow)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
