package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// CreditXP adds experience to a user's account and records the ledger
// entry in one transaction. Returns the new balance.
func (s *Store) CreditXP(ctx context.Context, userID string, amount int64, reason, refType, refID string) (int64, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT balance_xp FROM xp_accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO xp_accounts (user_id, balance_xp, updated_at) VALUES ($1, 0, now())`, userID); err != nil {
			return 0, err
		}
	}
	balance += amount
	if _, err := tx.Exec(ctx,
		`UPDATE xp_accounts SET balance_xp = $2, updated_at = now() WHERE user_id = $1`, userID, balance); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO xp_entries (id, user_id, amount_xp, reason, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), userID, amount, reason, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *Store) GetXPAccount(ctx context.Context, userID string) (*XPAccount, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT user_id, balance_xp, updated_at FROM xp_accounts WHERE user_id = $1`, userID)
	var a XPAccount
	if err := row.Scan(&a.UserID, &a.BalanceXP, &a.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

type XPFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

func (s *Store) ListXPEntries(ctx context.Context, f XPFilter, limit, offset int) ([]XPEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, user_id, amount_xp, reason, ref_type, ref_id, created_at
		 FROM xp_entries
		 WHERE ($1 = '' OR user_id = $1)
		   AND ($2::timestamptz IS NULL OR created_at >= $2)
		   AND ($3::timestamptz IS NULL OR created_at <= $3)
		 ORDER BY created_at DESC
		 LIMIT $4 OFFSET $5`, f.UserID, f.From, f.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []XPEntry{}
	for rows.Next() {
		var e XPEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountXP, &e.Reason, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListXPLeaderboard returns accounts ordered by lifetime balance.
func (s *Store) ListXPLeaderboard(ctx context.Context, limit int) ([]XPAccount, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT user_id, balance_xp, updated_at FROM xp_accounts ORDER BY balance_xp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []XPAccount{}
	for rows.Next() {
		var a XPAccount
		if err := rows.Scan(&a.UserID, &a.BalanceXP, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
