package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore remembers the response of a keyed request per user and
// endpoint. Records older than ttl no longer replay and may be reused.
type IdempotencyStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(db *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{db: db, ttl: ttl, now: time.Now}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) cutoff() time.Time {
	return s.now().Add(-s.ttl)
}

// Check returns the stored response for a replayed key. A live key reused
// with a different payload is a conflict.
func (s *IdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored []byte
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND endpoint = $2 AND key = $3 AND created_at > $4
  `, userID, endpoint, key, s.cutoff()).Scan(&storedHash, &stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case storedHash != requestHash:
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

// Save records the response. An expired record under the same key is
// replaced; a live one with another payload is a conflict.
func (s *IdempotencyStore) Save(ctx context.Context, userID, endpoint, key, requestHash string, response []byte) error {
	if s == nil || s.db == nil {
		return nil
	}
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, endpoint, key, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (user_id, key, endpoint) DO UPDATE
    SET request_hash = EXCLUDED.request_hash,
        response_json = EXCLUDED.response_json,
        created_at = now()
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
       OR idempotency_keys.created_at <= $6
  `, userID, endpoint, key, requestHash, response, s.cutoff())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

func (s *IdempotencyStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
