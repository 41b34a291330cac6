package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"hospitalhr/internal/platform/db"
)

var (
	ErrConflict   = errors.New("idempotency key conflicts with existing request")
	ErrInProgress = errors.New("idempotency key has no stored response yet")
)

// Scope identifies who sent a keyed request and where.
type Scope struct {
	TenantID string
	UserID   string
	Endpoint string
	Key      string
}

type Store struct {
	db db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{db: q}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Claim reserves scope for the calling transaction. Run it inside the
// transaction that performs the keyed write: a concurrent claim of the same
// key blocks on the row until that transaction ends. When the key is already
// taken the stored response is returned with replay set; a stored key whose
// request hash differs yields ErrConflict.
func (s *Store) Claim(ctx context.Context, scope Scope, requestHash string) (stored json.RawMessage, replay bool, err error) {
	if s == nil || s.db == nil || scope.Key == "" {
		return nil, false, nil
	}
	q := db.From(ctx, s.db)
	tag, err := q.Exec(ctx, `
    INSERT INTO idempotency_keys (tenant_id, user_id, key, endpoint, request_hash)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (tenant_id, user_id, key, endpoint) DO NOTHING
  `, scope.TenantID, scope.UserID, scope.Key, scope.Endpoint, requestHash)
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return nil, false, nil
	}

	var (
		storedHash string
		response   []byte
	)
	err = q.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE tenant_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4
    FOR UPDATE
  `, scope.TenantID, scope.UserID, scope.Key, scope.Endpoint).Scan(&storedHash, &response)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrInProgress
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrConflict
	}
	if len(response) == 0 {
		return nil, false, ErrInProgress
	}
	return response, true, nil
}

// Complete stores the response of a claimed key.
func (s *Store) Complete(ctx context.Context, scope Scope, response json.RawMessage) error {
	if s == nil || s.db == nil || scope.Key == "" {
		return nil
	}
	tag, err := db.From(ctx, s.db).Exec(ctx, `
    UPDATE idempotency_keys
    SET response_json = $5
    WHERE tenant_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4 AND response_json IS NULL
  `, scope.TenantID, scope.UserID, scope.Key, scope.Endpoint, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
