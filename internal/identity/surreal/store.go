package surreal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/editorimages/internal/database"
	"github.com/surrealdb/surrealdb.go"
)

// errAccountExists is returned by AccountStore.Create for a taken email.
var errAccountExists = errors.New("account already exists")

// Account is a row of the account table.
type Account struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	EmailVerified bool      `json:"email_verified"`
	VerifyToken   string    `json:"verify_token,omitempty"`
	VerifyExpires time.Time `json:"verify_expires,omitempty"`
}

// AccountStore persists accounts.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUID(ctx context.Context, uid string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	SetVerifyToken(ctx context.Context, uid, token string, expires time.Time) error
	// ConfirmToken marks the account holding an unexpired token as verified
	// and clears the token. It returns nil when no account matches.
	ConfirmToken(ctx context.Context, token string, now time.Time) (*Account, error)
}

// normalizeEmail is the form emails are stored and looked up in, so
// addresses differing only in case belong to one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const accountFields = "uid, email, password_hash, email_verified, verify_token, verify_expires"

// SurrealAccountStore is an AccountStore on SurrealDB.
type SurrealAccountStore struct {
	db *surrealdb.DB
}

// NewSurrealAccountStore creates a store on an open connection.
func NewSurrealAccountStore(db *surrealdb.DB) *SurrealAccountStore {
	return &SurrealAccountStore{db: db}
}

func (s *SurrealAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := "SELECT " + accountFields + " FROM account WHERE email = $email"
	account, err := database.QueryOne[Account](ctx, s.db, query, map[string]any{"email": normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return account, nil
}

func (s *SurrealAccountStore) FindByUID(ctx context.Context, uid string) (*Account, error) {
	query := "SELECT " + accountFields + " FROM account WHERE uid = $uid"
	account, err := database.QueryOne[Account](ctx, s.db, query, map[string]any{"uid": uid})
	if err != nil {
		return nil, fmt.Errorf("failed to find account by uid: %w", err)
	}
	return account, nil
}

func (s *SurrealAccountStore) Create(ctx context.Context, account *Account) error {
	query := `CREATE account SET uid = $uid, email = $email, password_hash = $password_hash,
		email_verified = false, created_at = time::now()`
	err := database.Execute(ctx, s.db, query, map[string]any{
		"uid":           account.UID,
		"email":         normalizeEmail(account.Email),
		"password_hash": account.PasswordHash,
	})
	// The unique index on email reports duplicates as "already contains".
	if err != nil && (strings.Contains(err.Error(), "already contains") || strings.Contains(err.Error(), "already exists")) {
		return errAccountExists
	}
	return err
}

func (s *SurrealAccountStore) SetVerifyToken(ctx context.Context, uid, token string, expires time.Time) error {
	query := "UPDATE account SET verify_token = $token, verify_expires = $expires WHERE uid = $uid"
	return database.Execute(ctx, s.db, query, map[string]any{
		"uid":     uid,
		"token":   token,
		"expires": expires,
	})
}

func (s *SurrealAccountStore) ConfirmToken(ctx context.Context, token string, now time.Time) (*Account, error) {
	query := `UPDATE account SET email_verified = true, verify_token = NONE, verify_expires = NONE
		WHERE verify_token = $token AND verify_expires > $now RETURN ` + accountFields
	account, err := database.QueryOne[Account](ctx, s.db, query, map[string]any{"token": token, "now": now})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm token: %w", err)
	}
	return account, nil
}
