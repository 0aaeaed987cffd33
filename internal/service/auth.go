package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/launchpanel/hub/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	db          *sql.DB
	tokenExpiry time.Duration
}

func NewAuthService(db *sql.DB, tokenExpiryHours int) *AuthService {
	return &AuthService{
		db:          db,
		tokenExpiry: time.Duration(tokenExpiryHours) * time.Hour,
	}
}

// EnsureBootstrapAdmin creates the initial operator account from env config
// when no operator exists yet. A blank password skips bootstrap.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&count); err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operators (operator_id, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), email, "Admin", string(hash),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	return nil
}

// Login verifies credentials and issues a bearer token. Only the sha256 of
// the token is stored.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Operator, error) {
	var op model.Operator
	var passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT operator_id, email, display_name, password_hash
		FROM operators WHERE email = ?`, email).
		Scan(&op.OperatorID, &op.Email, &op.DisplayName, &passwordHash)
	if err == sql.ErrNoRows {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(raw)
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (token_hash, operator_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		hashToken(token), op.OperatorID,
		now.Add(s.tokenExpiry).Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano))
	if err != nil {
		return "", nil, fmt.Errorf("store token: %w", err)
	}
	return token, &op, nil
}

// ValidateToken resolves a bearer token to its operator, rejecting unknown
// and expired tokens.
func (s *AuthService) ValidateToken(token string) (*model.Operator, error) {
	var op model.Operator
	var expiresAt string
	err := s.db.QueryRow(`
		SELECT o.operator_id, o.email, o.display_name, t.expires_at
		FROM auth_tokens t
		JOIN operators o ON o.operator_id = t.operator_id
		WHERE t.token_hash = ?`, hashToken(token)).
		Scan(&op.OperatorID, &op.Email, &op.DisplayName, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("unknown token")
	}
	if err != nil {
		return nil, err
	}

	exp, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil || time.Now().UTC().After(exp) {
		return nil, fmt.Errorf("token expired")
	}
	return &op, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE token_hash = ?`, hashToken(token))
	return err
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
