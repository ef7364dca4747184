package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type tags carried in the "type" claim.  A token is only accepted by
// the verifier for its own type, so a session token can never be replayed as
// an activation token and vice versa.
const (
	TypeSession     = "session"
	TypeEmailVerify = "email_verify"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong algorithm, expired, malformed or of the wrong type.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the claim set shared by both token kinds.  Subject holds the
// user's email.  Role is empty on activation tokens.
type Claims struct {
	Type string `json:"type"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionToken represents a signed session token along with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti, used by the optional revocation list
	Exp   time.Time // the UTC expiration time
}

// Session is the verified content of a session token.
type Session struct {
	Email string
	Role  string
	ID    string
	Exp   time.Time
}

// TokenIssuer signs and verifies HS256 tokens with one shared secret.  It is
// built once from configuration and handed to the components that need it.
type TokenIssuer struct {
	secret        []byte
	sessionTTL    time.Duration
	activationTTL time.Duration
	now           func() time.Time
}

// NewTokenIssuer returns an issuer for the given secret and lifetimes.
func NewTokenIssuer(secret string, sessionTTL, activationTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		activationTTL: activationTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// IssueSessionToken builds a session token with sub=email and the role.
// Session tokens are stateless: they stay valid until exp regardless of
// later account changes, unless the optional revocation list is enabled.
func (t *TokenIssuer) IssueSessionToken(email, role string) (SessionToken, error) {
	now := t.now().UTC()
	exp := now.Add(t.sessionTTL)
	id := uuid.NewString()
	signed, err := t.sign(Claims{
		Type: TypeSession,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, ID: id, Exp: exp}, nil
}

// IssueActivationToken builds a single-purpose email verification token.
func (t *TokenIssuer) IssueActivationToken(email string) (string, error) {
	now := t.now().UTC()
	return t.sign(Claims{
		Type: TypeEmailVerify,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.activationTTL)),
		},
	})
}

// VerifySessionToken returns the session carried by raw.
func (t *TokenIssuer) VerifySessionToken(raw string) (Session, error) {
	c, err := t.parse(raw, TypeSession)
	if err != nil {
		return Session{}, err
	}
	if c.Role == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{Email: c.Subject, Role: c.Role, ID: c.ID, Exp: c.ExpiresAt.Time}, nil
}

// VerifyActivationToken returns the email an activation token was issued for.
func (t *TokenIssuer) VerifyActivationToken(raw string) (string, error) {
	c, err := t.parse(raw, TypeEmailVerify)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

func (t *TokenIssuer) sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// parse verifies signature, algorithm, expiry and the type tag.  Every
// failure collapses into ErrInvalidToken.
func (t *TokenIssuer) parse(raw, wantType string) (*Claims, error) {
	var c Claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if c.Type != wantType || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
