package service

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/repository"
	"github.com/poolforyou/poolforyou-api/internal/utils"
)

const minPasswordBytes = 8

// UserService covers account provisioning, activation and login.
type UserService struct {
	store         UserStore
	tokens        *utils.TokenIssuer
	notifier      Notifier
	bcryptCost    int
	activationURL string
	log           *log.Logger

	// dummyHash is compared against when the email is unknown so that
	// unknown and known accounts take the same time to reject.
	dummyHash string
}

// NewUserService wires the user lifecycle.  activationURL is the page the
// activation token is appended to as ?token=.
func NewUserService(store UserStore, tokens *utils.TokenIssuer, notifier Notifier, bcryptCost int, activationURL string, logger *log.Logger) *UserService {
	dummy, err := utils.HashPassword("not-a-real-account-password", bcryptCost)
	if err != nil {
		logger.Warnf("users: dummy hash: %v", err)
	}
	return &UserService{
		store:         store,
		tokens:        tokens,
		notifier:      notifier,
		bcryptCost:    bcryptCost,
		activationURL: activationURL,
		log:           logger,
		dummyHash:     dummy,
	}
}

// CreateUser provisions an account with no password and sends the
// activation link.  A failed notification does not undo the creation.
func (s *UserService) CreateUser(ctx context.Context, name, email string, role model.Role) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	problems := map[string]string{}
	if name == "" {
		problems["name"] = "required"
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		problems["email"] = "must be a valid address"
	}
	if !role.Valid() {
		problems["role"] = "must be admin, technician or lifeguard"
	}
	if len(problems) > 0 {
		return model.User{}, &ValidationError{Fields: problems}
	}

	u, err := s.store.Create(ctx, name, email, role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, storageFailure("create user", err)
	}

	token, err := s.tokens.IssueActivationToken(u.Email)
	if err != nil {
		s.log.Errorf("users: issue activation token for user %d: %v", u.ID, err)
		return u, nil
	}
	if err := s.notifier.SendActivation(ctx, u.Email, s.ActivationLink(token)); err != nil {
		s.log.Warnf("users: activation link for user %d not delivered: %v", u.ID, err)
	}
	return u, nil
}

// ActivationLink builds the frontend link carrying token.
func (s *UserService) ActivationLink(token string) string {
	sep := "?"
	if strings.Contains(s.activationURL, "?") {
		sep = "&"
	}
	return s.activationURL + sep + "token=" + url.QueryEscape(token)
}

// ActivateAccount sets the first password of the account named by the
// activation token and marks its email verified.
func (s *UserService) ActivateAccount(ctx context.Context, token, password string) error {
	email, err := s.tokens.VerifyActivationToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storageFailure("load user", err)
	}
	if u.Activated() {
		return ErrAlreadyActivated
	}
	if n := len(password); n < minPasswordBytes || n > utils.MaxPasswordBytes {
		return invalid("password", "must be between 8 and 72 bytes")
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.Activate(ctx, u.ID, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyActivated):
			return ErrAlreadyActivated
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		return storageFailure("activate user", err)
	}
	return nil
}

// Authenticate checks credentials.  Unknown email, missing password, wrong
// password and inactive account all fail with ErrInvalidCredentials; only an
// unverified email is reported as such.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = utils.VerifyPassword(s.dummyHash, password)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, storageFailure("load user", err)
	}
	if !u.Activated() {
		_ = utils.VerifyPassword(s.dummyHash, password)
		return model.User{}, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(*u.PasswordHash, password) || !u.IsActive {
		return model.User{}, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return model.User{}, ErrEmailNotVerified
	}
	return u, nil
}

// Login authenticates and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (model.User, utils.SessionToken, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return model.User{}, utils.SessionToken{}, err
	}
	tok, err := s.tokens.IssueSessionToken(u.Email, string(u.Role))
	if err != nil {
		return model.User{}, utils.SessionToken{}, err
	}
	return u, tok, nil
}
