package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/validation"
)

// Session is the result of a successful login
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// Service runs participant and admin logins and verifies session tokens
type Service struct {
	authn       Authenticator
	roster      *roster.Roster
	emailDomain string
	admin       *AdminGate
	tokens      *TokenManager
	validator   validation.LoginValidation
	log         *log.Logger
}

// NewService wires credential checks, roster resolution and token issuing
func NewService(authn Authenticator, r *roster.Roster, emailDomain string, admin *AdminGate, tokens *TokenManager) *Service {
	return &Service{
		authn:       authn,
		roster:      r,
		emailDomain: emailDomain,
		admin:       admin,
		tokens:      tokens,
		log:         logger.Auth(),
	}
}

// Roster returns the participant list offered at login
func (s *Service) Roster() *roster.Roster {
	return s.roster
}

// Login authenticates the roster member picked by name. The credential email
// and the reverse display-name lookup share roster.Normalize.
func (s *Service) Login(ctx context.Context, name, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	if err := s.validator.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, err
	}

	email := roster.CredentialEmail(name, s.emailDomain)
	identity, err := s.authn.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log.Info("login rejected", "email", email)
			return nil, err
		}
		s.log.Error("authentication backend failed", "email", email, "error", err)
		return nil, vote.Classify(err)
	}

	resolved := s.roster.Resolve(identity.Email)
	if !resolved.Matched {
		s.log.Warn("identity resolution fallback: no roster entry matches principal",
			"email", identity.Email, "display_name", resolved.DisplayName)
	}

	principal := Principal{
		VoterKey:    identity.VoterKey,
		Email:       identity.Email,
		DisplayName: resolved.DisplayName,
		Role:        RoleVoter,
	}
	session, err := s.issue(principal)
	if err != nil {
		return nil, err
	}

	s.log.Info("participant logged in", "voter_key", principal.VoterKey, "display_name", principal.DisplayName)
	return session, nil
}

// AdminLogin opens an admin session for the configured credential pair
func (s *Service) AdminLogin(user, password string) (*Session, error) {
	if err := s.admin.Check(user, password); err != nil {
		s.log.Warn("admin login rejected", "user", user)
		return nil, err
	}

	session, err := s.issue(s.admin.Principal())
	if err != nil {
		return nil, err
	}

	s.log.Info("admin logged in", "user", user)
	return session, nil
}

// Verify parses a bearer token back into its principal
func (s *Service) Verify(token string) (*Principal, error) {
	return s.tokens.Parse(token)
}

func (s *Service) issue(p Principal) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(p)
	if err != nil {
		s.log.Error("failed to issue session token", "voter_key", p.VoterKey, "error", err)
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Principal: p}, nil
}
