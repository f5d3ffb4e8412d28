// Package accounts implements the two authentication flows: registering a
// new account and logging in for a bearer token. Each call is a stateless,
// bounded unit of work; the only shared resource is the credential store.
// Exactly four error kinds cross this boundary: common.ErrValidation,
// common.ErrAlreadyExists, common.ErrInvalidCredentials, common.ErrInternal.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/dmitrijs2005/authvault/config"
	"github.com/dmitrijs2005/authvault/fieldcrypt"
	"github.com/dmitrijs2005/authvault/logging"
	"github.com/dmitrijs2005/authvault/passwd"
	"github.com/dmitrijs2005/authvault/secrets"
	"github.com/dmitrijs2005/authvault/store"
	"github.com/dmitrijs2005/authvault/token"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest carries the registration inputs. FirstName and LastName
// are stored only in encrypted form.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterResult returns only the generated identifier; neither the password
// nor a token is ever part of a registration response.
type RegisterResult struct {
	UserID string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the OAuth-style token response.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Service composes the hasher, field encryptor, token issuer, and credential
// store into the two flows. All configuration is captured at construction;
// a Service holds no mutable state and is safe for concurrent use.
type Service struct {
	repo           store.Repository
	encryptor      fieldcrypt.Encryptor
	secrets        *secrets.Secrets
	tokenValidity  time.Duration
	tokenScope     string
	minPasswordLen int
	decoyDigest    string
	logger         logging.Logger
}

func NewService(repo store.Repository, encryptor fieldcrypt.Encryptor, sec *secrets.Secrets, cfg *config.Config, logger logging.Logger) (*Service, error) {
	// Digest of a throwaway random password, burned on lookups of unknown
	// emails so their latency resembles a real password mismatch.
	decoy, err := passwd.Hash(string(common.GenerateRandByteArray(24)))
	if err != nil {
		return nil, fmt.Errorf("preparing decoy digest: %w", err)
	}

	return &Service{
		repo:           repo,
		encryptor:      encryptor,
		secrets:        sec,
		tokenValidity:  cfg.TokenValidityDuration,
		tokenScope:     cfg.TokenScope,
		minPasswordLen: cfg.MinPasswordLength,
		decoyDigest:    decoy,
		logger:         logger,
	}, nil
}

// NormalizeEmail produces the form used as the uniqueness key: trimmed and
// lowercased. Comparison is case-insensitive across the whole address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) validateRegister(req *RegisterRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	email := NormalizeEmail(req.Email)
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email format", common.ErrValidation)
	}

	if len(req.Password) < s.minPasswordLen {
		return "", fmt.Errorf("%w: password must be at least %d characters long", common.ErrValidation, s.minPasswordLen)
	}
	if len(req.Password) > passwd.MaxPasswordLength {
		return "", fmt.Errorf("%w: password must be at most %d bytes long", common.ErrValidation, passwd.MaxPasswordLength)
	}

	return email, nil
}

// Register validates the request, hashes the password, encrypts the profile
// fields, and persists a new record. Validation fails fast with no side
// effects. The FindByEmail pre-check is only a fast fail: correctness under
// concurrent registrations rests entirely on the store's conditional write.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	email, err := s.validateRegister(req)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrAlreadyExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(ctx, "registration lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	hash, err := passwd.Hash(req.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrInternal
	}

	profile := make(map[string]*fieldcrypt.Envelope, 2)
	for name, value := range map[string]string{
		store.FieldFirstName: req.FirstName,
		store.FieldLastName:  req.LastName,
	} {
		envelope, err := s.encryptor.EncryptField(ctx, value)
		if err != nil {
			s.logger.Error(ctx, "profile field encryption failed", "field", name, "error", err)
			return nil, common.ErrInternal
		}
		profile[name] = envelope
	}

	now := time.Now().UTC()
	record := &store.UserRecord{
		UserID:           uuid.NewString(),
		Email:            email,
		PasswordHash:     hash,
		EncryptedProfile: profile,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.CreateIfAbsent(ctx, record); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			// lost the race to a concurrent registration
			return nil, common.ErrAlreadyExists
		}
		s.logger.Error(ctx, "user record creation failed", "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", record.UserID)

	return &RegisterResult{UserID: record.UserID}, nil
}

// Login verifies the credentials and issues a signed bearer token. An
// unknown email and a wrong password both yield common.ErrInvalidCredentials
// so the response never reveals whether an account exists.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	record, err := s.repo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a comparison so the miss costs about as much as a mismatch
			passwd.Verify(req.Password, s.decoyDigest)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	if !passwd.Verify(req.Password, record.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	accessToken, err := token.Issue(record.UserID, record.Email, s.tokenScope, s.secrets.SigningKey(), s.tokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrInternal
	}

	return &LoginResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenValidity.Seconds()),
		Scope:       s.tokenScope,
	}, nil
}
