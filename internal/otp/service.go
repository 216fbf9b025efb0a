// Package otp stores hashed one-time passcodes. Delivery of the code to the
// user happens outside this service.
package otp

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/albin6/cellsphere/internal/repo"
	"github.com/albin6/cellsphere/pkg/config"
	"github.com/albin6/cellsphere/pkg/db/models"
	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
	"github.com/albin6/cellsphere/pkg/security"
)

const (
	codeLength = 6
	defaultTTL = 60 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Hashing    config.PasswordConfig
	TTL        time.Duration
	Now        func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	hashing config.PasswordConfig
	ttl     time.Duration
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("otp repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	s := &service{
		repo:    params.Repository,
		tx:      params.Tx,
		hashing: params.Hashing,
		ttl:     params.TTL,
		now:     params.Now,
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Issue replaces any outstanding code for email and returns the new plain code.
func (s *service) Issue(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	code, err := security.GeneratePasscode(codeLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	hash, err := security.HashPasscode(code, s.hashing)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash otp")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.DeleteByEmail(ctx, email); err != nil {
			return err
		}
		return r.Create(ctx, &models.OTP{Email: email, CodeHash: hash, CreatedAt: s.now().UTC()})
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}
	return code, nil
}

// Verify consumes the code when it matches and is still within the TTL.
func (s *service) Verify(ctx context.Context, email, code string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(code) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "otp required")
	}

	stored, err := s.repo.LatestSince(ctx, email, s.now().Add(-s.ttl))
	if err != nil {
		if repo.IsNotFound(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	ok, err := security.VerifyPasscode(strings.TrimSpace(code), stored.CodeHash)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify otp")
	}
	if !ok {
		return false, nil
	}
	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
	}
	return true, nil
}

// DeleteExpired removes codes older than the TTL.
func (s *service) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired otps")
	}
	return n, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "valid email required").
			WithDetails(map[string]any{"field": "email"})
	}
	return email, nil
}
