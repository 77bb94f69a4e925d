package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"strings"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterAccount регистрирует новую учётную запись по email и паролю.
func (s *Service) RegisterAccount(ctx context.Context, email, password string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return 0, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if password == "" {
		return 0, &ValidationError{Field: "password", Reason: "must not be empty"}
	}

	hashed := hashPassword(email, password)
	return s.repo.CreateAccount(ctx, email, hashed)
}

// Authenticate проверяет email и пароль и возвращает учётную запись.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	a, err := s.repo.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	hashed := hashPassword(a.Email, password)
	if !hmac.Equal(hashed, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return a, nil
}

// ResolveCustomer находит профиль клиента по email учётной записи.
// Ноль совпадений означает, что учётной записи не завели клиента;
// больше одного — данные неоднозначны и операция отклоняется.
func (s *Service) ResolveCustomer(ctx context.Context, email string) (*model.Customer, error) {
	customers, err := s.repo.GetCustomersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch len(customers) {
	case 0:
		return nil, ErrCustomerNotLinked
	case 1:
		return &customers[0], nil
	default:
		return nil, ErrAmbiguousIdentity
	}
}

// ErrCustomerNotLinked возвращается, когда для учётной записи нет профиля клиента.
var ErrCustomerNotLinked = errors.New("no customer linked to this account")

func hashPassword(email, password string) []byte {
	sum := sha256.Sum256([]byte(email + ":" + password))
	return sum[:]
}
