package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/pkg/apperr"
)

const (
	MinPasswordLength = 8
	MaxPseudoLength   = 50
)

var validate = validator.New()

// AuthService 账号注册、登录与资料
type AuthService interface {
	Register(ctx context.Context, email, pseudo, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdatePseudo(ctx context.Context, id, pseudo string) (*model.User, error)
}

type authService struct {
	users repository.UserRepository
	cost  int
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users, cost: bcrypt.DefaultCost}
}

func (s *authService) Register(ctx context.Context, email, pseudo, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, apperr.Validation("a valid email is required")
	}
	pseudo, err := normalizePseudo(pseudo)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Unexpected("hash password", err)
	}
	hashed := string(hash)
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hashed,
		Pseudo:       pseudo,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered", nil)
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, error) {
	invalid := apperr.Authentication("invalid email or password")
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	if !u.IsActive {
		return nil, apperr.Authentication("account is disabled")
	}
	return u, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Authentication("user no longer exists")
	}
	return u, err
}

func (s *authService) UpdatePseudo(ctx context.Context, id, pseudo string) (*model.User, error) {
	pseudo, err := normalizePseudo(pseudo)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePseudo(ctx, id, pseudo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Authentication("user no longer exists")
		}
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func normalizePseudo(pseudo string) (string, error) {
	pseudo = strings.TrimSpace(pseudo)
	n := utf8.RuneCountInString(pseudo)
	if n < 1 || n > MaxPseudoLength {
		return "", apperr.Validation("pseudo must be between 1 and 50 characters")
	}
	return pseudo, nil
}
