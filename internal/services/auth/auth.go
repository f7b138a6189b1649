// Package services содержит логику входа в админ-панель: проверку пароля,
// выпуск JWT и создание первого администратора.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/club-checkout/internal/lib/jwt"
	"github.com/magabrotheeeer/club-checkout/internal/lib/password"
	"github.com/magabrotheeeer/club-checkout/internal/models"
	"github.com/magabrotheeeer/club-checkout/internal/storage/repository"
)

// RoleAdmin роль с полным доступом к админке.
const RoleAdmin = "admin"

const minPasswordLen = 8

// ErrInvalidCredentials возвращается при неверном email или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// EnsureUser создаёт пользователя, если email ещё свободен.
	EnsureUser(ctx context.Context, user models.User) (bool, error)
}

// TokenMaker выпускает и проверяет токены.
type TokenMaker interface {
	GenerateToken(userID, role string) (string, error)
	ParseToken(token string) (*jwt.Claims, error)
}

// AuthService отвечает за вход и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker TokenMaker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker TokenMaker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет пароль пользователя и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает его данные.
func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	return s.jwtMaker.ParseToken(token)
}

// Bootstrap создаёт администратора из конфигурации, если его ещё нет.
// Пустой email пропускается.
func (s *AuthService) Bootstrap(ctx context.Context, email, rawPassword string) (bool, error) {
	const op = "services.auth.Bootstrap"
	if email == "" {
		return false, nil
	}
	if utf8.RuneCountInString(rawPassword) < minPasswordLen {
		return false, fmt.Errorf("%s: admin password is too short", op)
	}
	hash, err := password.Hash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.users.EnsureUser(ctx, models.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
