package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"social-app/internal/domain"
	"social-app/internal/email"
	"social-app/internal/repository"
)

// UserService coordina reglas de negocio para registro y login.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
}

var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
)

const (
	minNameLen     = 3
	minPasswordLen = 8
	bcryptCost     = 10
)

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender) *UserService {
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
	}
}

// Register valida la entrada antes de tocar el store, hashea la contraseña
// y persiste el usuario. El plaintext nunca se guarda ni se devuelve.
func (s *UserService) Register(ctx context.Context, name, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	name = strings.TrimSpace(name)
	emailAddr = normalizeEmail(emailAddr)
	if len(name) < minNameLen {
		return domain.User{}, ErrValidation
	}
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return domain.User{}, ErrValidation
	}
	if len(password) < minPasswordLen {
		return domain.User{}, ErrValidation
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcome(ctx, user.Email, user.Name); err != nil {
			if s.logger != nil {
				s.logger.Warn("send welcome email failed", zap.Error(err), zap.String("email", user.Email))
			}
		}
	}

	return user, nil
}

// Authenticate responde el mismo error para email desconocido y contraseña
// incorrecta, para no permitir enumerar cuentas.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	// La contraseña se compara byte a byte tal como se registró; solo el
	// email se normaliza.
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile devuelve el perfil mínimo del usuario.
func (s *UserService) GetProfile(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
