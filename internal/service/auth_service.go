package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"urlcurt/internal/domain"
	"urlcurt/internal/email"
	"urlcurt/internal/repository"
	"urlcurt/internal/sms"
)

// AuthService coordina registro, autenticación y recuperación de contraseña.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      *TokenService
	emailSender email.Sender
	smsSender   sms.Sender
	baseURL     string
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, emailSender email.Sender, smsSender sms.Sender, baseURL string) *AuthService {
	return &AuthService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		emailSender: emailSender,
		smsSender:   smsSender,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeliveryFailure    = errors.New("delivery failed")
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      int
	Access   string
}

// Register crea un usuario nuevo con la contraseña hasheada y devuelve el
// registro persistido. En cualquier fallo no queda fila creada.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	name := strings.TrimSpace(input.Name)
	emailAddr := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || emailAddr == "" || password == "" || phone == "" || input.Age <= 0 {
		return domain.User{}, ErrInvalidInput
	}

	// Fast path: el chequeo previo evita un bcrypt inútil, pero la garantía
	// real de unicidad es el constraint de la base (ErrDuplicateEmail).
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrDuplicateUser
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		Phone:        phone,
		Age:          input.Age,
		Access:       strings.TrimSpace(input.Access),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrDuplicateUser
		}
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate valida email y contraseña. Todos los fallos colapsan en
// ErrInvalidCredentials para no distinguir cuentas existentes.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	emailAddr = strings.TrimSpace(emailAddr)
	password = strings.TrimSpace(password)
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

// RequestPasswordReset emite un token de reset y manda el link por correo.
// Para un email desconocido no devuelve error ni manda nada: la respuesta al
// caller es idéntica exista o no la cuenta.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	if s.users == nil || s.tokens == nil {
		return errors.New("auth service not configured")
	}

	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if s.logger != nil {
				s.logger.Info("password reset for unknown email", zap.String("email", emailAddr))
			}
			return nil
		}
		return err
	}

	token, err := s.tokens.IssueReset(user)
	if err != nil {
		return err
	}
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(token))

	if s.emailSender == nil {
		return ErrDeliveryFailure
	}
	body := fmt.Sprintf(
		"<p>Hello, %s!</p>\n<p>Click the link below to reset your password:</p>\n<a href=%q>%s</a>\n<p>If you did not request this, ignore this email.</p>\n",
		user.Name, resetLink, resetLink,
	)
	if err := s.emailSender.Send(ctx, user.Email, "Password recovery", body); err != nil {
		if s.logger != nil {
			s.logger.Warn("send reset email failed", zap.Error(err), zap.String("email", user.Email))
		}
		return ErrDeliveryFailure
	}
	return nil
}

// ResetPassword consume un token de reset válido y reemplaza la contraseña.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (domain.User, error) {
	if s.users == nil || s.tokens == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	newPassword = strings.TrimSpace(newPassword)
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return domain.User{}, ErrInvalidInput
	}

	claims, err := s.tokens.VerifyReset(token)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashBytes)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.PasswordHash = string(hashBytes)

	// Aviso best-effort: el cambio ya está hecho, un SMS fallido solo se loguea.
	if s.smsSender != nil && user.Phone != "" {
		msg := "Your urlcurt password was just changed. If this wasn't you, contact support."
		if err := s.smsSender.Send(ctx, user.Phone, msg); err != nil && s.logger != nil {
			s.logger.Warn("send password change sms failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}

	return user, nil
}

// Me devuelve el perfil del usuario autenticado.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
