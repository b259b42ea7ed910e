package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"urlcurt/internal/domain"
)

// TokenService emite y valida tokens JWT con propósito explícito: tokens de
// sesión (larga vida, stateless) y tokens de reset de contraseña (corta vida,
// de un solo uso vía ResetTokenStore).
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	issuer     string
	resets     ResetTokenStore
}

const (
	purposeSession = "session"
	purposeReset   = "reset"
)

type Claims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email"`
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	// ErrTokenInvalid cubre firma adulterada, propósito equivocado, issuer
	// ajeno o claims incompletos.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired se reporta por separado: el caller puede pedir un
	// token nuevo en vez de tratarlo como ataque.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenUsed indica un token de reset ya consumido.
	ErrTokenUsed = errors.New("token already used")
)

func NewTokenService(secret string, sessionTTL, resetTTL time.Duration) *TokenService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		issuer:     "urlcurt",
		resets:     NewMemoryResetTokenStore(),
	}
}

func NewTokenServiceWithStore(secret string, sessionTTL, resetTTL time.Duration, resets ResetTokenStore) *TokenService {
	svc := NewTokenService(secret, sessionTTL, resetTTL)
	if resets != nil {
		svc.resets = resets
	}
	return svc
}

// IssueSession firma un token de sesión para el usuario.
func (s *TokenService) IssueSession(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	token, _, err := s.signToken(user, time.Now().UTC(), s.sessionTTL, purposeSession)
	return token, err
}

// IssueReset firma un token de reset de un solo uso y registra su jti.
func (s *TokenService) IssueReset(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	token, jti, err := s.signToken(user, time.Now().UTC(), s.resetTTL, purposeReset)
	if err != nil {
		return "", err
	}
	if s.resets != nil {
		if err := s.resets.Store(jti, user.ID, s.resetTTL); err != nil {
			return "", err
		}
	}
	return token, nil
}

// VerifySession valida un token de sesión y devuelve sus claims.
func (s *TokenService) VerifySession(tokenString string) (Claims, error) {
	claims, err := s.verify(tokenString, purposeSession)
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// VerifyReset valida un token de reset y lo consume; una segunda llamada con
// el mismo token falla con ErrTokenUsed.
func (s *TokenService) VerifyReset(tokenString string) (Claims, error) {
	claims, err := s.verify(tokenString, purposeReset)
	if err != nil {
		return Claims{}, err
	}
	if claims.ID == "" || s.resets == nil {
		return Claims{}, ErrTokenInvalid
	}
	ok, err := s.resets.Consume(claims.ID)
	if err != nil {
		return Claims{}, err
	}
	if !ok {
		return Claims{}, ErrTokenUsed
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString, purpose string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		// Un token expirado del propósito equivocado no es "expirado" para
		// este flujo: la capacidad ya era la incorrecta.
		if errors.Is(err, ErrTokenExpired) && claims.Purpose != purpose {
			return Claims{}, ErrTokenInvalid
		}
		return Claims{}, err
	}
	if claims.Purpose != purpose {
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) signToken(user domain.User, now time.Time, ttl time.Duration, purpose string) (string, string, error) {
	jti := uuid.NewString()
	claims := Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, jti, err
}

func (s *TokenService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// La firma ya fue verificada: los claims decodificados se
			// devuelven para que el caller pueda chequear el propósito.
			return claims, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
