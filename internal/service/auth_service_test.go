package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"urlcurt/internal/domain"
	"urlcurt/internal/repository"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	failCreate   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

type mockEmailSender struct {
	sends    int
	lastTo   string
	lastBody string
	err      error
}

func (m *mockEmailSender) Send(_ context.Context, to, _, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sends++
	m.lastTo = to
	m.lastBody = htmlBody
	return nil
}

type mockSMSSender struct {
	sends    int
	lastTo   string
	lastBody string
	err      error
}

func (m *mockSMSSender) Send(_ context.Context, to, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sends++
	m.lastTo = to
	m.lastBody = body
	return nil
}

func newTestAuthService(repo *mockUserRepo, emailSender *mockEmailSender, smsSender *mockSMSSender) (*AuthService, *TokenService) {
	tokens := NewTokenService("secret", 15*time.Minute, 5*time.Minute)
	svc := NewAuthService(zap.NewNop(), repo, tokens, emailSender, smsSender, "http://localhost:4000")
	return svc, tokens
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: "pw123",
		Phone:    "+15550001",
		Age:      30,
	}
}

func TestAuthServiceRegister_HashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored, err := repo.GetByEmail(context.Background(), "alice@x.com")
	if err != nil {
		t.Fatalf("get stored user: %v", err)
	}
	if stored.PasswordHash == "pw123" || stored.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestAuthServiceRegister_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	if len(repo.usersByID) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(repo.usersByID))
	}
}

func TestAuthServiceRegister_DuplicateFromConstraint(t *testing.T) {
	// Simula la carrera check-then-act: el pre-chequeo no ve la fila pero el
	// constraint de la base rechaza el insert.
	repo := newMockUserRepo()
	repo.failCreate = repository.ErrDuplicateEmail
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser from constraint path, got %v", err)
	}
}

func TestAuthServiceRegister_MissingFields(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	cases := []RegisterInput{
		{Email: "a@x.com", Password: "pw", Phone: "+1", Age: 30},
		{Name: "A", Password: "pw", Phone: "+1", Age: 30},
		{Name: "A", Email: "a@x.com", Phone: "+1", Age: 30},
		{Name: "A", Email: "a@x.com", Password: "pw", Age: 30},
		{Name: "A", Email: "a@x.com", Password: "pw", Phone: "+1"},
		{Name: "A", Email: "a@x.com", Password: "pw", Phone: "+1", Age: -1},
	}
	for i, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
	if len(repo.usersByID) != 0 {
		t.Fatalf("expected no users created, got %d", len(repo.usersByID))
	}
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "alice@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@x.com", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthServiceRequestPasswordReset_SendsVerifiableLink(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc, tokens := newTestAuthService(repo, sender, &mockSMSSender{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), "alice@x.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if sender.sends != 1 {
		t.Fatalf("expected exactly one delivery, got %d", sender.sends)
	}
	if sender.lastTo != "alice@x.com" {
		t.Fatalf("unexpected recipient: %q", sender.lastTo)
	}
	if !strings.Contains(sender.lastBody, "http://localhost:4000/reset-password?token=") {
		t.Fatalf("expected reset link in body: %q", sender.lastBody)
	}

	token := extractToken(t, sender.lastBody)
	claims, err := tokens.VerifyReset(token)
	if err != nil {
		t.Fatalf("verify reset token from link: %v", err)
	}
	if claims.Email != "alice@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	svc, _ := newTestAuthService(repo, sender, &mockSMSSender{})

	if err := svc.RequestPasswordReset(context.Background(), "nobody@x.com"); err != nil {
		t.Fatalf("expected nil error for unknown email, got %v", err)
	}
	if sender.sends != 0 {
		t.Fatalf("expected no deliveries, got %d", sender.sends)
	}
}

func TestAuthServiceRequestPasswordReset_DeliveryFailure(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{err: errors.New("smtp down")}
	svc, _ := newTestAuthService(repo, sender, &mockSMSSender{})

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestPasswordReset(context.Background(), "alice@x.com"); !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
}

func TestAuthServiceResetPassword_FullFlow(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	smsSender := &mockSMSSender{}
	svc, _ := newTestAuthService(repo, sender, smsSender)

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestPasswordReset(context.Background(), "alice@x.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := extractToken(t, sender.lastBody)

	if _, err := svc.ResetPassword(context.Background(), token, "newpw456"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "alice@x.com", "newpw456"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice@x.com", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if smsSender.sends != 1 || smsSender.lastTo != "+15550001" {
		t.Fatalf("expected one change notice sms to +15550001, got %d to %q", smsSender.sends, smsSender.lastTo)
	}

	if _, err := svc.ResetPassword(context.Background(), token, "again789"); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed on reused token, got %v", err)
	}
}

func TestAuthServiceResetPassword_RejectsSessionToken(t *testing.T) {
	repo := newMockUserRepo()
	svc, tokens := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := tokens.IssueSession(user)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	if _, err := svc.ResetPassword(context.Background(), session, "newpw456"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for session token, got %v", err)
	}
}

func TestAuthServiceMe(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo, &mockEmailSender{}, &mockSMSSender{})

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Me(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if got.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	if idx < 0 {
		t.Fatalf("no token in body: %q", body)
	}
	rest := body[idx+len("token="):]
	if end := strings.IndexAny(rest, "\"<"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
