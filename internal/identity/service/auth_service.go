package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit"
	identitydomain "github.com/Gelzieny/remix-of-economic-insight/internal/identity/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/notify"
	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
	sessiondomain "github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
	userdomain "github.com/Gelzieny/remix-of-economic-insight/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP status codes.
var (
	ErrEmailRequired          = errors.New("email is required")
	ErrInvalidEmail           = errors.New("invalid email format")
	ErrWeakPassword           = errors.New("password must be at least 6 characters")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
	ErrInvalidResetToken      = errors.New("invalid or expired reset token")
	ErrUnauthenticated        = errors.New("not authenticated")
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthResult holds the outcome of Register, Login, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// Profile is what the profile page shows about the signed-in user.
type Profile struct {
	ID        string
	Email     string
	Name      string
	Initials  string
	CreatedAt time.Time
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// ResetRepo is the minimal password reset repository needed by the auth service.
type ResetRepo interface {
	Create(ctx context.Context, p *identitydomain.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*identitydomain.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	CompareDummy(password string) error
}

// AuthService implements email/password register, login, refresh, logout and password reset.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	resetRepo   ResetRepo
	hasher      passwordHasher
	tokens      *security.TokenProvider
	notifier    notify.Notifier
	auditLogger audit.AuditLogger
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies. notifier and auditLogger may be nil.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	resetRepo ResetRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	notifier notify.Notifier,
	auditLogger audit.AuditLogger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		auditLogger: auditLogger,
		logger:      zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the logger used for failures that are not reported to the caller.
func (s *AuthService) WithLogger(logger *zap.Logger) *AuthService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register creates a user with the given email and password and signs them in.
// The display name is the local part of the email.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         userdomain.NameFromEmail(email),
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, "register", "user", "")
	return s.openSession(ctx, user.ID)
}

// Login authenticates with email/password, creates a session, and returns tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.CompareDummy(password)
		s.audit(ctx, "", "login_failure", "user", "")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.audit(ctx, user.ID, "login_failure", "user", "")
		return nil, ErrInvalidCredentials
	}
	res, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, "login_success", "session", "")
	return res, nil
}

func (s *AuthService) openSession(ctx context.Context, userID string) (*AuthResult, error) {
	sessionID := uuid.New().String()
	refreshToken, jti, refreshExp, err := s.tokens.IssueRefresh(sessionID, userID)
	if err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(sessionID, userID)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           userID,
		ExpiresAt:        refreshExp,
		IPAddress:        interceptors.ClientIP(ctx),
		RefreshJti:       jti,
		RefreshTokenHash: security.HashToken(refreshToken),
		CreatedAt:        s.now(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       userID,
	}, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
// Presenting an already rotated token revokes every session of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if sess == nil || !sess.Active(now) || sess.UserID != userID {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		_ = s.sessionRepo.RevokeAllSessionsByUser(ctx, userID)
		s.audit(ctx, userID, "refresh_token_reuse", "session", "")
		return nil, ErrRefreshTokenReuse
	}
	if !security.TokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	_ = s.sessionRepo.UpdateLastSeen(ctx, sessionID, now)
	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateRefreshToken(ctx, sessionID, newJti, security.HashToken(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		UserID:       userID,
	}, nil
}

// Logout revokes the session identified by the refresh token or by the access token in context.
// If refreshToken is non-empty, validates it and revokes that session.
// If refreshToken is empty and the auth middleware set session_id in context, revokes that session.
// Otherwise no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	var sessionID, userID string
	if refreshToken != "" {
		sid, _, uid, err := s.tokens.ValidateRefresh(refreshToken)
		if err != nil {
			return nil
		}
		sessionID, userID = sid, uid
	} else {
		sid, ok := interceptors.GetSessionID(ctx)
		if !ok {
			return nil
		}
		sessionID = sid
		userID, _ = interceptors.GetUserID(ctx)
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.audit(ctx, userID, "logout", "session", "")
	return nil
}

// RequestPasswordReset issues a one-hour reset token and sends it through the notifier.
// Once the email is well formed the outcome is the same for every address: failures after the
// user lookup are logged, not returned, so the endpoint does not reveal which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if err := s.issueReset(ctx, user); err != nil {
		s.logger.Error("password reset not delivered", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) issueReset(ctx context.Context, user *userdomain.User) error {
	token, err := security.NewOpaqueToken()
	if err != nil {
		return err
	}
	now := s.now()
	reset := &identitydomain.PasswordReset{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: security.HashToken(token),
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	s.audit(ctx, user.ID, "password_reset_requested", "user", "")
	if s.notifier == nil {
		return nil
	}
	err = s.notifier.Send(ctx, notify.Message{
		Kind:    notify.KindPasswordReset,
		To:      user.Email,
		Name:    user.Name,
		Subject: "Redefinição de senha",
		Data: map[string]string{
			"token":      token,
			"expires_at": reset.ExpiresAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("send reset token: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if token == "" {
		return ErrInvalidResetToken
	}
	reset, err := s.resetRepo.GetByTokenHash(ctx, security.HashToken(token))
	if err != nil {
		return err
	}
	if reset == nil || !reset.Usable(s.now()) {
		return ErrInvalidResetToken
	}
	claimed, err := s.resetRepo.MarkUsed(ctx, reset.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInvalidResetToken
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, hashed); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeAllSessionsByUser(ctx, reset.UserID); err != nil {
		return err
	}
	s.audit(ctx, reset.UserID, "password_reset", "user", "")
	return nil
}

// Me returns the profile of the user in context.
func (s *AuthService) Me(ctx context.Context) (*Profile, error) {
	userID, ok := interceptors.GetUserID(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Initials:  user.Initials(),
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *AuthService) audit(ctx context.Context, userID, action, resource, metadata string) {
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, userID, action, resource, metadata)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
