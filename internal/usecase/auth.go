package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/core/port"
	"github.com/dipeshss4/tripgo-auth/internal/infra/logger"
	"github.com/dipeshss4/tripgo-auth/internal/infra/security"
	"github.com/dipeshss4/tripgo-auth/internal/infra/telemetry"
	"github.com/dipeshss4/tripgo-auth/internal/repository"
)

// AuthService coordinates login, logout, refresh, and the per-request
// authorization gate.
type AuthService struct {
	users       port.UserRepository
	sessions    port.SessionRegistry
	revocations port.RevocationList
	throttle    *LoginThrottle
	trust       *TrustService
	issuer      *security.TokenIssuer
	events      port.SecurityEventPublisher
	metrics     *telemetry.Metrics
	log         *zap.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	sessions port.SessionRegistry,
	revocations port.RevocationList,
	throttle *LoginThrottle,
	trust *TrustService,
	issuer *security.TokenIssuer,
	events port.SecurityEventPublisher,
	metrics *telemetry.Metrics,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		revocations: revocations,
		throttle:    throttle,
		trust:       trust,
		issuer:      issuer,
		events:      events,
		metrics:     metrics,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// LoginInput carries credentials plus the request metadata feeding the device
// profiler and throttle.
type LoginInput struct {
	Tenant   *domain.Tenant
	Email    string
	Password string
	Metadata domain.RequestMetadata
}

// LoginResult bundles everything a successful login returns.
type LoginResult struct {
	Tokens   security.TokenPair
	User     *domain.User
	Tenant   *domain.Tenant
	Session  *domain.Session
	Security domain.SecurityContext
}

// Login runs the throttle gate, verifies credentials within the resolved
// tenant only, creates a session, and issues a token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Tenant == nil {
		return nil, ErrTenantNotFound
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	identifier := s.throttleIdentifier(input.Tenant.ID, email, input.Metadata.IP)
	if err := s.throttle.Check(ctx, identifier); err != nil {
		var locked *AccountLockedError
		if errors.As(err, &locked) {
			s.metrics.RecordLogin("locked")
		}
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Tenant.ID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.failLogin(ctx, input.Tenant.ID, email, identifier, input.Metadata.IP, "unknown user")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		s.metrics.RecordLogin("inactive")
		return nil, ErrAccountInactive
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, s.failLogin(ctx, input.Tenant.ID, email, identifier, input.Metadata.IP, "wrong password")
	}

	if err := s.throttle.RecordSuccess(ctx, identifier); err != nil {
		s.log.Warn("clear login attempts failed", zap.Error(err))
	}

	device := domain.ProfileDevice(input.Metadata)

	// Score before the session exists so the current login does not count
	// itself as a known device.
	secCtx, err := s.trust.Evaluate(ctx, user, device, nil, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := domain.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		TenantID:     input.Tenant.ID,
		Device:       device,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	roles := []string{string(user.Role)}
	perms := domain.PermissionsForRole(user.Role)

	tokens, err := s.issuer.Issue(security.IssueInput{
		UserID:      user.ID,
		Email:       user.Email,
		TenantID:    input.Tenant.ID,
		SessionID:   session.ID,
		Roles:       roles,
		Permissions: perms,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("update last login failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
	lastLogin := now
	user.LastLogin = &lastLogin

	s.metrics.RecordLogin("success")
	s.publishLoginSucceeded(ctx, input.Tenant.ID, user.ID, session, secCtx)

	s.log.Info("login succeeded",
		zap.String("tenant_id", input.Tenant.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("session_id", session.ID),
		zap.Int("trust_score", secCtx.TrustScore),
	)

	return &LoginResult{
		Tokens:   tokens,
		User:     user,
		Tenant:   input.Tenant,
		Session:  &session,
		Security: secCtx,
	}, nil
}

// Logout revokes the presented token and deletes its session. It is
// idempotent: a missing, expired, or already-revoked token still succeeds.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil
	}

	claims, err := s.issuer.Verify(rawToken, security.TokenTypeAccess)
	if err != nil {
		// Nothing trustworthy to revoke; logout still succeeds.
		return nil
	}

	now := s.now()
	if ttl := claims.Remaining(now); ttl > 0 {
		if err := s.revocations.Revoke(ctx, security.HashToken(rawToken), "logout", ttl); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		s.metrics.RecordTokenRevoked()
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.publishSessionRevoked(ctx, claims.TenantID, claims.UserID, claims.SessionID, "logout")

	s.log.Info("logout",
		zap.String("user_id", claims.UserID),
		zap.String("session_id", claims.SessionID),
	)
	return nil
}

// Refresh exchanges a refresh token for a new pair tied to the same session.
// The spent refresh token is revoked for its remaining validity.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return nil, ErrMissingToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, security.HashToken(rawRefresh))
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.issuer.Verify(rawRefresh, security.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	// Roles and permissions are recomputed here, so a refresh picks up
	// role changes even though a live access token does not.
	tokens, err := s.issuer.Issue(security.IssueInput{
		UserID:      user.ID,
		Email:       user.Email,
		TenantID:    claims.TenantID,
		SessionID:   session.ID,
		Roles:       []string{string(user.Role)},
		Permissions: domain.PermissionsForRole(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	now := s.now()
	if ttl := claims.Remaining(now); ttl > 0 {
		if err := s.revocations.Revoke(ctx, security.HashToken(rawRefresh), "rotated", ttl); err != nil {
			return nil, fmt.Errorf("revoke spent refresh token: %w", err)
		}
		s.metrics.RecordTokenRevoked()
	}

	if err := s.sessions.Touch(ctx, session.ID, now); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("touch session failed", zap.Error(err))
	}

	return &LoginResult{
		Tokens:  tokens,
		User:    user,
		Session: session,
	}, nil
}

// AuthContext is the outcome of a successful pass through the authorization
// gate.
type AuthContext struct {
	Claims   *security.Claims
	User     *domain.User
	Session  *domain.Session
	Device   domain.DeviceInfo
	Security domain.SecurityContext
}

// Authenticate runs the per-request gate: blacklist, signature, session
// liveness, tenant claim, user state, then risk evaluation. The session's
// last activity is bumped as a side effect.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string, tenant *domain.Tenant, meta domain.RequestMetadata) (*AuthContext, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrMissingToken
	}

	// Blacklist first: a revoked token must fail even if it still verifies.
	revoked, err := s.revocations.IsRevoked(ctx, security.HashToken(rawToken))
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.issuer.Verify(rawToken, security.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if tenant != nil && claims.TenantID != tenant.ID {
		return nil, ErrTenantMismatch
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	device := domain.ProfileDevice(meta)

	recentFailures := 0
	if meta.IP != "" {
		if failures, err := s.throttle.Failures(ctx, meta.IP); err == nil {
			recentFailures = failures
		}
	}

	secCtx, err := s.trust.Evaluate(ctx, user, device, session, recentFailures)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.sessions.Touch(ctx, session.ID, now); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("touch session failed", zap.Error(err))
	}
	session.LastActivity = now

	return &AuthContext{
		Claims:   claims,
		User:     user,
		Session:  session,
		Device:   device,
		Security: secCtx,
	}, nil
}

// throttleIdentifier keys failure tracking by client IP when known, falling
// back to the tenant-scoped email.
func (s *AuthService) throttleIdentifier(tenantID, email, ip string) string {
	if strings.TrimSpace(ip) != "" {
		return ip
	}
	return tenantID + ":" + email
}

func (s *AuthService) failLogin(ctx context.Context, tenantID, email, identifier, ip, reason string) error {
	failures, locked, err := s.throttle.RecordFailure(ctx, identifier)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	s.metrics.RecordLogin("failure")
	s.publishLoginFailed(ctx, tenantID, email, reason, ip, failures)

	s.log.Info("login failed",
		zap.String("tenant_id", tenantID),
		zap.String("email", logger.MaskEmail(email)),
		zap.String("ip", logger.MaskIP(ip)),
		zap.Int("failures", failures),
	)

	if locked {
		s.metrics.RecordLockout()
		lockUntil := s.now().Add(s.throttle.LockDuration())
		s.publishAccountLocked(ctx, tenantID, identifier, lockUntil)
	}

	return ErrInvalidCredentials
}

func (s *AuthService) publishLoginSucceeded(ctx context.Context, tenantID, userID string, session domain.Session, secCtx domain.SecurityContext) {
	if s.events == nil {
		return
	}
	event := domain.LoginSucceededEvent{
		TenantID:    tenantID,
		UserID:      userID,
		SessionID:   session.ID,
		Fingerprint: session.Device.Fingerprint,
		TrustScore:  secCtx.TrustScore,
		RiskTier:    secCtx.RiskTier,
		IP:          session.Device.IP,
		OccurredAt:  s.now(),
	}
	if err := s.events.PublishLoginSucceeded(ctx, event); err != nil {
		s.log.Warn("publish login succeeded event failed", zap.Error(err))
	}
}

func (s *AuthService) publishLoginFailed(ctx context.Context, tenantID, email, reason, ip string, failures int) {
	if s.events == nil {
		return
	}
	event := domain.LoginFailedEvent{
		TenantID:   tenantID,
		Email:      logger.MaskEmail(email),
		Reason:     reason,
		IP:         ip,
		Failures:   failures,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishLoginFailed(ctx, event); err != nil {
		s.log.Warn("publish login failed event failed", zap.Error(err))
	}
}

func (s *AuthService) publishAccountLocked(ctx context.Context, tenantID, identifier string, lockUntil time.Time) {
	if s.events == nil {
		return
	}
	event := domain.AccountLockedEvent{
		TenantID:   tenantID,
		Identifier: identifier,
		LockUntil:  lockUntil,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishAccountLocked(ctx, event); err != nil {
		s.log.Warn("publish account locked event failed", zap.Error(err))
	}
}

func (s *AuthService) publishSessionRevoked(ctx context.Context, tenantID, userID, sessionID, reason string) {
	if s.events == nil {
		return
	}
	event := domain.SessionRevokedEvent{
		TenantID:   tenantID,
		UserID:     userID,
		SessionID:  sessionID,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishSessionRevoked(ctx, event); err != nil {
		s.log.Warn("publish session revoked event failed", zap.Error(err))
	}
}
