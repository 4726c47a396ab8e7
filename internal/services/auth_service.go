package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jortega/verid/internal/auth"
	"github.com/jortega/verid/internal/biometric"
	"github.com/jortega/verid/internal/models"
	pkgauth "github.com/jortega/verid/pkg/auth"
	pkglogger "github.com/jortega/verid/pkg/logger"
)

// Authentication result statuses
const (
	AuthStatusGranted        = "granted"
	AuthStatusStepUpRequired = "step_up_required"
)

// AuthAccountStore is the slice of account persistence the orchestrator
// needs
type AuthAccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id string) error
	SetTOTP(ctx context.Context, id string, secret *string, enabled bool) error
}

// ReferenceStore provides the active reference set for matching and keeps
// per-reference usage counters
type ReferenceStore interface {
	ListActive(ctx context.Context, accountID string) ([]*models.BiometricSignature, error)
	RecordVerification(ctx context.Context, signatureID string) error
}

// SignatureMatcher classifies a probe against a reference set
type SignatureMatcher interface {
	ValidateProbe(probe []float64) error
	Match(probe []float64, references [][]float64) (biometric.MatchResult, error)
}

// RequestMeta carries the caller context recorded with every attempt
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuthResult is the outcome of a decided attempt. Session and the token
// pair are set only when Status is granted.
type AuthResult struct {
	Status          string
	AccountID       string
	Score           *float64
	Confidence      *float64 // biometric attempts only
	Session         *models.Session
	AccessToken     string
	RefreshToken    string
	StepUpAvailable bool
}

// AuthService orchestrates the full decision flow: lockout gate, factor
// evaluation, verdict classification, counter bookkeeping, grant issuance,
// and the audit record. It is the only component that sequences these;
// handlers never talk to the matcher or the lockout counter directly.
type AuthService struct {
	accounts   AuthAccountStore
	references ReferenceStore
	matcher    SignatureMatcher
	lockout    *LockoutService
	sessions   *SessionService
	audit      *AuditService
	alerts     AlertSender
	tokens     *auth.TokenManager
	timing     *auth.TimingDelay
	totp       *auth.TOTPManager
	logger     *slog.Logger
	auditLog   *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts AuthAccountStore,
	references ReferenceStore,
	matcher SignatureMatcher,
	lockout *LockoutService,
	sessions *SessionService,
	audit *AuditService,
	alerts AlertSender,
	tokens *auth.TokenManager,
	timing *auth.TimingDelay,
	totp *auth.TOTPManager,
	logger *slog.Logger,
	auditLog *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		accounts:   accounts,
		references: references,
		matcher:    matcher,
		lockout:    lockout,
		sessions:   sessions,
		audit:      audit,
		alerts:     alerts,
		tokens:     tokens,
		timing:     timing,
		totp:       totp,
		logger:     logger,
		auditLog:   auditLog,
	}
}

// Register creates a new account with the credential factor only. The
// biometric factor is added later through enrollment.
func (s *AuthService) Register(ctx context.Context, email, name, secret string) (*models.Account, error) {
	if err := pkgauth.ValidateSecret(secret); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("%w: failed to create account", models.ErrUnavailable)
	}

	s.logger.Info("account registered", slog.String("account_id", account.ID))
	s.auditLog.LogAccountAction("account_registered", account.ID, nil)

	return account, nil
}

// AuthenticateCredential evaluates the knowledge factor. Unknown accounts
// and wrong secrets produce the same error and comparable latency, so the
// endpoint cannot be used to probe which identifiers exist.
func (s *AuthService) AuthenticateCredential(ctx context.Context, email, secret string, meta RequestMeta) (*AuthResult, error) {
	start := time.Now()

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.recordAttempt(ctx, nil, models.FactorCredential, models.OutcomeReject, nil, "unknown_account", meta)
			s.timing.WaitFrom(start, false)
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: failed to load account", models.ErrUnavailable)
	}

	if account.Status != models.AccountStatusActive {
		s.recordAttempt(ctx, &account.ID, models.FactorCredential, models.OutcomeReject, nil, "account_disabled", meta)
		s.timing.WaitFrom(start, false)
		return nil, models.ErrUnauthorized
	}

	if err := s.lockout.Check(account, time.Now()); err != nil {
		s.recordAttempt(ctx, &account.ID, models.FactorCredential, models.OutcomeLocked, nil, "account_locked", meta)
		return nil, err
	}

	if err := pkgauth.CompareSecret(account.PasswordHash, secret); err != nil {
		s.registerFailure(ctx, account, models.FactorCredential, nil, "invalid_credentials", meta)
		s.timing.WaitFrom(start, false)
		return nil, models.ErrUnauthorized
	}

	result, err := s.grant(ctx, account, models.FactorCredential, meta)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, &account.ID, models.FactorCredential, models.OutcomeAccept, nil, "", meta)
	s.timing.WaitFrom(start, true)
	return result, nil
}

// AuthenticateBiometric evaluates the biometric factor for an already
// identified account. A locked account is rejected before the matcher is
// ever invoked. Malformed probes and an empty reference set are precondition
// failures: they produce no attempt record and leave the failure counter
// alone.
func (s *AuthService) AuthenticateBiometric(ctx context.Context, accountID string, probe []float64, meta RequestMeta) (*AuthResult, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.recordAttempt(ctx, nil, models.FactorBiometric, models.OutcomeReject, nil, "unknown_account", meta)
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: failed to load account", models.ErrUnavailable)
	}

	if account.Status != models.AccountStatusActive {
		s.recordAttempt(ctx, &account.ID, models.FactorBiometric, models.OutcomeReject, nil, "account_disabled", meta)
		return nil, models.ErrUnauthorized
	}

	if err := s.lockout.Check(account, time.Now()); err != nil {
		s.recordAttempt(ctx, &account.ID, models.FactorBiometric, models.OutcomeLocked, nil, "account_locked", meta)
		return nil, err
	}

	if err := s.matcher.ValidateProbe(probe); err != nil {
		return nil, err
	}

	references, err := s.references.ListActive(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load reference signatures", models.ErrUnavailable)
	}
	if len(references) == 0 {
		return nil, models.ErrBiometricUnavailable
	}

	vectors := make([][]float64, len(references))
	for i, ref := range references {
		vectors[i] = ref.Vector
	}

	match, err := s.matcher.Match(probe, vectors)
	if err != nil {
		return nil, err
	}
	score := match.BestScore

	switch {
	case match.Verdict.Accepted():
		result, err := s.grant(ctx, account, models.FactorBiometric, meta)
		if err != nil {
			return nil, err
		}
		confidence := match.Confidence
		result.Score = &score
		result.Confidence = &confidence

		matched := references[match.BestIndex]
		if err := s.references.RecordVerification(ctx, matched.ID); err != nil {
			s.logger.Warn("failed to record signature verification",
				slog.String("signature_id", matched.ID),
				slog.String("error", err.Error()))
		}

		s.recordAttempt(ctx, &account.ID, models.FactorBiometric, models.OutcomeAccept, &score, "", meta)
		return result, nil

	case match.Verdict == biometric.VerdictAmbiguous:
		s.registerAmbiguous(ctx, account, &score, meta)
		confidence := match.Confidence
		return &AuthResult{
			Status:          AuthStatusStepUpRequired,
			AccountID:       account.ID,
			Score:           &score,
			Confidence:      &confidence,
			StepUpAvailable: account.TOTPEnabled,
		}, nil

	default:
		s.registerFailure(ctx, account, models.FactorBiometric, &score, "no_match", meta)
		return nil, models.ErrUnauthorized
	}
}

// CompleteStepUp resolves an ambiguous biometric verdict with the TOTP
// factor. A valid code grants a session; an invalid code counts as a
// regular failure.
func (s *AuthService) CompleteStepUp(ctx context.Context, accountID, code string, meta RequestMeta) (*AuthResult, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.recordAttempt(ctx, nil, models.FactorTOTP, models.OutcomeReject, nil, "unknown_account", meta)
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: failed to load account", models.ErrUnavailable)
	}

	if account.Status != models.AccountStatusActive {
		s.recordAttempt(ctx, &account.ID, models.FactorTOTP, models.OutcomeReject, nil, "account_disabled", meta)
		return nil, models.ErrUnauthorized
	}

	if err := s.lockout.Check(account, time.Now()); err != nil {
		s.recordAttempt(ctx, &account.ID, models.FactorTOTP, models.OutcomeLocked, nil, "account_locked", meta)
		return nil, err
	}

	if !account.TOTPEnabled || account.TOTPSecret == nil {
		return nil, fmt.Errorf("%w: step-up factor not configured", models.ErrForbidden)
	}

	valid, err := s.totp.Validate(code, *account.TOTPSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to evaluate step-up code", models.ErrUnavailable)
	}
	if !valid {
		s.registerFailure(ctx, account, models.FactorTOTP, nil, "invalid_code", meta)
		return nil, models.ErrUnauthorized
	}

	result, err := s.grant(ctx, account, models.FactorTOTP, meta)
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, &account.ID, models.FactorTOTP, models.OutcomeAccept, nil, "", meta)
	return result, nil
}

// SetupTOTP generates a fresh step-up secret for an account. The secret is
// stored pending; it does not count as configured until the holder proves
// possession through ActivateTOTP.
func (s *AuthService) SetupTOTP(ctx context.Context, accountID string) (*auth.TOTPSetup, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	setup, err := s.totp.GenerateSetup(account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate step-up secret: %w", err)
	}

	if err := s.accounts.SetTOTP(ctx, account.ID, &setup.Secret, false); err != nil {
		return nil, fmt.Errorf("failed to store step-up secret: %w", err)
	}

	return setup, nil
}

// ActivateTOTP confirms a pending step-up secret with a first valid code.
func (s *AuthService) ActivateTOTP(ctx context.Context, accountID, code string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.TOTPSecret == nil {
		return fmt.Errorf("%w: no pending step-up secret", models.ErrBadRequest)
	}

	valid, err := s.totp.Validate(code, *account.TOTPSecret)
	if err != nil {
		return fmt.Errorf("failed to evaluate step-up code: %w", err)
	}
	if !valid {
		return models.ErrUnauthorized
	}

	if err := s.accounts.SetTOTP(ctx, account.ID, account.TOTPSecret, true); err != nil {
		return fmt.Errorf("failed to activate step-up factor: %w", err)
	}

	s.auditLog.LogAccountAction("totp_activated", account.ID, nil)
	return nil
}

// grant issues the session and the JWT pair for a decided accept. The
// opaque session token stays authoritative for revocation.
func (s *AuthService) grant(ctx context.Context, account *models.Account, factor string, meta RequestMeta) (*AuthResult, error) {
	if err := s.lockout.RegisterSuccess(ctx, account.ID); err != nil {
		s.logger.Error("failed to reset failure counter", slog.Any("error", err))
	}
	if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		s.logger.Error("failed to update last login", slog.Any("error", err))
	}

	session, err := s.sessions.Issue(ctx, account.ID, factor, meta.IPAddress, meta.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to issue session", models.ErrUnavailable)
	}

	accessToken, err := s.tokens.GenerateAccessToken(account.ID, account.Email, factor)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to issue access token", models.ErrUnavailable)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(account.ID, account.Email, factor)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to issue refresh token", models.ErrUnavailable)
	}

	return &AuthResult{
		Status:       AuthStatusGranted,
		AccountID:    account.ID,
		Session:      session,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// registerFailure counts the failure, records the attempt, and fires the
// lockout alert when this failure tripped the lock. Counter errors are
// logged but do not change the verdict already reached.
func (s *AuthService) registerFailure(ctx context.Context, account *models.Account, factor string, score *float64, reason string, meta RequestMeta) {
	tripped, lockedUntil, err := s.lockout.RegisterFailure(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to register failure", slog.Any("error", err))
	}

	s.recordAttempt(ctx, &account.ID, factor, models.OutcomeReject, score, reason, meta)

	if tripped && lockedUntil != nil {
		s.notifyLockout(account, *lockedUntil)
	}
}

// registerAmbiguous records the attempt; the counter moves only when
// ambiguous escalation is configured.
func (s *AuthService) registerAmbiguous(ctx context.Context, account *models.Account, score *float64, meta RequestMeta) {
	tripped, lockedUntil, err := s.lockout.RegisterAmbiguous(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to register ambiguous verdict", slog.Any("error", err))
	}

	s.recordAttempt(ctx, &account.ID, models.FactorBiometric, models.OutcomeAmbiguous, score, "ambiguous_match", meta)

	if tripped && lockedUntil != nil {
		s.notifyLockout(account, *lockedUntil)
	}
}

func (s *AuthService) recordAttempt(ctx context.Context, accountID *string, factor, outcome string, score *float64, reason string, meta RequestMeta) {
	attempt := &models.AuthAttempt{
		AccountID: accountID,
		Factor:    factor,
		Outcome:   outcome,
		Score:     score,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if reason != "" {
		attempt.FailureReason = &reason
	}
	s.audit.RecordAttempt(ctx, attempt)
}

// notifyLockout sends the alert off the request path so a slow mail
// provider cannot stretch authentication latency.
func (s *AuthService) notifyLockout(account *models.Account, lockedUntil time.Time) {
	email, name := account.Email, account.Name
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.alerts.SendLockoutAlert(ctx, email, name, lockedUntil); err != nil {
			s.logger.Error("failed to send lockout alert", slog.Any("error", err))
		}
	}()
}
