package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SystemClock reports wall-clock time in UTC, matching how timestamps are
// stored.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// AccountStore is the slice of the account repository the authenticator
// needs.
type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	RecordFailure(ctx context.Context, username string, attempts int, lockoutTime *time.Time) error
	ClearFailures(ctx context.Context, username string) error
}

// LockoutPolicy bounds consecutive failures before an account locks.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// Outcome is the externally visible result of an authentication attempt.
type Outcome int

const (
	OutcomeDenied Outcome = iota
	OutcomeGranted
	OutcomeLockedOut
	OutcomeOverrideGranted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeOverrideGranted:
		return "override_granted"
	default:
		return "denied"
	}
}

// DenyReason is kept internal to the decision; unknown accounts and bad
// credentials both surface as OutcomeDenied.
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonUnknownAccount
	ReasonBadCredential
	ReasonOverrideFailed
)

// Decision describes one authentication attempt.
type Decision struct {
	Outcome  Outcome
	Username string
	Role     models.Role

	// Attempts is the failed-attempt counter after this attempt.
	Attempts  int
	Threshold int

	// LockedUntil is set for OutcomeLockedOut and for the attempt that
	// triggered a lockout.
	LockedUntil time.Time

	// Warning is true when the next failure locks the account.
	Warning bool

	// JustLocked is true when this attempt reached the threshold.
	JustLocked bool

	// Escalate is true when a master override was attempted and failed.
	Escalate bool

	Reason DenyReason
}

// Err returns a *LockedOutError for a locked-out decision and nil otherwise.
func (d *Decision) Err() error {
	if d.Outcome != OutcomeLockedOut {
		return nil
	}
	return &LockedOutError{Until: d.LockedUntil}
}

// Overrider supplies the master credential once an account has just locked.
// locked carries the attempt count and the new expiry. Returning ok=false
// declines the override.
type Overrider interface {
	MasterPassword(ctx context.Context, locked *Decision) (password string, ok bool, err error)
}

// OverriderFunc adapts a function to Overrider.
type OverriderFunc func(ctx context.Context, locked *Decision) (string, bool, error)

func (f OverriderFunc) MasterPassword(ctx context.Context, locked *Decision) (string, bool, error) {
	return f(ctx, locked)
}

// Authenticator validates admin credentials, tracks failed attempts per
// account and lets the master credential clear a fresh lockout.
type Authenticator struct {
	accounts AccountStore
	policy   LockoutPolicy
	clock    Clock
	log      *slog.Logger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(accounts AccountStore, policy LockoutPolicy, clock Clock, log *slog.Logger) *Authenticator {
	if clock == nil {
		clock = SystemClock
	}
	return &Authenticator{
		accounts: accounts,
		policy:   policy,
		clock:    clock,
		log:      log,
	}
}

// Authenticate runs one attempt of the lockout state machine. A locked
// account is rejected without consuming an attempt. The attempt that reaches
// the threshold stamps the expiry and then offers override, which may be nil.
// The returned error is reserved for store and prompt failures.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string, override Overrider) (*Decision, error) {
	decision := &Decision{
		Outcome:   OutcomeDenied,
		Username:  username,
		Threshold: a.policy.Threshold,
	}

	if models.IsMasterName(username) {
		decision.Reason = ReasonUnknownAccount
		return decision, nil
	}

	account, err := a.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		decision.Reason = ReasonUnknownAccount
		return decision, nil
	}
	if err != nil {
		return nil, storeErr("authenticate", err)
	}
	if account.IsMaster() {
		decision.Reason = ReasonUnknownAccount
		return decision, nil
	}

	now := a.clock()
	if account.LockedAt(now) {
		decision.Outcome = OutcomeLockedOut
		decision.Attempts = account.FailedAttempts
		decision.LockedUntil = *account.LockoutTime
		return decision, nil
	}

	// An elapsed lockout keeps its counter, so the next failure locks again.
	attempts := account.FailedAttempts

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil {
		if err := a.accounts.ClearFailures(ctx, account.Username); err != nil {
			return nil, storeErr("clear failed attempts", err)
		}
		decision.Outcome = OutcomeGranted
		decision.Role = account.Role
		a.log.Info("admin login granted", "username", account.Username, "role", account.Role)
		return decision, nil
	}

	attempts++
	if attempts > a.policy.Threshold {
		attempts = a.policy.Threshold
	}
	decision.Attempts = attempts
	decision.Reason = ReasonBadCredential

	if attempts < a.policy.Threshold {
		if err := a.accounts.RecordFailure(ctx, account.Username, attempts, nil); err != nil {
			return nil, storeErr("record failed attempt", err)
		}
		decision.Warning = attempts == a.policy.Threshold-1
		a.log.Info("admin login denied", "username", account.Username, "attempts", attempts)
		return decision, nil
	}

	until := now.Add(a.policy.Duration)
	if err := a.accounts.RecordFailure(ctx, account.Username, attempts, &until); err != nil {
		return nil, storeErr("record lockout", err)
	}
	decision.JustLocked = true
	decision.LockedUntil = until
	a.log.Warn("account locked", "username", account.Username, "attempts", attempts, "until", until)

	if override == nil {
		decision.Outcome = OutcomeLockedOut
		return decision, nil
	}

	masterPassword, ok, err := override.MasterPassword(ctx, decision)
	if err != nil {
		return nil, fmt.Errorf("master override: %w", err)
	}

	if ok {
		matched, err := a.VerifyMaster(ctx, masterPassword)
		if err != nil {
			return nil, err
		}
		if matched {
			if err := a.accounts.ClearFailures(ctx, account.Username); err != nil {
				return nil, storeErr("clear lockout", err)
			}
			decision.Outcome = OutcomeOverrideGranted
			decision.Role = account.Role
			decision.Attempts = 0
			decision.LockedUntil = time.Time{}
			a.log.Warn("lockout cleared by master override", "username", account.Username)
			return decision, nil
		}
	}

	decision.Reason = ReasonOverrideFailed
	decision.Escalate = true
	a.log.Warn("master override failed", "username", account.Username, "attempted", ok)
	return decision, nil
}

// VerifyMaster reports whether password matches the master credential. A
// missing master account never matches.
func (a *Authenticator) VerifyMaster(ctx context.Context, password string) (bool, error) {
	master, err := a.accounts.GetByUsername(ctx, models.MasterUsername)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("verify master", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(master.PasswordHash), []byte(password)) == nil, nil
}
