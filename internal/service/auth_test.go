package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/logger"
	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/service"
)

const (
	masterPassword = "master-pw"
	lockoutWindow  = 5 * time.Minute
)

type authFixture struct {
	auth  *service.Authenticator
	repos *repository.Repositories
	clock *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	repos := newRepos(t)
	seedAccount(t, repos, "alice", "secret", models.RoleAdmin)
	seedAccount(t, repos, models.MasterUsername, masterPassword, models.RoleMaster)

	clock := newFakeClock()
	policy := service.LockoutPolicy{Threshold: 3, Duration: lockoutWindow}

	return &authFixture{
		auth:  service.NewAuthenticator(repos.Account, policy, clock.Now, logger.Discard()),
		repos: repos,
		clock: clock,
	}
}

func (f *authFixture) login(t *testing.T, password string, override service.Overrider) *service.Decision {
	t.Helper()
	decision, err := f.auth.Authenticate(context.Background(), "alice", password, override)
	require.NoError(t, err)
	return decision
}

func (f *authFixture) account(t *testing.T) *models.Account {
	t.Helper()
	account, err := f.repos.Account.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	return account
}

func supply(password string) service.Overrider {
	return service.OverriderFunc(func(context.Context, *service.Decision) (string, bool, error) {
		return password, true, nil
	})
}

func TestAuthenticateGranted(t *testing.T) {
	f := newAuthFixture(t)

	decision := f.login(t, "secret", nil)
	assert.Equal(t, service.OutcomeGranted, decision.Outcome)
	assert.Equal(t, models.RoleAdmin, decision.Role)
}

func TestAuthenticateSuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)

	first := f.login(t, "wrong", nil)
	assert.Equal(t, service.OutcomeDenied, first.Outcome)
	assert.Equal(t, 1, first.Attempts)
	assert.False(t, first.Warning)

	second := f.login(t, "wrong", nil)
	assert.Equal(t, 2, second.Attempts)
	assert.True(t, second.Warning, "next failure locks the account")
	assert.Equal(t, 2, f.account(t).FailedAttempts)

	granted := f.login(t, "secret", nil)
	assert.Equal(t, service.OutcomeGranted, granted.Outcome)

	account := f.account(t)
	assert.Equal(t, 0, account.FailedAttempts)
	assert.Nil(t, account.LockoutTime)
}

func TestAuthenticateLockoutUntilExpiry(t *testing.T) {
	f := newAuthFixture(t)
	start := f.clock.Now()

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	locked := f.login(t, "wrong", nil)
	assert.Equal(t, service.OutcomeLockedOut, locked.Outcome)
	assert.True(t, locked.JustLocked)
	assert.Equal(t, 3, locked.Attempts)
	assert.True(t, locked.LockedUntil.Equal(start.Add(lockoutWindow)))

	// Correct and incorrect passwords are both rejected while locked, and
	// neither moves the expiry nor the counter.
	for _, password := range []string{"secret", "wrong", "secret"} {
		f.clock.Advance(time.Minute)
		decision := f.login(t, password, nil)
		assert.Equal(t, service.OutcomeLockedOut, decision.Outcome, password)
		assert.False(t, decision.JustLocked)
		assert.True(t, decision.LockedUntil.Equal(start.Add(lockoutWindow)))

		account := f.account(t)
		assert.Equal(t, 3, account.FailedAttempts)
		require.NotNil(t, account.LockoutTime)
		assert.True(t, account.LockoutTime.Equal(start.Add(lockoutWindow)))
	}

	f.clock.Advance(2 * time.Minute)
	granted := f.login(t, "secret", nil)
	assert.Equal(t, service.OutcomeGranted, granted.Outcome)

	account := f.account(t)
	assert.Equal(t, 0, account.FailedAttempts)
	assert.Nil(t, account.LockoutTime)
}

func TestAuthenticateExpiredLockoutRelocksOnNextFailure(t *testing.T) {
	f := newAuthFixture(t)

	for range 3 {
		f.login(t, "wrong", nil)
	}
	f.clock.Advance(lockoutWindow)

	var offered *service.Decision
	capture := service.OverriderFunc(func(_ context.Context, locked *service.Decision) (string, bool, error) {
		offered = locked
		return "", false, nil
	})

	decision := f.login(t, "wrong", capture)
	assert.Equal(t, service.OutcomeDenied, decision.Outcome)
	assert.True(t, decision.JustLocked)
	assert.True(t, decision.Escalate)
	assert.Equal(t, 3, decision.Attempts)
	require.NotNil(t, offered, "the override is offered again")

	account := f.account(t)
	assert.Equal(t, 3, account.FailedAttempts)
	require.NotNil(t, account.LockoutTime)
	assert.True(t, account.LockoutTime.Equal(f.clock.Now().Add(lockoutWindow)), "a new expiry is stamped")
}

func TestAuthenticateSuccessAfterExpiryClearsCounter(t *testing.T) {
	f := newAuthFixture(t)

	for range 3 {
		f.login(t, "wrong", nil)
	}
	f.clock.Advance(lockoutWindow)

	assert.Equal(t, service.OutcomeGranted, f.login(t, "secret", nil).Outcome)

	account := f.account(t)
	assert.Equal(t, 0, account.FailedAttempts)
	assert.Nil(t, account.LockoutTime)

	decision := f.login(t, "wrong", nil)
	assert.Equal(t, service.OutcomeDenied, decision.Outcome)
	assert.Equal(t, 1, decision.Attempts)
}

func TestAuthenticateOverrideSeesLockDecision(t *testing.T) {
	f := newAuthFixture(t)
	start := f.clock.Now()

	var offered service.Decision
	capture := service.OverriderFunc(func(_ context.Context, locked *service.Decision) (string, bool, error) {
		offered = *locked
		return masterPassword, true, nil
	})

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	f.login(t, "wrong", capture)

	assert.Equal(t, "alice", offered.Username)
	assert.Equal(t, 3, offered.Attempts)
	assert.Equal(t, 3, offered.Threshold)
	assert.True(t, offered.JustLocked)
	assert.True(t, offered.LockedUntil.Equal(start.Add(lockoutWindow)))
}

func TestAuthenticateOverrideClearsLockout(t *testing.T) {
	f := newAuthFixture(t)

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	decision := f.login(t, "wrong", supply(masterPassword))
	assert.Equal(t, service.OutcomeOverrideGranted, decision.Outcome)
	assert.Equal(t, models.RoleAdmin, decision.Role)
	assert.True(t, decision.JustLocked)
	assert.False(t, decision.Escalate)

	account := f.account(t)
	assert.Equal(t, 0, account.FailedAttempts)
	assert.Nil(t, account.LockoutTime)

	// Still before the original expiry.
	f.clock.Advance(time.Minute)
	assert.Equal(t, service.OutcomeGranted, f.login(t, "secret", nil).Outcome)
}

func TestAuthenticateOverrideFailureEscalates(t *testing.T) {
	f := newAuthFixture(t)

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	decision := f.login(t, "wrong", supply("guess"))
	assert.Equal(t, service.OutcomeDenied, decision.Outcome)
	assert.True(t, decision.Escalate)
	assert.Equal(t, service.ReasonOverrideFailed, decision.Reason)

	assert.Equal(t, service.OutcomeLockedOut, f.login(t, "secret", nil).Outcome)
}

func TestAuthenticateOverrideDeclined(t *testing.T) {
	f := newAuthFixture(t)
	decline := service.OverriderFunc(func(context.Context, *service.Decision) (string, bool, error) {
		return "", false, nil
	})

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	decision := f.login(t, "wrong", decline)
	assert.Equal(t, service.OutcomeDenied, decision.Outcome)
	assert.True(t, decision.Escalate)
}

func TestAuthenticateOverridePromptError(t *testing.T) {
	f := newAuthFixture(t)
	broken := service.OverriderFunc(func(context.Context, *service.Decision) (string, bool, error) {
		return "", false, errors.New("stdin closed")
	})

	f.login(t, "wrong", nil)
	f.login(t, "wrong", nil)
	_, err := f.auth.Authenticate(context.Background(), "alice", "wrong", broken)
	require.Error(t, err)

	// The lockout was persisted before the prompt.
	assert.NotNil(t, f.account(t).LockoutTime)
}

func TestAuthenticateUnknownAccounts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for _, username := range []string{"nobody", "master", "MASTER"} {
		decision, err := f.auth.Authenticate(ctx, username, masterPassword, supply(masterPassword))
		require.NoError(t, err, username)
		assert.Equal(t, service.OutcomeDenied, decision.Outcome, username)
		assert.Equal(t, service.ReasonUnknownAccount, decision.Reason, username)
	}
}

func TestAuthenticateUnknownAndBadCredentialLookAlike(t *testing.T) {
	f := newAuthFixture(t)

	unknown, err := f.auth.Authenticate(context.Background(), "nobody", "secret", nil)
	require.NoError(t, err)
	bad := f.login(t, "wrong", nil)

	assert.Equal(t, unknown.Outcome, bad.Outcome)
	assert.NotEqual(t, unknown.Reason, bad.Reason)
}

type brokenAccounts struct{}

func (brokenAccounts) GetByUsername(context.Context, string) (*models.Account, error) {
	return nil, errors.New("connection refused")
}

func (brokenAccounts) RecordFailure(context.Context, string, int, *time.Time) error {
	return errors.New("connection refused")
}

func (brokenAccounts) ClearFailures(context.Context, string) error {
	return errors.New("connection refused")
}

func TestAuthenticateStoreUnavailable(t *testing.T) {
	auth := service.NewAuthenticator(brokenAccounts{}, service.LockoutPolicy{Threshold: 3, Duration: lockoutWindow}, nil, logger.Discard())

	_, err := auth.Authenticate(context.Background(), "alice", "secret", nil)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)

	_, err = auth.VerifyMaster(context.Background(), masterPassword)
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
}

func TestVerifyMaster(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	ok, err := f.auth.VerifyMaster(ctx, masterPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.auth.VerifyMaster(ctx, "secret")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.repos.Account.Delete(ctx, models.MasterUsername))
	ok, err = f.auth.VerifyMaster(ctx, masterPassword)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecisionErr(t *testing.T) {
	f := newAuthFixture(t)

	denied := f.login(t, "wrong", nil)
	assert.NoError(t, denied.Err())

	f.login(t, "wrong", nil)
	locked := f.login(t, "wrong", nil)
	require.Equal(t, service.OutcomeLockedOut, locked.Outcome)

	err := locked.Err()
	require.ErrorIs(t, err, service.ErrLockedOut)
	var lockedOut *service.LockedOutError
	require.ErrorAs(t, err, &lockedOut)
	assert.Equal(t, f.clock.Now().Add(lockoutWindow), lockedOut.Until)
}
