package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/models"
)

// ErrMasterMismatch is returned when a master-gated operation is given the
// wrong master password.
var ErrMasterMismatch = errors.New("incorrect master password")

// MasterVerifier checks a password against the master credential.
type MasterVerifier interface {
	VerifyMaster(ctx context.Context, password string) (bool, error)
}

// AccountListing is the account list shown to operators. Skipped counts the
// hidden master identities.
type AccountListing struct {
	Accounts []models.Account
	Skipped  int
}

// AccountService handles staff account administration
type AccountService struct {
	repos  *repository.Repositories
	master MasterVerifier
	cost   int
	log    *slog.Logger
}

// NewAccountService creates a new account service. A zero cost uses
// bcrypt.DefaultCost.
func NewAccountService(repos *repository.Repositories, master MasterVerifier, cost int, log *slog.Logger) *AccountService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{
		repos:  repos,
		master: master,
		cost:   cost,
		log:    log,
	}
}

func (s *AccountService) hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// CreateAccount adds a staff, manager or admin account
func (s *AccountService) CreateAccount(ctx context.Context, req models.AccountRequest) (*models.Account, error) {
	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		return nil, invalid("username", "must not be empty")
	case models.IsMasterName(username):
		return nil, invalid("username", "is reserved")
	case req.Password == "":
		return nil, invalid("password", "must not be empty")
	}

	switch req.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleStaff:
	default:
		return nil, invalid("role", "must be admin, staff or manager")
	}

	passwordHash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         req.Role,
	}

	if err := s.repos.Account.Create(ctx, account); err != nil {
		return nil, storeErr("create account", err)
	}

	s.log.Info("account created", "username", username, "role", req.Role)
	return &account, nil
}

// DeleteAccount removes an account. The master identity is reported as not
// found.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if models.IsMasterName(username) {
		return fmt.Errorf("delete account: %w", ErrNotFound)
	}

	if err := s.repos.Account.Delete(ctx, username); err != nil {
		return storeErr("delete account", err)
	}

	s.log.Info("account deleted", "username", username)
	return nil
}

// UpdateAccount renames an account and/or replaces its password. Blank
// fields keep the current value.
func (s *AccountService) UpdateAccount(ctx context.Context, username string, req models.AccountUpdateRequest) (*models.Account, error) {
	username = strings.TrimSpace(username)
	current, err := s.get(ctx, username)
	if err != nil {
		return nil, err
	}

	updated := *current
	if newUsername := strings.TrimSpace(req.Username); newUsername != "" {
		if models.IsMasterName(newUsername) {
			return nil, invalid("username", "is reserved")
		}
		updated.Username = newUsername
	}
	if req.Password != "" {
		passwordHash, err := s.hash(req.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = passwordHash
	}

	if err := s.repos.Account.Update(ctx, current.Username, updated); err != nil {
		return nil, storeErr("update account", err)
	}

	s.log.Info("account updated", "username", current.Username, "new_username", updated.Username)
	return &updated, nil
}

// ResetPassword replaces an account's password
func (s *AccountService) ResetPassword(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if _, err := s.get(ctx, username); err != nil {
		return err
	}
	if password == "" {
		return invalid("password", "must not be empty")
	}

	passwordHash, err := s.hash(password)
	if err != nil {
		return err
	}

	if err := s.repos.Account.UpdatePassword(ctx, username, passwordHash); err != nil {
		return storeErr("reset password", err)
	}

	s.log.Info("password reset", "username", username)
	return nil
}

// ListAccounts lists every account except the master identity
func (s *AccountService) ListAccounts(ctx context.Context) (*AccountListing, error) {
	accounts, err := s.repos.Account.List(ctx)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}

	listing := &AccountListing{Accounts: make([]models.Account, 0, len(accounts))}
	for _, account := range accounts {
		if account.IsMaster() {
			listing.Skipped++
			continue
		}
		account.PasswordHash = ""
		listing.Accounts = append(listing.Accounts, account)
	}

	return listing, nil
}

// ListAccountsDetailed is ListAccounts gated on the master password. The
// caller may show failed attempts and lockout expiry.
func (s *AccountService) ListAccountsDetailed(ctx context.Context, masterPassword string) (*AccountListing, error) {
	ok, err := s.master.VerifyMaster(ctx, masterPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn("detailed account listing refused")
		return nil, ErrMasterMismatch
	}

	return s.ListAccounts(ctx)
}

// EnsureMaster creates the master account with password when none exists.
// It reports whether an account was created.
func (s *AccountService) EnsureMaster(ctx context.Context, password string) (bool, error) {
	_, err := s.repos.Account.GetByUsername(ctx, models.MasterUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, storeErr("ensure master", err)
	}
	if password == "" {
		return false, invalid("master password", "must be configured")
	}

	passwordHash, err := s.hash(password)
	if err != nil {
		return false, err
	}

	account := models.Account{
		Username:     models.MasterUsername,
		PasswordHash: passwordHash,
		Role:         models.RoleMaster,
	}
	if err := s.repos.Account.Create(ctx, account); err != nil {
		return false, storeErr("create master", err)
	}

	s.log.Info("master account created")
	return true, nil
}

func (s *AccountService) get(ctx context.Context, username string) (*models.Account, error) {
	if models.IsMasterName(username) {
		return nil, fmt.Errorf("get account: %w", ErrNotFound)
	}
	account, err := s.repos.Account.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	if account.IsMaster() {
		return nil, fmt.Errorf("get account: %w", ErrNotFound)
	}
	return account, nil
}
