package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fitpulse/internal/model"
	"fitpulse/internal/repository"
)

// AccountProvider verifies credentials against stored accounts.
type AccountProvider struct {
	repo             repository.AccountRepository
	defaultAvatarURL string
}

func NewAccountProvider(repo repository.AccountRepository, defaultAvatarURL string) *AccountProvider {
	if defaultAvatarURL == "" {
		defaultAvatarURL = DemoAvatarURL
	}
	return &AccountProvider{
		repo:             repo,
		defaultAvatarURL: defaultAvatarURL,
	}
}

// Login authenticates with email and password.
func (p *AccountProvider) Login(ctx context.Context, email, password string) (*model.UserRecord, error) {
	account, err := p.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			// Don't reveal whether the email exists or not
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return NewProfile(account.ID, account.Name, account.Email, account.AvatarURL, account.CreatedAt), nil
}

// Signup creates an account and returns its empty profile.
func (p *AccountProvider) Signup(ctx context.Context, name, email, password string) (*model.UserRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := p.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		Email:          email,
		PasswordHashed: string(hashedPassword),
		AvatarURL:      p.defaultAvatarURL,
	}
	if err := p.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Printf("[Identity] Account created: id=%s", account.ID)
	return NewProfile(account.ID, account.Name, account.Email, account.AvatarURL, account.CreatedAt), nil
}
