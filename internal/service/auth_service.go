package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-backend/internal/domain"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo    domain.UserRepository
	journalRepo domain.JournalRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, journalRepo domain.JournalRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		journalRepo: journalRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Journals  []*domain.Journal
	IsNewUser bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// Creates the user on first login and seeds a personal journal for them.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	journals, err := s.journalRepo.GetAllForUser(user.ID)
	if err != nil && !errors.Is(err, domain.ErrJournalNotFound) {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to list journals")
		return nil, err
	}

	if len(journals) == 0 {
		journal, err := s.createPersonalJournal(user)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create personal journal")
			return nil, err
		}
		log.Info().Str("user_id", user.ID.String()).Msg("Created new user with personal journal")
		return &AuthResult{
			User:      user,
			Journals:  []*domain.Journal{journal},
			IsNewUser: true,
		}, nil
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
	return &AuthResult{
		User:      user,
		Journals:  journals,
		IsNewUser: false,
	}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id domain.UserID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

func (s *AuthService) createPersonalJournal(user *domain.User) (*domain.Journal, error) {
	journal, err := domain.NewJournal(user.ID, user.Email, "Personal", defaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Create(journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// defaultCurrency is used for the seeded personal journal; users can create
// journals in any currency afterwards
const defaultCurrency = "USD"
