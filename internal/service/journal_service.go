package service

import (
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/websocket"
)

// JournalService handles journal lifecycle and sharing operations
type JournalService struct {
	journalRepo    domain.JournalRepository
	accountRepo    domain.AccountRepository
	userRepo       domain.UserRepository
	eventPublisher websocket.EventPublisher
}

// NewJournalService creates a new JournalService
func NewJournalService(journalRepo domain.JournalRepository, accountRepo domain.AccountRepository, userRepo domain.UserRepository) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *JournalService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *JournalService) publishEvent(journalID domain.JournalID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(journalID.String(), event)
	}
}

// CreateJournal creates a journal owned by the user
func (s *JournalService) CreateJournal(ownerID domain.UserID, title, currency string) (*domain.Journal, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}

	journal, err := domain.NewJournal(owner.ID, owner.Email, title, currency)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Create(journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// GetJournal retrieves a journal, checking membership
func (s *JournalService) GetJournal(userID domain.UserID, id domain.JournalID) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	return journal, nil
}

// GetJournalsForUser retrieves every journal the user collaborates on
func (s *JournalService) GetJournalsForUser(userID domain.UserID) ([]*domain.Journal, error) {
	return s.journalRepo.GetAllForUser(userID)
}

// InviteCollaborator grants a user, looked up by email, access to the
// journal. Only the owner shares a journal.
func (s *JournalService) InviteCollaborator(ownerID domain.UserID, journalID domain.JournalID, email string, permission domain.Permission) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if journal.OwnerID != ownerID {
		return nil, domain.NewJournalNotAccessibleError(ownerID)
	}

	invitee, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if err := journal.AddCollaborator(invitee.ID, permission); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}

// RemoveCollaborator revokes a user's access. Removing an absent collaborator
// is a no-op; the journal is only saved when something changed.
func (s *JournalService) RemoveCollaborator(ownerID domain.UserID, journalID domain.JournalID, userID domain.UserID) (bool, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return false, err
	}
	if journal.OwnerID != ownerID {
		return false, domain.NewJournalNotAccessibleError(ownerID)
	}

	removed, err := journal.RemoveCollaborator(userID)
	if err != nil || !removed {
		return removed, err
	}
	if err := s.journalRepo.Save(journal); err != nil {
		return false, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return true, nil
}

// LinkAccount attaches an account owned by a collaborator to the journal
func (s *JournalService) LinkAccount(userID domain.UserID, journalID domain.JournalID, accountID domain.AccountID) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(account.OwnerID) {
		return nil, domain.NewJournalNotAccessibleError(account.OwnerID)
	}

	if err := journal.LinkAccount(account.ID, account.OwnerID); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}

// UnlinkAccount detaches an account from the journal
func (s *JournalService) UnlinkAccount(userID domain.UserID, journalID domain.JournalID, accountID domain.AccountID) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	if err := journal.UnlinkAccount(accountID); err != nil {
		return nil, err
	}
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}

// UpdateTags adds and removes journal tags in one pass
func (s *JournalService) UpdateTags(userID domain.UserID, journalID domain.JournalID, add, remove []string) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	journal.AddTags(add)
	journal.RemoveTags(remove)
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}

// SetApprovalRequirement toggles whether new transactions start pending.
// Owner only.
func (s *JournalService) SetApprovalRequirement(ownerID domain.UserID, journalID domain.JournalID, required bool) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if journal.OwnerID != ownerID {
		return nil, domain.NewJournalNotAccessibleError(ownerID)
	}

	journal.SetApprovalRequirement(required)
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}

// SetArchived archives or unarchives the journal. Owner only.
func (s *JournalService) SetArchived(ownerID domain.UserID, journalID domain.JournalID, archived bool) (*domain.Journal, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if journal.OwnerID != ownerID {
		return nil, domain.NewJournalNotAccessibleError(ownerID)
	}

	if archived {
		journal.Archive()
	} else {
		journal.Unarchive()
	}
	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.JournalUpdated(journal))
	return journal, nil
}
