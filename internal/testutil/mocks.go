package testutil

import (
	"context"
	"io"
	"time"

	"github.com/splitbook/splitbook-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[domain.UserID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[domain.UserID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id domain.UserID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email address
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByIDs retrieves users by IDs, skipping unknown ones
func (m *MockUserRepository) GetByIDs(ids []domain.UserID) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.ByID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = domain.NewUserID()
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// Update updates an existing user
func (m *MockUserRepository) Update(user *domain.User) (*domain.User, error) {
	if _, ok := m.ByID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates only the user's name by Auth0 ID
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:         domain.NewUserID(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts  map[domain.AccountID]*domain.Account
	GetByIDFn func(id domain.AccountID) (*domain.Account, error)
	UpdateFn  func(account *domain.Account) (*domain.Account, error)
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[domain.AccountID]*domain.Account),
	}
}

// Create stores a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(id domain.AccountID) (*domain.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	if account, ok := m.Accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetByIDs retrieves accounts by IDs, skipping unknown ones
func (m *MockAccountRepository) GetByIDs(ids []domain.AccountID) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if account, ok := m.Accounts[id]; ok {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// GetAllByOwner retrieves every account owned by the user
func (m *MockAccountRepository) GetAllByOwner(ownerID domain.UserID, includeInactive bool) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.OwnerID != ownerID {
			continue
		}
		if !account.Active && !includeInactive {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Update updates an existing account
func (m *MockAccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(account)
	}
	if _, ok := m.Accounts[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	m.Accounts[account.ID] = account
	return account, nil
}

// MockJournalRepository is a mock implementation of domain.JournalRepository
type MockJournalRepository struct {
	Journals  map[domain.JournalID]*domain.Journal
	GetByIDFn func(id domain.JournalID) (*domain.Journal, error)
	SaveFn    func(journal *domain.Journal) error
	SaveCalls int
}

// NewMockJournalRepository creates a new MockJournalRepository
func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		Journals: make(map[domain.JournalID]*domain.Journal),
	}
}

// Create stores a new journal
func (m *MockJournalRepository) Create(journal *domain.Journal) error {
	m.Journals[journal.ID] = journal
	return nil
}

// GetByID retrieves a journal by ID
func (m *MockJournalRepository) GetByID(id domain.JournalID) (*domain.Journal, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	if journal, ok := m.Journals[id]; ok {
		return journal, nil
	}
	return nil, domain.ErrJournalNotFound
}

// GetAllForUser retrieves every journal the user collaborates on
func (m *MockJournalRepository) GetAllForUser(userID domain.UserID) ([]*domain.Journal, error) {
	var journals []*domain.Journal
	for _, journal := range m.Journals {
		if journal.HasCollaborator(userID) {
			journals = append(journals, journal)
		}
	}
	return journals, nil
}

// Save persists the journal aggregate
func (m *MockJournalRepository) Save(journal *domain.Journal) error {
	m.SaveCalls++
	if m.SaveFn != nil {
		return m.SaveFn(journal)
	}
	m.Journals[journal.ID] = journal
	return nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions     map[domain.TransactionID]*domain.Transaction
	GetByIDFn        func(id domain.TransactionID) (*domain.Transaction, error)
	SavePayoffFn     func(payoff *domain.Transaction, settled []*domain.Transaction) error
	SavePayoffCalls  int
	CreateWithJrnlFn func(txn *domain.Transaction, journal *domain.Journal) (*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[domain.TransactionID]*domain.Transaction),
	}
}

// Create stores a new transaction
func (m *MockTransactionRepository) Create(txn *domain.Transaction) (*domain.Transaction, error) {
	m.Transactions[txn.ID] = txn
	return txn, nil
}

// CreateWithJournal stores the transaction and its journal together
func (m *MockTransactionRepository) CreateWithJournal(txn *domain.Transaction, journal *domain.Journal) (*domain.Transaction, error) {
	if m.CreateWithJrnlFn != nil {
		return m.CreateWithJrnlFn(txn, journal)
	}
	m.Transactions[txn.ID] = txn
	return txn, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(id domain.TransactionID) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	if txn, ok := m.Transactions[id]; ok {
		return txn, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetByIDs retrieves transactions by IDs, failing on the first unknown one
func (m *MockTransactionRepository) GetByIDs(ids []domain.TransactionID) ([]*domain.Transaction, error) {
	txns := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		txn, ok := m.Transactions[id]
		if !ok {
			return nil, domain.ErrTransactionNotFound
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// GetByJournal retrieves a journal's transactions, optionally filtered
func (m *MockTransactionRepository) GetByJournal(journalID domain.JournalID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for _, txn := range m.Transactions {
		if txn.JournalID != journalID {
			continue
		}
		if filters != nil {
			if filters.AccountID != nil && txn.AccountID != *filters.AccountID {
				continue
			}
			if filters.Type != nil && txn.Type != *filters.Type {
				continue
			}
			if filters.Status != nil && txn.Status != *filters.Status {
				continue
			}
			if filters.StartDate != nil && txn.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && txn.Date.After(*filters.EndDate) {
				continue
			}
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// GetByAccountInPeriod retrieves a journal's transactions on one account
// falling inside a statement period
func (m *MockTransactionRepository) GetByAccountInPeriod(journalID domain.JournalID, accountID domain.AccountID, period domain.Period) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for _, txn := range m.Transactions {
		if txn.JournalID != journalID || txn.AccountID != accountID {
			continue
		}
		if !period.Contains(txn.Date) {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// Update updates an existing transaction
func (m *MockTransactionRepository) Update(txn *domain.Transaction) (*domain.Transaction, error) {
	if _, ok := m.Transactions[txn.ID]; !ok {
		return nil, domain.ErrTransactionNotFound
	}
	m.Transactions[txn.ID] = txn
	return txn, nil
}

// SavePayoffLinks persists both sides of the payoff link set
func (m *MockTransactionRepository) SavePayoffLinks(payoff *domain.Transaction, settled []*domain.Transaction) error {
	m.SavePayoffCalls++
	if m.SavePayoffFn != nil {
		return m.SavePayoffFn(payoff, settled)
	}
	m.Transactions[payoff.ID] = payoff
	for _, txn := range settled {
		m.Transactions[txn.ID] = txn
	}
	return nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(id domain.TransactionID) error {
	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.Transactions[txn.ID] = txn
}

// MockReceiptRepository is an in-memory stand-in for receipt object storage
type MockReceiptRepository struct {
	Objects  map[string][]byte
	UploadFn func(objectPath string) error
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockReceiptRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectPath); err != nil {
			return "", err
		}
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf
	return objectPath, nil
}

// Delete removes the object
func (m *MockReceiptRepository) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a deterministic fake URL
func (m *MockReceiptRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://receipts.test/" + objectPath, nil
}
