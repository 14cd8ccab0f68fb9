package domain

import (
	"strings"
	"time"
)

// Permission is a collaborator's access level on a journal
type Permission string

const (
	PermissionOwner Permission = "owner"
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Collaborator is a user granted access to a journal
type Collaborator struct {
	UserID     UserID     `json:"userId"`
	Permission Permission `json:"permission"`
}

// AccountLink records that an account is linked to a journal. It is a link
// record, not a copy of the account aggregate.
type AccountLink struct {
	AccountID AccountID `json:"accountId"`
	OwnerID   UserID    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Journal is a shared ledger of financial transactions. It owns its
// collaborator, tag and linked-account collections and the repayments
// recorded against it, and guards every mutation with the sharing and
// archival invariants. Exactly one collaborator ever holds the owner
// permission, and it is always OwnerID.
type Journal struct {
	ID               JournalID
	OwnerID          UserID
	OwnerEmail       string
	Title            string
	Currency         string
	CreatedAt        time.Time
	Archived         bool
	RequiresApproval bool

	collaborators map[UserID]Collaborator
	tags          map[TagID]Tag
	accounts      map[AccountID]AccountLink
	repayments    []Repayment
}

// NewJournal creates a journal and auto-inserts the owner as its sole
// owner-permission collaborator
func NewJournal(ownerID UserID, ownerEmail, title, currency string) (*Journal, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrJournalTitleRequired
	}
	if strings.TrimSpace(currency) == "" {
		return nil, ErrCurrencyRequired
	}
	j := &Journal{
		ID:            NewJournalID(),
		OwnerID:       ownerID,
		OwnerEmail:    ownerEmail,
		Title:         strings.TrimSpace(title),
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		CreatedAt:     time.Now().UTC(),
		collaborators: make(map[UserID]Collaborator),
		tags:          make(map[TagID]Tag),
		accounts:      make(map[AccountID]AccountLink),
	}
	j.ensureOwnerCollaborator()
	return j, nil
}

// RestoreJournalInput carries a stored journal record and its collections
type RestoreJournalInput struct {
	ID               JournalID
	OwnerID          UserID
	OwnerEmail       string
	Title            string
	Currency         string
	CreatedAt        time.Time
	Archived         bool
	RequiresApproval bool
	Collaborators    []Collaborator
	Tags             []Tag
	AccountLinks     []AccountLink
	Repayments       []Repayment
}

// RestoreJournal rebuilds a journal from storage. The owner collaborator is
// ensured exactly as in NewJournal, so restored aggregates never omit or
// duplicate the owner entry.
func RestoreJournal(in RestoreJournalInput) *Journal {
	j := &Journal{
		ID:               in.ID,
		OwnerID:          in.OwnerID,
		OwnerEmail:       in.OwnerEmail,
		Title:            in.Title,
		Currency:         in.Currency,
		CreatedAt:        in.CreatedAt,
		Archived:         in.Archived,
		RequiresApproval: in.RequiresApproval,
		collaborators:    make(map[UserID]Collaborator, len(in.Collaborators)),
		tags:             make(map[TagID]Tag, len(in.Tags)),
		accounts:         make(map[AccountID]AccountLink, len(in.AccountLinks)),
		repayments:       append([]Repayment(nil), in.Repayments...),
	}
	for _, c := range in.Collaborators {
		j.collaborators[c.UserID] = c
	}
	for _, t := range in.Tags {
		j.tags[t.ID] = t
	}
	for _, a := range in.AccountLinks {
		j.accounts[a.AccountID] = a
	}
	j.ensureOwnerCollaborator()
	return j
}

func (j *Journal) ensureOwnerCollaborator() {
	j.collaborators[j.OwnerID] = Collaborator{UserID: j.OwnerID, Permission: PermissionOwner}
}

// AddCollaborator grants a user read or write access, overwriting any prior
// grant. The owner cannot be re-granted and owner permission cannot be given
// to others.
func (j *Journal) AddCollaborator(userID UserID, permission Permission) error {
	if userID == j.OwnerID {
		return ErrSelfPermission
	}
	if permission == PermissionOwner {
		return ErrOwnerPermissionGrant
	}
	if permission != PermissionRead && permission != PermissionWrite {
		return ErrInvalidPermission
	}
	j.collaborators[userID] = Collaborator{UserID: userID, Permission: permission}
	return nil
}

// RemoveCollaborator revokes a user's access. Removing the owner is an
// error; removing an absent collaborator is a harmless no-op returning false.
func (j *Journal) RemoveCollaborator(userID UserID) (bool, error) {
	if userID == j.OwnerID {
		return false, ErrOwnerRemoval
	}
	if _, ok := j.collaborators[userID]; !ok {
		return false, nil
	}
	delete(j.collaborators, userID)
	return true, nil
}

// HasCollaborator reports journal membership
func (j *Journal) HasCollaborator(userID UserID) bool {
	_, ok := j.collaborators[userID]
	return ok
}

// PermissionOf returns the user's permission and whether they are a member
func (j *Journal) PermissionOf(userID UserID) (Permission, bool) {
	c, ok := j.collaborators[userID]
	return c.Permission, ok
}

// CanWrite reports whether the user may mutate journal content
func (j *Journal) CanWrite(userID UserID) bool {
	p, ok := j.collaborators[userID]
	return ok && (p.Permission == PermissionOwner || p.Permission == PermissionWrite)
}

// Collaborators returns the collaborator set
func (j *Journal) Collaborators() []Collaborator {
	out := make([]Collaborator, 0, len(j.collaborators))
	for _, c := range j.collaborators {
		out = append(out, c)
	}
	return out
}

// AddTags normalizes and inserts tags by derived id. Re-adding an existing
// tag name is silently absorbed.
func (j *Journal) AddTags(names []string) {
	for _, name := range names {
		tag := NewTag(name)
		if tag.ID == "" {
			continue
		}
		j.tags[tag.ID] = tag
	}
}

// RemoveTags removes tags by derived id; absent tags are silently ignored
func (j *Journal) RemoveTags(names []string) {
	for _, name := range names {
		delete(j.tags, NewTag(name).ID)
	}
}

// HasTag normalizes the name and checks membership
func (j *Journal) HasTag(name string) bool {
	_, ok := j.tags[NewTag(name).ID]
	return ok
}

// Tags returns the tag set
func (j *Journal) Tags() []Tag {
	out := make([]Tag, 0, len(j.tags))
	for _, t := range j.tags {
		out = append(out, t)
	}
	return out
}

// LinkAccount attaches an account link record to the journal
func (j *Journal) LinkAccount(accountID AccountID, ownerID UserID) error {
	if j.Archived {
		return ErrJournalArchived
	}
	if _, ok := j.accounts[accountID]; ok {
		return ErrAccountAlreadyLinked
	}
	j.accounts[accountID] = AccountLink{
		AccountID: accountID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// UnlinkAccount removes an account link record
func (j *Journal) UnlinkAccount(accountID AccountID) error {
	if j.Archived {
		return ErrJournalArchived
	}
	if _, ok := j.accounts[accountID]; !ok {
		return ErrAccountNotLinked
	}
	delete(j.accounts, accountID)
	return nil
}

// HasAccount reports whether the account is linked
func (j *Journal) HasAccount(accountID AccountID) bool {
	_, ok := j.accounts[accountID]
	return ok
}

// AccountLinks returns the linked-account records
func (j *Journal) AccountLinks() []AccountLink {
	out := make([]AccountLink, 0, len(j.accounts))
	for _, a := range j.accounts {
		out = append(out, a)
	}
	return out
}

// AddRepayment appends a repayment unless one already covers the same
// (account, journal, statement period) triple. A duplicate is silently
// dropped, not an error. Returns whether the repayment was stored.
func (j *Journal) AddRepayment(repayment Repayment) bool {
	for _, existing := range j.repayments {
		if existing.CoversSameStatement(repayment) {
			return false
		}
	}
	j.repayments = append(j.repayments, repayment)
	return true
}

// Repayments returns the repayments recorded on this journal
func (j *Journal) Repayments() []Repayment {
	return append([]Repayment(nil), j.repayments...)
}

// SetApprovalRequirement toggles whether new transactions start pending.
// Existing transactions are unaffected.
func (j *Journal) SetApprovalRequirement(required bool) {
	j.RequiresApproval = required
}

// Archive disables account-linking operations
func (j *Journal) Archive() {
	j.Archived = true
}

// Unarchive re-enables account-linking operations
func (j *Journal) Unarchive() {
	j.Archived = false
}

// Equals compares journals by identity only
func (j *Journal) Equals(other *Journal) bool {
	return other != nil && j.ID == other.ID
}

// JournalRepository defines the interface for journal persistence. The
// aggregate is loaded and saved whole, including its owned collections.
type JournalRepository interface {
	Create(journal *Journal) error
	GetByID(id JournalID) (*Journal, error)
	GetAllForUser(userID UserID) ([]*Journal, error)
	Save(journal *Journal) error
}
