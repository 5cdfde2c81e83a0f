// Package ledger defines the records and the store contract the importer and
// exporter work against.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Account is shared between all owners; Number is unique.
type Account struct {
	ID       int64
	Number   string
	Name     string
	Class    int
	Category string
}

type Transaction struct {
	ID          int64
	OwnerID     string
	Date        time.Time
	Description string
	Comment     string
	// VerSeries and VerNumber are set for transactions imported from a
	// verification. The store rejects a second transaction with the same
	// owner, series and number.
	VerSeries string
	VerNumber string
}

// Posting is one side of a transaction. At most one of Debit and Credit is
// positive.
type Posting struct {
	TransactionID int64
	AccountID     int64
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// PostingRow is a posting joined with its transaction and account.
type PostingRow struct {
	TransactionID int64
	Date          time.Time
	Description   string
	Comment       string
	AccountNumber string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

type ImportStatus string

const (
	ImportInProgress ImportStatus = "in-progress"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

type ImportCounts struct {
	Accounts        int `json:"accounts"`
	AccountsCreated int `json:"accountsCreated"`
	Verifications   int `json:"verifications"`
	Transactions    int `json:"transactions"`
	Postings        int `json:"postings"`
	OpeningBalances int `json:"openingBalances"`
	ClosingBalances int `json:"closingBalances"`
	IncomeStatement int `json:"incomeStatement"`
	Skipped         int `json:"skipped"`
}

// ImportLog is the audit trail of one import attempt.
type ImportLog struct {
	ID            uuid.UUID
	OwnerID       string
	FileName      string
	FileSize      int64
	Encoding      string
	SourceProgram string
	SourceOrgNo   string
	SourceCompany string
	DateFrom      string
	DateTo        string
	Counts        ImportCounts
	Status        ImportStatus
	Error         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the durable side of the ledger.
type Store interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	// ListPostingRows returns the owner's postings dated on or before until,
	// ordered by date and transaction.
	ListPostingRows(ctx context.Context, ownerID string, until time.Time) ([]PostingRow, error)
	CreateImportLog(ctx context.Context, log *ImportLog) error
	UpdateImportLog(ctx context.Context, log *ImportLog) error
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work. Nothing written through it is visible to others until
// Commit.
type Tx interface {
	// FindAccountID returns ErrNotFound for an unknown number.
	FindAccountID(ctx context.Context, number string) (int64, error)
	// CreateAccount inserts acc unless its number already exists. acc.ID is
	// set in both cases.
	CreateAccount(ctx context.Context, acc *Account) (created bool, err error)
	InsertTransaction(ctx context.Context, txn *Transaction) (int64, error)
	InsertPosting(ctx context.Context, p Posting) error
	FindTransactionsByDescription(ctx context.Context, ownerID string, descriptions []string) ([]Transaction, error)
	Commit() error
	Rollback() error
}
