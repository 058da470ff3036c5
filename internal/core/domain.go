package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Deposit  TransactionType = "deposit"
	Withdraw TransactionType = "withdraw"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is one ledger entry as returned by the wallet backend.
	// Records are immutable once fetched; views over them are derived copies.
	Transaction struct {
		ID          string
		Amount      Money
		Type        TransactionType
		Description string
		CreatedAt   time.Time
	}

	// Profile is the session-scoped user profile.
	Profile struct {
		UserID    string
		Name      string
		Email     string
		ImageURL  string
		CreatedAt time.Time
	}

	// MonthlyPoint is a pre-aggregated deposit/withdraw sum for one month (1-12).
	MonthlyPoint struct {
		Month    int
		Deposit  Money
		Withdraw Money
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyTransactionID = errors.New("empty transaction id")
	ErrDuplicateID        = errors.New("duplicate transaction id")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdraw:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyTransactionID
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}

// ValidateTransactions checks the data contract at the fetch boundary:
// every record valid and every ID unique. A duplicate ID is a backend
// contract violation and must surface, never be hidden by the UI.
func ValidateTransactions(txs []Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
		if _, ok := seen[tx.ID]; ok {
			return ErrDuplicateID
		}
		seen[tx.ID] = struct{}{}
	}
	return nil
}
