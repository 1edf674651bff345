package bankflow

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/bankingdemo/services/bankclient"
)

type FlowStatus string

// Only milestones that survive a handler are stored: a flow with no record
// yet is implicitly idle, and the consent-created/code-received phases live
// only inside a single transition.
const (
	StatusAwaitingCallback    FlowStatus = "awaitingCallback"
	StatusSessionActive       FlowStatus = "sessionActive"
	StatusTransactionsFetched FlowStatus = "transactionsFetched"
	StatusRejected            FlowStatus = "rejected"
)

// FlowState is the per-browser-session record that drives the consent
// handshake. It is keyed by a flow UID carried in a cookie, so a redirect
// from the bank lands back on the same flow.
type FlowState struct {
	UID          string
	Status       FlowStatus
	Country      string
	BankName     string
	Nonce        string
	ConsentURL   string
	LastCode     string
	SessionID    string
	AccountIDs   []string
	CreatedAt    time.Time
	LastModified *time.Time
}

// TransactionsReport aggregates all pages of a transaction listing,
// with per-currency totals summed as decimals.
type TransactionsReport struct {
	AccountID    string
	Count        int
	Totals       map[string]decimal.Decimal
	Transactions []bankclient.Transaction
}

// StateMismatchError signals that the callback carried a state parameter
// that does not match the nonce stored when the consent link was created.
// Security-relevant: the flow attempt is dead, the code is never exchanged.
type StateMismatchError struct {
	FlowUID string
}

func (e *StateMismatchError) Error() string {
	return "state mismatch: callback state does not match the stored nonce"
}

func (e *StateMismatchError) GetHTTPErrorCode() int {
	return http.StatusForbidden
}
