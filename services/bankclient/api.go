package bankclient

import (
	"context"
)

const (
	// DefaultBaseURL is the production host of the banking API.
	DefaultBaseURL = "https://api.enablebanking.com"

	// DefaultMaxPages bounds transaction aggregation so a misbehaving
	// provider can never make us loop on continuation keys forever.
	DefaultMaxPages = 20
)

//go:generate mockgen -source=api.go -package bankclient -destination client_mock.go BankingClient
type BankingClient interface {
	ListBanks(c context.Context, country string) ([]Bank, error)
	StartConsent(c context.Context, req StartConsentRequest) (ConsentResponse, error)
	ExchangeCode(c context.Context, code string) (Session, error)
	GetSession(c context.Context, sessionID string) (Session, error)
	GetTransactions(c context.Context, accountID string, filter TransactionFilter) (TransactionPage, error)
	FetchAllTransactions(c context.Context, accountID string, filter TransactionFilter, maxPages int) ([]Transaction, error)
}
