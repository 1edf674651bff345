package bankclient

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Bank describes a single ASPSP as returned by the provider. Only the
// fields we consume are mapped; the full provider record is preserved in Raw.
type Bank struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	BIC     string `json:"bic,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (b *Bank) UnmarshalJSON(data []byte) error {
	type bank Bank
	aux := bank{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Bank(aux)
	b.Raw = append(json.RawMessage{}, data...)
	return nil
}

type listBanksResponse struct {
	Aspsps []Bank `json:"aspsps"`
}

// Access describes the data scopes and validity window the end user is
// asked to consent to. ValidUntil is an RFC3339 UTC timestamp with second
// precision and a literal Z suffix, as required by the provider.
type Access struct {
	Balances     bool   `json:"balances"`
	Transactions bool   `json:"transactions"`
	ValidUntil   string `json:"valid_until"`
}

type StartConsentRequest struct {
	BankName    string
	Country     string
	RedirectURL string
	Access      *Access // when nil, a 90-day balances+transactions grant is synthesized
	PSUType     string  // defaults to "personal"
	AuthMethod  string  // omitted from the payload when empty
	State       string  // omitted from the payload when empty
}

type aspspRef struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type startConsentPayload struct {
	Aspsp       aspspRef `json:"aspsp"`
	RedirectURL string   `json:"redirect_url"`
	PSUType     string   `json:"psu_type"`
	Access      *Access  `json:"access"`
	AuthMethod  string   `json:"auth_method,omitempty"`
	State       string   `json:"state,omitempty"`
}

type ConsentResponse struct {
	URL             string `json:"url"`
	AuthorizationID string `json:"authorization_id"`
	PSUIDHash       string `json:"psu_id_hash"`
}

type Account struct {
	ID string `json:"id"`

	Raw json.RawMessage `json:"-"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	type account Account
	aux := account{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Account(aux)
	a.Raw = append(json.RawMessage{}, data...)
	return nil
}

type Session struct {
	SessionID string    `json:"session_id"`
	Accounts  []Account `json:"accounts"`
	Status    string    `json:"status,omitempty"`
}

type exchangeCodePayload struct {
	Code string `json:"code"`
}

// TransactionAmount carries the amount as a decimal: the provider sends
// amounts as strings and floats would corrupt them.
type TransactionAmount struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type Transaction struct {
	TransactionAmount    TransactionAmount `json:"transaction_amount"`
	CreditDebitIndicator string            `json:"credit_debit_indicator,omitempty"`
	Status               string            `json:"status,omitempty"`
	BookingDate          string            `json:"booking_date,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type transaction Transaction
	aux := transaction{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux)
	t.Raw = append(json.RawMessage{}, data...)
	return nil
}

type TransactionPage struct {
	Transactions    []Transaction `json:"transactions"`
	ContinuationKey string        `json:"continuation_key"`
}

// TransactionFilter narrows a transaction listing. Empty fields are left
// out of the request entirely, they are never sent as empty parameters.
type TransactionFilter struct {
	DateFrom        string
	DateTo          string
	ContinuationKey string
}
