package bankclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MarcGrol/bankingdemo/lib/mytime"
)

const (
	defaultPSUType     = "personal"
	defaultConsentDays = 90
)

type client struct {
	api   *httpBankingAPI
	nower mytime.Nower
}

// New creates a client against the given base URL (DefaultBaseURL when
// empty). The client is stateless: all consent/session state lives at the
// provider.
func New(creds Credentials, baseURL string, nower mytime.Nower) (*client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	minter, err := newTokenMinter(creds, nower)
	if err != nil {
		return nil, fmt.Errorf("error creating token-minter: %s", err)
	}

	return &client{
		api:   newHTTPBankingAPI(baseURL, minter, httpClientTimeout),
		nower: nower,
	}, nil
}

func (c *client) ListBanks(ctx context.Context, country string) ([]Bank, error) {
	params := url.Values{
		"country": []string{country},
	}

	respPayload, err := c.api.send(ctx, http.MethodGet, "/aspsps?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	resp := listBanksResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing aspsps response: %s", err)
	}

	if resp.Aspsps == nil {
		return []Bank{}, nil
	}

	return resp.Aspsps, nil
}

func (c *client) StartConsent(ctx context.Context, req StartConsentRequest) (ConsentResponse, error) {
	psuType := req.PSUType
	if psuType == "" {
		psuType = defaultPSUType
	}

	access := req.Access
	if access == nil {
		access = c.defaultAccess()
	}

	payload, err := json.Marshal(startConsentPayload{
		Aspsp: aspspRef{
			Name:    req.BankName,
			Country: req.Country,
		},
		RedirectURL: req.RedirectURL,
		PSUType:     psuType,
		Access:      access,
		AuthMethod:  req.AuthMethod,
		State:       req.State,
	})
	if err != nil {
		return ConsentResponse{}, fmt.Errorf("error marshalling auth request: %s", err)
	}

	respPayload, err := c.api.send(ctx, http.MethodPost, "/auth", payload, nil)
	if err != nil {
		return ConsentResponse{}, err
	}

	resp := ConsentResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return ConsentResponse{}, fmt.Errorf("error parsing auth response: %s", err)
	}

	return resp, nil
}

func (c *client) defaultAccess() *Access {
	validUntil := c.nower.Now().Add(defaultConsentDays * 24 * time.Hour)

	return &Access{
		Balances:     true,
		Transactions: true,
		ValidUntil:   formatRFC3339UTC(validUntil),
	}
}

// formatRFC3339UTC renders the timestamp the way the provider insists on:
// UTC, second precision, literal Z suffix (never +00:00).
func formatRFC3339UTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func (c *client) ExchangeCode(ctx context.Context, code string) (Session, error) {
	payload, err := json.Marshal(exchangeCodePayload{
		Code: code,
	})
	if err != nil {
		return Session{}, fmt.Errorf("error marshalling sessions request: %s", err)
	}

	respPayload, err := c.api.send(ctx, http.MethodPost, "/sessions", payload, nil)
	if err != nil {
		return Session{}, err
	}

	session := Session{}
	err = json.Unmarshal(respPayload, &session)
	if err != nil {
		return Session{}, fmt.Errorf("error parsing sessions response: %s", err)
	}

	return session, nil
}

func (c *client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	respPayload, err := c.api.send(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, nil)
	if err != nil {
		return Session{}, err
	}

	session := Session{}
	err = json.Unmarshal(respPayload, &session)
	if err != nil {
		return Session{}, fmt.Errorf("error parsing session response: %s", err)
	}

	return session, nil
}

func (c *client) GetTransactions(ctx context.Context, accountID string, filter TransactionFilter) (TransactionPage, error) {
	path := "/accounts/" + url.PathEscape(accountID) + "/transactions"

	// absent filters must stay absent: the provider treats empty values
	// as invalid input
	params := url.Values{}
	if filter.DateFrom != "" {
		params.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		params.Set("date_to", filter.DateTo)
	}
	if filter.ContinuationKey != "" {
		params.Set("continuation_key", filter.ContinuationKey)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	respPayload, err := c.api.send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return TransactionPage{}, err
	}

	page := TransactionPage{}
	err = json.Unmarshal(respPayload, &page)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("error parsing transactions response: %s", err)
	}

	return page, nil
}

func (c *client) FetchAllTransactions(ctx context.Context, accountID string, filter TransactionFilter, maxPages int) ([]Transaction, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	allTransactions := []Transaction{}
	continuationKey := filter.ContinuationKey

	for pageCount := 0; pageCount < maxPages; pageCount++ {
		page, err := c.GetTransactions(ctx, accountID, TransactionFilter{
			DateFrom:        filter.DateFrom,
			DateTo:          filter.DateTo,
			ContinuationKey: continuationKey,
		})
		if err != nil {
			// no retry: abort the whole aggregation
			return nil, err
		}

		allTransactions = append(allTransactions, page.Transactions...)

		continuationKey = page.ContinuationKey
		if continuationKey == "" {
			break
		}
	}

	return allTransactions, nil
}
