package bankclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/bankingdemo/lib/mytime"
)

func setupClient(t *testing.T, ctrl *gomock.Controller, baseURL string) *client {
	creds, _ := generateTestCredentials(t)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	c, err := New(creds, baseURL, nower)
	assert.NoError(t, err)

	return c
}

func TestListBanks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Banks returned for country", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/aspsps", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "FR", r.URL.Query().Get("country"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			fmt.Fprint(w, `{"aspsps":[{"name":"BNP Paribas","country":"FR","bic":"BNPAFRPP"},{"name":"Société Générale","country":"FR"}]}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		banks, err := c.ListBanks(context.TODO(), "FR")
		assert.NoError(t, err)
		assert.Len(t, banks, 2)
		assert.Equal(t, "BNP Paribas", banks[0].Name)
		assert.Equal(t, "BNPAFRPP", banks[0].BIC)
		assert.Contains(t, string(banks[0].Raw), "BNPAFRPP")
	})

	t.Run("Empty provider response yields empty slice", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/aspsps", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		banks, err := c.ListBanks(context.TODO(), "XX")
		assert.NoError(t, err)
		assert.NotNil(t, banks)
		assert.Empty(t, banks)
	})

	t.Run("Non-2xx response becomes RequestError", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/aspsps", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"provider exploded"}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		_, err := c.ListBanks(context.TODO(), "FR")
		assert.Error(t, err)

		requestErr := &RequestError{}
		assert.True(t, errors.As(err, &requestErr))
		assert.Equal(t, http.MethodGet, requestErr.Method)
		assert.Equal(t, http.StatusInternalServerError, requestErr.StatusCode)
		assert.Contains(t, requestErr.Body, "provider exploded")
	})
}

func TestStartConsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Default access grant is synthesized", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)

			payload := map[string]any{}
			err := json.NewDecoder(r.Body).Decode(&payload)
			assert.NoError(t, err)

			assert.Equal(t, map[string]any{"name": "BNP Paribas", "country": "FR"}, payload["aspsp"])
			assert.Equal(t, "http://localhost:8080/flow/callback", payload["redirect_url"])
			assert.Equal(t, "personal", payload["psu_type"])
			assert.Equal(t, "my-nonce", payload["state"])
			_, hasAuthMethod := payload["auth_method"]
			assert.False(t, hasAuthMethod)

			// fixed clock 2026-01-01T00:00:00Z plus 90 days, second
			// precision, literal Z suffix
			access := payload["access"].(map[string]any)
			assert.Equal(t, true, access["balances"])
			assert.Equal(t, true, access["transactions"])
			assert.Equal(t, "2026-04-01T00:00:00Z", access["valid_until"])

			fmt.Fprint(w, `{"url":"https://bank.example/authorize?x=1","authorization_id":"auth-1"}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		resp, err := c.StartConsent(context.TODO(), StartConsentRequest{
			BankName:    "BNP Paribas",
			Country:     "FR",
			RedirectURL: "http://localhost:8080/flow/callback",
			State:       "my-nonce",
		})
		assert.NoError(t, err)
		assert.Equal(t, "https://bank.example/authorize?x=1", resp.URL)
		assert.Equal(t, "auth-1", resp.AuthorizationID)
	})

	t.Run("Explicit access grant and auth method are passed through", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
			payload := map[string]any{}
			err := json.NewDecoder(r.Body).Decode(&payload)
			assert.NoError(t, err)

			access := payload["access"].(map[string]any)
			assert.Equal(t, "2026-02-01T00:00:00Z", access["valid_until"])
			assert.Equal(t, "redirect", payload["auth_method"])
			_, hasState := payload["state"]
			assert.False(t, hasState)

			fmt.Fprint(w, `{"url":"https://bank.example/authorize"}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		_, err := c.StartConsent(context.TODO(), StartConsentRequest{
			BankName:    "BNP Paribas",
			Country:     "FR",
			RedirectURL: "http://localhost:8080/flow/callback",
			Access: &Access{
				Balances:     true,
				Transactions: true,
				ValidUntil:   "2026-02-01T00:00:00Z",
			},
			AuthMethod: "redirect",
		})
		assert.NoError(t, err)
	})
}

func TestExchangeCodeAndGetSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Exchange code", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)

			payload := map[string]any{}
			err := json.NewDecoder(r.Body).Decode(&payload)
			assert.NoError(t, err)
			assert.Equal(t, "mycode", payload["code"])

			fmt.Fprint(w, `{"session_id":"session-123","accounts":[{"id":"acc-1"},{"id":"acc-2"}]}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		session, err := c.ExchangeCode(context.TODO(), "mycode")
		assert.NoError(t, err)
		assert.Equal(t, "session-123", session.SessionID)
		assert.Len(t, session.Accounts, 2)
		assert.Equal(t, "acc-1", session.Accounts[0].ID)
	})

	t.Run("Get session by id", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/sessions/session-123", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			fmt.Fprint(w, `{"session_id":"session-123","accounts":[{"id":"acc-1"}]}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		session, err := c.GetSession(context.TODO(), "session-123")
		assert.NoError(t, err)
		assert.Len(t, session.Accounts, 1)
	})
}

func TestGetTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("No filters means no query parameters at all", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "", r.URL.RawQuery)
			fmt.Fprint(w, `{"transactions":[]}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		_, err := c.GetTransactions(context.TODO(), "acc-1", TransactionFilter{})
		assert.NoError(t, err)
	})

	t.Run("Filters are passed as query parameters", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2026-01-01", r.URL.Query().Get("date_from"))
			assert.Equal(t, "2026-02-01", r.URL.Query().Get("date_to"))
			assert.Equal(t, "key-1", r.URL.Query().Get("continuation_key"))
			fmt.Fprint(w, `{"transactions":[],"continuation_key":"key-2"}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		page, err := c.GetTransactions(context.TODO(), "acc-1", TransactionFilter{
			DateFrom:        "2026-01-01",
			DateTo:          "2026-02-01",
			ContinuationKey: "key-1",
		})
		assert.NoError(t, err)
		assert.Equal(t, "key-2", page.ContinuationKey)
	})

	t.Run("Amounts are parsed as decimals", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"transactions":[{"transaction_amount":{"currency":"EUR","amount":"12.34"},"credit_debit_indicator":"DBIT"}]}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		page, err := c.GetTransactions(context.TODO(), "acc-1", TransactionFilter{})
		assert.NoError(t, err)
		assert.Len(t, page.Transactions, 1)
		assert.Equal(t, "EUR", page.Transactions[0].TransactionAmount.Currency)
		assert.True(t, page.Transactions[0].TransactionAmount.Amount.Equal(decimal.RequireFromString("12.34")))
		assert.Contains(t, string(page.Transactions[0].Raw), "DBIT")
	})
}

func TestTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Slow round trip becomes TimeoutError", func(t *testing.T) {
		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/aspsps", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, `{}`)
		})

		creds, _ := generateTestCredentials(t)
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		minter, err := newTokenMinter(creds, nower)
		assert.NoError(t, err)

		c := &client{
			api:   newHTTPBankingAPI(ts.URL, minter, 50*time.Millisecond),
			nower: nower,
		}

		_, err = c.ListBanks(context.TODO(), "FR")
		assert.Error(t, err)

		timeoutErr := &TimeoutError{}
		assert.True(t, errors.As(err, &timeoutErr))
		assert.Equal(t, http.MethodGet, timeoutErr.Method)
		assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
	})
}

func TestFetchAllTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Concatenates pages until continuation key is absent", func(t *testing.T) {
		pageCount := 0

		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			pageCount++
			switch pageCount {
			case 1:
				assert.Equal(t, "", r.URL.Query().Get("continuation_key"))
				fmt.Fprint(w, `{"transactions":[{"status":"BOOK"},{"status":"BOOK"}],"continuation_key":"key-1"}`)
			case 2:
				assert.Equal(t, "key-1", r.URL.Query().Get("continuation_key"))
				fmt.Fprint(w, `{"transactions":[{"status":"BOOK"},{"status":"BOOK"}],"continuation_key":"key-2"}`)
			default:
				assert.Equal(t, "key-2", r.URL.Query().Get("continuation_key"))
				fmt.Fprint(w, `{"transactions":[{"status":"BOOK"},{"status":"BOOK"}]}`)
			}
		})

		c := setupClient(t, ctrl, ts.URL)
		transactions, err := c.FetchAllTransactions(context.TODO(), "acc-1", TransactionFilter{}, 0)
		assert.NoError(t, err)
		assert.Len(t, transactions, 6)
		assert.Equal(t, 3, pageCount)
	})

	t.Run("Page ceiling bounds an endlessly continuing server", func(t *testing.T) {
		pageCount := 0

		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			pageCount++
			fmt.Fprint(w, `{"transactions":[{"status":"BOOK"},{"status":"BOOK"}],"continuation_key":"again"}`)
		})

		c := setupClient(t, ctrl, ts.URL)
		transactions, err := c.FetchAllTransactions(context.TODO(), "acc-1", TransactionFilter{}, 2)
		assert.NoError(t, err)
		assert.Len(t, transactions, 4)
		assert.Equal(t, 2, pageCount)
	})

	t.Run("Mid-aggregation error aborts and propagates", func(t *testing.T) {
		pageCount := 0

		mux := http.NewServeMux()
		ts := httptest.NewServer(mux)
		defer ts.Close()

		mux.HandleFunc("/accounts/acc-1/transactions", func(w http.ResponseWriter, r *http.Request) {
			pageCount++
			if pageCount == 1 {
				fmt.Fprint(w, `{"transactions":[{"status":"BOOK"}],"continuation_key":"key-1"}`)
				return
			}
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream gone")
		})

		c := setupClient(t, ctrl, ts.URL)
		transactions, err := c.FetchAllTransactions(context.TODO(), "acc-1", TransactionFilter{}, 0)
		assert.Error(t, err)
		assert.Nil(t, transactions)

		requestErr := &RequestError{}
		assert.True(t, errors.As(err, &requestErr))
		assert.Equal(t, http.StatusBadGateway, requestErr.StatusCode)
		assert.Equal(t, 2, pageCount)
	})
}
