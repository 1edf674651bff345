package bankclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MarcGrol/bankingdemo/lib/mylog"
)

const (
	httpClientTimeout = 30 * time.Second
)

type httpBankingAPI struct {
	baseURL    string
	minter     *tokenMinter
	logger     mylog.Logger
	httpClient *http.Client
}

func newHTTPBankingAPI(baseURL string, minter *tokenMinter, timeout time.Duration) *httpBankingAPI {
	if timeout <= 0 {
		timeout = httpClientTimeout
	}

	return &httpBankingAPI{
		baseURL: baseURL,
		minter:  minter,
		logger:  mylog.New("bankclient"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// send performs a single authenticated round trip. A fresh signed token is
// minted per call. Caller-supplied headers are layered after the defaults,
// so they win on key collision.
func (c *httpBankingAPI) send(ctx context.Context, method string, path string, body []byte, headers map[string]string) ([]byte, error) {
	fullURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating http request for %s %s: %s", method, fullURL, err)
	}

	token, err := c.minter.mint()
	if err != nil {
		return nil, fmt.Errorf("error minting token for %s %s: %s", method, fullURL, err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, &TimeoutError{
				Method:  method,
				URL:     fullURL,
				Timeout: c.httpClient.Timeout,
			}
		}
		return nil, fmt.Errorf("error calling %s %s: %s", method, fullURL, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response %s %s: %s", method, fullURL, err)
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Log(ctx, "", mylog.SeverityError, "Banking API error %s %s: %s", method, fullURL, respPayload)
		return nil, &RequestError{
			Method:     method,
			URL:        fullURL,
			StatusCode: httpResp.StatusCode,
			Body:       string(respPayload),
		}
	}

	return respPayload, nil
}
