package bankclient

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MarcGrol/bankingdemo/lib/mytime"
)

const (
	tokenIssuer   = "enablebanking.com"
	tokenAudience = "api.enablebanking.com"
	tokenValidity = time.Hour
)

// tokenMinter produces the short-lived signed token that authenticates a
// single outbound request. Tokens are never cached: every request gets a
// fresh one.
type tokenMinter struct {
	applicationID string
	privateKey    *rsa.PrivateKey
	nower         mytime.Nower
}

func newTokenMinter(creds Credentials, nower mytime.Nower) (*tokenMinter, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(NormalizePrivateKey(creds.PrivateKeyPEM)))
	if err != nil {
		return nil, fmt.Errorf("error parsing private key: %s", err)
	}

	return &tokenMinter{
		applicationID: creds.ApplicationID,
		privateKey:    privateKey,
		nower:         nower,
	}, nil
}

func (m *tokenMinter) mint() (string, error) {
	now := m.nower.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenValidity)),
	})
	token.Header["kid"] = m.applicationID

	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("error signing token: %s", err)
	}

	return signed, nil
}
