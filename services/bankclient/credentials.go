package bankclient

import (
	"fmt"
	"os"
	"strings"
)

// Credentials identify the application towards the banking API. Immutable
// for the lifetime of a client.
type Credentials struct {
	ApplicationID string
	PrivateKeyPEM string
}

func NewCredentialsFromEnv() (Credentials, error) {
	applicationID := os.Getenv("ENABLE_APP_ID")
	if applicationID == "" {
		return Credentials{}, fmt.Errorf("missing env-var ENABLE_APP_ID")
	}

	privateKey := os.Getenv("ENABLE_PRIVATE_KEY")
	if privateKey == "" {
		return Credentials{}, fmt.Errorf("missing env-var ENABLE_PRIVATE_KEY")
	}

	return Credentials{
		ApplicationID: applicationID,
		PrivateKeyPEM: NormalizePrivateKey(privateKey),
	}, nil
}

// NormalizePrivateKey allows multiline keys stored with literal \n sequences
// in env vars.
func NormalizePrivateKey(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(key, "\\n", "\n"))
}
