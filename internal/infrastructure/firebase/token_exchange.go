package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken"

// ExchangeCustomToken trades a custom token for a live ID token through the
// Identity Toolkit REST API. The server uses this to authorize its own
// realtime-store reads; the chat client performs the same exchange on its side.
func (f *AuthClient) ExchangeCustomToken(ctx context.Context, customToken string) (string, error) {
	if f.apiKey == "" {
		return "", fmt.Errorf("firebase api key is not configured")
	}

	return ExchangeCustomToken(ctx, http.DefaultClient, identityToolkitURL, f.apiKey, customToken)
}

// ExchangeCustomToken posts a verifyCustomToken request against the given
// endpoint. Exported so the chat client can run the same exchange against a
// configurable endpoint.
func ExchangeCustomToken(ctx context.Context, client *http.Client, endpoint, apiKey, customToken string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"token":             customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", endpoint, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("custom token exchange failed: %s: %s", resp.Status, string(raw))
	}

	var result struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.IDToken == "" {
		return "", fmt.Errorf("custom token exchange returned empty id token")
	}

	return result.IDToken, nil
}
