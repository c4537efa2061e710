package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient mints the single-use realtime-store credentials handed back by
// the chat token endpoints. A credential is a Firebase custom token scoped to
// one identity; the caller exchanges it for a live realtime session.
type AuthClient struct {
	client *auth.Client
	apiKey string
}

func NewAuthClient(client *auth.Client, apiKey string) *AuthClient {
	return &AuthClient{
		client: client,
		apiKey: apiKey,
	}
}

func (f *AuthClient) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	return token, nil
}

func (f *AuthClient) CustomTokenWithClaims(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	token, err := f.client.CustomTokenWithClaims(ctx, uid, claims)
	if err != nil {
		return "", err
	}

	return token, nil
}
