package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// AuthClient verifies Firebase ID tokens issued to the mobile and web apps.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

// Verify returns the Firebase UID the token was issued for.
func (f *AuthClient) Verify(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}
