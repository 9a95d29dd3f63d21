// Package secrets resolves run-time secrets from Google Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// Accessor reads the payload of one secret version
type Accessor interface {
	Access(ctx context.Context, name string) ([]byte, error)
	Close() error
}

// SecretManager implements Accessor with the Secret Manager API
type SecretManager struct {
	client *secretmanager.Client
}

// NewSecretManager creates a Secret Manager client. When credentialsFile is
// empty, Application Default Credentials are used.
func NewSecretManager(ctx context.Context, credentialsFile string) (*SecretManager, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManager{client: client}, nil
}

// Access returns the payload of a secret version
func (s *SecretManager) Access(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	return resp.GetPayload().GetData(), nil
}

// Close closes the underlying client
func (s *SecretManager) Close() error {
	return s.client.Close()
}

// Resolve returns value when it is set, otherwise the trimmed payload of the
// secret version named by secretName.
func Resolve(ctx context.Context, accessor Accessor, value, secretName string) (string, error) {
	if value != "" || secretName == "" {
		return value, nil
	}

	if !ValidVersionName(secretName) {
		return "", fmt.Errorf("invalid secret version name %q, expected projects/*/secrets/*/versions/*", secretName)
	}

	payload, err := accessor.Access(ctx, secretName)
	if err != nil {
		return "", err
	}

	resolved := strings.TrimRight(string(payload), "\r\n")
	if resolved == "" {
		return "", fmt.Errorf("secret %s is empty", secretName)
	}
	return resolved, nil
}

// ValidVersionName reports whether name looks like projects/P/secrets/S/versions/V
func ValidVersionName(name string) bool {
	parts := strings.Split(name, "/")
	if len(parts) != 6 {
		return false
	}
	if parts[0] != "projects" || parts[2] != "secrets" || parts[4] != "versions" {
		return false
	}
	return parts[1] != "" && parts[3] != "" && parts[5] != ""
}
