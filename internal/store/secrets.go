package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secretID}/versions/latest

type secretStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretStore(client *secretmanager.Client, projectID string) *secretStore {
	return &secretStore{client: client, projectID: projectID}
}

func (s *secretStore) secretName(secretID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, secretID)
}

// Latest returns the payload of the latest version of secretID.
func (s *secretStore) Latest(ctx context.Context, secretID string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName(secretID)),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError("secret " + secretID + " not found")
		}
		return "", errs.NewExternalServiceError("secretmanager", "failed to access secret "+secretID, 0, err)
	}
	return string(res.Payload.Data), nil
}
