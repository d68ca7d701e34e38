package secret

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/secretmanager"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/dzenfone819-debug/neko-finance/infra/common"
)

// SetupAPIToken stores the legacy REST API token and grants the API
// service account read access. It returns the secret id for
// NEKOAPITOKENSECRET.
func SetupAPIToken(ctx *pulumi.Context, prov *gcp.Provider, apiSA *serviceaccount.Account) (pulumi.StringOutput, error) {
	nekoCfg := config.New(ctx, "neko")
	empty := pulumi.String("").ToStringOutput()

	svc, err := projects.NewService(ctx, "secretManagerService", &projects.ServiceArgs{
		Service: pulumi.String("secretmanager.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return empty, err
	}

	s, err := addSecret(ctx, prov, "nekoApiToken", "neko-api-token", nekoCfg.RequireSecret("apiToken"), svc)
	if err != nil {
		return empty, err
	}

	_, err = secretmanager.NewSecretIamMember(ctx, "nekoApiTokenAccessor", &secretmanager.SecretIamMemberArgs{
		SecretId: s.ID(),
		Role:     pulumi.String("roles/secretmanager.secretAccessor"),
		Member:   common.Member(apiSA),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return empty, err
	}

	return s.SecretId, nil
}

func addSecret(ctx *pulumi.Context,
	prov *gcp.Provider,
	resourceName,
	secretID string,
	value pulumi.StringInput,
	res ...pulumi.Resource) (*secretmanager.Secret, error) {
	s, err := secretmanager.NewSecret(ctx, resourceName, &secretmanager.SecretArgs{
		SecretId: pulumi.String(secretID),
		Replication: &secretmanager.SecretReplicationArgs{
			Auto: &secretmanager.SecretReplicationAutoArgs{},
		},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
	if err != nil {
		return nil, err
	}

	_, err = secretmanager.NewSecretVersion(ctx, resourceName+"Version", &secretmanager.SecretVersionArgs{
		Secret:     s.ID(),
		SecretData: value,
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
