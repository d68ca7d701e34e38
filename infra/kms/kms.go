package kms

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/kms"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/dzenfone819-debug/neko-finance/infra/common"
)

// SetupMirrorKey creates the key that seals cloud mirror values and
// returns its resource name for KMSKEYNAME.
func SetupMirrorKey(ctx *pulumi.Context, prov *gcp.Provider, apiSA *serviceaccount.Account) (pulumi.StringOutput, error) {
	gcpCfg := config.New(ctx, "gcp")
	empty := pulumi.String("").ToStringOutput()

	svc, err := projects.NewService(ctx, "kmsService", &projects.ServiceArgs{
		Service: pulumi.String("cloudkms.googleapis.com"),
	}, pulumi.Provider(prov))
	if err != nil {
		return empty, err
	}

	ring, err := kms.NewKeyRing(ctx, "neko-ring", &kms.KeyRingArgs{
		Location: pulumi.String(gcpCfg.Require("region")),
		Name:     pulumi.String("neko"),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{svc}),
	)
	if err != nil {
		return empty, err
	}

	key, err := kms.NewCryptoKey(ctx, "mirror-key", &kms.CryptoKeyArgs{
		KeyRing:        ring.ID(),
		Name:           pulumi.String("cloud-mirror"),
		Purpose:        pulumi.String("ENCRYPT_DECRYPT"),
		RotationPeriod: pulumi.String("7776000s"), // 90 days
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return empty, err
	}

	_, err = kms.NewCryptoKeyIAMMember(ctx, "mirrorKeyUser", &kms.CryptoKeyIAMMemberArgs{
		CryptoKeyId: key.ID(),
		Role:        pulumi.String("roles/cloudkms.cryptoKeyEncrypterDecrypter"),
		Member:      common.Member(apiSA),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return empty, err
	}

	return key.ID().ToStringOutput(), nil
}
