package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/dzenfone819-debug/neko-finance/infra/bucket"
	"github.com/dzenfone819-debug/neko-finance/infra/cloudrun"
	"github.com/dzenfone819-debug/neko-finance/infra/docker"
	"github.com/dzenfone819-debug/neko-finance/infra/firestore"
	"github.com/dzenfone819-debug/neko-finance/infra/identity"
	"github.com/dzenfone819-debug/neko-finance/infra/kms"
	"github.com/dzenfone819-debug/neko-finance/infra/provider"
	"github.com/dzenfone819-debug/neko-finance/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// firebase auth for AUTHMODE=firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		if err := firestore.SetupFirestore(ctx, prov); err != nil {
			return err
		}

		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}

		// cloud mirror storage, sealed with a KMS key
		mirror, err := bucket.SetupMirrorBucket(ctx, prov, apiSA)
		if err != nil {
			return err
		}
		keyID, err := kms.SetupMirrorKey(ctx, prov, apiSA)
		if err != nil {
			return err
		}

		tokenSecret, err := secret.SetupAPIToken(ctx, prov, apiSA)
		if err != nil {
			return err
		}

		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		svc, err := cloudrun.SetupCloudRun(ctx, prov, apiSA, cloudrun.Env{
			MirrorBucket:   mirror,
			KMSKeyName:     keyID,
			APITokenSecret: tokenSecret,
		}, ident, repo)
		if err != nil {
			return err
		}

		ctx.Export("serviceUrl", svc.Statuses.Index(pulumi.Int(0)).Url())
		ctx.Export("mirrorBucket", mirror)
		return nil
	})
}
