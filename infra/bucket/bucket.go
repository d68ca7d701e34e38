package bucket

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/storage"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/dzenfone819-debug/neko-finance/infra/common"
)

// SetupMirrorBucket creates the bucket that holds cloud mirror objects and
// lets the API service account read and write them.
func SetupMirrorBucket(ctx *pulumi.Context, prov *gcp.Provider, apiSA *serviceaccount.Account) (pulumi.StringOutput, error) {
	gcpCfg := config.New(ctx, "gcp")
	mirrorCfg := config.New(ctx, "mirror")
	projectID := gcpCfg.Require("project")

	svc, err := projects.NewService(ctx, "storageService", &projects.ServiceArgs{
		Service: pulumi.String("storage.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	b, err := storage.NewBucket(ctx, "mirrorBucket", &storage.BucketArgs{
		Name:                     pulumi.Sprintf("%s-neko-mirror", projectID),
		Location:                 pulumi.String(gcpCfg.Require("region")),
		UniformBucketLevelAccess: pulumi.Bool(true),
		PublicAccessPrevention:   pulumi.String("enforced"),
		Versioning: &storage.BucketVersioningArgs{
			Enabled: pulumi.Bool(mirrorCfg.GetBool("versioning")),
		},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{svc}),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	_, err = storage.NewBucketIAMMember(ctx, "mirrorObjectAdmin", &storage.BucketIAMMemberArgs{
		Bucket: b.Name,
		Role:   pulumi.String("roles/storage.objectAdmin"),
		Member: common.Member(apiSA),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return pulumi.StringOutput{}, err
	}

	return b.Name, nil
}
