package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Seven days, in the duration format the Firestore API expects.
const backupRetention = "604800s"

// SetupFirestore enables the API, creates the native-mode database that holds
// finance data and cloud mirror documents, and schedules daily backups of it.
func SetupFirestore(ctx *pulumi.Context, prov *gcp.Provider) error {
	api, err := projects.NewService(ctx, "firestore", &projects.ServiceArgs{
		Service: pulumi.String("firestore.googleapis.com"),
	}, pulumi.Provider(prov))
	if err != nil {
		return err
	}

	gcpCfg := config.New(ctx, "gcp")
	db, err := firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Project:    pulumi.String(gcpCfg.Require("project")),
		LocationId: pulumi.String(gcpCfg.Require("region")),
		Type:       pulumi.String("FIRESTORE_NATIVE"),
	}, pulumi.Provider(prov), pulumi.DependsOn([]pulumi.Resource{api}))
	if err != nil {
		return err
	}

	_, err = firestore.NewBackupSchedule(ctx, "firestoreDailyBackup", &firestore.BackupScheduleArgs{
		Database:        db.Name,
		Retention:       pulumi.String(backupRetention),
		DailyRecurrence: &firestore.BackupScheduleDailyRecurrenceArgs{},
	}, pulumi.Provider(prov))
	return err
}
