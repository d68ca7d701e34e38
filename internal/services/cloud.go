package services

import (
	"context"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/cloud"
	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

type cloudMirror interface {
	IsAvailable() bool
	Save(ctx context.Context, uid string, d cloud.Data) ([]string, error)
	Load(ctx context.Context, uid string) (cloud.Data, error)
	Clear(ctx context.Context, uid string) error
	LastSyncTime(ctx context.Context, uid string) (int64, error)
}

type exporter interface {
	Export(ctx context.Context, uid string) (*models.Snapshot, error)
}

type cloudService struct {
	mirror   cloudMirror
	exporter exporter
	restorer restorer
	clockNow func() time.Time
}

func NewCloudService(mirror cloudMirror, exporter exporter, restorer restorer) *cloudService {
	return &cloudService{
		mirror:   mirror,
		exporter: exporter,
		restorer: restorer,
		clockNow: time.Now,
	}
}

func (s *cloudService) Available() bool {
	return s.mirror != nil && s.mirror.IsAvailable()
}

// Sync copies the user's current collections into cloud storage.
func (s *cloudService) Sync(ctx context.Context, uid string) (dto.CloudSyncResult, error) {
	if !s.Available() {
		return dto.CloudSyncResult{}, errs.NewCloudUnavailableError()
	}
	snap, err := s.exporter.Export(ctx, uid)
	if err != nil {
		return dto.CloudSyncResult{}, err
	}
	keys, err := s.mirror.Save(ctx, uid, cloud.DataFromSnapshot(snap))
	if err != nil {
		return dto.CloudSyncResult{}, err
	}
	return dto.CloudSyncResult{SyncedAt: s.clockNow().UTC(), Keys: keys}, nil
}

// Restore replays the collections held in cloud storage.
func (s *cloudService) Restore(ctx context.Context, uid string, opts dto.RestoreOptions) (dto.RestoreReport, error) {
	if !s.Available() {
		return dto.RestoreReport{}, errs.NewCloudUnavailableError()
	}
	d, err := s.mirror.Load(ctx, uid)
	if err != nil {
		return dto.RestoreReport{}, err
	}
	if d.LastSync == 0 && isEmpty(d) {
		return dto.RestoreReport{}, errs.NewNotFoundError("no cloud backup found")
	}
	logger.FromContext(ctx).Info("restoring from cloud", "last_sync", d.LastSync)
	return s.restorer.Restore(ctx, uid, d.Snapshot(), opts), nil
}

func (s *cloudService) Clear(ctx context.Context, uid string) error {
	if !s.Available() {
		return errs.NewCloudUnavailableError()
	}
	return s.mirror.Clear(ctx, uid)
}

func (s *cloudService) LastSync(ctx context.Context, uid string) (dto.LastSyncResponse, error) {
	if !s.Available() {
		return dto.LastSyncResponse{}, errs.NewCloudUnavailableError()
	}
	ms, err := s.mirror.LastSyncTime(ctx, uid)
	if err != nil {
		return dto.LastSyncResponse{}, err
	}
	resp := dto.LastSyncResponse{LastSync: ms}
	if ms > 0 {
		at := time.UnixMilli(ms).UTC()
		resp.At = &at
	}
	return resp, nil
}

func isEmpty(d cloud.Data) bool {
	return len(d.Transactions) == 0 &&
		len(d.Accounts) == 0 &&
		len(d.Goals) == 0 &&
		d.Budget == nil &&
		len(d.Categories) == 0 &&
		len(d.Limits) == 0
}
