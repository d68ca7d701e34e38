package handlers

import (
	"log/slog"

	"github.com/dzenfone819-debug/neko-finance/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	BackupSvc       BackupService
	CloudSvc        CloudService
}
