package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dzenfone819-debug/neko-finance/internal/dto"
	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/middleware"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
	"github.com/dzenfone819-debug/neko-finance/internal/response"
	"github.com/dzenfone819-debug/neko-finance/internal/snapshot"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

type BackupService interface {
	Export(ctx context.Context, uid string) (*models.Snapshot, error)
	Import(ctx context.Context, uid string, r io.Reader, opts dto.RestoreOptions) (dto.RestoreReport, error)
	Validate(r io.Reader) (dto.BackupSummary, error)
}

type CloudService interface {
	Sync(ctx context.Context, uid string) (dto.CloudSyncResult, error)
	Restore(ctx context.Context, uid string, opts dto.RestoreOptions) (dto.RestoreReport, error)
	Clear(ctx context.Context, uid string) error
	LastSync(ctx context.Context, uid string) (dto.LastSyncResponse, error)
}

// uploadField is the multipart field that carries a backup file.
const uploadField = "file"

type backupHandlers struct {
	ResponseHandler response.ResponseHandler
	BackupSvc       BackupService
	CloudSvc        CloudService
	clockNow        func() time.Time
}

func NewBackupHandlers(deps *Deps) *backupHandlers {
	return &backupHandlers{
		ResponseHandler: deps.ResponseHandler,
		BackupSvc:       deps.BackupSvc,
		CloudSvc:        deps.CloudSvc,
		clockNow:        time.Now,
	}
}

func (h *backupHandlers) BackupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/validate", h.Validate)
	r.Route("/cloud", func(r chi.Router) {
		r.Post("/", h.CloudSync)
		r.Post("/restore", h.CloudRestore)
		r.Delete("/", h.CloudClear)
		r.Get("/last-sync", h.CloudLastSync)
	})
	return r
}

func (h *backupHandlers) Export(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	snap, err := h.BackupSvc.Export(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, snap); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteAttachment(w, r, snapshot.FileName(h.clockNow()), buf.Bytes())
}

func (h *backupHandlers) Import(w http.ResponseWriter, r *http.Request) {
	opts, err := restoreOptions(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	body, closeBody, err := backupBody(w, r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	defer closeBody()

	uid := middleware.UID(r.Context())
	report, err := h.BackupSvc.Import(r.Context(), uid, body, opts)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, reportStatus(report), report)
}

func (h *backupHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := backupBody(w, r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	defer closeBody()

	summary, err := h.BackupSvc.Validate(body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, summary)
}

func (h *backupHandlers) CloudSync(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	res, err := h.CloudSvc.Sync(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *backupHandlers) CloudRestore(w http.ResponseWriter, r *http.Request) {
	opts, err := restoreOptions(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	report, err := h.CloudSvc.Restore(r.Context(), uid, opts)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, reportStatus(report), report)
}

func (h *backupHandlers) CloudClear(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.CloudSvc.Clear(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *backupHandlers) CloudLastSync(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	res, err := h.CloudSvc.LastSync(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

// restoreOptions reads ?skip=goals,limits and ?remapAccounts=false.
func restoreOptions(r *http.Request) (dto.RestoreOptions, error) {
	opts := dto.DefaultRestoreOptions()
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			step, err := dto.ParseRestoreStep(name)
			if err != nil {
				return opts, errs.NewValidationError(err.Error())
			}
			opts.Disable(step)
		}
	}
	if raw := q.Get("remapAccounts"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errs.NewValidationError("remapAccounts must be true or false")
		}
		opts.RemapAccounts = v
	}
	return opts, nil
}

// backupBody returns the uploaded file for multipart requests and the raw
// body otherwise.
func backupBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, snapshot.MaxSize+1<<20)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(snapshot.MaxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, errs.NewMalformedBackupError("backup file is too large", err)
		}
		return nil, nil, errs.NewValidationError("invalid multipart form")
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, nil, errs.NewValidationError("missing backup file field \"" + uploadField + "\"")
	}
	logger.FromContext(r.Context()).Info("backup uploaded", "filename", header.Filename, "size", header.Size)
	return file, func() { file.Close() }, nil
}

// reportStatus answers 207 when any record or step failed.
func reportStatus(report dto.RestoreReport) int {
	if report.Complete {
		return http.StatusOK
	}
	return http.StatusMultiStatus
}
