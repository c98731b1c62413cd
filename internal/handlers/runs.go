package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

var errNoFiles = errors.New("no files supplied")

type RunHandler struct {
	log          *logger.Logger
	runService   services.RunService
	ingestion    services.IngestionService
	verification services.VerificationService
}

func NewRunHandler(log *logger.Logger, rsvc services.RunService, isvc services.IngestionService, vsvc services.VerificationService) *RunHandler {
	return &RunHandler{
		log:          log.With("handler", "RunHandler"),
		runService:   rsvc,
		ingestion:    isvc,
		verification: vsvc,
	}
}

// POST /api/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var body struct {
		SampleID uuid.UUID `json:"sample_id"`
		Name     string    `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.runService.Create(c.Request.Context(), body.SampleID, body.Name)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, run)
}

// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, reads, err := h.runService.GetWithReads(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, gin.H{"run": run, "reads": reads})
}

// POST /api/runs/:id/reads
// Called once the upload transport reports all of a run's files transferred.
// Relocation is awaited; checksum verification happens later in the
// background.
func (h *RunHandler) ProcessReadFiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var body struct {
		UploadMethod types.UploadMethod     `json:"upload_method"`
		Files        []types.FileDescriptor `json:"files"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if len(body.Files) == 0 {
		RespondError(c, http.StatusBadRequest, "bad_request", errNoFiles)
		return
	}
	err = h.ingestion.ProcessReadFiles(c.Request.Context(), body.Files, id, "", services.UploadInfo{Method: body.UploadMethod})
	if err != nil {
		h.log.Error("Read file processing failed", "run_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "ingestion_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "complete"})
}

// POST /api/runs/:id/additional-files
func (h *RunHandler) ProcessAdditionalFiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var body struct {
		Files []types.FileDescriptor `json:"files"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.runService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	runPath, err := run.RelativePath()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ingestion_failed", err)
		return
	}
	if err := h.ingestion.ProcessAdditionalFiles(c.Request.Context(), body.Files, "run", id, runPath); err != nil {
		RespondError(c, http.StatusInternalServerError, "ingestion_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "complete"})
}

// POST /api/runs/:id/verify
// Operator-triggered verification outside the scheduler. Honors the global
// kill switch the same way the scheduler does.
func (h *RunHandler) VerifyRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	result := h.verification.VerifyRunMD5(c.Request.Context(), id, services.VerifyRunOptions{SkipIfDisabled: true})
	RespondOK(c, result)
}
