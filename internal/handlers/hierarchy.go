package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
)

type HierarchyHandler struct {
	groupService   services.GroupService
	projectService services.ProjectService
	sampleService  services.SampleService
}

func NewHierarchyHandler(gsvc services.GroupService, psvc services.ProjectService, ssvc services.SampleService) *HierarchyHandler {
	return &HierarchyHandler{groupService: gsvc, projectService: psvc, sampleService: ssvc}
}

// POST /api/groups
func (h *HierarchyHandler) CreateGroup(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), body.Name)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, group)
}

// POST /api/projects
func (h *HierarchyHandler) CreateProject(c *gin.Context) {
	var body struct {
		GroupID uuid.UUID `json:"group_id"`
		Name    string    `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), body.GroupID, body.Name)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, project)
}

// POST /api/samples
func (h *HierarchyHandler) CreateSample(c *gin.Context) {
	var body struct {
		ProjectID uuid.UUID `json:"project_id"`
		Name      string    `json:"name"`
		Scientist string    `json:"scientist"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sample, err := h.sampleService.Create(c.Request.Context(), body.ProjectID, body.Name, body.Scientist)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_failed", err)
		return
	}
	RespondCreated(c, sample)
}

// GET /api/samples/:id
func (h *HierarchyHandler) GetSample(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sample, err := h.sampleService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, sample)
}
