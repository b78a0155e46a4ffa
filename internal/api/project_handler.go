package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/service"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// ProjectV1 is the project shape served under the v1 contract. The planning
// window stays hidden; v1 predates it.
type ProjectV1 struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProjectRequestV1 represents the request body for creating a project
// under the v1 contract.
type CreateProjectRequestV1 struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Code        string `json:"code"        validate:"required,min=2,max=20"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequestV1 represents the request body for replacing a
// project's mutable fields under the v1 contract. The v1 status vocabulary
// has no on_hold.
type UpdateProjectRequestV1 struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status"      validate:"required,oneof=draft active archived"`
}

// ProjectListResponseV1 is the v1 list envelope.
type ProjectListResponseV1 struct {
	Projects []ProjectV1 `json:"projects"`
	Count    int         `json:"count"`
}

// ProjectV2 is the project shape served under the v2 contract, which adds the
// planning window.
type ProjectV2 struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProjectRequestV2 represents the request body for creating a project
// under the v2 contract. Dates are optional RFC 3339 timestamps.
type CreateProjectRequestV2 struct {
	Name        string     `json:"name"        validate:"required,max=200"`
	Code        string     `json:"code"        validate:"required,min=2,max=20"`
	Description string     `json:"description" validate:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProjectRequestV2 represents the request body for replacing a
// project's mutable fields under the v2 contract. Updates are full
// replacements: omitted dates clear the stored window.
type UpdateProjectRequestV2 struct {
	Name        string     `json:"name"        validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"      validate:"required,oneof=draft active on_hold archived"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ProjectListResponseV2 is the v2 list envelope.
type ProjectListResponseV2 struct {
	Projects []ProjectV2 `json:"projects"`
	Count    int         `json:"count"`
}

// projectCodec translates between one contract version's wire shapes and the
// service layer's inputs and entities.
type projectCodec interface {
	createInput(r *http.Request) (service.CreateProjectInput, error)
	updateInput(r *http.Request) (service.UpdateProjectInput, error)
	dto(project *domain.Project) any
	listDTO(projects []*domain.Project) any
}

// projectCodecs pairs each published projects contract with its DTO codec.
var projectCodecs = map[apiversion.Version]projectCodec{
	apiversion.MustParse("v1"): projectCodecV1{},
	apiversion.MustParse("v2"): projectCodecV2{},
}

type projectCodecV1 struct{}

func (projectCodecV1) createInput(r *http.Request) (service.CreateProjectInput, error) {
	var req CreateProjectRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.CreateProjectInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.CreateProjectInput{}, err
	}
	return createProjectInputV1(req), nil
}

func (projectCodecV1) updateInput(r *http.Request) (service.UpdateProjectInput, error) {
	var req UpdateProjectRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.UpdateProjectInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.UpdateProjectInput{}, err
	}
	return updateProjectInputV1(req), nil
}

func (projectCodecV1) dto(project *domain.Project) any {
	return projectToV1(project)
}

func (projectCodecV1) listDTO(projects []*domain.Project) any {
	items := make([]ProjectV1, 0, len(projects))
	for _, project := range projects {
		items = append(items, projectToV1(project))
	}
	return ProjectListResponseV1{Projects: items, Count: len(items)}
}

type projectCodecV2 struct{}

func (projectCodecV2) createInput(r *http.Request) (service.CreateProjectInput, error) {
	var req CreateProjectRequestV2
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.CreateProjectInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.CreateProjectInput{}, err
	}
	return createProjectInputV2(req), nil
}

func (projectCodecV2) updateInput(r *http.Request) (service.UpdateProjectInput, error) {
	var req UpdateProjectRequestV2
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.UpdateProjectInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.UpdateProjectInput{}, err
	}
	return updateProjectInputV2(req), nil
}

func (projectCodecV2) dto(project *domain.Project) any {
	return projectToV2(project)
}

func (projectCodecV2) listDTO(projects []*domain.Project) any {
	items := make([]ProjectV2, 0, len(projects))
	for _, project := range projects {
		items = append(items, projectToV2(project))
	}
	return ProjectListResponseV2{Projects: items, Count: len(items)}
}

// createProjectInputV1 converts a v1 create request to the service input.
// V1 never touches the planning window.
func createProjectInputV1(req CreateProjectRequestV1) service.CreateProjectInput {
	return service.CreateProjectInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	}
}

// updateProjectInputV1 converts a v1 update request to the service input.
// A nil schedule leaves the stored dates untouched.
func updateProjectInputV1(req UpdateProjectRequestV1) service.UpdateProjectInput {
	return service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
	}
}

// createProjectInputV2 converts a v2 create request to the service input.
func createProjectInputV2(req CreateProjectRequestV2) service.CreateProjectInput {
	return service.CreateProjectInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Schedule: &service.ProjectSchedule{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
	}
}

// updateProjectInputV2 converts a v2 update request to the service input.
// The schedule is always replaced; omitted dates clear the stored window.
func updateProjectInputV2(req UpdateProjectRequestV2) service.UpdateProjectInput {
	return service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		Schedule: &service.ProjectSchedule{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
	}
}

// projectToV1 converts a domain.Project to its v1 projection.
func projectToV1(project *domain.Project) ProjectV1 {
	return ProjectV1{
		ID:          project.ID.String(),
		Name:        project.Name,
		Code:        project.Code,
		Description: project.Description,
		Status:      string(project.Status),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// projectToV2 converts a domain.Project to its v2 projection.
func projectToV2(project *domain.Project) ProjectV2 {
	return ProjectV2{
		ID:          project.ID.String(),
		Name:        project.Name,
		Code:        project.Code,
		Description: project.Description,
		Status:      string(project.Status),
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ProjectHandler handles project resource requests, dispatching each request
// to the service variant and DTO codec selected by the resolved API version.
type ProjectHandler struct {
	variants map[apiversion.Version]projectVariant
	logger   *slog.Logger
}

type projectVariant struct {
	service service.ProjectService
	codec   projectCodec
}

// NewProjectHandler creates a ProjectHandler serving the given service
// variants. Every wired version must have a DTO codec, so a bad wiring fails
// at startup rather than per request.
func NewProjectHandler(
	services map[apiversion.Version]service.ProjectService,
	logger *slog.Logger,
) *ProjectHandler {
	if logger == nil {
		panic("logger cannot be nil for ProjectHandler")
	}

	variants := make(map[apiversion.Version]projectVariant, len(services))
	for version, svc := range services {
		codec, ok := projectCodecs[version]
		if !ok {
			panic(fmt.Sprintf("no projects DTO codec for version %s", version))
		}
		variants[version] = projectVariant{service: svc, codec: codec}
	}

	return &ProjectHandler{
		variants: variants,
		logger:   logger.With(slog.String("component", "project_handler")),
	}
}

// variant selects the service/codec pair for the resolved version. A miss
// means the version registry and the host wiring disagree, which is an
// operator problem surfaced as a 500.
func (h *ProjectHandler) variant(w http.ResponseWriter, r *http.Request) (projectVariant, bool) {
	res, ok := apiversion.FromContext(r.Context())
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: no version resolution in request context", service.ErrVariantUnavailable))
		return projectVariant{}, false
	}

	variant, ok := h.variants[res.Version]
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: projects %s", service.ErrVariantUnavailable, res.Version))
		return projectVariant{}, false
	}

	return variant, true
}

// CreateProject handles POST /api/{version}/projects requests.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	input, err := variant.codec.createInput(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	project, err := variant.service.CreateProject(r.Context(), input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("code", project.Code))
	shared.RespondWithJSON(w, r, http.StatusCreated, variant.codec.dto(project))
}

// GetProject handles GET /api/{version}/projects/{id} requests.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	project, err := variant.service.GetProject(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(project))
}

// ListProjects handles GET /api/{version}/projects requests.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	filter, err := projectFilterFromQuery(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	projects, err := variant.service.ListProjects(r.Context(), filter)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.listDTO(projects))
}

// UpdateProject handles PUT /api/{version}/projects/{id} requests.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	input, err := variant.codec.updateInput(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	project, err := variant.service.UpdateProject(r.Context(), id, input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("project updated", slog.String("project_id", project.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(project))
}

// DeleteProject handles DELETE /api/{version}/projects/{id} requests.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := variant.service.DeleteProject(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("project deleted", slog.String("project_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// projectFilterFromQuery builds the list filter from query parameters.
// Unknown status values fall through to the store and match nothing.
func projectFilterFromQuery(r *http.Request) (store.ProjectFilter, error) {
	limit, offset, err := listWindow(r)
	if err != nil {
		return store.ProjectFilter{}, err
	}

	return store.ProjectFilter{
		Status: domain.ProjectStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}, nil
}
