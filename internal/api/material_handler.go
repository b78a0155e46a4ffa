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

// MaterialV1 is the catalog material shape served under the v1 contract.
// Costs are integer cents; floats never touch money.
type MaterialV1 struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Unit           string    `json:"unit"`
	UnitCostCents  int64     `json:"unit_cost_cents"`
	QuantityOnHand int64     `json:"quantity_on_hand"`
	ReorderLevel   int64     `json:"reorder_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateMaterialRequestV1 represents the request body for adding a material
// to the catalog.
type CreateMaterialRequestV1 struct {
	SKU            string `json:"sku"              validate:"required,max=64"`
	Name           string `json:"name"             validate:"required,max=200"`
	Unit           string `json:"unit"             validate:"required,oneof=ea kg m m2 m3 l"`
	UnitCostCents  int64  `json:"unit_cost_cents"  validate:"gte=0"`
	QuantityOnHand int64  `json:"quantity_on_hand" validate:"gte=0"`
	ReorderLevel   int64  `json:"reorder_level"    validate:"gte=0"`
}

// UpdateMaterialRequestV1 represents the request body for replacing a
// material's mutable fields. The SKU is absent: it is fixed at creation.
// Unit is present so unit-change attempts are rejected by the service
// instead of silently ignored.
type UpdateMaterialRequestV1 struct {
	Name           string `json:"name"             validate:"required,max=200"`
	Unit           string `json:"unit"             validate:"required,oneof=ea kg m m2 m3 l"`
	UnitCostCents  int64  `json:"unit_cost_cents"  validate:"gte=0"`
	QuantityOnHand int64  `json:"quantity_on_hand" validate:"gte=0"`
	ReorderLevel   int64  `json:"reorder_level"    validate:"gte=0"`
}

// MaterialListResponseV1 is the v1 list envelope.
type MaterialListResponseV1 struct {
	Materials []MaterialV1 `json:"materials"`
	Count     int          `json:"count"`
}

// materialCodec translates between one contract version's wire shapes and
// the service layer's inputs and entities.
type materialCodec interface {
	createInput(r *http.Request) (service.CreateMaterialInput, error)
	updateInput(r *http.Request) (service.UpdateMaterialInput, error)
	dto(material *domain.Material) any
	listDTO(materials []*domain.Material) any
}

// materialCodecs pairs each published materials contract with its DTO codec.
var materialCodecs = map[apiversion.Version]materialCodec{
	apiversion.MustParse("v1"): materialCodecV1{},
}

type materialCodecV1 struct{}

func (materialCodecV1) createInput(r *http.Request) (service.CreateMaterialInput, error) {
	var req CreateMaterialRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.CreateMaterialInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.CreateMaterialInput{}, err
	}
	return createMaterialInputV1(req), nil
}

func (materialCodecV1) updateInput(r *http.Request) (service.UpdateMaterialInput, error) {
	var req UpdateMaterialRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.UpdateMaterialInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.UpdateMaterialInput{}, err
	}
	return updateMaterialInputV1(req), nil
}

func (materialCodecV1) dto(material *domain.Material) any {
	return materialToV1(material)
}

func (materialCodecV1) listDTO(materials []*domain.Material) any {
	items := make([]MaterialV1, 0, len(materials))
	for _, material := range materials {
		items = append(items, materialToV1(material))
	}
	return MaterialListResponseV1{Materials: items, Count: len(items)}
}

// createMaterialInputV1 converts a v1 create request to the service input.
func createMaterialInputV1(req CreateMaterialRequestV1) service.CreateMaterialInput {
	return service.CreateMaterialInput{
		SKU:            req.SKU,
		Name:           req.Name,
		Unit:           domain.MaterialUnit(req.Unit),
		UnitCostCents:  req.UnitCostCents,
		QuantityOnHand: req.QuantityOnHand,
		ReorderLevel:   req.ReorderLevel,
	}
}

// updateMaterialInputV1 converts a v1 update request to the service input.
func updateMaterialInputV1(req UpdateMaterialRequestV1) service.UpdateMaterialInput {
	return service.UpdateMaterialInput{
		Name:           req.Name,
		Unit:           domain.MaterialUnit(req.Unit),
		UnitCostCents:  req.UnitCostCents,
		QuantityOnHand: req.QuantityOnHand,
		ReorderLevel:   req.ReorderLevel,
	}
}

// materialToV1 converts a domain.Material to its v1 projection.
func materialToV1(material *domain.Material) MaterialV1 {
	return MaterialV1{
		ID:             material.ID.String(),
		SKU:            material.SKU,
		Name:           material.Name,
		Unit:           string(material.Unit),
		UnitCostCents:  material.UnitCostCents,
		QuantityOnHand: material.QuantityOnHand,
		ReorderLevel:   material.ReorderLevel,
		CreatedAt:      material.CreatedAt,
		UpdatedAt:      material.UpdatedAt,
	}
}

// MaterialHandler handles material catalog requests, dispatching each
// request to the service variant and DTO codec selected by the resolved API
// version.
type MaterialHandler struct {
	variants map[apiversion.Version]materialVariant
	logger   *slog.Logger
}

type materialVariant struct {
	service service.MaterialService
	codec   materialCodec
}

// NewMaterialHandler creates a MaterialHandler serving the given service
// variants. Every wired version must have a DTO codec, so a bad wiring fails
// at startup rather than per request.
func NewMaterialHandler(
	services map[apiversion.Version]service.MaterialService,
	logger *slog.Logger,
) *MaterialHandler {
	if logger == nil {
		panic("logger cannot be nil for MaterialHandler")
	}

	variants := make(map[apiversion.Version]materialVariant, len(services))
	for version, svc := range services {
		codec, ok := materialCodecs[version]
		if !ok {
			panic(fmt.Sprintf("no materials DTO codec for version %s", version))
		}
		variants[version] = materialVariant{service: svc, codec: codec}
	}

	return &MaterialHandler{
		variants: variants,
		logger:   logger.With(slog.String("component", "material_handler")),
	}
}

// variant selects the service/codec pair for the resolved version.
func (h *MaterialHandler) variant(w http.ResponseWriter, r *http.Request) (materialVariant, bool) {
	res, ok := apiversion.FromContext(r.Context())
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: no version resolution in request context", service.ErrVariantUnavailable))
		return materialVariant{}, false
	}

	variant, ok := h.variants[res.Version]
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: materials %s", service.ErrVariantUnavailable, res.Version))
		return materialVariant{}, false
	}

	return variant, true
}

// CreateMaterial handles POST /api/{version}/materials requests.
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
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

	material, err := variant.service.CreateMaterial(r.Context(), input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("material created",
		slog.String("material_id", material.ID.String()),
		slog.String("sku", material.SKU))
	shared.RespondWithJSON(w, r, http.StatusCreated, variant.codec.dto(material))
}

// GetMaterial handles GET /api/{version}/materials/{id} requests.
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	material, err := variant.service.GetMaterial(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(material))
}

// ListMaterials handles GET /api/{version}/materials requests.
func (h *MaterialHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	filter, err := materialFilterFromQuery(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	materials, err := variant.service.ListMaterials(r.Context(), filter)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.listDTO(materials))
}

// UpdateMaterial handles PUT /api/{version}/materials/{id} requests.
func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
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

	material, err := variant.service.UpdateMaterial(r.Context(), id, input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("material updated", slog.String("material_id", material.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(material))
}

// DeleteMaterial handles DELETE /api/{version}/materials/{id} requests.
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
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

	if err := variant.service.DeleteMaterial(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("material deleted", slog.String("material_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// materialFilterFromQuery builds the list filter from query parameters.
// below_reorder=true narrows the list to materials under their reorder level.
func materialFilterFromQuery(r *http.Request) (store.MaterialFilter, error) {
	limit, offset, err := listWindow(r)
	if err != nil {
		return store.MaterialFilter{}, err
	}

	belowReorder, err := boolQuery(r, "below_reorder")
	if err != nil {
		return store.MaterialFilter{}, err
	}

	return store.MaterialFilter{
		Unit:         domain.MaterialUnit(r.URL.Query().Get("unit")),
		BelowReorder: belowReorder,
		Limit:        limit,
		Offset:       offset,
	}, nil
}
