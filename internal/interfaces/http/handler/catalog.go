package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/hms/backend/internal/application/catalog"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles read-only service catalog endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// RegisterRoutes registers catalog routes on the given group
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/catalog/services")
	{
		services.GET("", h.List)
		services.GET("/:id", h.Get)
	}
}

// ListServicesRequest represents the query parameters for catalog listing
type ListServicesRequest struct {
	dto.ListRequest
	HospitalID  string `form:"hospital_id" binding:"omitempty,uuid"`
	ServiceType string `form:"service_type"`
	ActiveOnly  bool   `form:"active_only"`
}

// ServiceDefinitionResponse represents a catalog entry in API responses
type ServiceDefinitionResponse struct {
	ID                 string    `json:"id"`
	ServiceCode        string    `json:"service_code"`
	ServiceName        string    `json:"service_name"`
	ServiceType        string    `json:"service_type"`
	Category           string    `json:"category,omitempty"`
	Description        string    `json:"description,omitempty"`
	UnitPrice          string    `json:"unit_price"`
	TaxPercentage      string    `json:"tax_percentage"`
	DiscountPercentage string    `json:"discount_percentage"`
	IsActive           bool      `json:"is_active"`
	HospitalID         string    `json:"hospital_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Get godoc
// @Summary      Get a service definition by ID
// @Tags         catalog
// @Produce      json
// @Router       /catalog/services/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return
	}

	svc, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toServiceResponse(svc))
}

// List godoc
// @Summary      List service definitions
// @Tags         catalog
// @Produce      json
// @Router       /catalog/services [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var req ListServicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := catalog.ServiceFilter{
		Filter:     req.ToFilter(),
		ActiveOnly: req.ActiveOnly,
	}
	if req.HospitalID != "" {
		id, err := uuid.Parse(req.HospitalID)
		if err != nil {
			h.BadRequest(c, "Invalid hospital ID format")
			return
		}
		filter.HospitalID = &id
	}
	if req.ServiceType != "" {
		serviceType := catalog.ServiceType(req.ServiceType)
		if !serviceType.IsValid() {
			h.BadRequest(c, "Invalid service type")
			return
		}
		filter.ServiceType = &serviceType
	}

	result, err := h.catalogService.ListServices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ServiceDefinitionResponse, len(result.Items))
	for i, svc := range result.Items {
		responses[i] = toServiceResponse(svc)
	}
	h.SuccessWithMeta(c, responses, result.Total, result.Page, result.PageSize)
}

func toServiceResponse(svc *catalog.ServiceDefinition) ServiceDefinitionResponse {
	return ServiceDefinitionResponse{
		ID:                 svc.ID.String(),
		ServiceCode:        svc.ServiceCode,
		ServiceName:        svc.ServiceName,
		ServiceType:        string(svc.ServiceType),
		Category:           svc.Category,
		Description:        svc.Description,
		UnitPrice:          svc.UnitPrice.StringFixed(2),
		TaxPercentage:      svc.TaxPercentage.String(),
		DiscountPercentage: svc.DiscountPercentage.String(),
		IsActive:           svc.IsActive,
		HospitalID:         svc.HospitalID.String(),
		CreatedAt:          svc.CreatedAt,
		UpdatedAt:          svc.UpdatedAt,
	}
}
