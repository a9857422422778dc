package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogUC domain.CatalogUsecase
}

func NewCatalogHandler(public *gin.RouterGroup, catalogUC domain.CatalogUsecase) {
	handler := &CatalogHandler{catalogUC: catalogUC}

	catalog := public.Group("/catalog")
	{
		catalog.GET("/specializations", handler.Specializations)
		catalog.GET("/skills", handler.Skills)
		catalog.GET("/job-requirements", handler.JobRequirements)
		catalog.GET("/trade-interests", handler.TradeInterests)
		catalog.GET("/listing-categories", handler.ListingCategories)
		catalog.GET("/listing-conditions", handler.ListingConditions)
	}
}

// reply renders a lookup list or forwards its error.
func reply[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", items)
}

// Specializations godoc
// @Summary      Trade specializations
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Specialization}
// @Router       /catalog/specializations [get]
func (h *CatalogHandler) Specializations(c *gin.Context) {
	items, err := h.catalogUC.Specializations(c.Request.Context())
	reply(c, items, err)
}

// Skills godoc
// @Summary      Skills
// @Tags         catalog
// @Produce      json
// @Param        specialization_id  query     int  false  "Only skills of this specialization"
// @Success      200                {object}  response.Response{data=[]domain.Skill}
// @Failure      422                {object}  response.Response
// @Router       /catalog/skills [get]
func (h *CatalogHandler) Skills(c *gin.Context) {
	specializationID, err := optionalInt64(c, "specialization_id")
	if err != nil {
		c.Error(err)
		return
	}
	items, err := h.catalogUC.Skills(c.Request.Context(), specializationID)
	reply(c, items, err)
}

// JobRequirements godoc
// @Summary      Contractor job requirements
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.JobRequirement}
// @Router       /catalog/job-requirements [get]
func (h *CatalogHandler) JobRequirements(c *gin.Context) {
	items, err := h.catalogUC.JobRequirements(c.Request.Context())
	reply(c, items, err)
}

// TradeInterests godoc
// @Summary      Apprentice trade interests
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.TradeInterest}
// @Router       /catalog/trade-interests [get]
func (h *CatalogHandler) TradeInterests(c *gin.Context) {
	items, err := h.catalogUC.TradeInterests(c.Request.Context())
	reply(c, items, err)
}

// ListingCategories godoc
// @Summary      Marketplace categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CatalogItem}
// @Router       /catalog/listing-categories [get]
func (h *CatalogHandler) ListingCategories(c *gin.Context) {
	items, err := h.catalogUC.ListingCategories(c.Request.Context())
	reply(c, items, err)
}

// ListingConditions godoc
// @Summary      Marketplace item conditions
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CatalogItem}
// @Router       /catalog/listing-conditions [get]
func (h *CatalogHandler) ListingConditions(c *gin.Context) {
	items, err := h.catalogUC.ListingConditions(c.Request.Context())
	reply(c, items, err)
}
