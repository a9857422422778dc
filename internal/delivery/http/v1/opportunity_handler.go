package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type OpportunityHandler struct {
	opportunityUC domain.OpportunityUsecase
}

func NewOpportunityHandler(protected *gin.RouterGroup, hirersOnly gin.HandlerFunc, opportunityUC domain.OpportunityUsecase) {
	handler := &OpportunityHandler{opportunityUC: opportunityUC}

	opportunities := protected.Group("/opportunities")
	{
		opportunities.GET("", handler.List)
		opportunities.POST("", hirersOnly, handler.Create)
		opportunities.GET("/mine", handler.ListMine)
		opportunities.PUT("/:code", handler.Update)
		opportunities.DELETE("/:code", handler.Delete)
	}
}

// List godoc
// @Summary      Apprenticeship opportunities
// @Description  Newest first. latitude, longitude and radius_miles together limit results by distance.
// @Tags         opportunities
// @Produce      json
// @Param        latitude      query     number  false  "Reference latitude"
// @Param        longitude     query     number  false  "Reference longitude"
// @Param        radius_miles  query     number  false  "Radius in miles (min 1, default 25)"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Page size"
// @Success      200           {object}  response.Response{data=response.Paged}
// @Failure      422           {object}  response.Response
// @Router       /opportunities [get]
// @Security     BearerAuth
func (h *OpportunityHandler) List(c *gin.Context) {
	near, err := nearbyFilter(c)
	if err != nil {
		c.Error(err)
		return
	}
	page, limit := pageParams(c)

	opportunities, pagination, err := h.opportunityUC.ListOpportunities(c.Request.Context(), near, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: opportunities, Pagination: pagination})
}

func nearbyFilter(c *gin.Context) (*domain.NearbyFilter, error) {
	lat, err := optionalFloat(c, "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := optionalFloat(c, "longitude")
	if err != nil {
		return nil, err
	}
	radius, err := optionalFloat(c, "radius_miles")
	if err != nil {
		return nil, err
	}

	switch {
	case lat == nil && lng == nil:
		if radius != nil {
			return nil, apperror.Validation(map[string][]string{"latitude": {"is required with radius_miles"}})
		}
		return nil, nil
	case lat == nil:
		return nil, apperror.Validation(map[string][]string{"latitude": {"is required with longitude"}})
	case lng == nil:
		return nil, apperror.Validation(map[string][]string{"longitude": {"is required with latitude"}})
	}

	near := &domain.NearbyFilter{
		Origin:      domain.GeoPoint{Latitude: *lat, Longitude: *lng},
		RadiusMiles: domain.DefaultSearchRadiusMiles,
	}
	if radius != nil {
		near.RadiusMiles = *radius
	}
	return near, nil
}

// Create godoc
// @Summary      Post an apprenticeship opportunity
// @Description  Contractors and subcontractors only. total_pay_offering is required when compensation_paid is true.
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        opportunity  body      domain.CreateOpportunityInput  true  "Opportunity"
// @Success      201          {object}  response.Response{data=domain.Opportunity}
// @Failure      403          {object}  response.Response
// @Failure      422          {object}  response.Response
// @Router       /opportunities [post]
// @Security     BearerAuth
func (h *OpportunityHandler) Create(c *gin.Context) {
	var req domain.CreateOpportunityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	opportunity, err := h.opportunityUC.PostOpportunity(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Opportunity posted", opportunity)
}

// ListMine godoc
// @Summary      My opportunities
// @Tags         opportunities
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=response.Paged}
// @Router       /opportunities/mine [get]
// @Security     BearerAuth
func (h *OpportunityHandler) ListMine(c *gin.Context) {
	page, limit := pageParams(c)

	opportunities, pagination, err := h.opportunityUC.ListMyOpportunities(c.Request.Context(), currentUserID(c), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: opportunities, Pagination: pagination})
}

// Update godoc
// @Summary      Edit an opportunity
// @Tags         opportunities
// @Accept       json
// @Produce      json
// @Param        code         path      string                         true  "Opportunity code"
// @Param        opportunity  body      domain.UpdateOpportunityInput  true  "Changes"
// @Success      200          {object}  response.Response{data=domain.Opportunity}
// @Failure      403          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /opportunities/{code} [put]
// @Security     BearerAuth
func (h *OpportunityHandler) Update(c *gin.Context) {
	var req domain.UpdateOpportunityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	opportunity, err := h.opportunityUC.UpdateOpportunity(c.Request.Context(), currentUserID(c), c.Param("code"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Opportunity updated", opportunity)
}

// Delete godoc
// @Summary      Delete an opportunity
// @Tags         opportunities
// @Produce      json
// @Param        code  path      string  true  "Opportunity code"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /opportunities/{code} [delete]
// @Security     BearerAuth
func (h *OpportunityHandler) Delete(c *gin.Context) {
	if err := h.opportunityUC.DeleteOpportunity(c.Request.Context(), currentUserID(c), c.Param("code")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Opportunity deleted", nil)
}
