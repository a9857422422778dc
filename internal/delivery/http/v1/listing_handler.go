package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingUC domain.ListingUsecase
}

func NewListingHandler(public, protected *gin.RouterGroup, upload gin.HandlerFunc, listingUC domain.ListingUsecase) {
	handler := &ListingHandler{listingUC: listingUC}

	publicListings := public.Group("/listings")
	{
		publicListings.GET("", handler.List)
		publicListings.GET("/:code", handler.GetDetails)
	}

	protectedListings := protected.Group("/listings")
	{
		protectedListings.POST("", upload, handler.Create)
		protectedListings.GET("/mine", handler.ListMine)
		protectedListings.PUT("/:code", upload, handler.Update)
		protectedListings.DELETE("/:code", handler.Delete)
	}
}

// List godoc
// @Summary      Browse marketplace listings
// @Description  Active listings only, newest first
// @Tags         listings
// @Produce      json
// @Param        search        query     string  false  "Matches title or description"
// @Param        category_id   query     int     false  "Category"
// @Param        condition_id  query     int     false  "Condition"
// @Param        min_price     query     number  false  "Minimum price"
// @Param        max_price     query     number  false  "Maximum price"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Page size"
// @Success      200           {object}  response.Response{data=response.Paged}
// @Failure      422           {object}  response.Response
// @Router       /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	var filter domain.ListingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(bindError(err))
		return
	}

	listings, pagination, err := h.listingUC.ListListings(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: listings, Pagination: pagination})
}

// GetDetails godoc
// @Summary      Listing details
// @Tags         listings
// @Produce      json
// @Param        code  path      string  true  "Listing code"
// @Success      200   {object}  response.Response{data=domain.ListingView}
// @Failure      404   {object}  response.Response
// @Router       /listings/{code} [get]
func (h *ListingHandler) GetDetails(c *gin.Context) {
	listing, err := h.listingUC.GetListing(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", listing)
}

// Create godoc
// @Summary      Create a listing
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Param        title         formData  string  true   "Title"
// @Param        category_id   formData  int     true   "Category"
// @Param        condition_id  formData  int     true   "Condition"
// @Param        price         formData  number  true   "Price in USD"
// @Param        location      formData  string  true   "Location name"
// @Param        latitude      formData  number  false  "Latitude"
// @Param        longitude     formData  number  false  "Longitude"
// @Param        description   formData  string  false  "Description"
// @Param        images        formData  file    false  "Up to 5 images"
// @Success      201           {object}  response.Response{data=domain.Listing}
// @Failure      422           {object}  response.Response
// @Failure      429           {object}  response.Response
// @Router       /listings [post]
// @Security     BearerAuth
func (h *ListingHandler) Create(c *gin.Context) {
	var req domain.CreateListingInput
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	images, err := multiUpload(c, "images", maxImageBytes)
	if err != nil {
		c.Error(err)
		return
	}

	listing, err := h.listingUC.CreateListing(c.Request.Context(), currentUserID(c), req, images)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Listing created", listing)
}

// ListMine godoc
// @Summary      My listings
// @Tags         listings
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=response.Paged}
// @Router       /listings/mine [get]
// @Security     BearerAuth
func (h *ListingHandler) ListMine(c *gin.Context) {
	page, limit := pageParams(c)

	listings, pagination, err := h.listingUC.ListMyListings(c.Request.Context(), currentUserID(c), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: listings, Pagination: pagination})
}

// Update godoc
// @Summary      Edit a listing
// @Description  Owner only. New images are appended; remove_image_ids drops existing ones.
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Param        code              path      string    true   "Listing code"
// @Param        status            formData  string    false  "active, inactive or sold"
// @Param        remove_image_ids  formData  []string  false  "Image codes to remove"  collectionFormat(multi)
// @Param        images            formData  file      false  "Additional images"
// @Success      200               {object}  response.Response{data=domain.Listing}
// @Failure      403               {object}  response.Response
// @Failure      422               {object}  response.Response
// @Router       /listings/{code} [put]
// @Security     BearerAuth
func (h *ListingHandler) Update(c *gin.Context) {
	var req domain.UpdateListingInput
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	images, err := multiUpload(c, "images", maxImageBytes)
	if err != nil {
		c.Error(err)
		return
	}

	listing, err := h.listingUC.UpdateListing(c.Request.Context(), currentUserID(c), c.Param("code"), req, images)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listing updated", listing)
}

// Delete godoc
// @Summary      Delete a listing
// @Tags         listings
// @Produce      json
// @Param        code  path      string  true  "Listing code"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /listings/{code} [delete]
// @Security     BearerAuth
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listingUC.DeleteListing(c.Request.Context(), currentUserID(c), c.Param("code")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listing deleted", nil)
}
