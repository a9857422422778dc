package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ApprenticeProfileHandler struct {
	profileUC domain.ApprenticeProfileUsecase
}

func NewApprenticeProfileHandler(protected *gin.RouterGroup, upload gin.HandlerFunc, profileUC domain.ApprenticeProfileUsecase) {
	handler := &ApprenticeProfileHandler{profileUC: profileUC}

	profiles := protected.Group("/apprentice-profiles")
	{
		profiles.GET("", handler.List)
		profiles.POST("/me", upload, handler.Create)
		profiles.PUT("/me", upload, handler.Update)
		profiles.GET("/me", handler.Get)
		profiles.DELETE("/me", handler.Delete)
	}
}

// Create godoc
// @Summary      Create my apprentice profile
// @Tags         apprentice-profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        position_seeking      formData  string  true   "Position sought"
// @Param        age                   formData  int     false  "Age"
// @Param        latitude              formData  number  false  "Latitude"
// @Param        longitude             formData  number  false  "Longitude"
// @Param        city                  formData  string  false  "City"
// @Param        location_text         formData  string  false  "Free-form location"
// @Param        education_experience  formData  string  false  "Education"
// @Param        trade_school          formData  string  false  "Trade school"
// @Param        about_me              formData  string  false  "About me"
// @Param        profile_visible       formData  bool    false  "Visible to hirers"
// @Param        resume                formData  file    false  "Resume (pdf, doc, docx)"
// @Success      201                   {object}  response.Response{data=domain.ApprenticeProfile}
// @Failure      403                   {object}  response.Response
// @Failure      409                   {object}  response.Response
// @Router       /apprentice-profiles/me [post]
// @Security     BearerAuth
func (h *ApprenticeProfileHandler) Create(c *gin.Context) {
	input, resume, err := h.bind(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.CreateProfile(c.Request.Context(), currentUserID(c), input, resume)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Profile created", profile)
}

// Update godoc
// @Summary      Update my apprentice profile
// @Description  Same fields as create, all optional. A new resume replaces the old one.
// @Tags         apprentice-profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume  formData  file  false  "Resume (pdf, doc, docx)"
// @Success      200     {object}  response.Response{data=domain.ApprenticeProfile}
// @Failure      404     {object}  response.Response
// @Router       /apprentice-profiles/me [put]
// @Security     BearerAuth
func (h *ApprenticeProfileHandler) Update(c *gin.Context) {
	input, resume, err := h.bind(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.UpdateProfile(c.Request.Context(), currentUserID(c), input, resume)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

func (h *ApprenticeProfileHandler) bind(c *gin.Context) (domain.ApprenticeProfileInput, *domain.FileUpload, error) {
	var input domain.ApprenticeProfileInput
	if err := c.ShouldBind(&input); err != nil {
		return input, nil, bindError(err)
	}
	resume, err := optionalUpload(c, "resume", maxDocumentBytes)
	return input, resume, err
}

// Get godoc
// @Summary      My apprentice profile
// @Tags         apprentice-profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ApprenticeProfile}
// @Failure      404  {object}  response.Response
// @Router       /apprentice-profiles/me [get]
// @Security     BearerAuth
func (h *ApprenticeProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileUC.GetMyProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", profile)
}

// Delete godoc
// @Summary      Delete my apprentice profile
// @Tags         apprentice-profiles
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /apprentice-profiles/me [delete]
// @Security     BearerAuth
func (h *ApprenticeProfileHandler) Delete(c *gin.Context) {
	if err := h.profileUC.DeleteProfile(c.Request.Context(), currentUserID(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile deleted", nil)
}

// List godoc
// @Summary      Browse apprentice profiles
// @Description  Hirers only. With radius_miles, profiles are limited to that distance from the hirer's stored location.
// @Tags         apprentice-profiles
// @Produce      json
// @Param        radius_miles  query     number  false  "Radius in miles (min 1)"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Page size"
// @Success      200           {object}  response.Response{data=response.Paged}
// @Failure      403           {object}  response.Response
// @Failure      422           {object}  response.Response
// @Router       /apprentice-profiles [get]
// @Security     BearerAuth
func (h *ApprenticeProfileHandler) List(c *gin.Context) {
	radius, err := optionalFloat(c, "radius_miles")
	if err != nil {
		c.Error(err)
		return
	}
	page, limit := pageParams(c)

	profiles, pagination, err := h.profileUC.ListProfiles(c.Request.Context(), currentUserID(c), radius, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: profiles, Pagination: pagination})
}
