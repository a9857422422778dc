package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, upload gin.HandlerFunc, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	profiles := protected.Group("/profiles")
	{
		profiles.GET("/me", handler.Me)
		profiles.PUT("/laborer", handler.UpdateLaborer)
		profiles.PATCH("/laborer/flags/:flag", handler.SetLaborerFlag)
		profiles.PUT("/contractor", upload, handler.UpdateContractor)
		profiles.PUT("/subcontractor", upload, handler.UpdateSubcontractor)
		profiles.PUT("/apprentice", handler.UpdateApprentice)
		profiles.PATCH("/apprentice/experience-level", handler.UpdateExperienceLevel)
	}
}

type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

type ExperienceLevelRequest struct {
	ExperienceLevel string `json:"experience_level" binding:"required,max=50"`
}

// Me godoc
// @Summary      My role profile
// @Description  Returns the account together with the details record for its user type
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.RoleProfile}
// @Router       /profiles/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profileUC.GetMyProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", profile)
}

// UpdateLaborer godoc
// @Summary      Update laborer details
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UpdateLaborerInput  true  "Laborer details"
// @Success      200      {object}  response.Response{data=domain.LaborerDetails}
// @Failure      403      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /profiles/laborer [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateLaborer(c *gin.Context) {
	var req domain.UpdateLaborerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	details, err := h.profileUC.UpdateLaborer(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", details)
}

// SetLaborerFlag godoc
// @Summary      Set a laborer flag
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        flag     path      string       true  "has_insurance, background_check_completed or looking_for_apprenticeship"
// @Param        request  body      FlagRequest  true  "Value"
// @Success      200      {object}  response.Response{data=domain.LaborerDetails}
// @Failure      400      {object}  response.Response
// @Router       /profiles/laborer/flags/{flag} [patch]
// @Security     BearerAuth
func (h *ProfileHandler) SetLaborerFlag(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	details, err := h.profileUC.SetLaborerFlag(c.Request.Context(), currentUserID(c), domain.LaborerFlag(c.Param("flag")), *req.Value)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", details)
}

// UpdateContractor godoc
// @Summary      Update contractor details
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        job_requirements  formData  []string  false  "Job requirement slugs"  collectionFormat(multi)
// @Param        insurance_file    formData  file      false  "Insurance document (pdf, doc, docx or image)"
// @Success      200               {object}  response.Response{data=domain.ContractorDetails}
// @Failure      422               {object}  response.Response
// @Router       /profiles/contractor [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateContractor(c *gin.Context) {
	var req domain.UpdateContractorInput
	if err := c.ShouldBind(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	insurance, err := optionalUpload(c, "insurance_file", maxDocumentBytes)
	if err != nil {
		c.Error(err)
		return
	}

	details, err := h.profileUC.UpdateContractor(c.Request.Context(), currentUserID(c), req, insurance)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", details)
}

// UpdateSubcontractor godoc
// @Summary      Upload subcontractor insurance
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        insurance_file  formData  file  true  "Insurance document (pdf, doc, docx or image)"
// @Success      200             {object}  response.Response{data=domain.SubcontractorDetails}
// @Failure      422             {object}  response.Response
// @Router       /profiles/subcontractor [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateSubcontractor(c *gin.Context) {
	insurance, err := requiredUpload(c, "insurance_file", maxDocumentBytes)
	if err != nil {
		c.Error(err)
		return
	}

	details, err := h.profileUC.UpdateSubcontractor(c.Request.Context(), currentUserID(c), &insurance)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", details)
}

// UpdateApprentice godoc
// @Summary      Update apprentice details
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UpdateApprenticeInput  true  "Apprentice details"
// @Success      200      {object}  response.Response{data=domain.ApprenticeDetails}
// @Failure      422      {object}  response.Response
// @Router       /profiles/apprentice [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateApprentice(c *gin.Context) {
	var req domain.UpdateApprenticeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	details, err := h.profileUC.UpdateApprentice(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", details)
}

// UpdateExperienceLevel godoc
// @Summary      Update apprentice experience level
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request  body      ExperienceLevelRequest  true  "Experience level"
// @Success      200      {object}  response.Response{data=domain.ApprenticeDetails}
// @Router       /profiles/apprentice/experience-level [patch]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateExperienceLevel(c *gin.Context) {
	var req ExperienceLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	details, err := h.profileUC.UpdateExperienceLevel(c.Request.Context(), currentUserID(c), req.ExperienceLevel)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Experience level updated", details)
}
