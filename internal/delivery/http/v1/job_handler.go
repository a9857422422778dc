package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type JobHandler struct {
	jobUC domain.JobUsecase
}

// NewJobHandler registers the job routes. contractorsOnly guards creation
// and export.
func NewJobHandler(public, protected *gin.RouterGroup, contractorsOnly gin.HandlerFunc, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("/:code", handler.GetDetails)
	}

	protectedJobs := protected.Group("/jobs")
	{
		// Search only ever returns active postings
		protectedJobs.POST("/search", handler.Search)
		protectedJobs.POST("", contractorsOnly, handler.Create)
		protectedJobs.GET("/mine", handler.ListMine)
		protectedJobs.GET("/export", contractorsOnly, handler.Export)
		protectedJobs.PUT("/:code", handler.Update)
		protectedJobs.PATCH("/:code/status", handler.UpdateStatus)
		protectedJobs.DELETE("/:code", handler.Delete)
	}
}

type UpdateJobStatusRequest struct {
	Status domain.JobStatus `json:"status" binding:"required,oneof=pending active completed cancelled"`
}

// Search godoc
// @Summary      Search jobs
// @Description  Filters active postings by keyword, owner availability, distance, start date, duration, pay floor and pay unit. With a location, results are ordered nearest first; otherwise newest first.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        search  body      domain.SearchRequest  false  "Search criteria"
// @Success      200     {object}  response.Response{data=domain.SearchPage}
// @Failure      401     {object}  response.Response
// @Failure      422     {object}  response.Response
// @Router       /jobs/search [post]
// @Security     BearerAuth
func (h *JobHandler) Search(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	filter, fields := req.ToFilter()
	if fields != nil {
		c.Error(apperror.Validation(fields))
		return
	}

	page, err := h.jobUC.SearchJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", page)
}

// Create godoc
// @Summary      Create a job posting
// @Description  Contractors only. Skills are catalog skill codes.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      domain.CreateJobInput  true  "Job"
// @Success      201  {object}  response.Response{data=domain.JobPost}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req domain.CreateJobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// GetDetails godoc
// @Summary      Job details
// @Tags         jobs
// @Produce      json
// @Param        code  path      string  true  "Job code, e.g. JOB10001"
// @Success      200   {object}  response.Response{data=domain.JobPost}
// @Failure      404   {object}  response.Response
// @Router       /jobs/{code} [get]
func (h *JobHandler) GetDetails(c *gin.Context) {
	job, err := h.jobUC.GetJob(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", job)
}

// ListMine godoc
// @Summary      My job postings
// @Tags         jobs
// @Produce      json
// @Param        status  query     string  false  "pending, active, completed or cancelled"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=response.Paged}
// @Router       /jobs/mine [get]
// @Security     BearerAuth
func (h *JobHandler) ListMine(c *gin.Context) {
	var status *domain.JobStatus
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		st := domain.JobStatus(strings.ToLower(s))
		status = &st
	}
	page, limit := pageParams(c)

	jobs, pagination, err := h.jobUC.ListMyJobs(c.Request.Context(), currentUserID(c), status, page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: jobs, Pagination: pagination})
}

// Update godoc
// @Summary      Edit a job posting
// @Description  Owner only. Omitted fields keep their value.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        code  path      string                 true  "Job code"
// @Param        job   body      domain.UpdateJobInput  true  "Changes"
// @Success      200   {object}  response.Response{data=domain.JobPost}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /jobs/{code} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	var req domain.UpdateJobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	job, err := h.jobUC.UpdateJob(c.Request.Context(), currentUserID(c), c.Param("code"), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// UpdateStatus godoc
// @Summary      Change job status
// @Description  pending to active or cancelled, active to completed or cancelled
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        code     path      string                  true  "Job code"
// @Param        request  body      UpdateJobStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=domain.JobPost}
// @Failure      422      {object}  response.Response
// @Router       /jobs/{code}/status [patch]
// @Security     BearerAuth
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	job, err := h.jobUC.UpdateStatus(c.Request.Context(), currentUserID(c), c.Param("code"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job status updated", job)
}

// Delete godoc
// @Summary      Delete a job posting
// @Tags         jobs
// @Produce      json
// @Param        code  path      string  true  "Job code"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /jobs/{code} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobUC.DeleteJob(c.Request.Context(), currentUserID(c), c.Param("code")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}

// Export godoc
// @Summary      Export my job postings
// @Description  Contractors only. Returns an xlsx workbook.
// @Tags         jobs
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /jobs/export [get]
// @Security     BearerAuth
func (h *JobHandler) Export(c *gin.Context) {
	data, err := h.jobUC.ExportMyJobs(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("jobs-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
