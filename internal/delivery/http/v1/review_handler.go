package v1

import (
	"net/http"
	"strconv"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewUC domain.ReviewUsecase
}

func NewReviewHandler(protected *gin.RouterGroup, reviewUC domain.ReviewUsecase) {
	handler := &ReviewHandler{reviewUC: reviewUC}

	protected.POST("/reviews", handler.Submit)
	protected.GET("/users/:id/reviews", handler.ListForUser)
}

// Submit godoc
// @Summary      Review a completed job
// @Description  The job owner is the reviewee. One review per reviewer per job.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        review  body      domain.SubmitReviewInput  true  "Review"
// @Success      201     {object}  response.Response{data=domain.Review}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /reviews [post]
// @Security     BearerAuth
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req domain.SubmitReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	review, err := h.reviewUC.SubmitReview(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Review submitted", review)
}

// ListForUser godoc
// @Summary      Reviews received by a user
// @Tags         reviews
// @Produce      json
// @Param        id      path      int     true   "User ID"
// @Param        job_id  query     string  false  "Only reviews for this job code"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=domain.ReviewPage}
// @Failure      404     {object}  response.Response
// @Router       /users/{id}/reviews [get]
// @Security     BearerAuth
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID < 1 {
		c.Error(apperror.NotFound("User not found"))
		return
	}
	page, limit := pageParams(c)

	result, err := h.reviewUC.ListForUser(c.Request.Context(), userID, c.Query("job_id"), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", result)
}
