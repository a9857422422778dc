package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports database and redis reachability
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}

		report, healthy := healthUC.Check(c.Request.Context())
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Status:  false,
				Message: "System degraded",
				Data:    report,
			})
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	}
}
