package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotificationHandler(protected *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.POST("", handler.Send)
	}
}

// List godoc
// @Summary      My notifications
// @Description  Newest first. Returned notifications are marked read.
// @Tags         notifications
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=response.Paged}
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	items, pagination, err := h.notificationUC.ListNotifications(c.Request.Context(), currentUserID(c), page, limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Paged{Items: items, Pagination: pagination})
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationUC.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", gin.H{"unread_count": count})
}

// Send godoc
// @Summary      Send a notification
// @Description  Stores the notification and pushes it when the receiver has notifications enabled
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        notification  body      domain.SendNotificationInput  true  "Notification"
// @Success      201           {object}  response.Response{data=domain.Notification}
// @Failure      404           {object}  response.Response
// @Failure      422           {object}  response.Response
// @Router       /notifications [post]
// @Security     BearerAuth
func (h *NotificationHandler) Send(c *gin.Context) {
	var req domain.SendNotificationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	n, err := h.notificationUC.Send(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Notification sent", n)
}
