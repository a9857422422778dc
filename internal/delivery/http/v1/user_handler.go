package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(protected *gin.RouterGroup, upload gin.HandlerFunc, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := protected.Group("/users")
	{
		users.GET("/settings", handler.Settings)
		users.POST("/notification-status", handler.NotificationStatus)
		users.POST("/location", handler.Location)
		users.POST("/availability", handler.Availability)
		users.POST("/fcm-token", handler.FCMToken)
		users.POST("/profile-image", upload, handler.ProfileImage)
		users.POST("/delete-account", handler.DeleteAccount)
	}
}

type NotificationStatusRequest struct {
	Enabled *bool `json:"notification_status" binding:"required"`
}

type AvailabilityRequest struct {
	AvailableToday *bool `json:"available_today" binding:"required"`
}

type FCMTokenRequest struct {
	Token string `json:"fcm_token" binding:"required,max=4096"`
}

// Settings godoc
// @Summary      User settings
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.UserSettings}
// @Router       /users/settings [get]
// @Security     BearerAuth
func (h *UserHandler) Settings(c *gin.Context) {
	settings, err := h.userUC.GetSettings(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", settings)
}

// NotificationStatus godoc
// @Summary      Toggle push notifications
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      NotificationStatusRequest  true  "Status"
// @Success      200      {object}  response.Response
// @Router       /users/notification-status [post]
// @Security     BearerAuth
func (h *UserHandler) NotificationStatus(c *gin.Context) {
	var req NotificationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	if err := h.userUC.UpdateNotificationStatus(c.Request.Context(), currentUserID(c), *req.Enabled); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification status updated", gin.H{"notification_status": *req.Enabled})
}

// Location godoc
// @Summary      Update location
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UserLocation  true  "Location"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /users/location [post]
// @Security     BearerAuth
func (h *UserHandler) Location(c *gin.Context) {
	var req domain.UserLocation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	if err := h.userUC.UpdateLocation(c.Request.Context(), currentUserID(c), req); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Location updated", req)
}

// Availability godoc
// @Summary      Update same-day availability
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      AvailabilityRequest  true  "Availability"
// @Success      200      {object}  response.Response
// @Router       /users/availability [post]
// @Security     BearerAuth
func (h *UserHandler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	if err := h.userUC.UpdateAvailability(c.Request.Context(), currentUserID(c), *req.AvailableToday); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Availability updated", gin.H{"available_today": *req.AvailableToday})
}

// FCMToken godoc
// @Summary      Register device token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      FCMTokenRequest  true  "FCM token"
// @Success      200      {object}  response.Response
// @Router       /users/fcm-token [post]
// @Security     BearerAuth
func (h *UserHandler) FCMToken(c *gin.Context) {
	var req FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	if err := h.userUC.UpdateFCMToken(c.Request.Context(), currentUserID(c), req.Token); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "FCM token updated", nil)
}

// ProfileImage godoc
// @Summary      Upload profile image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        profile_image  formData  file  true  "Image (jpg, png, gif, webp)"
// @Success      200            {object}  response.Response
// @Failure      422            {object}  response.Response
// @Failure      429            {object}  response.Response
// @Router       /users/profile-image [post]
// @Security     BearerAuth
func (h *UserHandler) ProfileImage(c *gin.Context) {
	file, err := requiredUpload(c, "profile_image", maxImageBytes)
	if err != nil {
		c.Error(err)
		return
	}

	url, err := h.userUC.UpdateProfileImage(c.Request.Context(), currentUserID(c), file)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile image updated", gin.H{"profile_image_url": url})
}

// DeleteAccount godoc
// @Summary      Delete account
// @Description  Permanently removes the account and everything it owns
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /users/delete-account [post]
// @Security     BearerAuth
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.userUC.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Account deleted", nil)
}
