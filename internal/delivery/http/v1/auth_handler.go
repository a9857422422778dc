package v1

import (
	"net/http"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

// NewAuthHandler registers the auth routes. strict wraps the
// unauthenticated endpoints that are worth brute forcing.
func NewAuthHandler(public, protected *gin.RouterGroup, strict gin.HandlerFunc, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	publicAuth := public.Group("/auth", strict)
	{
		publicAuth.POST("/register", handler.Register)
		publicAuth.POST("/login", handler.Login)
		publicAuth.POST("/forgot-password", handler.ForgotPassword)
		publicAuth.POST("/resend-forgot-otp", handler.ForgotPassword)
		publicAuth.POST("/verify-forgot-otp", handler.VerifyForgotOTP)
		publicAuth.POST("/reset-password", handler.ResetPassword)
	}

	protected.GET("/auth/me", handler.Me)
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
}

type ResetPasswordRequest struct {
	ResetToken      string `json:"reset_token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// Register godoc
// @Summary      User Registration
// @Description  Create an account for a contractor, subcontractor, laborer or apprentice and return an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      domain.RegisterInput  true  "Registration Details"
// @Success      201       {object}  response.Response{data=domain.AuthResult}
// @Failure      409       {object}  response.Response
// @Failure      422       {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Registered successfully", result)
}

// Login godoc
// @Summary      User Login
// @Description  Exchange credentials for an access token. Location and availability are updated when sent.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginInput  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=domain.AuthResult}
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	req.RequestID = c.GetString(string(domain.KeyRequestID))

	result, err := h.authUC.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in successfully", result)
}

// ForgotPassword godoc
// @Summary      Request password reset OTP
// @Description  Email a 4 digit one-time code. Also serves resend-forgot-otp.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Account email"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	if err := h.authUC.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "OTP sent to your email", nil)
}

// VerifyForgotOTP godoc
// @Summary      Verify password reset OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyOTPRequest  true  "Email and OTP"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /auth/verify-forgot-otp [post]
func (h *AuthHandler) VerifyForgotOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	token, err := h.authUC.VerifyResetOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "OTP verified", gin.H{"reset_token": token})
}

// ResetPassword godoc
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "Reset token and new password"
// @Success      200      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	if err := h.authUC.ResetPassword(c.Request.Context(), req.ResetToken, req.Password); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Password reset successfully", nil)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", user)
}
