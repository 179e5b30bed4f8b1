package handler

import (
	"net/http"

	"storeadmin/internal/middleware"
	"storeadmin/internal/service"
	"storeadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	authzService service.AuthorizationService
}

// NewAuthHandler sets up the routing dependencies for identity endpoints
func NewAuthHandler(authService service.AuthService, authzService service.AuthorizationService) *AuthHandler {
	return &AuthHandler{authService: authService, authzService: authzService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)

	// Me route (authenticated — any valid token)
	router.GET("/me", middleware.RequireAuthenticated(), h.GetMe)

	// Temp route for bootstrapping the first admin
	router.POST("/temp-admin", h.CreateTempAdmin)
}

// CreateTempAdmin registers a profile and promotes it in one step
// @Summary      Create temporary admin
// @Description  Creates an admin account without requiring authentication. FOR DEVELOPMENT ONLY.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Create Admin Payload"
// @Success      201      {object}  response.Response{data=service.AdminUserResponse}
// @Failure      400      {object}  response.Response
// @Router       /temp-admin [post]
func (h *AuthHandler) CreateTempAdmin(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	admin, err := h.authzService.CreateAdminAccount(c.Request.Context(), "", service.CreateAdminRequest{Email: req.Email})
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, admin))
}

// Register creates a new end-user profile
// @Summary      Register a profile
// @Description  Creates an end-user profile. A profile must exist before admin promotion.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Register Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login authenticates a profile and returns a JWT
// @Summary      Login
// @Description  Authenticates an end-user profile and issues a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Payload"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// GetMe returns the caller's admin account, if any
// @Summary      Current admin account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.AdminUserResponse}
// @Failure      403  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	callerID, _ := c.Get(middleware.ContextCallerID)
	id, _ := callerID.(string)

	admin, err := h.authzService.GetAdminByCaller(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, admin))
}
