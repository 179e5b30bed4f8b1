package handler

import (
	"net/http"

	"storeadmin/internal/middleware"
	"storeadmin/internal/service"
	"storeadmin/pkg/pagination"
	"storeadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authzService service.AuthorizationService
}

func NewAdminHandler(authzService service.AuthorizationService) *AdminHandler {
	return &AdminHandler{authzService: authzService}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admins := router.Group("/api/admin-users")
	{
		admins.GET("", middleware.RequireAccess("admin_users", "read"), h.ListAdminUsers)
		admins.POST("", middleware.RequireAccess("admin_users", "write"), h.CreateAdminUser)
		admins.PATCH("/:id/permissions", middleware.RequireAccess("admin_users", "write"), h.UpdatePermissions)
		admins.PATCH("/:id/deactivate", middleware.RequireAccess("admin_users", "write"), h.DeactivateAdminUser)
	}
}

// ListAdminUsers returns paginated admin accounts
// @Summary      List admin accounts
// @Tags         admin-users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response{data=[]service.AdminUserResponse}
// @Router       /api/admin-users [get]
func (h *AdminHandler) ListAdminUsers(c *gin.Context) {
	p := pagination.Parse(c)

	admins, total, err := h.authzService.ListAdminAccounts(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": admins,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// CreateAdminUser promotes a registered profile to admin
// @Summary      Create admin account
// @Description  Promotes an already-registered end user to admin. Defaults to all grants when no permissions are supplied.
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAdminRequest  true  "Create Admin Payload"
// @Success      201      {object}  response.Response{data=service.AdminUserResponse}
// @Failure      404      {object}  response.Response  "No profile registered for the email"
// @Failure      409      {object}  response.Response  "Already an admin"
// @Router       /api/admin-users [post]
func (h *AdminHandler) CreateAdminUser(c *gin.Context) {
	var req service.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	admin, err := h.authzService.CreateAdminAccount(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, admin))
}

// UpdatePermissions replaces an admin's permission document
// @Summary      Update admin permissions
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Admin ID"
// @Param        payload  body      service.UpdatePermissionsRequest  true  "Permissions Payload"
// @Success      200      {object}  response.Response{data=service.AdminUserResponse}
// @Router       /api/admin-users/{id}/permissions [patch]
func (h *AdminHandler) UpdatePermissions(c *gin.Context) {
	var req service.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	admin, err := h.authzService.UpdateAdminPermissions(c.Request.Context(), middleware.AdminID(c), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, admin))
}

// DeactivateAdminUser disables an admin account without deleting it
// @Summary      Deactivate admin account
// @Tags         admin-users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Admin ID"
// @Success      200  {object}  response.Response
// @Router       /api/admin-users/{id}/deactivate [patch]
func (h *AdminHandler) DeactivateAdminUser(c *gin.Context) {
	if err := h.authzService.DeactivateAdminAccount(c.Request.Context(), middleware.AdminID(c), c.Param("id")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}
