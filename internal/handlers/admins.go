package handlers

import (
	"net/http"

	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminsHandler manages the allowlist. Routes require a super admin.
type AdminsHandler struct {
	admins *services.AdminService
}

func NewAdminsHandler(admins *services.AdminService) *AdminsHandler {
	return &AdminsHandler{admins: admins}
}

type addAdminRequest struct {
	Email        string `json:"email"          binding:"required"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

type updateAdminRequest struct {
	IsSuperAdmin *bool `json:"is_super_admin" binding:"required"`
}

func (h *AdminsHandler) List(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"admins": admins}, err)
}

func (h *AdminsHandler) Add(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_email", "invalid_email")
		return
	}
	admin, err := h.admins.Add(c.Request.Context(), req.Email, req.IsSuperAdmin)
	respond(c, http.StatusCreated, admin, err)
}

func (h *AdminsHandler) Update(c *gin.Context) {
	var req updateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	admin, err := h.admins.SetSuperAdmin(
		ctx,
		models.GetActorEmailFromContext(ctx),
		c.Param("email"),
		*req.IsSuperAdmin,
	)
	respond(c, http.StatusOK, admin, err)
}

func (h *AdminsHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.admins.Remove(ctx, models.GetActorEmailFromContext(ctx), c.Param("email"))
	respond(c, http.StatusOK, gin.H{"deleted": true}, err)
}
