package handlers

import (
	"net/http"
	"strconv"

	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
)

const defaultLatestPosts = 3

// PublicHandler serves the content visible to every visitor.
type PublicHandler struct {
	magazines *services.MagazineService
	blog      *services.BlogService
	gallery   *services.GalleryService
	about     *services.AboutService
	contact   *services.ContactService
}

func NewPublicHandler(
	magazines *services.MagazineService,
	blog *services.BlogService,
	gallery *services.GalleryService,
	about *services.AboutService,
	contact *services.ContactService,
) *PublicHandler {
	return &PublicHandler{
		magazines: magazines,
		blog:      blog,
		gallery:   gallery,
		about:     about,
		contact:   contact,
	}
}

func (h *PublicHandler) ListMagazines(c *gin.Context) {
	magazines, err := h.magazines.ListPublished(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"magazines": magazines})
}

func (h *PublicHandler) GetMagazine(c *gin.Context) {
	magazine, err := h.magazines.Get(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, magazine)
}

func (h *PublicHandler) ListBlogPosts(c *gin.Context) {
	posts, err := h.blog.ListPublished(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PublicHandler) LatestBlogPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLatestPosts)))
	if err != nil {
		limit = defaultLatestPosts
	}
	posts, err := h.blog.Latest(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PublicHandler) GetBlogPost(c *gin.Context) {
	post, err := h.blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PublicHandler) ListGallery(c *gin.Context) {
	slides, err := h.gallery.ListActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slides": slides})
}

// GetAbout returns the about text, or a localized placeholder when none has
// been written.
func (h *PublicHandler) GetAbout(c *gin.Context) {
	about, err := h.about.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if about.Content == "" {
		c.JSON(http.StatusOK, gin.H{
			"content":     locale.T(c, "about_placeholder"),
			"placeholder": true,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content":     about.Content,
		"placeholder": false,
		"updated_at":  about.UpdatedAt,
	})
}

type contactRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "invalid_input")
		return
	}
	msg, err := h.contact.Submit(c.Request.Context(), req.Email, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      msg.ID,
		"message": locale.T(c, "contact_received"),
	})
}
