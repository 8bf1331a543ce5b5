package handlers

import (
	"net/http"
	"strconv"

	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the admin editing API. Every route sits behind
// RequireAdmin and CSRFMiddleware.
type ContentHandler struct {
	magazines *services.MagazineService
	blog      *services.BlogService
	gallery   *services.GalleryService
	about     *services.AboutService
	contact   *services.ContactService
}

func NewContentHandler(
	magazines *services.MagazineService,
	blog *services.BlogService,
	gallery *services.GalleryService,
	about *services.AboutService,
	contact *services.ContactService,
) *ContentHandler {
	return &ContentHandler{
		magazines: magazines,
		blog:      blog,
		gallery:   gallery,
		about:     about,
		contact:   contact,
	}
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type aboutRequest struct {
	Content string `json:"content"`
}

// bindJSON decodes the body into dst or writes a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "invalid_input")
		return false
	}
	return true
}

// respond writes v with status, or the mapped error.
func respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(status, v)
}

// Magazines

func (h *ContentHandler) ListMagazines(c *gin.Context) {
	magazines, err := h.magazines.ListAll(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"magazines": magazines}, err)
}

func (h *ContentHandler) GetMagazine(c *gin.Context) {
	magazine, err := h.magazines.Get(c.Request.Context(), c.Param("id"), true)
	respond(c, http.StatusOK, magazine, err)
}

func (h *ContentHandler) CreateMagazine(c *gin.Context) {
	var in services.MagazineInput
	if !bindJSON(c, &in) {
		return
	}
	magazine, err := h.magazines.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, magazine, err)
}

func (h *ContentHandler) UpdateMagazine(c *gin.Context) {
	var in services.MagazineInput
	if !bindJSON(c, &in) {
		return
	}
	magazine, err := h.magazines.Update(c.Request.Context(), c.Param("id"), in)
	respond(c, http.StatusOK, magazine, err)
}

func (h *ContentHandler) PublishMagazine(c *gin.Context) {
	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}
	magazine, err := h.magazines.SetPublished(c.Request.Context(), c.Param("id"), *req.Published)
	respond(c, http.StatusOK, magazine, err)
}

func (h *ContentHandler) DeleteMagazine(c *gin.Context) {
	err := h.magazines.Delete(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, gin.H{"deleted": true}, err)
}

// Blog posts

func (h *ContentHandler) ListBlogPosts(c *gin.Context) {
	posts, err := h.blog.ListAll(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"posts": posts}, err)
}

func (h *ContentHandler) GetBlogPost(c *gin.Context) {
	post, err := h.blog.Get(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, post, err)
}

func (h *ContentHandler) CreateBlogPost(c *gin.Context) {
	var in services.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.blog.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, post, err)
}

func (h *ContentHandler) UpdateBlogPost(c *gin.Context) {
	var in services.BlogPostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.blog.Update(c.Request.Context(), c.Param("id"), in)
	respond(c, http.StatusOK, post, err)
}

func (h *ContentHandler) PublishBlogPost(c *gin.Context) {
	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.blog.SetPublished(c.Request.Context(), c.Param("id"), *req.Published)
	respond(c, http.StatusOK, post, err)
}

func (h *ContentHandler) DeleteBlogPost(c *gin.Context) {
	err := h.blog.Delete(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, gin.H{"deleted": true}, err)
}

// Gallery

func (h *ContentHandler) ListGallery(c *gin.Context) {
	slides, err := h.gallery.ListAll(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"slides": slides}, err)
}

func (h *ContentHandler) CreateGallerySlide(c *gin.Context) {
	var in services.GallerySlideInput
	if !bindJSON(c, &in) {
		return
	}
	slide, err := h.gallery.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, slide, err)
}

func (h *ContentHandler) UpdateGallerySlide(c *gin.Context) {
	var in services.GallerySlideInput
	if !bindJSON(c, &in) {
		return
	}
	slide, err := h.gallery.Update(c.Request.Context(), c.Param("id"), in)
	respond(c, http.StatusOK, slide, err)
}

func (h *ContentHandler) SetGallerySlideActive(c *gin.Context) {
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	slide, err := h.gallery.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	respond(c, http.StatusOK, slide, err)
}

func (h *ContentHandler) ReorderGallery(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.gallery.Reorder(c.Request.Context(), req.IDs); err != nil {
		respondServiceError(c, err)
		return
	}
	h.ListGallery(c)
}

func (h *ContentHandler) DeleteGallerySlide(c *gin.Context) {
	err := h.gallery.Delete(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, gin.H{"deleted": true}, err)
}

// About

func (h *ContentHandler) UpdateAbout(c *gin.Context) {
	var req aboutRequest
	if !bindJSON(c, &req) {
		return
	}
	about, err := h.about.Update(c.Request.Context(), req.Content)
	respond(c, http.StatusOK, about, err)
}

// Contact messages

func (h *ContentHandler) ListContactMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	params := store.NewPaginationParams(page, pageSize, c.Query("search"))

	messages, pagination, err := h.contact.List(c.Request.Context(), params)
	respond(c, http.StatusOK, gin.H{"messages": messages, "pagination": pagination}, err)
}

func (h *ContentHandler) DeleteContactMessage(c *gin.Context) {
	err := h.contact.Delete(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, gin.H{"deleted": true}, err)
}
