package services

import (
	"context"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagazineService(t *testing.T) {
	auditor := &captureAuditor{}
	svc := NewMagazineService(setupTestStore(t), newTestCache(), testMedia, auditor, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, MagazineInput{Title: "  ", PDFPath: "pdfs/a.pdf"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	draft, err := svc.Create(ctx, MagazineInput{
		Title:       "Sayı 1",
		IssueNumber: 1,
		CoverPath:   "covers/1.jpg",
		PDFPath:     "pdfs/1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/magazines/pdfs/1.pdf", draft.PDFURL)
	assert.Equal(t, 1, auditor.count(models.EventContentCreated))

	published, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published, "drafts are hidden")

	_, err = svc.Get(ctx, draft.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	// Publishing invalidates the cached listing
	_, err = svc.SetPublished(ctx, draft.ID, true)
	require.NoError(t, err)
	published, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "https://cdn.example.com/magazines/covers/1.jpg", published[0].CoverURL)

	updated, err := svc.Update(ctx, draft.ID, MagazineInput{
		Title:       "Sayı 1 (Bahar)",
		IssueNumber: 1,
		PDFPath:     "pdfs/1.pdf",
		Published:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sayı 1 (Bahar)", updated.Title)

	published, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sayı 1 (Bahar)", published[0].Title)

	require.NoError(t, svc.Delete(ctx, draft.ID))
	assert.ErrorIs(t, svc.Delete(ctx, draft.ID), ErrNotFound)
	published, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)
}

func TestBlogService(t *testing.T) {
	svc := NewBlogService(setupTestStore(t), newTestCache(), testMedia, nil, nil)
	ctx := context.Background()

	post, err := svc.Create(ctx, BlogPostInput{
		Title:     "Çocuk Gelişimi ve Oyun",
		Excerpt:   "Kısa özet",
		CoverPath: "covers/a.jpg",
		Content:   models.Document{"raw": "Metin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cocuk-gelisimi-ve-oyun", post.Slug)
	assert.Nil(t, post.PublishedAt)

	_, err = svc.GetBySlug(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrNotFound, "drafts are not public")

	_, err = svc.Create(ctx, BlogPostInput{Title: "Çocuk gelişimi ve oyun!"})
	assert.ErrorIs(t, err, ErrSlugConflict)

	post, err = svc.SetPublished(ctx, post.ID, true)
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	firstPublished := *post.PublishedAt

	got, err := svc.GetBySlug(ctx, "cocuk-gelisimi-ve-oyun")
	require.NoError(t, err)
	assert.Equal(t, "Metin", got.Content["raw"])
	assert.Equal(t, "https://cdn.example.com/blog_images/covers/a.jpg", got.CoverURL)

	// Unpublish and republish keeps the first publication time
	_, err = svc.SetPublished(ctx, post.ID, false)
	require.NoError(t, err)
	post, err = svc.SetPublished(ctx, post.ID, true)
	require.NoError(t, err)
	assert.WithinDuration(t, firstPublished, *post.PublishedAt, time.Second)

	second, err := svc.Create(ctx, BlogPostInput{Title: "İkinci Yazı", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "ikinci-yazi", second.Slug)

	latest, err := svc.Latest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, second.ID, latest[0].ID)
	assert.Nil(t, latest[0].Content, "listings carry no body")

	// Renaming the slug drops the old cached entry
	_, err = svc.Update(ctx, second.ID, BlogPostInput{Title: "İkinci Yazı", Slug: "yeni-adres", Published: true})
	require.NoError(t, err)
	_, err = svc.GetBySlug(ctx, "ikinci-yazi")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetBySlug(ctx, "yeni-adres")
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, second.ID))
	assert.ErrorIs(t, svc.Delete(ctx, second.ID), ErrNotFound)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGalleryService(t *testing.T) {
	svc := NewGalleryService(setupTestStore(t), newTestCache(), testMedia, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, GallerySlideInput{Title: "No image"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	a, err := svc.Create(ctx, GallerySlideInput{ImagePath: "a.jpg", Active: true})
	require.NoError(t, err)
	b, err := svc.Create(ctx, GallerySlideInput{ImagePath: "b.jpg", Active: true})
	require.NoError(t, err)
	c, err := svc.Create(ctx, GallerySlideInput{ImagePath: "c.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{a.OrderIndex, b.OrderIndex, c.OrderIndex})
	assert.Equal(t, "https://cdn.example.com/photos/a.jpg", a.ImageURL)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = svc.SetActive(ctx, c.ID, true)
	require.NoError(t, err)
	require.NoError(t, svc.Reorder(ctx, []string{c.ID, a.ID, b.ID}))

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{active[0].ID, active[1].ID, active[2].ID})

	assert.ErrorIs(t, svc.Reorder(ctx, []string{a.ID, a.ID}), ErrInvalidInput)
	assert.ErrorIs(t, svc.Reorder(ctx, []string{a.ID, "missing"}), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, b.ID))
	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestAboutService(t *testing.T) {
	svc := NewAboutService(setupTestStore(t), newTestCache(), nil, nil)
	ctx := context.Background()

	about, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, about.Content)

	actorCtx := models.SetAdminContext(ctx, &models.Admin{Email: "owner@x.com"})
	updated, err := svc.Update(actorCtx, "  Hakkımızda metni  ")
	require.NoError(t, err)
	assert.Equal(t, "Hakkımızda metni", updated.Content)
	assert.Equal(t, "owner@x.com", updated.UpdatedBy)

	about, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hakkımızda metni", about.Content)
}

func TestContactService(t *testing.T) {
	auditor := &captureAuditor{}
	svc := NewContactService(setupTestStore(t), 20, auditor, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "bad", "hello")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.Submit(ctx, "a@x.com", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(ctx, "a@x.com", "this message is far too long")
	assert.ErrorIs(t, err, ErrInvalidInput)

	msg, err := svc.Submit(ctx, " A@X.com", "Merhaba")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", msg.Email)
	assert.Equal(t, 1, auditor.count(models.EventContactMessageNew))

	messages, page, err := svc.List(ctx, storePage(1))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.Delete(ctx, msg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, msg.ID), ErrNotFound)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":              "hello-world",
		"  Çocuk   Gelişimi 101 ":  "cocuk-gelisimi-101",
		"Işık, Şiir & Öğrenme!":    "isik-siir-ogrenme",
		"İstanbul'da Psikoloji":    "istanbulda-psikoloji",
		"already-a-slug":           "already-a-slug",
		"under_score -- dashes":    "under-score-dashes",
		"!!!":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
