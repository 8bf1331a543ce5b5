package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/google/uuid"
)

const maxLatestPosts = 20

// BlogPostInput is the editable part of a blog post. An empty slug is
// derived from the title.
type BlogPostInput struct {
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	Excerpt    string          `json:"excerpt"`
	CoverPath  string          `json:"cover_path"`
	Content    models.Document `json:"content"`
	AuthorName string          `json:"author_name"`
	Published  bool            `json:"published"`
}

func (in *BlogPostInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.CoverPath = strings.TrimSpace(in.CoverPath)
	in.AuthorName = strings.TrimSpace(in.AuthorName)

	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	} else {
		in.Slug = Slugify(in.Slug)
	}
	if in.Slug == "" {
		return fmt.Errorf("%w: title does not produce a usable slug", ErrInvalidInput)
	}
	return nil
}

type BlogService struct {
	store *store.Store
	cache *ContentCache
	media MediaURLs
	rec   mutationRecorder
}

func NewBlogService(
	s *store.Store,
	cache *ContentCache,
	media MediaURLs,
	auditor Auditor,
	metrics core.Recorder,
) *BlogService {
	return &BlogService{
		store: s,
		cache: cache,
		media: media,
		rec:   mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

func (s *BlogService) withURLs(p *models.BlogPost) {
	p.CoverURL = s.media.blog(p.CoverPath)
}

func (s *BlogService) list(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error) {
	posts, err := s.store.ListBlogPosts(ctx, publishedOnly, 0)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		s.withURLs(&posts[i])
		// Listings carry no body
		posts[i].Content = nil
	}
	return posts, nil
}

// ListPublished returns published posts, newest publication first.
func (s *BlogService) ListPublished(ctx context.Context) ([]models.BlogPost, error) {
	return cached(ctx, s.cache, keyBlogPosts, func(ctx context.Context) ([]models.BlogPost, error) {
		return s.list(ctx, true)
	})
}

// Latest returns at most limit published posts.
func (s *BlogService) Latest(ctx context.Context, limit int) ([]models.BlogPost, error) {
	if limit <= 0 {
		limit = 1
	}
	limit = min(limit, maxLatestPosts)

	posts, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *BlogService) ListAll(ctx context.Context) ([]models.BlogPost, error) {
	return s.list(ctx, false)
}

// GetBySlug returns a published post with its content.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := cached(ctx, s.cache, keyBlogSlug+slug, func(ctx context.Context) (*models.BlogPost, error) {
		post, err := s.store.GetBlogPostBySlug(ctx, slug, true)
		if err != nil {
			return nil, err
		}
		s.withURLs(post)
		return post, nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return post, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.store.GetBlogPost(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.withURLs(post)
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, in BlogPostInput) (*models.BlogPost, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    in.Excerpt,
		CoverPath:  in.CoverPath,
		Content:    in.Content,
		AuthorName: in.AuthorName,
	}
	setPublished(post, in.Published)

	err := s.store.CreateBlogPost(ctx, post)
	s.rec.record(ctx, models.ResourceBlogPost, actionCreate, post.ID, post.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyBlogPosts, keyBlogSlug+post.Slug)
	s.withURLs(post)
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogPostInput) (*models.BlogPost, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	post, err := s.store.GetBlogPost(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	oldSlug := post.Slug

	post.Title = in.Title
	post.Slug = in.Slug
	post.Excerpt = in.Excerpt
	post.CoverPath = in.CoverPath
	post.Content = in.Content
	post.AuthorName = in.AuthorName
	setPublished(post, in.Published)

	return s.save(ctx, post, oldSlug)
}

// SetPublished toggles the visibility of a post on the public site.
func (s *BlogService) SetPublished(ctx context.Context, id string, published bool) (*models.BlogPost, error) {
	post, err := s.store.GetBlogPost(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	setPublished(post, published)
	return s.save(ctx, post, post.Slug)
}

func (s *BlogService) save(ctx context.Context, post *models.BlogPost, oldSlug string) (*models.BlogPost, error) {
	err := mapStoreError(s.store.UpdateBlogPost(ctx, post))
	s.rec.record(ctx, models.ResourceBlogPost, actionUpdate, post.ID, post.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyBlogPosts, keyBlogSlug+oldSlug, keyBlogSlug+post.Slug)
	s.withURLs(post)
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	post, err := s.store.GetBlogPost(ctx, id)
	if err != nil {
		err = mapStoreError(err)
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		s.rec.record(ctx, models.ResourceBlogPost, actionDelete, id, "", err)
		return err
	}

	err = mapStoreError(s.store.DeleteBlogPost(ctx, id))
	s.rec.record(ctx, models.ResourceBlogPost, actionDelete, id, post.Title, err)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, keyBlogPosts, keyBlogSlug+post.Slug)
	return nil
}

// setPublished stamps the first publication time and keeps it across
// unpublish/republish cycles.
func setPublished(post *models.BlogPost, published bool) {
	post.Published = published
	if published && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
}
