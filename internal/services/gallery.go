package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"

	"github.com/google/uuid"
)

// GallerySlideInput is the editable part of a home page slide. A nil
// OrderIndex places a new slide last and keeps the position on update.
type GallerySlideInput struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ImagePath  string `json:"image_path"`
	OrderIndex *int   `json:"order_index"`
	Active     bool   `json:"active"`
}

func (in *GallerySlideInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	if in.ImagePath == "" {
		return fmt.Errorf("%w: image_path is required", ErrInvalidInput)
	}
	if in.OrderIndex != nil && *in.OrderIndex < 0 {
		return fmt.Errorf("%w: order_index must not be negative", ErrInvalidInput)
	}
	return nil
}

type GalleryService struct {
	store *store.Store
	cache *ContentCache
	media MediaURLs
	rec   mutationRecorder
}

func NewGalleryService(
	s *store.Store,
	cache *ContentCache,
	media MediaURLs,
	auditor Auditor,
	metrics core.Recorder,
) *GalleryService {
	return &GalleryService{
		store: s,
		cache: cache,
		media: media,
		rec:   mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

func (s *GalleryService) list(ctx context.Context, activeOnly bool) ([]models.GallerySlide, error) {
	slides, err := s.store.ListGallerySlides(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range slides {
		slides[i].ImageURL = s.media.photo(slides[i].ImagePath)
	}
	return slides, nil
}

// ListActive returns the slides shown on the home page in display order.
func (s *GalleryService) ListActive(ctx context.Context) ([]models.GallerySlide, error) {
	return cached(ctx, s.cache, keyGallery, func(ctx context.Context) ([]models.GallerySlide, error) {
		return s.list(ctx, true)
	})
}

func (s *GalleryService) ListAll(ctx context.Context) ([]models.GallerySlide, error) {
	return s.list(ctx, false)
}

func (s *GalleryService) Create(ctx context.Context, in GallerySlideInput) (*models.GallerySlide, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var orderIndex int
	if in.OrderIndex != nil {
		orderIndex = *in.OrderIndex
	} else {
		next, err := s.store.NextGalleryOrderIndex(ctx)
		if err != nil {
			return nil, err
		}
		orderIndex = next
	}

	slide := &models.GallerySlide{
		ID:         uuid.New().String(),
		Title:      in.Title,
		Subtitle:   in.Subtitle,
		ImagePath:  in.ImagePath,
		OrderIndex: orderIndex,
		Active:     in.Active,
	}
	err := s.store.CreateGallerySlide(ctx, slide)
	s.rec.record(ctx, models.ResourceGallerySlide, actionCreate, slide.ID, slide.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyGallery)
	slide.ImageURL = s.media.photo(slide.ImagePath)
	return slide, nil
}

func (s *GalleryService) Update(ctx context.Context, id string, in GallerySlideInput) (*models.GallerySlide, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	slide, err := s.store.GetGallerySlide(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	slide.Title = in.Title
	slide.Subtitle = in.Subtitle
	slide.ImagePath = in.ImagePath
	slide.Active = in.Active
	if in.OrderIndex != nil {
		slide.OrderIndex = *in.OrderIndex
	}
	return s.save(ctx, slide)
}

// SetActive shows or hides a slide on the home page.
func (s *GalleryService) SetActive(ctx context.Context, id string, active bool) (*models.GallerySlide, error) {
	slide, err := s.store.GetGallerySlide(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	slide.Active = active
	return s.save(ctx, slide)
}

func (s *GalleryService) save(ctx context.Context, slide *models.GallerySlide) (*models.GallerySlide, error) {
	err := mapStoreError(s.store.UpdateGallerySlide(ctx, slide))
	s.rec.record(ctx, models.ResourceGallerySlide, actionUpdate, slide.ID, slide.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyGallery)
	slide.ImageURL = s.media.photo(slide.ImagePath)
	return slide, nil
}

// Reorder sets the display order to the order of ids.
func (s *GalleryService) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids must not be empty", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	err := mapStoreError(s.store.ReorderGallerySlides(ctx, ids))
	s.rec.record(ctx, models.ResourceGallerySlide, actionReorder, "", "", err)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, keyGallery)
	return nil
}

func (s *GalleryService) Delete(ctx context.Context, id string) error {
	err := mapStoreError(s.store.DeleteGallerySlide(ctx, id))
	s.rec.record(ctx, models.ResourceGallerySlide, actionDelete, id, "", err)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, keyGallery)
	return nil
}
