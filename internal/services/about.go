package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
)

const maxAboutLength = 20000

type AboutService struct {
	store *store.Store
	cache *ContentCache
	rec   mutationRecorder
}

func NewAboutService(
	s *store.Store,
	cache *ContentCache,
	auditor Auditor,
	metrics core.Recorder,
) *AboutService {
	return &AboutService{
		store: s,
		cache: cache,
		rec:   mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

// Get returns the about text. An empty Content means nothing was written yet;
// callers show a localized placeholder.
func (s *AboutService) Get(ctx context.Context) (*models.AboutContent, error) {
	return cached(ctx, s.cache, keyAboutContent, s.store.GetAboutContent)
}

func (s *AboutService) Update(ctx context.Context, content string) (*models.AboutContent, error) {
	content = strings.TrimSpace(content)
	if len(content) > maxAboutLength {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", ErrInvalidInput, maxAboutLength)
	}

	about := &models.AboutContent{
		Content:   content,
		UpdatedBy: models.GetActorEmailFromContext(ctx),
	}
	err := s.store.SaveAboutContent(ctx, about)
	s.rec.record(ctx, models.ResourceAbout, actionUpdate, "about", "About", err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyAboutContent)
	return about, nil
}
