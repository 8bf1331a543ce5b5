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

// MagazineInput is the editable part of a magazine issue.
type MagazineInput struct {
	Title       string `json:"title"`
	Issue       string `json:"issue"`
	IssueNumber int    `json:"issue_number"`
	CoverPath   string `json:"cover_path"`
	PDFPath     string `json:"pdf_path"`
	Published   bool   `json:"published"`
}

func (in *MagazineInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Issue = strings.TrimSpace(in.Issue)
	in.CoverPath = strings.TrimSpace(in.CoverPath)
	in.PDFPath = strings.TrimSpace(in.PDFPath)

	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.PDFPath == "" {
		return fmt.Errorf("%w: pdf_path is required", ErrInvalidInput)
	}
	if in.IssueNumber < 0 {
		return fmt.Errorf("%w: issue_number must not be negative", ErrInvalidInput)
	}
	return nil
}

type MagazineService struct {
	store *store.Store
	cache *ContentCache
	media MediaURLs
	rec   mutationRecorder
}

func NewMagazineService(
	s *store.Store,
	cache *ContentCache,
	media MediaURLs,
	auditor Auditor,
	metrics core.Recorder,
) *MagazineService {
	return &MagazineService{
		store: s,
		cache: cache,
		media: media,
		rec:   mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

func (s *MagazineService) withURLs(m *models.Magazine) {
	m.CoverURL = s.media.magazine(m.CoverPath)
	m.PDFURL = s.media.magazine(m.PDFPath)
}

func (s *MagazineService) list(ctx context.Context, publishedOnly bool) ([]models.Magazine, error) {
	magazines, err := s.store.ListMagazines(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	for i := range magazines {
		s.withURLs(&magazines[i])
	}
	return magazines, nil
}

// ListPublished returns published issues, newest first.
func (s *MagazineService) ListPublished(ctx context.Context) ([]models.Magazine, error) {
	return cached(ctx, s.cache, keyMagazines, func(ctx context.Context) ([]models.Magazine, error) {
		return s.list(ctx, true)
	})
}

// ListAll includes drafts.
func (s *MagazineService) ListAll(ctx context.Context) ([]models.Magazine, error) {
	return s.list(ctx, false)
}

// Get returns an issue. Drafts are only returned when includeDrafts is set.
func (s *MagazineService) Get(ctx context.Context, id string, includeDrafts bool) (*models.Magazine, error) {
	magazine, err := s.store.GetMagazine(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !magazine.Published && !includeDrafts {
		return nil, ErrNotFound
	}
	s.withURLs(magazine)
	return magazine, nil
}

func (s *MagazineService) Create(ctx context.Context, in MagazineInput) (*models.Magazine, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	magazine := &models.Magazine{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Issue:       in.Issue,
		IssueNumber: in.IssueNumber,
		CoverPath:   in.CoverPath,
		PDFPath:     in.PDFPath,
		Published:   in.Published,
	}
	err := s.store.CreateMagazine(ctx, magazine)
	s.rec.record(ctx, models.ResourceMagazine, actionCreate, magazine.ID, magazine.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyMagazines)
	s.withURLs(magazine)
	return magazine, nil
}

func (s *MagazineService) Update(ctx context.Context, id string, in MagazineInput) (*models.Magazine, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	magazine, err := s.store.GetMagazine(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	magazine.Title = in.Title
	magazine.Issue = in.Issue
	magazine.IssueNumber = in.IssueNumber
	magazine.CoverPath = in.CoverPath
	magazine.PDFPath = in.PDFPath
	magazine.Published = in.Published

	return s.save(ctx, magazine)
}

// SetPublished toggles the visibility of an issue on the public site.
func (s *MagazineService) SetPublished(ctx context.Context, id string, published bool) (*models.Magazine, error) {
	magazine, err := s.store.GetMagazine(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	magazine.Published = published
	return s.save(ctx, magazine)
}

func (s *MagazineService) save(ctx context.Context, magazine *models.Magazine) (*models.Magazine, error) {
	err := mapStoreError(s.store.UpdateMagazine(ctx, magazine))
	s.rec.record(ctx, models.ResourceMagazine, actionUpdate, magazine.ID, magazine.Title, err)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, keyMagazines)
	s.withURLs(magazine)
	return magazine, nil
}

func (s *MagazineService) Delete(ctx context.Context, id string) error {
	err := mapStoreError(s.store.DeleteMagazine(ctx, id))
	s.rec.record(ctx, models.ResourceMagazine, actionDelete, id, "", err)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, keyMagazines)
	return nil
}
