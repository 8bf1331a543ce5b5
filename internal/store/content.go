package store

import (
	"context"

	"github.com/psychmag/psychmag/internal/models"

	"gorm.io/gorm"
)

// Magazine operations

// ListMagazines returns issues newest first. When publishedOnly is set,
// drafts are left out.
func (s *Store) ListMagazines(ctx context.Context, publishedOnly bool) ([]models.Magazine, error) {
	var magazines []models.Magazine
	q := s.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	err := q.Order("issue_number DESC, created_at DESC").Find(&magazines).Error
	return magazines, err
}

func (s *Store) GetMagazine(ctx context.Context, id string) (*models.Magazine, error) {
	var magazine models.Magazine
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&magazine).Error; err != nil {
		return nil, notFound(err)
	}
	return &magazine, nil
}

func (s *Store) CreateMagazine(ctx context.Context, magazine *models.Magazine) error {
	return s.db.WithContext(ctx).Create(magazine).Error
}

func (s *Store) UpdateMagazine(ctx context.Context, magazine *models.Magazine) error {
	return requireAffected(s.db.WithContext(ctx).Model(magazine).
		Select("title", "issue", "issue_number", "cover_path", "pdf_path", "published").
		Updates(magazine))
}

func (s *Store) DeleteMagazine(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Magazine{}))
}

// Blog operations

// ListBlogPosts returns posts ordered by publication date, newest first.
// A limit of zero or less returns every row.
func (s *Store) ListBlogPosts(
	ctx context.Context,
	publishedOnly bool,
	limit int,
) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	q := s.db.WithContext(ctx)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("published_at DESC, created_at DESC").Find(&posts).Error
	return posts, err
}

func (s *Store) GetBlogPost(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Store) GetBlogPostBySlug(
	ctx context.Context,
	slug string,
	publishedOnly bool,
) (*models.BlogPost, error) {
	var post models.BlogPost
	q := s.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *Store) CreateBlogPost(ctx context.Context, post *models.BlogPost) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugConflict
		}
		return err
	}
	return nil
}

func (s *Store) UpdateBlogPost(ctx context.Context, post *models.BlogPost) error {
	err := requireAffected(s.db.WithContext(ctx).Model(post).
		Select("title", "slug", "excerpt", "cover_path", "content",
			"author_name", "published", "published_at").
		Updates(post))
	if isUniqueViolation(err) {
		return ErrSlugConflict
	}
	return err
}

func (s *Store) DeleteBlogPost(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlogPost{}))
}

// Gallery operations

func (s *Store) ListGallerySlides(ctx context.Context, activeOnly bool) ([]models.GallerySlide, error) {
	var slides []models.GallerySlide
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("order_index ASC, created_at ASC").Find(&slides).Error
	return slides, err
}

func (s *Store) GetGallerySlide(ctx context.Context, id string) (*models.GallerySlide, error) {
	var slide models.GallerySlide
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&slide).Error; err != nil {
		return nil, notFound(err)
	}
	return &slide, nil
}

// NextGalleryOrderIndex returns the order index that places a new slide last.
func (s *Store) NextGalleryOrderIndex(ctx context.Context) (int, error) {
	var maxIndex int
	row := s.db.WithContext(ctx).Model(&models.GallerySlide{}).
		Select("COALESCE(MAX(order_index), -1)").
		Row()
	if err := row.Scan(&maxIndex); err != nil {
		return 0, err
	}
	return maxIndex + 1, nil
}

func (s *Store) CreateGallerySlide(ctx context.Context, slide *models.GallerySlide) error {
	return s.db.WithContext(ctx).Create(slide).Error
}

func (s *Store) UpdateGallerySlide(ctx context.Context, slide *models.GallerySlide) error {
	return requireAffected(s.db.WithContext(ctx).Model(slide).
		Select("title", "subtitle", "image_path", "order_index", "active").
		Updates(slide))
}

func (s *Store) DeleteGallerySlide(ctx context.Context, id string) error {
	return requireAffected(s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GallerySlide{}))
}

// ReorderGallerySlides assigns order indexes following the given id order.
// Every id must exist or nothing is changed.
func (s *Store) ReorderGallerySlides(ctx context.Context, ids []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(&models.GallerySlide{}).
				Where("id = ?", id).
				Update("order_index", i)
			if err := requireAffected(result); err != nil {
				return err
			}
		}
		return nil
	})
}

// About operations

func (s *Store) GetAboutContent(ctx context.Context) (*models.AboutContent, error) {
	var about models.AboutContent
	err := s.db.WithContext(ctx).
		Where("id = ?", models.AboutContentID).
		FirstOrCreate(&about, models.AboutContent{ID: models.AboutContentID}).Error
	if err != nil {
		return nil, err
	}
	return &about, nil
}

func (s *Store) SaveAboutContent(ctx context.Context, about *models.AboutContent) error {
	about.ID = models.AboutContentID
	return s.db.WithContext(ctx).Save(about).Error
}

// Contact message operations

func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// ListContactMessages returns messages newest first with pagination.
// Search matches the sender e-mail or the message body.
func (s *Store) ListContactMessages(
	ctx context.Context,
	params PaginationParams,
) ([]models.ContactMessage, PaginationResult, error) {
	q := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if params.Search != "" {
		like := "%" + params.Search + "%"
		q = q.Where("(email LIKE ? OR message LIKE ?)", like, like)
	}
	return paginate[models.ContactMessage](q, "created_at DESC", params)
}

func (s *Store) DeleteContactMessage(ctx context.Context, id string) error {
	return requireAffected(
		s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ContactMessage{}),
	)
}
