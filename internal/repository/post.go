package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	GetByStatus(ctx context.Context, status models.PostStatus, limit, offset int) ([]*models.Post, error)
	GetByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	GetByTag(ctx context.Context, tag string, status models.PostStatus, limit, offset int) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.PostStatus) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountByUserAndStatus(ctx context.Context, userID uint, status models.PostStatus) (int64, error)
	IncrementViewCount(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePublishedList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("slug = ?", slug).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByStatus(ctx context.Context, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetByTag returns posts in the given status whose comma-separated tags
// column contains the tag. The LIKE match is a superset of exact tag
// membership; callers re-check against TagList.
func (r *postRepository) GetByTag(ctx context.Context, tag string, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("status = ? AND LOWER(tags) LIKE LOWER(?)", status, "%"+tag+"%").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Search performs a case-insensitive substring match across title, content
// and tags. Status filtering is the service layer's concern.
func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("search", "posts")()

	pattern := "%" + query + "%"
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?) OR LOWER(tags) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePublishedList(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePublishedList(ctx)
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByUserAndStatus(ctx context.Context, userID uint, status models.PostStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// IncrementViewCount bumps view_count by one in a single atomic UPDATE,
// never read-modify-write, so concurrent reads cannot lose increments.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
