package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const (
	maxSlugLength    = 100
	excerptMaxLength = 200
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
)

// Slugify converts a title into a URL-safe slug: lowercase, punctuation
// stripped, whitespace and hyphen runs collapsed to single hyphens, capped
// at 100 characters.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}

// Excerpt strips HTML tags from content and truncates to 200 characters at
// a word boundary, appending "..." when truncated.
func Excerpt(content string) string {
	text := htmlTagRe.ReplaceAllString(content, "")
	text = strings.TrimSpace(text)
	if len(text) <= excerptMaxLength {
		return text
	}
	cut := text[:excerptMaxLength]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
	Tags     string
	Status   models.PostStatus
}

// UpdatePostInput is a patch; nil fields are left untouched.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Tags    *string
	Status  *models.PostStatus
}

// NewPostService returns a PostService backed by the given repositories.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// CreatePost creates a post for an active author. The slug is derived from
// the title; on collision a unix-timestamp suffix disambiguates. The excerpt
// is generated from the content.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if author == nil || !author.IsActive {
		return nil, models.NewValidationError("Author not found or inactive")
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content cannot be empty")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid post status")
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  in.AuthorID,
		Title:   in.Title,
		Content: in.Content,
		Slug:    slug,
		Excerpt: Excerpt(in.Content),
		Tags:    in.Tags,
		Status:  status,
	}
	if status == models.PostStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
		observability.PostsPublished.Inc()
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := Slugify(title)
	existing, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if existing != nil {
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}
	return slug, nil
}

// UpdatePost applies a patch to a post. The actor must be the author or a
// moderator. A content change regenerates the excerpt.
func (s *PostService) UpdatePost(ctx context.Context, postID uint, patch UpdatePostInput, actorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, models.NewPermissionError("Requester not found")
	}
	if !actor.CanEditPost(post) {
		return nil, models.NewPermissionError("You don't have permission to edit this post")
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		post.Content = *patch.Content
		post.Excerpt = Excerpt(*patch.Content)
	}
	if patch.Tags != nil {
		post.Tags = *patch.Tags
	}
	if patch.Status != nil {
		if !models.ValidPostStatus(*patch.Status) {
			return nil, models.NewValidationError("Invalid post status")
		}
		if *patch.Status == models.PostStatusPublished && post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
			observability.PostsPublished.Inc()
		}
		post.Status = *patch.Status
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post. The actor must be the author or a moderator.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return models.NewNotFoundError("Post", postID)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return models.NewPermissionError("Requester not found")
	}
	if !actor.CanDeletePost(post) {
		return models.NewPermissionError("You don't have permission to delete this post")
	}
	return s.postRepo.Delete(ctx, postID)
}

// Publish moves a post to published. Re-publishing an already published
// post succeeds and refreshes its timestamps; an archived post cannot be
// published. The actor must be the author or a moderator.
func (s *PostService) Publish(ctx context.Context, postID, actorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, models.NewPermissionError("Requester not found")
	}
	if !actor.CanEditPost(post) {
		return nil, models.NewPermissionError("You don't have permission to publish this post")
	}

	if post.Status == models.PostStatusArchived {
		return nil, models.NewValidationError("Archived posts cannot be published")
	}

	firstPublish := post.Status != models.PostStatusPublished
	now := time.Now().UTC()
	post.Status = models.PostStatusPublished
	post.PublishedAt = &now
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if firstPublish {
		observability.PostsPublished.Inc()
	}
	return post, nil
}

// Archive moves a post to archived, ending its lifecycle. Moderator-only;
// authors cannot archive their own posts. Idempotent for archived posts.
func (s *PostService) Archive(ctx context.Context, postID, actorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.IsModerator() {
		return nil, models.NewPermissionError("Only moderators and admins can archive posts")
	}

	if post.Status == models.PostStatusArchived {
		return post, nil
	}
	post.Status = models.PostStatusArchived
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost fetches a post honoring visibility: published posts are visible
// to everyone, non-published ones only to the author or a moderator. Hidden
// and absent posts are both (nil, nil). Reading a published post bumps its
// view count.
func (s *PostService) GetPost(ctx context.Context, postID, requesterID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.resolveVisible(ctx, post, requesterID)
}

// GetPostBySlug is GetPost addressed by slug.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string, requesterID uint) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.resolveVisible(ctx, post, requesterID)
}

func (s *PostService) resolveVisible(ctx context.Context, post *models.Post, requesterID uint) (*models.Post, error) {
	if post == nil {
		return nil, nil
	}

	if post.IsPublished() {
		if err := s.postRepo.IncrementViewCount(ctx, post.ID); err != nil {
			return nil, err
		}
		observability.PostViews.Inc()
		post.ViewCount++
		return post, nil
	}

	if requesterID == 0 {
		return nil, nil
	}
	if requesterID == post.UserID {
		return post, nil
	}
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil || !requester.IsModerator() {
		return nil, nil
	}
	return post, nil
}

// ListPosts returns posts visible to the requester: moderators see every
// post, everyone else sees published posts only. The anonymous first page
// is served through the cache.
func (s *PostService) ListPosts(ctx context.Context, requesterID uint, limit, offset int) ([]*models.Post, error) {
	if requesterID != 0 {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester != nil && requester.IsModerator() {
			return s.postRepo.GetAll(ctx, limit, offset)
		}
	}

	if requesterID == 0 && offset == 0 && limit <= 20 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.PublishedListKey, &posts, cache.PublishedListTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.GetByStatus(ctx, models.PostStatusPublished, limit, offset)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return s.postRepo.GetByStatus(ctx, models.PostStatusPublished, limit, offset)
}

// GetUserPosts returns an author's posts. The author themselves and
// moderators see every status; everyone else sees published only.
func (s *PostService) GetUserPosts(ctx context.Context, authorID, requesterID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByUser(ctx, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	if requesterID == authorID {
		return posts, nil
	}
	if requesterID != 0 {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester != nil && requester.IsModerator() {
			return posts, nil
		}
	}
	return filterPublished(posts), nil
}

// GetPostsByStatus lists posts in a given status. Non-published statuses
// require a moderator.
func (s *PostService) GetPostsByStatus(ctx context.Context, status models.PostStatus, requesterID uint, limit, offset int) ([]*models.Post, error) {
	if !models.ValidPostStatus(status) {
		return nil, models.NewValidationError("Invalid post status")
	}
	if status != models.PostStatusPublished {
		if requesterID == 0 {
			return nil, models.NewPermissionError("Only moderators and admins can view unpublished posts")
		}
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester == nil || !requester.IsModerator() {
			return nil, models.NewPermissionError("Only moderators and admins can view unpublished posts")
		}
	}
	return s.postRepo.GetByStatus(ctx, status, limit, offset)
}

// GetPostsByTag returns published posts carrying the tag.
func (s *PostService) GetPostsByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Post, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, models.NewValidationError("Tag cannot be empty")
	}

	candidates, err := s.postRepo.GetByTag(ctx, tag, models.PostStatusPublished, limit, offset)
	if err != nil {
		return nil, err
	}

	// The repository match is substring-based; keep exact tag hits only.
	posts := make([]*models.Post, 0, len(candidates))
	for _, post := range candidates {
		for _, t := range post.TagList() {
			if strings.EqualFold(t, tag) {
				posts = append(posts, post)
				break
			}
		}
	}
	return posts, nil
}

// Search matches posts by title, content or tags. Results contain published
// posts plus the requester's own posts in any status.
func (s *PostService) Search(ctx context.Context, query string, requesterID uint, limit, offset int) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query cannot be empty")
	}

	matches, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(matches))
	for _, post := range matches {
		if post.IsPublished() || (requesterID != 0 && post.UserID == requesterID) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// Statistics returns total and per-status post counts. Moderator-only.
func (s *PostService) Statistics(ctx context.Context, requesterID uint) (map[string]int64, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil || !requester.IsModerator() {
		return nil, models.NewPermissionError("Only moderators and admins can view post statistics")
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := map[string]int64{"total_posts": total}
	for _, status := range []models.PostStatus{models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived} {
		count, err := s.postRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats[string(status)+"_count"] = count
	}
	return stats, nil
}

// UserPostStats returns per-status post counts for one author. Available to
// the author themselves and to moderators.
func (s *PostService) UserPostStats(ctx context.Context, authorID, requesterID uint) (map[string]int64, error) {
	if requesterID != authorID {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if requester == nil || !requester.IsModerator() {
			return nil, models.NewPermissionError("You can only view your own post statistics")
		}
	}

	total, err := s.postRepo.CountByUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	stats := map[string]int64{"total_posts": total}
	for _, status := range []models.PostStatus{models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived} {
		count, err := s.postRepo.CountByUserAndStatus(ctx, authorID, status)
		if err != nil {
			return nil, err
		}
		stats[string(status)+"_count"] = count
	}
	return stats, nil
}

// Trending returns published posts ordered by view count. The days window
// is accepted for API compatibility but not yet applied.
func (s *PostService) Trending(ctx context.Context, days, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	posts, err := s.postRepo.GetByStatus(ctx, models.PostStatusPublished, 100, 0)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ViewCount > posts[j].ViewCount
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func filterPublished(posts []*models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if post.IsPublished() {
			out = append(out, post)
		}
	}
	return out
}
