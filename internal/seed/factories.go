// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is the shared password for all generated accounts. It
// satisfies the strength policy so seeded users can log in.
const seedPassword = "Password123"

var tagPool = []string{
	"golang", "webdev", "databases", "testing", "architecture",
	"devops", "security", "performance", "career", "tutorials",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	hashed, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		hash: string(hashed),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:          gofakeit.Email(),
		FirstName:      gofakeit.FirstName(),
		LastName:       gofakeit.LastName(),
		Role:           models.RoleUser,
		IsActive:       true,
		IsVerified:     f.rng.Intn(4) != 0,
		HashedPassword: f.hash,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given author.
// Published posts get a published timestamp and a plausible view count.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(6)+4), ".")
	content := gofakeit.Paragraph(f.rng.Intn(4)+2, 4, 12, "\n\n")

	post := &models.Post{
		UserID:  author.ID,
		Title:   title,
		Content: content,
		Slug:    fmt.Sprintf("%s-%d", service.Slugify(title), gofakeit.Number(1000, 9999)),
		Excerpt: service.Excerpt(content),
		Tags:    f.randomTags(),
		Status:  f.randomStatus(),
	}

	// realistic created_at spread
	daysBack := f.rng.Intn(90)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(f.rng.Intn(24))*time.Hour)

	if post.Status != models.PostStatusDraft {
		publishedAt := post.CreatedAt.Add(time.Duration(f.rng.Intn(48)) * time.Hour)
		post.PublishedAt = &publishedAt
		post.ViewCount = f.rng.Intn(5000)
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (f *Factory) randomTags() string {
	n := f.rng.Intn(3) + 1
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(tagPool))[:n] {
		picked = append(picked, tagPool[i])
	}
	return strings.Join(picked, ",")
}

// randomStatus skews toward published so the public surface has content.
func (f *Factory) randomStatus() models.PostStatus {
	switch f.rng.Intn(10) {
	case 0:
		return models.PostStatusArchived
	case 1, 2, 3:
		return models.PostStatusDraft
	default:
		return models.PostStatusPublished
	}
}
