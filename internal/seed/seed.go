// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with demo users, posts and comments. All demo
// users share the password "password123".
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clearing existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("creating users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("creating posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createComments(db, posts); err != nil {
		return fmt.Errorf("creating comments: %w", err)
	}

	log.Println("Seeding complete. Demo users share the password: password123")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"comments", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.User{
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 999)),
			Email:     gofakeit.Email(),
			Password:  string(hashed),
			AboutMe:   gofakeit.Sentence(12),
			AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// randomContent builds a block sequence that always opens with text and may
// carry image, code or link blocks after it.
func randomContent() []models.ContentBlock {
	blocks := []models.ContentBlock{
		{Type: models.BlockTypeText, Text: gofakeit.Paragraph(2, 4, 8, "\n")},
	}
	if gofakeit.Bool() {
		blocks = append(blocks, models.ContentBlock{
			Type: models.BlockTypeImage,
			URL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.UUID()),
		})
	}
	if rand.Intn(4) == 0 {
		blocks = append(blocks, models.ContentBlock{
			Type:     models.BlockTypeCode,
			Text:     "func main() {\n\tfmt.Println(\"hello\")\n}",
			Language: "go",
		})
	}
	if rand.Intn(4) == 0 {
		blocks = append(blocks, models.ContentBlock{
			Type: models.BlockTypeLink,
			URL:  gofakeit.URL(),
		})
	}
	return blocks
}

func createPosts(db *gorm.DB, users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Title:    gofakeit.Sentence(6),
			Content:  randomContent(),
			AuthorID: author.ID,
			Likes:    gofakeit.Number(0, 250),
		}
		// realistic created_at spread over the last 90 days
		post.CreatedAt = time.Now().Add(-time.Duration(rand.Intn(90*24)) * time.Hour)
		posts = append(posts, post)
	}
	if err := db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// createComments attaches comments to posts and sets each post's
// comments_count to exactly the number of rows inserted.
func createComments(db *gorm.DB, posts []*models.Post) error {
	total := 0
	for _, post := range posts {
		n := rand.Intn(6)
		for i := 0; i < n; i++ {
			comment := &models.Comment{
				Text:       gofakeit.Sentence(10),
				AuthorName: gofakeit.Name(),
				PostID:     post.ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return err
			}
		}
		if err := db.Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("comments_count", n).Error; err != nil {
			return err
		}
		total += n
	}
	log.Printf("created %d comments", total)
	return nil
}
