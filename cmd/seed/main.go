package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"cofeed/pkg/config"
	"cofeed/pkg/database"
	"cofeed/pkg/jwt"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/s3"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	var withImages bool
	flag.BoolVar(&withImages, "images", true, "fetch cat images and attach them to seeded posts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	var s3Client *s3.Client
	if withImages {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Warn("Failed to create S3 client: %v (seeding without images)", err)
			s3Client = nil
		}
	}

	tokens := jwt.NewService(cfg.JWTSecret)

	if err := seedDatabase(context.Background(), db, s3Client, tokens, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(ctx context.Context, db *gorm.DB, s3Client *s3.Client, tokens *jwt.Service, log *logger.Logger) error {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	usernames := []string{"alice_cat", "bob_cat", "charlie_cat", "diana_cat", "eve_cat"}
	users := make([]models.User, 0, len(usernames))
	for _, name := range usernames {
		var user models.User
		err := db.WithContext(ctx).
			Where(models.User{Username: name}).
			Attrs(models.User{ID: uuid.New().String()}).
			FirstOrCreate(&user).Error
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", name, err)
		}
		log.Info("User ready: %s (%s)", user.Username, user.ID)
		if token, err := tokens.GenerateToken(user.ID, "user"); err == nil {
			log.Info("Bearer token for %s: %s", user.Username, token)
		} else {
			log.Warn("Failed to issue token for %s: %v", user.Username, err)
		}
		users = append(users, user)
	}

	// alice-bob, bob-charlie, charlie-diana; eve stays a stranger
	for i := 0; i+1 < len(users)-1; i++ {
		a, b := users[i].ID, users[i+1].ID
		err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&[]models.Friendship{
			{UserID: a, FriendID: b},
			{UserID: b, FriendID: a},
		}).Error
		if err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}
	}
	log.Info("Created test friendships")

	privacies := []models.Privacy{models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate}
	var posts []models.Post
	for i, user := range users {
		for j := 0; j < 3; j++ {
			post := models.Post{
				OwnerID:    user.ID,
				Body:       strPtr(fmt.Sprintf("Cat Post #%d by %s", j+1, user.Username)),
				Privacy:    privacies[(i+j)%len(privacies)],
				AllowShare: j != 2,
			}
			if err := db.WithContext(ctx).Create(&post).Error; err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			posts = append(posts, post)

			if s3Client != nil {
				if err := attachCatImage(ctx, db, s3Client, httpClient, &post, user.Username, j, log); err != nil {
					log.Warn("Failed to attach image to post %s: %v", post.ID, err)
				}
			}
		}
	}
	log.Info("Created %d posts", len(posts))

	// bob co-creates alice's first post
	first := posts[0]
	now := time.Now().UTC()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.CollaborationInvite{
		PostID:      first.ID,
		InviteeID:   users[1].ID,
		InviterID:   users[0].ID,
		Status:      models.InviteAccepted,
		CanEdit:     true,
		CreatedAt:   now,
		RespondedAt: &now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	err = db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PostCoCreator{
		PostID:   first.ID,
		UserID:   users[1].ID,
		CanEdit:  true,
		JoinedAt: now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to add co-creator: %w", err)
	}

	// charlie still has to answer
	err = db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.CollaborationInvite{
		PostID:    first.ID,
		InviteeID: users[2].ID,
		InviterID: users[0].ID,
		Status:    models.InviteInvited,
		CanEdit:   true,
		CreatedAt: now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	for _, user := range users[1:] {
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{PostID: first.ID, UserID: user.ID}).Error; err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
	}
	if err := db.WithContext(ctx).Create(&models.Comment{PostID: first.ID, AuthorID: users[3].ID, Body: "What a cat!"}).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	share := models.Post{
		OwnerID:      users[4].ID,
		Body:         strPtr("Shared a post"),
		Privacy:      models.PrivacyFriends,
		AllowShare:   true,
		SharedFromID: &first.ID,
	}
	if err := db.WithContext(ctx).Create(&share).Error; err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	log.Info("Created test collaboration and engagement")
	return nil
}

func attachCatImage(ctx context.Context, db *gorm.DB, s3Client *s3.Client, httpClient *http.Client, post *models.Post, username string, index int, log *logger.Logger) error {
	cataasURL := "https://cataas.com/cat"
	if index%2 == 0 {
		cataasURL += fmt.Sprintf("/says/Hello from %s", username)
	}

	log.Info("Fetching cat image from %s", cataasURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cataasURL, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch cat image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cataas API returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) == 0 {
		return fmt.Errorf("received empty image data")
	}

	key := fmt.Sprintf("posts/%s/seed_%d.jpg", post.OwnerID, index)
	ref, err := s3Client.PutObject(ctx, key, bytes.NewReader(imageData), "image/jpeg")
	if err != nil {
		return err
	}

	media := &models.PostMedia{
		PostID:     post.ID,
		URL:        ref.URL,
		ObjectKey:  ref.Key,
		Kind:       models.MediaImage,
		UploaderID: post.OwnerID,
		Position:   0,
	}
	if err := db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("failed to create post media: %w", err)
	}

	log.Info("Image attached to post %s: %s", post.ID, ref.URL)
	return nil
}

func strPtr(s string) *string {
	return &s
}
