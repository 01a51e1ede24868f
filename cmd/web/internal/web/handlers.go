package web

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"time"

	"microblog/cmd/web/internal/app"
	"microblog/cmd/web/internal/form"
	"microblog/internal/logger"
	"microblog/internal/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofrs/uuid/v5"
)

const (
	ListCacheKey = "tweet_list"
	ListCacheTTL = 10 * time.Minute

	demoUsername = "demo"
	demoPassword = "demo12345"

	flashKey    = "flash"
	flashPosted = "Tweet posted successfully!"
)

// TweetPostedEvent is published to the tweet queue after every create.
type TweetPostedEvent struct {
	Id        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	CreateTweetToDB(ctx context.Context, tweet app.Tweet) (app.Tweet, error)
	ListTweetsFromDB(ctx context.Context) ([]app.Tweet, error)
	GetOrCreateUserToDB(ctx context.Context, username, password string) (app.User, error)
}

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

type Producer interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}) error
}

type ImageStorage interface {
	Save(fh *multipart.FileHeader) (string, error)
}

type Handlers struct {
	Database Repository
	CacheDB  Cache
	Producer Producer
	Images   ImageStorage
	Sessions *session.Store
}

// TweetList renders all tweets newest-first, with the one-shot flash message
// if the previous request set one. The rendered collection is cached in
// Redis; cache failures fall back to the database.
func (h Handlers) TweetList(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	flash, err := h.popFlash(c)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	var tweets []app.Tweet
	hit := false
	if cached, err := h.CacheDB.Get(ctx, ListCacheKey); err == nil {
		if err := json.Unmarshal([]byte(cached), &tweets); err != nil {
			log.Error("decode cached tweet list", "error", err)
		} else {
			hit = true
		}
	}

	if !hit {
		tweets, err = h.Database.ListTweetsFromDB(ctx)
		if err != nil {
			return fmt.Errorf("ListTweetsFromDB: %w", err)
		}
		if body, err := json.Marshal(tweets); err == nil {
			if err := h.CacheDB.Set(ctx, ListCacheKey, body, ListCacheTTL); err != nil {
				log.Error("cache tweet list", "error", err)
			}
		}
	}

	return c.Render("tweet_list", fiber.Map{
		"Tweets": tweets,
		"Flash":  flash,
	})
}

// TweetCreateForm renders the blank creation form.
func (h Handlers) TweetCreateForm(c *fiber.Ctx) error {
	return c.Render("tweet_form", formContext(form.TweetForm{}, nil))
}

// TweetCreate validates the posted form, persists the tweet under the demo
// account and redirects to the list view. Validation failure re-renders the
// form with field errors and persists nothing.
func (h Handlers) TweetCreate(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	f := form.TweetForm{Text: c.FormValue("text")}
	if fieldErrors := f.Validate(); len(fieldErrors) > 0 {
		return c.Render("tweet_form", formContext(f, fieldErrors))
	}

	user, err := h.Database.GetOrCreateUserToDB(ctx, demoUsername, demoPassword)
	if err != nil {
		return err
	}

	newTweet := app.Tweet{
		Text:   f.Text,
		UserId: uuid.NullUUID{UUID: user.Id, Valid: true},
	}

	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		path, err := h.Images.Save(fh)
		if err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		newTweet.ImagePath = path
	}

	tweet, err := h.Database.CreateTweetToDB(ctx, newTweet)
	if err != nil {
		return fmt.Errorf("CreateTweetToDB: %w", err)
	}

	if err := h.CacheDB.Delete(ctx, ListCacheKey); err != nil {
		log.Error("invalidate tweet list cache", "error", err)
	}

	event := TweetPostedEvent{
		Id:        tweet.Id.String(),
		Text:      tweet.Text,
		Author:    user.Username,
		CreatedAt: tweet.CreatedAt,
	}
	if err := h.Producer.PublishJSON(ctx, rabbitmq.TweetQueue, event); err != nil {
		log.Error("publish tweet posted event", "error", err)
	}

	if err := h.setFlash(c, flashPosted); err != nil {
		log.Error("set flash", "error", err)
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (h Handlers) setFlash(c *fiber.Ctx, msg string) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(flashKey, msg)
	return sess.Save()
}

// popFlash returns the pending flash message, clearing it so it renders once.
func (h Handlers) popFlash(c *fiber.Ctx) (string, error) {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return "", err
	}
	msg, _ := sess.Get(flashKey).(string)
	if msg != "" {
		sess.Delete(flashKey)
		if err := sess.Save(); err != nil {
			return "", err
		}
	}
	return msg, nil
}

func formContext(f form.TweetForm, fieldErrors map[string]string) fiber.Map {
	return fiber.Map{
		"Form":            f,
		"Errors":          fieldErrors,
		"TextLabel":       form.TextLabel,
		"TextPlaceholder": form.TextPlaceholder,
		"TextMaxLength":   form.TextMaxLength,
		"TextRows":        form.TextRows,
		"ImageLabel":      form.ImageLabel,
		"ImageAccept":     form.ImageAccept,
	}
}
