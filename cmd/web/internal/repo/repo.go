package repo

import (
	"context"
	"database/sql"
	"fmt"

	"microblog/cmd/web/internal/app"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(rawDB *sql.DB) *Repository {
	return &Repository{db: rawDB}
}

func (d Repository) CreateTweetToDB(ctx context.Context, tweet app.Tweet) (app.Tweet, error) {
	if err := tweet.Validate(); err != nil {
		return app.Tweet{}, err
	}

	imagePath := sql.NullString{String: tweet.ImagePath, Valid: tweet.ImagePath != ""}

	query := `insert into tweets (text, image_path, user_id) values ($1, $2, $3)
	returning id, seq, text, image_path, created_at, user_id`
	err := d.db.QueryRowContext(ctx, query, tweet.Text, imagePath, tweet.UserId).Scan(&tweet.Id, &tweet.Seq,
		&tweet.Text, &imagePath, &tweet.CreatedAt, &tweet.UserId)
	if err != nil {
		return app.Tweet{}, err
	}
	tweet.ImagePath = imagePath.String
	return tweet, nil
}

// ListTweetsFromDB returns all tweets newest-first. Ties on created_at fall
// back to the insertion sequence so the order stays deterministic.
func (d Repository) ListTweetsFromDB(ctx context.Context) ([]app.Tweet, error) {
	query := `select t.id, t.seq, t.text, t.image_path, t.created_at, t.user_id, coalesce(u.username, '')
	from tweets t
	left join users u on u.id = t.user_id
	order by t.created_at desc, t.seq desc`
	row, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer row.Close()
	var tweets []app.Tweet
	for row.Next() {
		var tweet app.Tweet
		var imagePath sql.NullString
		if err := row.Scan(&tweet.Id, &tweet.Seq, &tweet.Text, &imagePath,
			&tweet.CreatedAt, &tweet.UserId, &tweet.Author); err != nil {
			return nil, err
		}
		tweet.ImagePath = imagePath.String
		tweets = append(tweets, tweet)
	}
	if err := row.Err(); err != nil {
		return nil, err
	}
	return tweets, nil
}

// GetOrCreateUserToDB returns the user with the given username, inserting it
// first if absent. The upsert leans on the unique username constraint, so
// concurrent first-time calls converge on a single row.
func (d Repository) GetOrCreateUserToDB(ctx context.Context, username, password string) (app.User, error) {
	var user app.User
	query := `insert into users (username, password) values ($1, $2)
	on conflict (username) do update set username = excluded.username
	returning id, username, created_at`
	err := d.db.QueryRowContext(ctx, query, username, password).Scan(&user.Id, &user.Username, &user.CreatedAt)
	if err != nil {
		return app.User{}, fmt.Errorf("GetOrCreateUserToDB: %w", err)
	}
	return user, nil
}
