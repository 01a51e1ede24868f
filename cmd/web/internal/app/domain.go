package app

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
)

// MaxTextLen is the upper bound on tweet text, counted in runes.
const MaxTextLen = 280

var (
	ErrTextEmpty   = errors.New("tweet text is empty")
	ErrTextTooLong = errors.New("tweet text exceeds 280 characters")
)

type Tweet struct {
	Id        uuid.UUID
	Seq       int64
	Text      string
	ImagePath string
	CreatedAt time.Time
	UserId    uuid.NullUUID
	// Author is the username of the owning user, filled on list reads.
	Author string
}

type User struct {
	Id        uuid.UUID
	Username  string
	Password  string
	CreatedAt time.Time
}

// Validate enforces the text bound regardless of how the tweet was built.
func (t Tweet) Validate() error {
	if t.Text == "" {
		return ErrTextEmpty
	}
	if utf8.RuneCountInString(t.Text) > MaxTextLen {
		return ErrTextTooLong
	}
	return nil
}
