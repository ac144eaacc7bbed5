package database

import "time"

// Exchange records one processed channel message and the reply produced for it.
type Exchange struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	ChannelID string `db:"channel_id"`
	MessageID string `db:"message_id"`
	AuthorID  string `db:"author_id"`
	Content   string `db:"content"`

	Reply     string `db:"reply"`
	Source    string `db:"source"`
	ReplyMode bool   `db:"reply_mode"`
	Sent      bool   `db:"sent"`
	Error     string `db:"error"`
}
