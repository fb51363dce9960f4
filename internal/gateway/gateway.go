// Package gateway provides the messaging gateway: fetching inbound comments
// and private messages and posting replies.
package gateway

import (
	"context"

	"github.com/camsettings-bot/internal/types"
)

// Item is one inbound unit delivered by the gateway. Fullname is the
// platform identifier ("t1_..." for comments, "t4_..." for messages) and is
// also the reply target.
type Item struct {
	Fullname string
	Channel  types.Channel
	Author   string
	Body     string
	Created  int64
}

// Client is the messaging gateway contract the workers consume. All calls
// are paced by the implementation; callers never rate-limit themselves.
type Client interface {
	// SubredditComments lists the newest public comments of the watched
	// subreddit, most recent first.
	SubredditComments(ctx context.Context, limit int) ([]Item, error)

	// UnreadMessages lists unread inbox items. Items stay unread until
	// MarkRead confirms them, so a crashed poll cycle re-delivers.
	UnreadMessages(ctx context.Context) ([]Item, error)

	// Reply posts a reply to the item identified by parentFullname.
	Reply(ctx context.Context, parentFullname, text string) error

	// MarkRead confirms inbox items so they are not delivered again.
	MarkRead(ctx context.Context, fullnames []string) error
}
