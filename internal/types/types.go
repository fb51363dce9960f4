// Package types provides common type definitions for the camera settings bot.
package types

// Channel represents the delivery channel of an inbound item
type Channel string

const (
	// ChannelComment represents a public subreddit comment
	ChannelComment Channel = "comment"
	// ChannelMessage represents a private message to the bot
	ChannelMessage Channel = "message"
)

// Namespace represents one of the two disjoint keyspaces of settings records
type Namespace string

const (
	// NamespacePro holds records for known professional players
	NamespacePro Namespace = "pro"
	// NamespaceUser holds records created by reddit users
	NamespaceUser Namespace = "user"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
