// Package service provides the message handling engine: it classifies one
// inbound item, runs the matching lookup, update, or maintenance operation,
// and renders the reply text.
package service

import (
	"context"

	"github.com/camsettings-bot/internal/command"
	apperrors "github.com/camsettings-bot/internal/errors"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/models"
	"github.com/camsettings-bot/internal/normalize"
	"github.com/camsettings-bot/internal/reply"
	"github.com/camsettings-bot/internal/resolver"
	"github.com/camsettings-bot/internal/storage"
	"github.com/camsettings-bot/internal/types"
	"github.com/camsettings-bot/internal/updater"
)

// SettingsStore is the full store contract the engine needs: the resolver's
// read operations plus the user-namespace write operations.
type SettingsStore interface {
	resolver.SettingsStore
	UpsertReddit(ctx context.Context, record *models.PlayerSettings) error
	DeleteReddit(ctx context.Context, key string) error
}

// Inbound is one item handed to the engine: a public comment or a private
// message, already reduced to author and body text.
type Inbound struct {
	ID      string
	Channel types.Channel
	Author  string
	Body    string
}

// MessageService is the query interpretation engine. It is stateless between
// calls except for the per-identity update locks and the reply cache.
type MessageService struct {
	store       SettingsStore
	resolver    *resolver.Resolver
	cache       *storage.ReplyCache
	locks       *updater.KeyedLocks
	botUsername string
	logger      *logging.Logger
}

// NewMessageService creates the engine. cache may be nil, which disables
// reply caching without changing behavior.
func NewMessageService(store SettingsStore, cache *storage.ReplyCache, botUsername string, logger *logging.Logger) *MessageService {
	return &MessageService{
		store:       store,
		resolver:    resolver.New(store),
		cache:       cache,
		locks:       updater.NewKeyedLocks(),
		botUsername: botUsername,
		logger:      logger,
	}
}

// HandleInbound classifies and processes one inbound item. It returns the
// reply body and whether a reply should be sent at all: an unrecognized
// public comment that does not mention the bot is silently skipped, every
// other outcome (including internal failures) produces a reply.
func (s *MessageService) HandleInbound(ctx context.Context, in Inbound) (string, bool) {
	q := command.Parse(in.Body, in.Channel)

	log := s.logger.WithFields(map[string]interface{}{
		"item_id": in.ID,
		"channel": string(in.Channel),
		"author":  in.Author,
		"kind":    string(q.Kind),
	})

	switch q.Kind {
	case command.KindPlayerLookup:
		return s.handlePlayerLookup(ctx, q, log), true
	case command.KindTeamLookup:
		return s.handleTeamLookup(ctx, q, log), true
	case command.KindDelete:
		return s.handleDelete(ctx, in, log), true
	case command.KindHelp:
		return reply.ComposeHelp(), true
	case command.KindSettingsUpdate:
		return s.handleSettingsUpdate(ctx, in, q, log), true
	default:
		if in.Channel == types.ChannelComment && command.MentionsBot(in.Body, s.botUsername) {
			return reply.ComposeCantParse(), true
		}
		return "", false
	}
}

// handlePlayerLookup resolves a possibly mixed player lookup. Pure pro
// lookups go through the reply cache; any reddit identity in the query
// bypasses it, since user records change on every update.
func (s *MessageService) handlePlayerLookup(ctx context.Context, q command.Query, log *logging.Logger) string {
	cacheable := len(q.RedditKeys) == 0

	var cacheKey string
	if cacheable {
		cacheKey = s.cache.Key("players", q.ProFragments)
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			log.Debug("Serving player lookup from reply cache")
			return cached
		}
	}

	pro, reddit, err := s.resolver.ResolvePlayers(ctx, q.ProFragments, q.RedditKeys)
	if err != nil {
		log.WithError(apperrors.NewStoreError("player lookup", err)).Error("Player lookup failed")
		return reply.ComposeFailure()
	}

	rendered := reply.Compose(pro, reddit)
	if cacheable {
		s.cache.Set(ctx, cacheKey, rendered)
	}
	return rendered
}

func (s *MessageService) handleTeamLookup(ctx context.Context, q command.Query, log *logging.Logger) string {
	cacheKey := s.cache.Key("teams", q.TeamFragments)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		log.Debug("Serving team lookup from reply cache")
		return cached
	}

	records, err := s.resolver.ResolveTeams(ctx, q.TeamFragments)
	if err != nil {
		log.WithError(apperrors.NewStoreError("team lookup", err)).Error("Team lookup failed")
		return reply.ComposeFailure()
	}

	rendered := reply.Compose(records)
	s.cache.Set(ctx, cacheKey, rendered)
	return rendered
}

// handleDelete removes the sender's user-namespace record. Deleting an
// identity that has no record still confirms, so the operation is idempotent
// from the sender's point of view.
func (s *MessageService) handleDelete(ctx context.Context, in Inbound, log *logging.Logger) string {
	key := normalize.RedditKey(in.Author)

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.store.DeleteReddit(ctx, key); err != nil {
		log.WithError(apperrors.NewStoreError("delete user record", err)).Error("Delete failed")
		return reply.ComposeFailure()
	}

	log.Info("Deleted user settings record")
	return reply.ComposeDeleted()
}

// handleSettingsUpdate merges the message's field edits onto the sender's
// record (or a default scaffold) and persists the result. The read-merge-
// write sequence holds the sender's identity lock so two racing updates
// cannot lose each other's fields. A message with no parseable edit line is
// treated as not understood, not as an empty update.
func (s *MessageService) handleSettingsUpdate(ctx context.Context, in Inbound, q command.Query, log *logging.Logger) string {
	edits := updater.ParseEdits(q.Lines)
	if len(edits) == 0 {
		return reply.ComposeCantParse()
	}

	key := normalize.RedditKey(in.Author)

	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.store.FindRedditByExactKey(ctx, []string{key})
	if err != nil {
		log.WithError(apperrors.NewStoreError("load user record", err)).Error("Settings update failed")
		return reply.ComposeFailure()
	}

	var base *models.PlayerSettings
	if len(existing) > 0 {
		base = existing[0]
	} else {
		base = models.Scaffold("/u/"+in.Author, key)
	}

	merged, rejected := updater.Apply(base, edits)
	if len(rejected) == len(edits) {
		// Every edit carried an unusable value; nothing to persist.
		return reply.ComposeCantParse()
	}
	if len(rejected) > 0 {
		log.WithField("rejected", len(rejected)).Warn("Dropped unparseable settings edits")
	}

	if err := s.store.UpsertReddit(ctx, merged); err != nil {
		log.WithError(apperrors.NewStoreError("persist user record", err)).Error("Settings update failed")
		return reply.ComposeFailure()
	}

	log.WithField("applied", len(edits)-len(rejected)).Info("Stored user settings")
	return reply.Compose([]*models.PlayerSettings{merged})
}
