// Package worker runs the polling loops: the inbox worker that drives the
// message engine and the cron scheduler for ingestion refreshes.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camsettings-bot/internal/gateway"
	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/service"
)

// seenCapacity bounds the processed-item dedup set. The comments listing
// overlaps between polls, so recently handled fullnames must be remembered.
const seenCapacity = 2000

// InboxWorker polls the messaging gateway for new comments and unread
// messages and feeds them through the message engine.
type InboxWorker struct {
	client       gateway.Client
	engine       *service.MessageService
	botUsername  string
	pollInterval time.Duration
	commentLimit int
	logger       *logging.Logger

	running      bool
	mu           sync.RWMutex
	stopCh       chan struct{}
	doneCh       chan struct{}
	lastPollTime time.Time
	processed    uint64

	seen      map[string]bool
	seenOrder []string
}

// InboxWorkerConfig holds configuration for an inbox worker
type InboxWorkerConfig struct {
	Client       gateway.Client
	Engine       *service.MessageService
	BotUsername  string
	PollInterval time.Duration
	CommentLimit int
	Logger       *logging.Logger
}

// NewInboxWorker creates a new inbox worker
func NewInboxWorker(cfg *InboxWorkerConfig) (*InboxWorker, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("gateway client cannot be nil")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("message engine cannot be nil")
	}
	if cfg.BotUsername == "" {
		return nil, fmt.Errorf("bot username cannot be empty")
	}

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 10 * time.Second
	}
	commentLimit := cfg.CommentLimit
	if commentLimit <= 0 {
		commentLimit = 25
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &InboxWorker{
		client:       cfg.Client,
		engine:       cfg.Engine,
		botUsername:  cfg.BotUsername,
		pollInterval: pollInterval,
		commentLimit: commentLimit,
		logger:       logger.WithField("component", "inbox_worker"),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		seen:         make(map[string]bool, seenCapacity),
	}, nil
}

// Start begins polling in a background goroutine.
func (w *InboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("inbox worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.WithField("poll_interval", w.pollInterval.String()).Info("Starting inbox worker")

	go w.pollLoop(ctx)
	return nil
}

// Stop gracefully stops the worker, waiting for the current poll cycle.
func (w *InboxWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("inbox worker is not running")
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.Info("Inbox worker stopped")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("stop timeout")
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

// Status reports the worker's health for the ops API.
func (w *InboxWorker) Status() (running bool, lastPoll time.Time, processed uint64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running, w.lastPollTime, w.processed
}

func (w *InboxWorker) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// First cycle runs immediately rather than one interval in.
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Context cancelled, stopping poll loop")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll runs one cycle over both inbound sources. Each item is handled in
// its own goroutine, so one slow store or gateway call never stalls the
// rest of the cycle; the keyed update locks and the mutex-guarded counters
// keep that safe. Listing errors are logged and the loop keeps going; a
// failed cycle only delays items until the next one.
func (w *InboxWorker) poll(ctx context.Context) {
	w.mu.Lock()
	w.lastPollTime = time.Now()
	w.mu.Unlock()

	var wg sync.WaitGroup

	comments, err := w.client.SubredditComments(ctx, w.commentLimit)
	if err != nil {
		w.logger.WithError(err).Error("Failed to list subreddit comments")
	} else {
		for _, item := range comments {
			wg.Add(1)
			go func(item gateway.Item) {
				defer wg.Done()
				w.handleItem(ctx, item)
			}(item)
		}
	}

	messages, err := w.client.UnreadMessages(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Failed to list unread messages")
		wg.Wait()
		return
	}

	var handled []string
	for _, item := range messages {
		wg.Add(1)
		go func(item gateway.Item) {
			defer wg.Done()
			w.handleItem(ctx, item)
		}(item)
		handled = append(handled, item.Fullname)
	}

	// Messages are confirmed only after every handler in the cycle has
	// finished; a crash mid-cycle re-delivers them.
	wg.Wait()

	if len(handled) > 0 {
		if err := w.client.MarkRead(ctx, handled); err != nil {
			w.logger.WithError(err).Error("Failed to mark messages read")
		}
	}
}

// handleItem runs one item through the engine and posts the reply. A panic
// in the engine is contained to the item that caused it.
func (w *InboxWorker) handleItem(ctx context.Context, item gateway.Item) {
	if item.Fullname == "" || w.alreadySeen(item.Fullname) {
		return
	}
	// Never answer our own replies, or items whose author is gone.
	if item.Author == "" || item.Author == "[deleted]" || item.Author == w.botUsername {
		return
	}

	taskID := uuid.New().String()
	log := w.logger.WithFields(map[string]interface{}{
		"task_id": taskID,
		"item":    item.Fullname,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprintf("%v", r)).Error("Recovered from panic while handling item")
		}
	}()

	text, ok := w.engine.HandleInbound(ctx, service.Inbound{
		ID:      item.Fullname,
		Channel: item.Channel,
		Author:  item.Author,
		Body:    item.Body,
	})
	if !ok {
		return
	}

	if err := w.client.Reply(ctx, item.Fullname, text); err != nil {
		log.WithError(err).Error("Failed to post reply")
		return
	}

	w.mu.Lock()
	w.processed++
	w.mu.Unlock()
	log.WithField("channel", string(item.Channel)).Info("Replied to inbound item")
}

// alreadySeen records the fullname and reports whether it was processed in a
// recent cycle. The set is bounded; the oldest entries fall out first.
func (w *InboxWorker) alreadySeen(fullname string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen[fullname] {
		return true
	}
	w.seen[fullname] = true
	w.seenOrder = append(w.seenOrder, fullname)
	if len(w.seenOrder) > seenCapacity {
		oldest := w.seenOrder[0]
		w.seenOrder = w.seenOrder[1:]
		delete(w.seen, oldest)
	}
	return false
}
