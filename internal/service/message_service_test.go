package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/camsettings-bot/internal/logging"
	"github.com/camsettings-bot/internal/models"
	"github.com/camsettings-bot/internal/reply"
	"github.com/camsettings-bot/internal/storage"
	"github.com/camsettings-bot/internal/types"
)

type mockStore struct {
	pros    map[string]*models.PlayerSettings
	reddits map[string]*models.PlayerSettings

	proCalls    int
	teamCalls   int
	redditCalls int

	failReads  bool
	failWrites bool
}

func newMockStore() *mockStore {
	return &mockStore{
		pros:    make(map[string]*models.PlayerSettings),
		reddits: make(map[string]*models.PlayerSettings),
	}
}

func (m *mockStore) addPro(name, team, fullTeam string) *models.PlayerSettings {
	rec := models.Scaffold("", "")
	rec.SetName(name)
	rec.SetTeam(team, fullTeam)
	m.pros[rec.NormalizedName] = rec
	return rec
}

func (m *mockStore) FindProBySubstring(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	m.proCalls++
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []*models.PlayerSettings
	for _, rec := range m.pros {
		for _, f := range fragments {
			if strings.Contains(rec.NormalizedName, f) {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (m *mockStore) FindRedditByExactKey(ctx context.Context, keys []string) ([]*models.PlayerSettings, error) {
	m.redditCalls++
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []*models.PlayerSettings
	for _, k := range keys {
		if rec, ok := m.reddits[k]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockStore) FindTeams(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	m.teamCalls++
	if m.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []*models.PlayerSettings
	for _, rec := range m.pros {
		for _, f := range fragments {
			if strings.Contains(rec.NormalizedFullTeam, f) || rec.NormalizedTeam == f {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (m *mockStore) UpsertReddit(ctx context.Context, record *models.PlayerSettings) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	m.reddits[record.NormalizedName] = record
	return nil
}

func (m *mockStore) DeleteReddit(ctx context.Context, key string) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	delete(m.reddits, key)
	return nil
}

func testLogger() *logging.Logger {
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)
	logger.SetOutput(discard{})
	return logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newService(t *testing.T, store *mockStore) *MessageService {
	t.Helper()
	return NewMessageService(store, nil, "settings_bot", testLogger())
}

func newServiceWithCache(t *testing.T, store *mockStore) (*MessageService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := storage.NewReplyCache(storage.NewRedisCacheWithClient(client), time.Minute)
	return NewMessageService(store, cache, "settings_bot", testLogger()), mr
}

func TestHandleInbound_PlayerLookup(t *testing.T) {
	store := newMockStore()
	store.addPro("Squishy", "NRG", "NRG Esports")
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		ID:      "c1",
		Channel: types.ChannelComment,
		Author:  "someone",
		Body:    "!camera squishy",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(out, "Squishy|NRG Esports|") {
		t.Errorf("reply missing record row:\n%s", out)
	}
	if !strings.Contains(out, reply.Signature) {
		t.Error("reply missing signature")
	}
}

func TestHandleInbound_PlayerLookupNoResults(t *testing.T) {
	svc := newService(t, newMockStore())

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "camera nobody",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(out, reply.NoResults) {
		t.Errorf("reply = %q, want no-results body", out)
	}
}

func TestHandleInbound_MixedLookupOrdersProFirst(t *testing.T) {
	store := newMockStore()
	store.addPro("Kaydop", "VIT", "Team Vitality")
	user := models.Scaffold("/u/someuser", "/u/someuser")
	store.reddits[user.NormalizedName] = user
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "-players kaydop /u/someuser",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	proIdx := strings.Index(out, "Kaydop")
	userIdx := strings.Index(out, "/u/someuser")
	if proIdx < 0 || userIdx < 0 {
		t.Fatalf("reply missing rows:\n%s", out)
	}
	if proIdx > userIdx {
		t.Error("pro record should precede reddit record")
	}
}

func TestHandleInbound_TeamLookup(t *testing.T) {
	store := newMockStore()
	store.addPro("Turbopolsa", "NRG", "NRG Esports")
	store.addPro("GarrettG", "NRG", "NRG Esports")
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "team nrg",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(out, "Turbopolsa") || !strings.Contains(out, "GarrettG") {
		t.Errorf("reply missing team members:\n%s", out)
	}
}

func TestHandleInbound_UnrecognizedComment(t *testing.T) {
	svc := newService(t, newMockStore())

	// No mention: skip silently.
	_, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "what a great goal",
	})
	if ok {
		t.Error("unrecognized comment without mention should not be answered")
	}

	// Mentioned: answer with the parse-failure reply.
	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "hey /u/settings_bot what gives",
	})
	if !ok {
		t.Fatal("mentioned comment should be answered")
	}
	if !strings.Contains(out, reply.CantParse) {
		t.Errorf("reply = %q, want parse-failure body", out)
	}
}

func TestHandleInbound_Help(t *testing.T) {
	svc := newService(t, newMockStore())

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "someone",
		Body:    "help",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if out != reply.ComposeHelp() {
		t.Errorf("reply = %q", out)
	}
}

func TestHandleInbound_SettingsUpdateScaffoldsDefaults(t *testing.T) {
	store := newMockStore()
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "NewUser",
		Body:    "fov 110\nshake yes",
	})
	if !ok {
		t.Fatal("expected a reply")
	}

	stored, found := store.reddits["/u/newuser"]
	if !found {
		t.Fatal("record was not persisted")
	}
	if stored.FOV == nil || *stored.FOV != 110 {
		t.Errorf("FOV = %v, want 110", stored.FOV)
	}
	if !stored.Shake {
		t.Error("Shake = false, want true")
	}
	// Untouched fields keep the documented defaults.
	if stored.Distance == nil || *stored.Distance != models.DefaultDistance {
		t.Errorf("Distance = %v, want default %d", stored.Distance, models.DefaultDistance)
	}
	if stored.RawName != "/u/NewUser" {
		t.Errorf("RawName = %q", stored.RawName)
	}
	if !strings.Contains(out, "/u/NewUser") {
		t.Errorf("reply should echo the stored record:\n%s", out)
	}
}

func TestHandleInbound_SettingsUpdatePreservesExistingFields(t *testing.T) {
	store := newMockStore()
	existing := models.Scaffold("/u/OldUser", "/u/olduser")
	fov := 103
	existing.FOV = &fov
	store.reddits[existing.NormalizedName] = existing
	svc := newService(t, store)

	_, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "OldUser",
		Body:    "distance 270",
	})
	if !ok {
		t.Fatal("expected a reply")
	}

	stored := store.reddits["/u/olduser"]
	if stored.FOV == nil || *stored.FOV != 103 {
		t.Errorf("FOV = %v, want preserved 103", stored.FOV)
	}
	if stored.Distance == nil || *stored.Distance != 270 {
		t.Errorf("Distance = %v, want 270", stored.Distance)
	}
}

func TestHandleInbound_SettingsUpdateNoEdits(t *testing.T) {
	store := newMockStore()
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "someone",
		Body:    "hello there bot",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if !strings.Contains(out, reply.CantParse) {
		t.Errorf("reply = %q, want parse-failure body", out)
	}
	if len(store.reddits) != 0 {
		t.Error("nothing should have been persisted")
	}
}

func TestHandleInbound_SettingsUpdateAllEditsRejected(t *testing.T) {
	store := newMockStore()
	svc := newService(t, store)

	out, _ := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "someone",
		Body:    "fov abc",
	})
	if !strings.Contains(out, reply.CantParse) {
		t.Errorf("reply = %q, want parse-failure body", out)
	}
	if len(store.reddits) != 0 {
		t.Error("nothing should have been persisted")
	}
}

func TestHandleInbound_Delete(t *testing.T) {
	store := newMockStore()
	rec := models.Scaffold("/u/GoneUser", "/u/goneuser")
	store.reddits[rec.NormalizedName] = rec
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "GoneUser",
		Body:    "delete",
	})
	if !ok {
		t.Fatal("expected a reply")
	}
	if out != reply.ComposeDeleted() {
		t.Errorf("reply = %q", out)
	}
	if _, found := store.reddits["/u/goneuser"]; found {
		t.Error("record should have been deleted")
	}

	// Deleting again still confirms.
	out, ok = svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelMessage,
		Author:  "GoneUser",
		Body:    "delete",
	})
	if !ok || out != reply.ComposeDeleted() {
		t.Error("repeat delete should confirm identically")
	}
}

func TestHandleInbound_DeleteIsMessageOnly(t *testing.T) {
	store := newMockStore()
	rec := models.Scaffold("/u/SafeUser", "/u/safeuser")
	store.reddits[rec.NormalizedName] = rec
	svc := newService(t, store)

	_, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Author:  "SafeUser",
		Body:    "delete",
	})
	if ok {
		t.Error("delete in a public comment should not be answered")
	}
	if _, found := store.reddits["/u/safeuser"]; !found {
		t.Error("record must survive a comment-channel delete attempt")
	}
}

func TestHandleInbound_StoreFailure(t *testing.T) {
	store := newMockStore()
	store.failReads = true
	svc := newService(t, store)

	out, ok := svc.HandleInbound(context.Background(), Inbound{
		Channel: types.ChannelComment,
		Body:    "camera squishy",
	})
	if !ok {
		t.Fatal("store failure must still produce a reply")
	}
	if out != reply.ComposeFailure() {
		t.Errorf("reply = %q, want failure body", out)
	}
}

func TestHandleInbound_ProLookupUsesReplyCache(t *testing.T) {
	store := newMockStore()
	store.addPro("Squishy", "NRG", "NRG Esports")
	svc, _ := newServiceWithCache(t, store)

	in := Inbound{Channel: types.ChannelComment, Body: "camera squishy"}

	first, _ := svc.HandleInbound(context.Background(), in)
	second, _ := svc.HandleInbound(context.Background(), in)
	if first != second {
		t.Error("cached reply differs from the original")
	}
	if store.proCalls != 1 {
		t.Errorf("proCalls = %d, want 1 (second lookup served from cache)", store.proCalls)
	}
}

func TestHandleInbound_MixedLookupBypassesCache(t *testing.T) {
	store := newMockStore()
	store.addPro("Squishy", "NRG", "NRG Esports")
	svc, _ := newServiceWithCache(t, store)

	in := Inbound{Channel: types.ChannelComment, Body: "players squishy /u/someuser"}

	svc.HandleInbound(context.Background(), in)
	svc.HandleInbound(context.Background(), in)
	if store.proCalls != 2 {
		t.Errorf("proCalls = %d, want 2 (mixed lookup never cached)", store.proCalls)
	}
}
