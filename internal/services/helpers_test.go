package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/westmarinwhales/whale-alerts/internal/config"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

const (
	adminPhone    = "+14155550100"
	reporterPhone = "+14155550123"
	otherPhone    = "+14155550199"
)

var pacific = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// wednesdayAt returns a weekday time in the alert region
func wednesdayAt(hour, minute int) time.Time {
	return time.Date(2024, time.June, 12, hour, minute, 0, 0, pacific)
}

type sentSMS struct {
	To         string
	Body       string
	AttachCard bool
}

// recordingMessenger keeps every text instead of sending it
type recordingMessenger struct {
	mu      sync.Mutex
	sent    []sentSMS
	failFor map[string]bool
}

func (r *recordingMessenger) SendSMS(ctx context.Context, to, body string, attachCard bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[to] {
		return errors.New("carrier rejected message")
	}
	r.sent = append(r.sent, sentSMS{To: to, Body: body, AttachCard: attachCard})
	return nil
}

func (r *recordingMessenger) to(phone string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bodies []string
	for _, m := range r.sent {
		if m.To == phone {
			bodies = append(bodies, m.Body)
		}
	}
	return bodies
}

func (r *recordingMessenger) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

type fixedKeyword string

func (k fixedKeyword) RandomWord(maxLength int) string { return string(k) }

// testClock is a settable clock shared by every component under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	service   *AlertService
	store     *storage.MemoryStore
	messenger *recordingMessenger
	clock     *testClock
}

func testConfig() *config.Config {
	return &config.Config{
		AdminPhoneNumbers: []string{adminPhone},
		TimeZone:          "America/Los_Angeles",
		ReportOpenHour:    8,
		ReportCloseHour:   20,
		SightingRateLimit: 4 * time.Hour,
		SessionTTL:        24 * time.Hour,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, storage.NewMemoryStore(), nil)
}

// newTestEnvWithStore lets a test wrap the memory store to inject failures
func newTestEnvWithStore(t *testing.T, mem *storage.MemoryStore, wrap func(storage.Store) storage.Store) *testEnv {
	t.Helper()

	var store storage.Store = mem
	if wrap != nil {
		store = wrap(mem)
	}

	cfg := testConfig()
	clock := &testClock{now: wednesdayAt(10, 0)}
	messenger := &recordingMessenger{failFor: map[string]bool{}}

	sessions := NewSessionManager(store, cfg.SessionTTL)
	sessions.now = clock.Now
	broadcaster := NewBroadcaster(store, messenger, cfg.Location(), 0)
	broadcaster.now = clock.Now

	service := NewAlertService(cfg, store, sessions, messenger, broadcaster, NewWordFilter([]string{"darn"}), fixedKeyword("kelp"))
	service.now = clock.Now
	t.Cleanup(broadcaster.Wait)

	return &testEnv{service: service, store: mem, messenger: messenger, clock: clock}
}

func (e *testEnv) send(t *testing.T, from, body string) Reply {
	t.Helper()
	return e.service.ProcessMessage(context.Background(), from, body)
}

func (e *testEnv) session(t *testing.T, phone string) *Session {
	t.Helper()
	session, err := e.service.sessions.Load(context.Background(), phone)
	require.NoError(t, err)
	return session
}
