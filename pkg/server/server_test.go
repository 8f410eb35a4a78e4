package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atelier/pkg/agenda"
	"atelier/pkg/api"
	"atelier/pkg/catalog"
	"atelier/pkg/models"
	"atelier/pkg/sample"
	"atelier/pkg/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var now = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

const (
	adminEmail    = "admin@gallery.test"
	adminPassword = "correct horse"
)

func newServer(t *testing.T, mutate func(*server.Config)) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := server.Config{
		AdminEmail:        adminEmail,
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	store := sample.NewSeeded(sample.WithClock(func() time.Time { return now }), sample.WithLocation(time.UTC))
	srv, err := server.New(cfg, store, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server) *api.Client {
	t.Helper()
	res, err := api.New(ts.URL).Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, adminEmail, res.User.Email)
	assert.True(t, res.User.IsAdmin())
	return api.New(ts.URL, api.WithTokenSource(api.StaticToken(res.Token)))
}

func kindOf(t *testing.T, err error) api.Kind {
	t.Helper()
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "expected *api.Error, got %v", err)
	return apiErr.Kind
}

func TestHealth(t *testing.T) {
	ts := newServer(t, nil)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	ts := newServer(t, nil)
	client := api.New(ts.URL)
	ctx := context.Background()

	_, err := client.Login(ctx, adminEmail, "wrong")
	assert.Equal(t, api.KindUnauthorized, kindOf(t, err))
	assert.Equal(t, "Invalid email or password", err.(*api.Error).Message)

	_, err = client.Login(ctx, "", "")
	assert.Equal(t, api.KindValidation, kindOf(t, err))

	login(t, ts)
}

func TestAgendaRequiresToken(t *testing.T) {
	ts := newServer(t, nil)
	ctx := context.Background()

	_, err := api.New(ts.URL).Tasks(ctx, models.FilterAll)
	assert.Equal(t, api.KindUnauthorized, kindOf(t, err))

	_, err = api.New(ts.URL, api.WithTokenSource(api.StaticToken("garbage"))).TaskStats(ctx)
	assert.Equal(t, api.KindUnauthorized, kindOf(t, err))

	// the catalog is public
	arts, err := api.New(ts.URL).Artworks(ctx, catalog.KindDigital)
	require.NoError(t, err)
	assert.Len(t, arts, 2)
}

func TestRefresh(t *testing.T) {
	ts := newServer(t, nil)
	client := login(t, ts)

	res, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, adminEmail, res.User.Email)
}

func TestEventsRoundTrip(t *testing.T) {
	ts := newServer(t, nil)
	client := login(t, ts)
	ctx := context.Background()

	events, err := client.MonthEvents(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	_, err = client.CreateEvent(ctx, models.Event{StartDate: now})
	assert.Equal(t, api.KindValidation, kindOf(t, err))
	assert.Equal(t, "title is required", api.UserMessage(err))

	created, err := client.CreateEvent(ctx, models.Event{
		Title:     "Studio visit",
		StartDate: now.Add(48 * time.Hour),
		EndDate:   now.Add(49 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.EventScheduled, created.Status)

	done, err := client.SetEventStatus(ctx, created.ID, models.EventCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)

	require.NoError(t, client.DeleteEvent(ctx, created.ID))
	err = client.DeleteEvent(ctx, created.ID)
	assert.Equal(t, api.KindNotFound, kindOf(t, err))

	_, err = client.MonthEvents(ctx, 2025, 13)
	assert.Equal(t, api.KindValidation, kindOf(t, err))
}

func TestTasksRoundTrip(t *testing.T) {
	ts := newServer(t, nil)
	client := login(t, ts)
	ctx := context.Background()

	stats, err := client.TaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Overdue)

	pending, err := client.Tasks(ctx, models.FilterPending)
	require.NoError(t, err)
	for _, task := range pending {
		assert.Equal(t, models.TaskPending, task.Status)
	}

	created, err := client.CreateTask(ctx, models.Task{
		Title:     "Order frames",
		Checklist: []models.ChecklistItem{{Text: "Measure"}, {Text: "Pick moulding"}},
	})
	require.NoError(t, err)

	toggled, err := client.ToggleChecklistItem(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.True(t, toggled.Checklist[1].Completed)
	assert.False(t, toggled.Checklist[0].Completed)

	_, err = client.ToggleChecklistItem(ctx, created.ID, 7)
	assert.Equal(t, api.KindNotFound, kindOf(t, err))

	moved, err := client.SetTaskStatus(ctx, created.ID, models.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, moved.Status)

	_, err = client.SetTaskStatus(ctx, created.ID, "archived")
	assert.Equal(t, api.KindValidation, kindOf(t, err))

	require.NoError(t, client.DeleteTask(ctx, created.ID))
}

func TestManagerAgainstServer(t *testing.T) {
	ts := newServer(t, nil)
	client := login(t, ts)

	m := agenda.New(client,
		agenda.WithClock(func() time.Time { return now }),
		agenda.WithLocation(time.UTC))
	require.NoError(t, m.Init(context.Background()))

	today := m.SelectedEvents()
	require.Len(t, today, 2)
	assert.Equal(t, "Framer pickup", today[0].Title)
	assert.Equal(t, "Collector meeting", today[1].Title)
	assert.Equal(t, 4, m.Stats().Total)
}

func TestRateLimit(t *testing.T) {
	ts := newServer(t, func(c *server.Config) { c.RateLimit = 2 })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestUnknownRoute(t *testing.T) {
	ts := newServer(t, nil)
	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := server.New(server.Config{AdminEmail: adminEmail, AdminPassword: "x"}, sample.New(), nil)
	assert.Error(t, err)
}
