package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockAlertBot/internal/domain"
)

type noopLogger struct{}

func (l *noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (l *noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (l *noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (l *noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestRepo creates a repository backed by a file in a temp directory.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "alerts_test.db")
	repo, err := NewRepository(Config{DBPath: dbPath, Logger: &noopLogger{}})
	require.NoError(t, err, "Failed to create test repository")
	t.Cleanup(func() {
		assert.NoError(t, repo.Close(), "Failed to close test repository")
	})
	return repo
}

func newTestAlert(id string) *domain.Alert {
	return &domain.Alert{
		ID:        id,
		Symbol:    "AAPL",
		Threshold: 150.0,
		Kind:      domain.Sell,
		Recipient: "user@example.com",
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAndFindByID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	alert := newTestAlert("alert-1")
	require.NoError(t, repo.Create(ctx, alert))

	found, err := repo.FindByID(ctx, "alert-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, alert.ID, found.ID)
	assert.Equal(t, alert.Symbol, found.Symbol)
	assert.Equal(t, alert.Threshold, found.Threshold)
	assert.Equal(t, alert.Kind, found.Kind)
	assert.Equal(t, alert.Recipient, found.Recipient)
	assert.True(t, found.Active)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListActiveExcludesDeactivated(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first := newTestAlert("alert-1")
	second := newTestAlert("alert-2")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "alert-1", active[0].ID)
	assert.Equal(t, "alert-2", active[1].ID)

	won, err := repo.Deactivate(ctx, "alert-1")
	require.NoError(t, err)
	require.True(t, won)

	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alert-2", active[0].ID)
}

func TestDeactivateWinsExactlyOnce(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestAlert("alert-1")))

	won, err := repo.Deactivate(ctx, "alert-1")
	require.NoError(t, err)
	assert.True(t, won, "First deactivation should win")

	won, err = repo.Deactivate(ctx, "alert-1")
	require.NoError(t, err)
	assert.False(t, won, "Second deactivation should lose")

	// The alert still exists, just inactive.
	found, err := repo.FindByID(ctx, "alert-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.Active)
}

func TestDeactivateMissingAlert(t *testing.T) {
	repo := setupTestRepo(t)

	won, err := repo.Deactivate(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestDeactivateConcurrent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestAlert("alert-1")))

	const racers = 10
	var wg sync.WaitGroup
	wins := make(chan bool, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.Deactivate(ctx, "alert-1")
			assert.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "Exactly one racer should win the deactivation")
}
