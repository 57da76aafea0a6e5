package telemetry_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/telemetry"
)

func TestNewRepositoryDisabled(t *testing.T) {
	repo, err := telemetry.NewRepository(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, repo.RecordAlert(alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 0), time.Now()))
	assert.NoError(t, repo.RecordActivity("Walking", time.Now()))
	assert.NoError(t, repo.Close())
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := telemetry.NewRepository(telemetry.Config{Enabled: true, DBPath: ""})
	assert.Error(t, err)
}

func TestRepositoryPersistsAlerts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	repo, err := telemetry.NewRepository(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	event := alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 30)
	require.NoError(t, repo.RecordAlert(event, time.Now()))
	require.NoError(t, repo.RecordAlert(event, time.Now()), "replaying the same event id is not an error")
	require.NoError(t, repo.RecordActivity("Sitting", time.Now()))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var alertCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM alerts").Scan(&alertCount))
	assert.Equal(t, 1, alertCount, "duplicate ids collapse to one row")

	var kind, message string
	require.NoError(t, db.QueryRow("SELECT kind, message FROM alerts").Scan(&kind, &message))
	assert.Equal(t, "fall", kind)
	assert.Equal(t, "Fall detected!", message)

	var activityCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM activity_log").Scan(&activityCount))
	assert.Equal(t, 1, activityCount)
}
