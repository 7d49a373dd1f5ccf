package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nroberts/go-topicrooms/internal/config"
	"github.com/nroberts/go-topicrooms/internal/database"
	"github.com/nroberts/go-topicrooms/internal/stats"
	"github.com/nroberts/go-topicrooms/internal/testutil"
)

func TestNewTopicRoomsApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	db := &database.MockRepository{}
	renderer := &MockRenderer{}
	statsProvider := &stats.MockStatsUpdater{}
	statsProvider.On("RegisterMetric", metricSessionsStarted).Once()
	statsProvider.On("RegisterMetric", metricRoomsCreated).Once()
	statsProvider.On("RegisterMetric", metricMessagesPosted).Once()
	cfg := &config.Config{
		ServerAddr:  "localhost:8080",
		DatabaseDSN: "dsn",
		SigningKey:  []byte("secret"),
	}

	app := NewTopicRoomsApp(mux, logger, db, renderer, statsProvider, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.NotNil(t, app.generateShortId, "expected short id generator to be set")
	assert.Equal(t, app.log, logger, "expected logger to be set")
	assert.Equal(t, app.db, db, "expected db to be set")
	assert.Equal(t, app.renderer, renderer, "expected renderer to be set")
	assert.Equal(t, app.signingKey, cfg.SigningKey, "expected signing key to be set")
	assert.Equal(t, app.mux.Addr, cfg.ServerAddr, "expected server address to match config")
	statsProvider.AssertExpectations(t)
}
