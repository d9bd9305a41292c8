package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/internal/ingest"
	"docsift/internal/storage"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeStats struct {
	stats *ingest.Stats
	err   error
}

func (s fakeStats) Stats(context.Context) (*ingest.Stats, error) { return s.stats, s.err }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	okStats := &ingest.Stats{
		Documents:      map[storage.Status]int{storage.StatusReady: 2},
		TotalChunks:    5,
		ChunkerVersion: "words-v1",
	}

	tests := []struct {
		name       string
		method     string
		db         Pinger
		stats      StatsProvider
		wantStatus int
		wantHealth string
	}{
		{
			name:       "healthy",
			method:     http.MethodGet,
			db:         fakePinger{},
			stats:      fakeStats{stats: okStats},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "database down",
			method:     http.MethodGet,
			db:         fakePinger{err: errors.New("closed")},
			stats:      fakeStats{stats: okStats},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
		{
			name:       "stats failure",
			method:     http.MethodGet,
			db:         fakePinger{},
			stats:      fakeStats{err: errors.New("boom")},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
		{
			name:       "wrong method",
			method:     http.MethodPost,
			db:         fakePinger{},
			stats:      fakeStats{stats: okStats},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.stats)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantHealth == "" {
				return
			}

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantHealth, resp.Status)
			if tt.wantHealth == "healthy" {
				require.NotNil(t, resp.Ingest)
				assert.Equal(t, 5, resp.Ingest.TotalChunks)
				assert.Empty(t, resp.Issues)
			} else {
				assert.NotEmpty(t, resp.Issues, "issues should be reported when unhealthy")
			}
		})
	}
}
