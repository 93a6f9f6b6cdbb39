package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
	"github.com/frc-scouting/scout-sync/repos/store"
	"github.com/frc-scouting/scout-sync/repos/tba"
)

const testBase = "https://tba.test/api/v3"

type fakeForgetter struct {
	forgotten []int
}

func (f *fakeForgetter) Forget(numbers []int) {
	f.forgotten = append(f.forgotten, numbers...)
}

type fixture struct {
	router *gin.Engine
	repo   *records.Repository
	mem    *store.MemoryStore
	forget *fakeForgetter
}

func setup(t *testing.T, authKey string) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	mem := store.NewMemoryStore()
	repo := records.NewRepository(mem, zap.NewNop())
	forget := &fakeForgetter{}
	service := NewSyncService(repo, tba.NewClient(testBase, authKey), forget, zap.NewNop())
	service.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	r := gin.New()
	NewHTTPHandler(HTTPOptions{Service: service, Router: r.Group("/sync/v1"), Logger: zap.NewNop()})
	return fixture{router: r, repo: repo, mem: mem, forget: forget}
}

func post(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, ImportResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp ImportResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestImportEvents(t *testing.T) {
	f := setup(t, "secret")
	httpmock.RegisterResponder(http.MethodGet, testBase+"/events/2025",
		httpmock.NewStringResponder(http.StatusOK, `[
			{"key":"2025miket","name":"FIM District Kettering","start_date":"2025-02-27","end_date":"2025-03-01"},
			{"key":"2025casj","name":"Silicon Valley Regional"},
			{"name":"no key"}]`))

	w, resp := post(t, f.router, "/sync/v1/events?season=2025")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, resp.Imported)

	events, err := f.repo.ListEvents(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2025casj", events[0].Code)
	assert.Equal(t, "2025-02-27", events[1].StartDate)
}

func TestImportMatches(t *testing.T) {
	f := setup(t, "secret")
	httpmock.RegisterResponder(http.MethodGet, testBase+"/event/2025miket/matches",
		httpmock.NewStringResponder(http.StatusOK, `[
			{"key":"2025miket_qm16","alliances":{"red":{"team_keys":["frc2767","frc118","frc33"]},"blue":{"team_keys":["frc254","frc1678","frc4414"]}},"time":1740839400},
			{"key":"2025miket_qm17","alliances":{"red":{"team_keys":[]},"blue":{"team_keys":[]}}}]`))

	w, resp := post(t, f.router, "/sync/v1/events/2025miket/matches")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resp.Imported)

	rows, err := f.mem.Select(context.Background(), store.Query{Collection: scouting.CollectionMatches})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025miket_qm16", rows[0].ID())
	assert.Equal(t, "qm16", rows[0]["match_key"])
	assert.Equal(t, time.Unix(1740839400, 0).UTC(), rows[0]["scheduled_at"])

	// The unknown event was created on the way.
	events, err := f.repo.Events(context.Background(), []string{"2025miket"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025miket", events[0].Name)
}

func TestImportTeams_LogosBestEffort(t *testing.T) {
	f := setup(t, "secret")
	require.NoError(t, f.repo.UpsertEvents(context.Background(), []scouting.Event{{Code: "2025miket", Name: "Kettering"}}, 10))

	httpmock.RegisterResponder(http.MethodGet, testBase+"/event/2025miket/teams",
		httpmock.NewStringResponder(http.StatusOK, `[
			{"key":"frc2767","team_number":2767,"nickname":"Stryke Force","name":"Stryker Robotics"},
			{"key":"frc118","nickname":"Robonauts"}]`))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/team/frc2767/media/2025",
		httpmock.NewStringResponder(http.StatusOK, `[{"type":"avatar","details":{"base64Image":"AAA"}}]`))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/team/frc118/media/2025",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/team/frc118/media",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	w, resp := post(t, f.router, "/sync/v1/events/2025miket/teams")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Logos)

	teams, err := f.repo.Teams(context.Background(), []int{2767, 118})
	require.NoError(t, err)
	require.Len(t, teams, 2)
	byNumber := map[int]scouting.Team{}
	for _, team := range teams {
		byNumber[team.Number] = team
	}
	assert.Equal(t, "data:image/png;base64,AAA", byNumber[2767].LogoURL)
	assert.Equal(t, "Stryke Force", byNumber[2767].Nickname, "a logo update keeps the names")
	assert.Equal(t, "Robonauts", byNumber[118].Nickname)
	assert.Empty(t, byNumber[118].LogoURL)

	assert.ElementsMatch(t, []int{2767, 118}, f.forget.forgotten)
}

func TestUpstreamErrors(t *testing.T) {
	f := setup(t, "secret")
	httpmock.RegisterResponder(http.MethodGet, testBase+"/events/2025",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "maintenance"))

	w, _ := post(t, f.router, "/sync/v1/events?season=2025")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"schedule provider error","status":503,"details":"maintenance"}`, w.Body.String())

	w, _ = post(t, f.router, "/sync/v1/events?season=twenty")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissingKey(t *testing.T) {
	f := setup(t, "")

	w, _ := post(t, f.router, "/sync/v1/events?season=2025")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "TBA_AUTH_KEY")
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}
