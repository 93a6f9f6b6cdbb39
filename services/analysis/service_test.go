package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/auth"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
	"github.com/frc-scouting/scout-sync/repos/store"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	switch idToken {
	case "viewer":
		return &firebaseauth.Token{UID: "viewer", Claims: map[string]interface{}{"email": "v@example.org"}}, nil
	case "stranger":
		return &firebaseauth.Token{UID: "stranger"}, nil
	}
	return nil, errors.New("bad token")
}

type fakeReference struct{}

func (fakeReference) TeamInfo(ctx context.Context, numbers []int) map[int]scouting.Team {
	out := map[int]scouting.Team{}
	for _, n := range numbers {
		if n == 2767 {
			out[n] = scouting.Team{Number: 2767, Nickname: "Stryke Force", LogoURL: "https://example.org/2767.png"}
		}
	}
	return out
}

func (fakeReference) EventNames(ctx context.Context, codes []string) map[string]string {
	return map[string]string{"2025miket": "FIM District Kettering"}
}

var base = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	mem := store.NewMemoryStore()
	repo := records.NewRepository(mem, zap.NewNop())

	_, err := repo.SaveSchema(ctx, scouting.FormSchema{
		Season:  2025,
		Purpose: scouting.PurposeMatch,
		Fields: []scouting.FieldDefinition{
			{ID: "a", Label: "Auto Points", Kind: scouting.KindCounter},
			{ID: "b", Label: "Climb", Kind: scouting.KindMultiSelect, Options: []string{"Deep", "Shallow"}},
			{ID: "c", Label: "Notes", Kind: scouting.KindText},
		},
	})
	require.NoError(t, err)

	entries := []scouting.Record{
		{Purpose: scouting.PurposeMatch, Season: 2025, EventCode: "2025miket", MatchKey: "qm2", TeamNumber: 2767, SubmitterID: "s1",
			Attributes: scouting.Attributes{"Auto Points": scouting.Number(4), "Climb": scouting.StringList("Deep"), "Notes": scouting.Text("fast")}},
		{Purpose: scouting.PurposeMatch, Season: 2025, EventCode: "2025miket", MatchKey: "qm1", TeamNumber: 2767, SubmitterID: "s1",
			Attributes: scouting.Attributes{"Auto Points": scouting.Number(6), "Climb": scouting.StringList("Shallow"), "Notes": scouting.Text("")}},
		{Purpose: scouting.PurposeMatch, Season: 2025, EventCode: "2025miket", MatchKey: "qm1", TeamNumber: 118, SubmitterID: "s2",
			Attributes: scouting.Attributes{"Auto Points": scouting.Number(2), "Climb": scouting.StringList("Deep")}},
		{Purpose: scouting.PurposeMatch, Season: 2025, EventCode: "2025casj", MatchKey: "qm3", TeamNumber: 254, SubmitterID: "s2",
			Attributes: scouting.Attributes{"Auto Points": scouting.Number(10)}},
		{Purpose: scouting.PurposePit, Season: 2025, EventCode: "2025miket", TeamNumber: 2767, SubmitterID: "s1",
			Attributes: scouting.Attributes{"Drivetrain": scouting.Text("Swerve")}},
		{Purpose: scouting.PurposePit, Season: 2025, EventCode: "2025miket", TeamNumber: 2767, SubmitterID: "s1",
			Attributes: scouting.Attributes{"Drivetrain": scouting.Text("Tank")}},
	}
	for i := range entries {
		entries[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.InsertRecord(ctx, &entries[i]))
	}
	require.NoError(t, repo.UpsertProfile(ctx, scouting.Profile{ID: "s1", FullName: "Ada Lovelace"}))
	require.NoError(t, repo.UpsertProfile(ctx, scouting.Profile{ID: "viewer", CurrentEventCode: "2025miket"}))

	service := NewAnalysisService(repo, fakeReference{}, zap.NewNop())
	service.now = func() time.Time { return base }

	r := gin.New()
	group := r.Group("/analysis/v1")
	group.Use(auth.AuthMiddleware(fakeVerifier{}))
	NewHTTPHandler(HTTPOptions{Service: service, Router: group, Logger: zap.NewNop()})
	return r, mem
}

func get(t *testing.T, r http.Handler, token, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestMetrics_UsesSchemaAndCheckedInEvent(t *testing.T) {
	r, _ := setup(t)

	var resp MetricsResponse
	w := get(t, r, "viewer", "/analysis/v1/metrics", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025miket", resp.Scope.EventCode)
	assert.Equal(t, "FIM District Kettering", resp.EventName)
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, []string{"Auto Points"}, resp.Classes.Numeric)
	assert.Equal(t, []string{"Climb"}, resp.Classes.Categorical)
	assert.Equal(t, []string{"Notes"}, resp.Classes.Text)

	// Without a checked-in event the event scope covers everything.
	w = get(t, r, "stranger", "/analysis/v1/metrics", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, resp.Records)

	w = get(t, r, "stranger", "/analysis/v1/metrics?event=2025casj", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resp.Records)

	w = get(t, r, "stranger", "/analysis/v1/metrics?purpose=pit&event=2025miket", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, resp.Records)
	assert.Equal(t, []string{"Drivetrain"}, resp.Classes.Categorical)
}

func TestTeamReport(t *testing.T) {
	r, _ := setup(t)

	var resp TeamReport
	w := get(t, r, "viewer", "/analysis/v1/team/2767", &resp)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Stryke Force", resp.Team.Nickname)
	assert.Equal(t, 2, resp.Matches)
	require.Len(t, resp.Numeric, 1)
	assert.Equal(t, NumericSummary{Key: "Auto Points", SubjectAvg: 5, OthersAvg: 2, DeltaPct: 150}, resp.Numeric[0])

	require.Len(t, resp.Categorical, 1)
	assert.Equal(t, "Climb", resp.Categorical[0].Key)
	require.Len(t, resp.Categorical[0].Options, 2)
	assert.Equal(t, "Deep", resp.Categorical[0].Options[0].Option)
	assert.Equal(t, 1, resp.Categorical[0].Options[0].SubjectCount)
	assert.Equal(t, 1, resp.Categorical[0].Options[0].OthersCount)
	assert.Equal(t, "Shallow", resp.Categorical[0].Options[1].Option)
	assert.Equal(t, 0, resp.Categorical[0].Options[1].OthersCount)

	assert.Equal(t, []TextNote{{MatchKey: "qm2", Key: "Notes", Value: "fast"}}, resp.Notes)

	require.NotNil(t, resp.Pit)
	assert.Equal(t, "Tank", resp.Pit.Attributes["Drivetrain"].Str())

	w = get(t, r, "viewer", "/analysis/v1/team/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaderboard(t *testing.T) {
	r, _ := setup(t)

	var resp LeaderboardResponse
	w := get(t, r, "viewer", "/analysis/v1/leaderboard", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Auto Points", resp.Metric)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2767, resp.Rows[0].Team)
	assert.Equal(t, 2, resp.Rows[0].Count)
	assert.Equal(t, 5.0, resp.Rows[0].Averages["Auto Points"])
	assert.Equal(t, "Stryke Force", resp.Rows[0].Nickname)
	assert.Equal(t, 118, resp.Rows[1].Team)
	assert.Empty(t, resp.Rows[1].Nickname)

	w = get(t, r, "viewer", "/analysis/v1/leaderboard?scope=season", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, 254, resp.Rows[0].Team)
}

func TestLeaderboard_DeclaredTextStaysOut(t *testing.T) {
	r, mem := setup(t)
	repo := records.NewRepository(mem, zap.NewNop())
	for i, note := range []string{"3", "99"} {
		entry := scouting.Record{Purpose: scouting.PurposeMatch, Season: 2025, EventCode: "2025miket", MatchKey: "qm9", TeamNumber: 118,
			CreatedAt: base.Add(time.Hour + time.Duration(i)*time.Minute),
			Attributes: scouting.Attributes{"Notes": scouting.Text(note)}}
		require.NoError(t, repo.InsertRecord(context.Background(), &entry))
	}

	var resp LeaderboardResponse
	w := get(t, r, "viewer", "/analysis/v1/leaderboard", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Auto Points", resp.Metric)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2767, resp.Rows[0].Team)
	for _, row := range resp.Rows {
		assert.NotContains(t, row.Averages, "Notes")
	}
}

func TestScouts(t *testing.T) {
	r, _ := setup(t)

	var resp ScoutsResponse
	w := get(t, r, "viewer", "/analysis/v1/scouts?scope=season", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Rows, 3)

	assert.Equal(t, "s1", resp.Rows[0].SubmitterID)
	assert.Equal(t, "Ada Lovelace", resp.Rows[0].Name)
	assert.Equal(t, 2, resp.Rows[0].MatchCount)
	assert.Equal(t, 2, resp.Rows[0].PitCount)
	assert.Equal(t, 4, resp.Rows[0].Total)

	assert.Equal(t, "s2", resp.Rows[1].Name)
	assert.Equal(t, 2, resp.Rows[1].Total)

	assert.Equal(t, "viewer", resp.Rows[2].SubmitterID)
	assert.Equal(t, "v@example.org", resp.Rows[2].Name)
	assert.Equal(t, 0, resp.Rows[2].Total)
	assert.Equal(t, 3, resp.Rank)
}

func TestSeries(t *testing.T) {
	r, _ := setup(t)

	var resp SeriesResponse
	w := get(t, r, "viewer", "/analysis/v1/series?team=2767&key=Auto%20Points", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Points, 2)
	assert.Equal(t, "qm1", resp.Points[0].MatchKey)
	assert.Equal(t, 6.0, resp.Points[0].Value)
	assert.Equal(t, "qm2", resp.Points[1].MatchKey)
	assert.Equal(t, 4.0, resp.Points[1].Value)

	w = get(t, r, "viewer", "/analysis/v1/series?team=2767", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthAndStoreFailures(t *testing.T) {
	r, mem := setup(t)

	w := get(t, r, "nope", "/analysis/v1/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mem.FailWith = errors.New("unavailable")
	w = get(t, r, "viewer", "/analysis/v1/leaderboard", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
