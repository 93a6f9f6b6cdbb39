package tba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/frc-scouting/scout-sync/pkg/metrics"
)

const DefaultBaseURL = "https://www.thebluealliance.com/api/v3"

// ErrMissingKey is returned by every call when no auth key is configured.
var ErrMissingKey = errors.New("TBA_AUTH_KEY not set")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tba responded %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	BaseURL string
	AuthKey string
	HTTP    *http.Client
}

func NewClient(baseURL, authKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AuthKey: authKey,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Events(ctx context.Context, season int) ([]Event, error) {
	var events []Event
	err := c.get(ctx, "events", fmt.Sprintf("/events/%d", season), &events)
	return events, err
}

func (c *Client) EventTeams(ctx context.Context, eventCode string) ([]Team, error) {
	var teams []Team
	err := c.get(ctx, "event_teams", fmt.Sprintf("/event/%s/teams", eventCode), &teams)
	return teams, err
}

func (c *Client) EventMatches(ctx context.Context, eventCode string) ([]Match, error) {
	var matches []Match
	err := c.get(ctx, "event_matches", fmt.Sprintf("/event/%s/matches", eventCode), &matches)
	return matches, err
}

// TeamMedia lists a team's media for a season, or for every year when
// season is 0.
func (c *Client) TeamMedia(ctx context.Context, team, season int) ([]Media, error) {
	path := fmt.Sprintf("/team/frc%d/media", team)
	if season > 0 {
		path = fmt.Sprintf("%s/%d", path, season)
	}
	var media []Media
	err := c.get(ctx, "team_media", path, &media)
	return media, err
}

// ResolveTeamLogo picks an image for a team: the avatar (inline base64
// first, then its urls), then a preferred image, then any image. Media of
// the season is tried before media of any year. An empty string means the
// team has nothing usable.
func (c *Client) ResolveTeamLogo(ctx context.Context, team, season int) (string, error) {
	media, err := c.TeamMedia(ctx, team, season)
	if err != nil || len(media) == 0 {
		media, err = c.TeamMedia(ctx, team, 0)
		if err != nil {
			return "", err
		}
	}
	return pickLogo(media), nil
}

func pickLogo(media []Media) string {
	for _, m := range media {
		if deref(m.Type) != "avatar" {
			continue
		}
		if b64 := deref(m.Details.Base64Image); b64 != "" {
			return "data:image/png;base64," + b64
		}
		if u := mediaURL(m); u != "" {
			return u
		}
		break
	}

	var images []Media
	for _, m := range media {
		t := deref(m.Type)
		if t == "team_image" || t == "imgur" || mediaURL(m) != "" {
			images = append(images, m)
		}
	}
	for _, m := range images {
		if m.Preferred && mediaURL(m) != "" {
			return mediaURL(m)
		}
	}
	for _, m := range images {
		if u := mediaURL(m); u != "" {
			return u
		}
	}
	return ""
}

func mediaURL(m Media) string {
	if u := deref(m.DirectURL); u != "" {
		return u
	}
	return deref(m.ViewURL)
}

var frcKey = regexp.MustCompile(`frc(\d+)`)

// FrcKeyToNumber turns "frc2767" into 2767.
func FrcKeyToNumber(key string) (int, bool) {
	m := frcKey.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ShortMatchKey strips the event prefix: "2025miket_qm16" becomes "qm16".
func ShortMatchKey(key string) string {
	if i := strings.LastIndex(key, "_"); i >= 0 {
		return key[i+1:]
	}
	return key
}

func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	if c.AuthKey == "" {
		return ErrMissingKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("X-TBA-Auth-Key", c.AuthKey)
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	response, err := httpClient.Do(req)
	if err != nil {
		metrics.RecordTBARequest(endpoint, 0)
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer response.Body.Close()
	metrics.RecordTBARequest(endpoint, response.StatusCode)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return &APIError{StatusCode: response.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response of %s: %w", path, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
