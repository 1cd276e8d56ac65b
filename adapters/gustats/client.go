// Package gustats queries the player statistics service behind the
// /refratio, /predict and /stats commands.
//
// Endpoints, relative to the base URL:
//
//	GET referrals/{id}       {"gained_ratio": 0.42}
//	GET players/{id}/stats   {"username": "...", "won_matches": 1, "lost_matches": 1,
//	                          "rating": 1500.5, "rank_level": 3, "win_points": 10,
//	                          "loss_points": 4, "total_xp": 900, "xp_level": 7}
package gustats

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jdelaire/ares/core/ops"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// statFields are the stats record paths, in PlayerStats field order.
var statFields = []string{
	"username", "won_matches", "lost_matches", "rating", "rank_level",
	"win_points", "loss_points", "total_xp", "xp_level",
}

// Client talks to the stats service over HTTP. It implements ops.Stats.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ReferralGainedRatio returns the referral gained ratio of the given address.
func (c *Client) ReferralGainedRatio(ctx context.Context, id string) (float64, error) {
	body, err := c.get(ctx, "referrals", url.PathEscape(id))
	if err != nil {
		return 0, err
	}
	ratio := gjson.GetBytes(body, "gained_ratio")
	if !ratio.Exists() {
		return 0, fmt.Errorf("referral %s: missing gained_ratio", id)
	}
	return ratio.Float(), nil
}

// UserStats returns the constructed-mode record of player.
func (c *Client) UserStats(ctx context.Context, player string) (ops.PlayerStats, error) {
	body, err := c.get(ctx, "players", url.PathEscape(player), "stats")
	if err != nil {
		return ops.PlayerStats{}, err
	}

	fields := gjson.GetManyBytes(body, statFields...)
	for i, f := range fields {
		if !f.Exists() {
			return ops.PlayerStats{}, fmt.Errorf("player %s: missing %s", player, statFields[i])
		}
	}

	return ops.PlayerStats{
		Username:    fields[0].String(),
		WonMatches:  int(fields[1].Int()),
		LostMatches: int(fields[2].Int()),
		Rating:      fields[3].Float(),
		RankLevel:   int(fields[4].Int()),
		WinPoints:   int(fields[5].Int()),
		LossPoints:  int(fields[6].Int()),
		TotalXP:     int(fields[7].Int()),
		XPLevel:     int(fields[8].Int()),
	}, nil
}

// Predict returns the Elo expected score of player against opponent,
// computed from both players' current ratings.
func (c *Client) Predict(ctx context.Context, player, opponent string) (float64, error) {
	p, err := c.UserStats(ctx, player)
	if err != nil {
		return 0, err
	}
	o, err := c.UserStats(ctx, opponent)
	if err != nil {
		return 0, err
	}
	return Expected(p.Rating, o.Rating), nil
}

// Expected is the Elo expected score of a player rated rp against one rated ro.
func Expected(rp, ro float64) float64 {
	return 1 / (1 + math.Pow(10, (ro-rp)/400))
}

func (c *Client) get(ctx context.Context, segments ...string) ([]byte, error) {
	endpoint := c.baseURL + "/" + strings.Join(segments, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("stats API error %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("stats API returned invalid JSON")
	}
	return body, nil
}
