package ops

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PlayerStats is the constructed-mode record returned by the stats collaborator.
type PlayerStats struct {
	Username    string
	WonMatches  int
	LostMatches int
	Rating      float64
	RankLevel   int
	WinPoints   int
	LossPoints  int
	TotalXP     int
	XPLevel     int
}

// WinLoss returns WonMatches / LostMatches.
// A player without losses yields ErrDivideByZero rather than an infinite ratio.
func (s PlayerStats) WinLoss() (float64, error) {
	if s.LostMatches == 0 {
		return 0, fmt.Errorf("win/loss ratio for %s: %w", s.Username, ErrDivideByZero)
	}
	return float64(s.WonMatches) / float64(s.LostMatches), nil
}

// Stats is the external stats/ranking service queried by the handlers.
type Stats interface {
	ReferralGainedRatio(ctx context.Context, id string) (float64, error)
	// Predict returns the probability in [0,1] that player beats opponent.
	Predict(ctx context.Context, player, opponent string) (float64, error)
	UserStats(ctx context.Context, player string) (PlayerStats, error)
}

// StatsOp renders a player's constructed-mode record.
type StatsOp struct {
	Stats Stats
}

func (s *StatsOp) Name() string        { return "stats" }
func (s *StatsOp) Description() string { return "Show a player's constructed stats: /stats <player>" }
func (s *StatsOp) Arity() Arity        { return AtLeast(1) }

func (s *StatsOp) Execute(ctx context.Context, call Call) (string, error) {
	st, err := s.Stats.UserStats(ctx, call.Args[0])
	if err != nil {
		return "", collaboratorErr(err)
	}
	wl, err := st.WinLoss()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Player %s stats in constructed mode:\n"+
		"W/L: %d/%d = %s\n"+
		"Rating: %s\n"+
		"Rank level: %d\n"+
		"Points: %dW, %dL\n"+
		"XP: %d, Level %d",
		st.Username,
		st.WonMatches, st.LostMatches, formatFloat(wl),
		formatFloat(st.Rating),
		st.RankLevel,
		st.WinPoints, st.LossPoints,
		st.TotalXP, st.XPLevel), nil
}

// formatFloat renders f with the shortest exact digits and always keeps a
// fractional part, so 1.5 stays "1.5" and 1500 renders as "1500.0".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
