package ops

import (
	"context"
	"fmt"
	"strings"
)

// PredictOp replies with the Elo win probability of one player over another.
type PredictOp struct {
	Stats Stats
}

func (p *PredictOp) Name() string { return "predict" }
func (p *PredictOp) Description() string {
	return "Win probability: /predict <player> <opponent>"
}

// Arity allows trailing arguments; only the first two are used.
func (p *PredictOp) Arity() Arity { return AtLeast(2) }

func (p *PredictOp) Execute(ctx context.Context, call Call) (string, error) {
	player, opponent := call.Args[0], call.Args[1]
	result, err := p.Stats.Predict(ctx, player, opponent)
	if err != nil {
		return "", collaboratorErr(err)
	}
	return fmt.Sprintf("Propability of %s winning %s is %.1f%%.", player, opponent, result*100), nil
}

// RefRatioOp lists the referral gained ratio of every given address, one per line.
type RefRatioOp struct {
	Stats Stats
}

func (r *RefRatioOp) Name() string { return "refratio" }
func (r *RefRatioOp) Description() string {
	return "Referral gained ratio: /refratio <address>..."
}
func (r *RefRatioOp) Arity() Arity { return AnyArgs }

// Execute yields an empty reply for an empty argument list.
func (r *RefRatioOp) Execute(ctx context.Context, call Call) (string, error) {
	lines := make([]string, 0, len(call.Args))
	for _, addr := range call.Args {
		ratio, err := r.Stats.ReferralGainedRatio(ctx, addr)
		if err != nil {
			return "", collaboratorErr(err)
		}
		lines = append(lines, fmt.Sprintf("%s: %.2f", addr, ratio))
	}
	return strings.Join(lines, "\n"), nil
}
