package ops

import (
	"context"
	"fmt"
	"strings"
)

// HelpOp lists all registered operations.
type HelpOp struct {
	Registry *Registry
}

func (h *HelpOp) Name() string        { return "help" }
func (h *HelpOp) Description() string { return "List available commands" }
func (h *HelpOp) Arity() Arity        { return AnyArgs }

func (h *HelpOp) Execute(_ context.Context, _ Call) (string, error) {
	all := h.Registry.List()
	if len(all) == 0 {
		return "No commands available.", nil
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, op := range all {
		fmt.Fprintf(&b, "  /%s - %s\n", op.Name(), op.Description())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Default builds the registry served by the webhook.
func Default(stats Stats, version string) *Registry {
	reg := NewRegistry()
	reg.MustRegister(
		&StartOp{},
		&VersionOp{Version: version},
		&RefRatioOp{Stats: stats},
		&PredictOp{Stats: stats},
		&StatsOp{Stats: stats},
		&HelpOp{Registry: reg},
	)
	return reg
}
