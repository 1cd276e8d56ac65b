package ops

import "context"

// Greeting is the fixed introduction sent by /start.
const Greeting = "Greetings, human! I am Ares Peacemaker, the messenger between you and the gods."

// StartOp introduces the bot.
type StartOp struct{}

func (s *StartOp) Name() string        { return "start" }
func (s *StartOp) Description() string { return "Introduce the bot" }
func (s *StartOp) Arity() Arity        { return AnyArgs }

func (s *StartOp) Execute(_ context.Context, _ Call) (string, error) {
	return Greeting, nil
}

// VersionOp reports the version of the Telegram bot library in use.
type VersionOp struct {
	Version string
}

func (v *VersionOp) Name() string        { return "version" }
func (v *VersionOp) Description() string { return "Show the bot library version" }
func (v *VersionOp) Arity() Arity        { return AnyArgs }

func (v *VersionOp) Execute(_ context.Context, _ Call) (string, error) {
	if v.Version == "" {
		return "unknown", nil
	}
	return v.Version, nil
}
