package core

import "strings"

// ParsedCommand is the command token and arguments of a message.
type ParsedCommand struct {
	Name string
	Args []string
}

// ParseCommand splits text on whitespace. The first token, lowercased and
// stripped of a leading "/" and any "@botname" suffix, is the command name;
// the remaining tokens are the arguments in input order. There is no quoting,
// and arity is not checked here.
func ParseCommand(text string) ParsedCommand {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ParsedCommand{}
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at != -1 {
		name = name[:at]
	}

	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}
	return ParsedCommand{Name: strings.ToLower(name), Args: args}
}

// isCommand reports whether text addresses the bot with a slash command.
func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}
