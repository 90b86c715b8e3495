package tui

import "strings"

// Command represents a parsed composer command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses composer input of the form "/name args". ok is false
// for ordinary message text, including text starting with "//", which is
// sent with one slash removed by the caller.
func ParseCommand(input string) (cmd Command, ok bool) {
	rest, found := strings.CutPrefix(input, "/")
	if !found || strings.HasPrefix(rest, "/") {
		return Command{}, false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return Command{}, false
	}
	parts := strings.SplitN(rest, " ", 2)
	cmd = Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd, true
}
