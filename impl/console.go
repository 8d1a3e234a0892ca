package impl

import (
	"strings"

	"github.com/routelab/nethub/state"
)

const (
	carriageReturn = '\r'
	backspace      = '\x7f'
)

var welcomeLines = []string{
	"\r\n\x1b[1;36m=== Global Network Controller ===\x1b[0m",
	"Command Syntax: <NodeID> <Command>",
	"Example: 'A ping B'",
	"         'A tracert C'",
	"         'A table'",
	"-----------------------------------",
}

// Effect is one observable output of feeding input to the console: either
// text to echo back to the session, or a command dispatch.
type Effect struct {
	Echo    string
	Target  state.NodeId
	Command string
}

func (e Effect) IsDispatch() bool { return e.Target != "" }

func echo(text string) Effect { return Effect{Echo: text} }

// Console multiplexes one character-stream session across named nodes.
// Keystrokes accumulate in a line buffer until carriage return, at which
// point `<NodeID> <command>` is dispatched. The transition function is
// pure: feeding input mutates only the buffer and returns effects for the
// caller to apply, so the protocol is testable without any I/O harness.
//
// The session expects server-side echo: every printable character comes
// straight back, and backspace is mirrored as the usual erase sequence.
type Console struct {
	line []rune
}

func NewConsole() *Console {
	return &Console{}
}

// Welcome returns the greeting banner, prompt included.
func (c *Console) Welcome() string {
	return strings.Join(welcomeLines, "\r\n") + "\r\n" + state.WelcomePrompt
}

// Feed consumes a chunk of raw input (usually a single keystroke) and
// returns the effects it produced, in order.
func (c *Console) Feed(data string) []Effect {
	var effects []Effect
	for _, r := range data {
		switch r {
		case carriageReturn:
			effects = append(effects, echo("\r\n"))
			effects = append(effects, c.endOfLine()...)
		case backspace:
			// no-op on an empty buffer; must not underflow
			if len(c.line) > 0 {
				c.line = c.line[:len(c.line)-1]
				effects = append(effects, echo("\b \b"))
			}
		default:
			c.line = append(c.line, r)
			effects = append(effects, echo(string(r)))
		}
	}
	return effects
}

func (c *Console) endOfLine() []Effect {
	line := strings.TrimSpace(string(c.line))
	c.line = c.line[:0]
	if line == "" {
		return []Effect{echo(state.WelcomePrompt)}
	}

	target, payload := splitCommand(line)
	if strings.EqualFold(target, "help") {
		return []Effect{echo(c.Welcome())}
	}
	if payload == "" {
		return []Effect{
			echo("\r\n[System] Incomplete command. Usage: " + target + " <cmd>\r\n"),
			echo(state.WelcomePrompt),
		}
	}
	return []Effect{
		{Target: state.NodeId(target), Command: payload},
		echo(state.WelcomePrompt),
	}
}

// splitCommand splits off the first whitespace-delimited token; the
// remainder, whitespace-trimmed, is the command payload.
func splitCommand(line string) (string, string) {
	idx := strings.IndexFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx:])
}
