package repl

import (
	"fmt"
	"sort"
	"strings"
)

// command describes one browse command for help and prefix resolution.
type command struct {
	name  string
	args  string
	usage string
}

var commands = []command{
	{"/", "TEXT", "search clients (an empty search clears it)"},
	{"next", "", "go to the next page"},
	{"prev", "", "go to the previous page"},
	{"page", "N", "jump to page N"},
	{"sort", "FIELD [asc|desc]", "sort by a client field, e.g. businessName"},
	{"status", "[VALUE]", "filter by status (active, inactive); no value clears"},
	{"category", "[VALUE]", "filter by client category; no value clears"},
	{"reset", "", "clear search, filters and sorting"},
	{"refresh", "", "fetch the current page again"},
	{"show", "ID", "show every field of one client"},
	{"history", "[N]", "list the last N commands (default 10)"},
	{"help", "", "show this help"},
	{"exit", "", "leave browse"},
	{"quit", "", "leave browse"},
}

// Completer resolves abbreviated commands.
type Completer struct {
	names []string
}

// NewCompleter creates a Completer over the browse commands.
func NewCompleter() *Completer {
	c := &Completer{}
	for _, cmd := range commands {
		if cmd.name != "/" {
			c.names = append(c.names, cmd.name)
		}
	}
	sort.Strings(c.names)
	return c
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, name := range c.names {
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

// Resolve maps word to a command: an exact name, or a prefix matching
// exactly one command ("ne" is next, "re" is ambiguous).
func (c *Completer) Resolve(word string) (string, error) {
	word = strings.ToLower(word)
	matches := c.Complete(word)
	for _, m := range matches {
		if m == word {
			return m, nil
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command %q, type help for a list", word)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous command %q: %s", word, strings.Join(matches, ", "))
	}
}

// Help renders the command reference.
func Help() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, cmd := range commands {
		usage := cmd.name
		if cmd.args != "" {
			if cmd.name == "/" {
				usage += cmd.args
			} else {
				usage += " " + cmd.args
			}
		}
		fmt.Fprintf(&b, "  %-26s %s\n", usage, cmd.usage)
	}
	return b.String()
}
