// Package protocol implements the line-oriented wire grammar (spec.md 6):
// parsing a single ASCII command line into a typed Command, and rendering
// fserr.Error values as the wire's ERROR line. Success lines are built by
// the server package.
// It holds no state and touches neither the disk nor a socket; server
// wires it to net.Conn via bufio.
package protocol

import (
	"strings"
	"unicode"

	"github.com/mnfs/tinyfsd/fserr"
)

// Verb identifies which command a line requested.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbCreate
	VerbWrite
	VerbRead
	VerbDelete
	VerbList
	VerbQuit
	VerbStat
	VerbInfo
)

// Command is a parsed request line.
type Command struct {
	Verb    Verb
	Name    string
	Content []byte // WRITE only: everything after the second token
}

// Parse interprets one line (already stripped of its trailing newline) per
// spec.md 6's grammar. A malformed line yields the zero Command and a
// *fserr.Error of kind Protocol whose message is the wire-level ERROR text,
// ready for RenderError.
func Parse(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, fserr.New(fserr.Protocol, "Empty command")
	}

	fields := splitFields(trimmed, 3)
	verbToken := strings.ToUpper(fields[0])

	switch verbToken {
	case "CREATE":
		if len(fields) < 2 || fields[1] == "" {
			return Command{}, fserr.New(fserr.Protocol, "CREATE requires a file name")
		}
		return Command{Verb: VerbCreate, Name: fields[1]}, nil

	case "WRITE":
		if len(fields) < 3 || fields[1] == "" {
			return Command{}, fserr.New(fserr.Protocol, "WRITE requires a file name and content")
		}
		return Command{Verb: VerbWrite, Name: fields[1], Content: []byte(fields[2])}, nil

	case "READ":
		if len(fields) < 2 || fields[1] == "" {
			return Command{}, fserr.New(fserr.Protocol, "READ requires a file name")
		}
		return Command{Verb: VerbRead, Name: fields[1]}, nil

	case "DELETE":
		if len(fields) < 2 || fields[1] == "" {
			return Command{}, fserr.New(fserr.Protocol, "DELETE requires a file name")
		}
		return Command{Verb: VerbDelete, Name: fields[1]}, nil

	case "STAT":
		if len(fields) < 2 || fields[1] == "" {
			return Command{}, fserr.New(fserr.Protocol, "STAT requires a file name")
		}
		return Command{Verb: VerbStat, Name: fields[1]}, nil

	case "LIST":
		return Command{Verb: VerbList}, nil

	case "INFO":
		return Command{Verb: VerbInfo}, nil

	case "QUIT":
		return Command{Verb: VerbQuit}, nil

	default:
		return Command{}, fserr.New(fserr.Protocol, "Unknown command.")
	}
}

// splitFields tokenizes s on runs of whitespace (spec.md 6: "tokens
// separated by runs of whitespace"), returning at most n fields. The first
// n-1 fields are single whitespace-delimited tokens with the separating
// runs collapsed; the last field is whatever remains of s past the last
// separator, unsplit, so WRITE's content keeps any internal spacing.
func splitFields(s string, n int) []string {
	var fields []string
	for len(fields) < n-1 {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return fields
		}
		idx := strings.IndexFunc(s, unicode.IsSpace)
		if idx == -1 {
			return append(fields, s)
		}
		fields = append(fields, s[:idx])
		s = s[idx:]
	}
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s != "" {
		fields = append(fields, s)
	}
	return fields
}

// RenderError formats err as the wire-level ERROR line. err is expected to
// be a *fserr.Error, whose Message follows "ERROR: "; any other error is
// rendered with its own Error() text.
func RenderError(err error) string {
	fe, ok := err.(*fserr.Error)
	if !ok {
		return "ERROR: " + err.Error()
	}
	return "ERROR: " + fe.Message
}
