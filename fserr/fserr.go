// Package fserr defines the typed error taxonomy the file system facade
// returns (spec.md 7), replacing the exceptions of the reference
// implementation with an explicit error value every caller must check.
package fserr

import "fmt"

// Kind identifies which of the facade's known failure modes an Error
// represents. Callers tell errors apart by Kind (errors.Is against the
// sentinels below), never by the message text.
type Kind int

const (
	// NameTooLong: a name exceeded layout.NameMax bytes.
	NameTooLong Kind = iota
	// NoFreeInode: the inode table has no empty slot.
	NoFreeInode
	// NoSuchFile: an operation named a file that doesn't exist.
	NoSuchFile
	// NoSpace: not enough free blocks, or content too large for the size field.
	NoSpace
	// Protocol: the wire command line was malformed.
	Protocol
	// IO: the backing file failed; state may be inconsistent with disk.
	IO
	// Corrupt: on load, an on-disk invariant (spec.md 3) was violated.
	Corrupt
)

func (k Kind) String() string {
	switch k {
	case NameTooLong:
		return "NameTooLong"
	case NoFreeInode:
		return "NoFreeInode"
	case NoSuchFile:
		return "NoSuchFile"
	case NoSpace:
		return "NoSpace"
	case Protocol:
		return "Protocol"
	case IO:
		return "IO"
	case Corrupt:
		return "Corrupt"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every facade operation returns on
// failure. Message is the caller-facing detail, and the protocol layer
// sends it verbatim after "ERROR: "; Kind classifies the failure.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is(err, fserr.NoSuchFile) work by comparing Kind, so
// callers don't need Errors.As boilerplate for the common case.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Sentinels for errors.Is comparisons, e.g. errors.Is(err, fserr.ErrNoSuchFile).
var (
	ErrNameTooLong = &Error{Kind: NameTooLong}
	ErrNoFreeInode = &Error{Kind: NoFreeInode}
	ErrNoSuchFile  = &Error{Kind: NoSuchFile}
	ErrNoSpace     = &Error{Kind: NoSpace}
	ErrProtocol    = &Error{Kind: Protocol}
	ErrIO          = &Error{Kind: IO}
	ErrCorrupt     = &Error{Kind: Corrupt}
)
