package lookup

import "fmt"

type Kind int

const (
	// KindConnect means the provider could not be reached or the body not read.
	KindConnect Kind = iota + 1
	// KindParse means the body is not the expected JSON document.
	KindParse
	// KindStatus means the provider answered with a status other than "ok".
	KindStatus
	// KindEmpty means the provider answered "ok" without any prefix.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindParse:
		return "parse"
	case KindStatus:
		return "status"
	case KindEmpty:
		return "empty"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by Resolve for every failed lookup.
type Error struct {
	Kind Kind
	// Status is the provider status, set for KindStatus.
	Status string
	// Body is the raw response, set for KindParse.
	Body string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnect:
		return fmt.Sprintf("Could not connect to provider: %s", e.Err)
	case KindParse:
		return fmt.Sprintf("Could not parse response: %s, %s", e.Err, e.Body)
	case KindStatus:
		return fmt.Sprintf("Server responded %s", e.Status)
	case KindEmpty:
		return "No AS information found"
	}
	return fmt.Sprintf("lookup failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
