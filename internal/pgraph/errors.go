package pgraph

import (
	"errors"
	"strings"
)

// Kind classifies a process graph failure. The set mirrors the error
// taxonomy of the openEO processing API: structural kinds are reported by
// validation before any evaluation, the remaining kinds abort the offending
// node at evaluation time.
type Kind int

const (
	// KindMalformedGraph covers unparsable documents and node bodies
	// missing required fields.
	KindMalformedGraph Kind = iota
	// KindAmbiguousResult covers graphs with zero or multiple result nodes.
	KindAmbiguousResult
	// KindDanglingReference covers from_node references naming nonexistent
	// nodes and from_argument references naming undeclared parameters.
	KindDanglingReference
	// KindCyclicDependency covers circular from_node reference chains.
	KindCyclicDependency
	// KindUnknownProcess covers process_ids absent from the registry.
	KindUnknownProcess
	// KindSchemaViolation covers argument or return values failing a
	// declared schema.
	KindSchemaViolation
	// KindUnboundParameter covers from_argument references with neither a
	// supplied binding nor a declared default.
	KindUnboundParameter
	// KindRecursionLimit covers user-defined process chains exceeding the
	// configured sub-evaluation depth.
	KindRecursionLimit
	// KindProcessExecution wraps a failure reported by an invoked process
	// implementation.
	KindProcessExecution
)

var kindNames = map[Kind]string{
	KindMalformedGraph:    "MalformedGraph",
	KindAmbiguousResult:   "AmbiguousOrMissingResult",
	KindDanglingReference: "DanglingReference",
	KindCyclicDependency:  "CyclicDependency",
	KindUnknownProcess:    "UnknownProcess",
	KindSchemaViolation:   "SchemaViolation",
	KindUnboundParameter:  "UnboundParameter",
	KindRecursionLimit:    "RecursionLimitExceeded",
	KindProcessExecution:  "ProcessExecutionFailure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// Error is a single process graph failure with enough context (node id,
// argument path, cause) for the submitter to fix their graph.
type Error struct {
	Kind     Kind
	Node     string // offending node id, empty for document-level failures
	Argument string // offending argument path, e.g. "data[2]", may be empty
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Node != "" {
		sb.WriteString(": node '")
		sb.WriteString(e.Node)
		sb.WriteString("'")
	}
	if e.Argument != "" {
		sb.WriteString(", argument '")
		sb.WriteString(e.Argument)
		sb.WriteString("'")
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorList is an accumulated set of graph failures. Validation never
// short-circuits on the first error, so callers receive the complete list.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ErrOrNil returns the list as an error, or nil when no errors accumulated.
// It exists because a typed nil slice stored in an error interface would
// compare non-nil.
func (l ErrorList) ErrOrNil() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// AsList normalizes any error into an ErrorList. Typed errors pass through,
// everything else is wrapped as a ProcessExecutionFailure.
func AsList(err error) ErrorList {
	if err == nil {
		return nil
	}
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var single *Error
	if errors.As(err, &single) {
		return ErrorList{single}
	}
	return ErrorList{{Kind: KindProcessExecution, Cause: err}}
}
