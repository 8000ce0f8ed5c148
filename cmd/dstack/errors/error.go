package errors

import (
	"fmt"
	"strings"
)

type Verbose interface {
	Verbose() string
}

// CUIError is an error meant to be printed to the command line user.
// Error() is the short form; Verbose() adds hints and the cause chain.
type CUIError interface {
	error
	Verbose
}

type cuierror struct {
	summary     string
	verbose     string
	printDetail func(summary string) (string, error)
	base        error
}

func (ce *cuierror) Unwrap() error { return ce.base }

func (ce *cuierror) Error() string {
	if ce.printDetail == nil {
		return ce.summary
	}
	message, err := ce.printDetail(ce.summary)
	if err != nil {
		return fmt.Sprintf(
			"%s\n(building detailed message causes error: %s)",
			ce.summary, err,
		)
	}
	return message
}

func (ce *cuierror) Verbose() string {
	lines := []string{ce.Error()}
	if ce.verbose != "" {
		lines = append(lines, " ("+ce.verbose+") ")
	}
	if ce.base != nil {
		cause := ce.base.Error()
		if v, ok := ce.base.(Verbose); ok {
			cause = v.Verbose()
		}
		lines = append(lines, "caused by: ", cause)
	}
	return strings.Join(lines, "\n")
}

type CuiErrorOption func(cerr *cuierror) *cuierror

func NewCuiError(summary string, options ...CuiErrorOption) CUIError {
	err := &cuierror{summary: summary}
	for _, o := range options {
		err = o(err)
	}
	return err
}

// WithVerbose attaches a hint shown only in the verbose rendering.
func WithVerbose(verbose string) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.verbose = verbose
		return cerr
	}
}

// WithDetail replaces the short rendering with printer's output.
func WithDetail(printer func(summary string) (string, error)) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.printDetail = printer
		return cerr
	}
}

func WithCause(err error) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.base = err
		return cerr
	}
}
