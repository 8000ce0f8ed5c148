package db

import (
	"context"
	"time"

	"github.com/dstackai/dstack/pkg/cmp"
)

// Stack is a record in the stack table.
type Stack struct {
	// name of the user owning this stack.
	UserName string

	// name of the stack, unique per user.
	Name string

	// when true, the stack is visible to its owner only.
	Private bool

	// frame id of the head frame. Empty when no frame has been closed yet.
	Head string

	CreatedAt time.Time
}

func (s Stack) Equal(o Stack) bool {
	return s.UserName == o.UserName &&
		s.Name == o.Name &&
		s.Private == o.Private &&
		s.Head == o.Head &&
		s.CreatedAt.Equal(o.CreatedAt)
}

// StackFindArgs is a query for StackInterface.Find.
type StackFindArgs struct {
	// username of the requester. Private stacks owned by other users
	// are excluded from the result.
	//
	// When empty, the requester is anonymous and only public stacks match.
	Requester string

	// when not empty, restrict the result to stacks owned by this user.
	Owner string

	// when not empty, restrict the result to stacks whose head frame
	// carries attachments with ALL of these params.
	Params []Param
}

func (a StackFindArgs) Equal(o StackFindArgs) bool {
	return a.Requester == o.Requester &&
		a.Owner == o.Owner &&
		cmp.SliceContentEqWith(a.Params, o.Params, Param.Equal)
}

type StackInterface interface {
	// Find stacks matching the query.
	//
	// Return
	//
	// - []Stack: matched stacks, sorted by (user name, stack name).
	//
	// - error
	Find(ctx context.Context, args StackFindArgs) ([]Stack, error)

	// Get a stack by its path.
	//
	// Return
	//
	// - Stack
	//
	// - error: ErrMissing when no such stack exists.
	Get(ctx context.Context, userName string, name string) (Stack, error)

	// UpdateAccess sets the access level of a stack.
	//
	// Return
	//
	// - error: ErrMissing when no such stack exists.
	UpdateAccess(ctx context.Context, userName string, name string, private bool) error

	// Delete removes a stack with all of its frames and attachments.
	//
	// Blob references held by the deleted attachments are moved to the
	// garbage table, to be collected later. See GarbageInterface.
	//
	// Return
	//
	// - error: ErrMissing when no such stack exists.
	Delete(ctx context.Context, userName string, name string) error
}
