package stacks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dstackai/dstack/api/types/frames"
	"github.com/dstackai/dstack/api/types/internal/utils/cmp"
	"github.com/dstackai/dstack/api/types/misc/rfctime"
)

var segmentPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxPathLength = 255

// Path locates a stack as "<user>/<name>".
type Path struct {
	User string
	Name string
}

func (p Path) String() string {
	return p.User + "/" + p.Name
}

// ParsePath resolves a stack reference against defaultUser.
//
// "name" resolves to "<defaultUser>/name"; "/someone/name" and
// "someone/name" resolve to "someone/name". Each segment may contain
// latin letters, digits, hyphen and underscore.
func ParsePath(s string, defaultUser string) (Path, error) {
	if maxPathLength < len(s) {
		return Path{}, fmt.Errorf("stack path too long: %q", s)
	}

	s = strings.TrimPrefix(s, "/")
	segments := strings.Split(s, "/")

	var p Path
	switch len(segments) {
	case 1:
		p = Path{User: defaultUser, Name: segments[0]}
	case 2:
		p = Path{User: segments[0], Name: segments[1]}
	default:
		return Path{}, fmt.Errorf("stack path should be NAME or USER/NAME: %q", s)
	}

	for _, seg := range []string{p.User, p.Name} {
		if !segmentPattern.MatchString(seg) {
			return Path{}, fmt.Errorf(
				"stack path can contain only latin letters, digits, hyphen and underscore: %q", s,
			)
		}
	}
	return p, nil
}

type Summary struct {
	User      string          `json:"user"`
	Name      string          `json:"name"`
	Private   bool            `json:"private"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`

	// Head is the frame most recently pushed to this stack, if any.
	Head *frames.Summary `json:"head,omitempty"`
}

func (s Summary) Equal(o Summary) bool {
	headEq := (s.Head == nil) == (o.Head == nil)
	if headEq && s.Head != nil {
		headEq = s.Head.Equal(*o.Head)
	}
	return s.User == o.User &&
		s.Name == o.Name &&
		s.Private == o.Private &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		headEq
}

type Detail struct {
	User      string          `json:"user"`
	Name      string          `json:"name"`
	Private   bool            `json:"private"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`

	// Head is the frame most recently pushed to this stack, if any.
	Head *frames.Detail `json:"head,omitempty"`

	// Frames are all closed frames of the stack, newest first.
	Frames []frames.Summary `json:"frames"`
}

func (d Detail) Equal(o Detail) bool {
	headEq := (d.Head == nil) == (o.Head == nil)
	if headEq && d.Head != nil {
		headEq = d.Head.Equal(*o.Head)
	}
	return d.User == o.User &&
		d.Name == o.Name &&
		d.Private == o.Private &&
		d.CreatedAt.Equal(o.CreatedAt) &&
		headEq &&
		cmp.SliceEqWith(d.Frames, o.Frames, frames.Summary.Equal)
}

// AccessChange is the request body toggling stack visibility.
type AccessChange struct {
	Private bool `json:"private"`
}
