package redirect

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned for a config the renderer cannot use,
	// such as a negative depth.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidServer is returned for a server name other than apache or nginx.
	ErrInvalidServer = errors.New("invalid server")
	// ErrInvalidStatus is returned for a redirect status outside Statuses.
	ErrInvalidStatus = errors.New("invalid redirect status")
)

// Record is one old path -> new path mapping. Segments is the old path split
// on "/" with at most depth+2 pieces, so the last piece holds whatever is left
// beyond depth components.
type Record struct {
	Segments []string
	New      string
}

// NewRecord splits oldPath for the given grouping depth.
func NewRecord(oldPath, newPath string, depth int) (Record, error) {
	if depth < 0 {
		return Record{}, fmt.Errorf("%w: depth %d is negative", ErrInvalidConfiguration, depth)
	}
	return Record{
		Segments: strings.SplitN(oldPath, "/", depth+2),
		New:      newPath,
	}, nil
}

// Old joins the segments back into the full old path.
func (r Record) Old() string {
	return strings.Join(r.Segments, "/")
}
