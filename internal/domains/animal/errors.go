package animal

import (
	"errors"
	"fmt"
)

var (
	ErrAnimalNotFound = errors.New("animal not found")
	ErrDuplicateSlug  = errors.New("slug already exists")
	ErrNotOwner       = errors.New("you must own an animal in order to edit it")
	ErrEmptyName      = errors.New("animal name must not be empty")
)

// PageOverflowError signals that the requested page is past the end of a
// non-empty collection. The handler redirects to LastPage instead of
// rendering an empty page.
type PageOverflowError struct {
	Requested int
	LastPage  int
}

func (e *PageOverflowError) Error() string {
	return fmt.Sprintf("page %d does not exist, last page is %d", e.Requested, e.LastPage)
}
