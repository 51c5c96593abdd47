package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadablePDF is returned when the file cannot be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable PDF")

	errNoPages = errors.New("document has no pages")
)

func wrapUnreadable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
}
