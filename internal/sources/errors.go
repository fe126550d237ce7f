package sources

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks fetch failures scoped to the current page or
	// (person, source) pair; the overall crawl continues past them.
	ErrTransient = errors.New("transient failure")
	// ErrParse marks page content the parser could not make sense of.
	ErrParse = errors.New("parse error")
	// ErrConfiguration marks invalid searcher setup, rejected before any
	// crawling begins.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes source context while tagging it
// with the provided marker for later classification.
func Wrap(marker error, source ID, operation, message string, err error) error {
	detail := buildDetail(string(source), operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must stop the run instead of being logged
// and skipped. Only configuration problems qualify at the source level.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(source, operation, message string) string {
	parts := make([]string, 0, 3)
	if source = strings.TrimSpace(source); source != "" {
		parts = append(parts, source)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "source failure"
	}
	return strings.Join(parts, ": ")
}
