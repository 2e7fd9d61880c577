package model

import "fmt"

// StarDataError means the stellar data file could not be read by the fitting service.
type StarDataError struct {
	Path   string
	Reason string
}

func (e *StarDataError) Error() string {
	return fmt.Sprintf("unreadable stellar data %s: %s", e.Path, e.Reason)
}
