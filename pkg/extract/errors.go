package extract

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned when no generation credential is configured
// for the selected provider. It ends the run before analysis completes.
var ErrNoCredential = errors.New("no generation credential configured for provider")

// SchemaViolationError reports model output that failed validation. It is
// fatal for the whole batch; partial batches are never surfaced.
type SchemaViolationError struct {
	Index  int
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("suggestion %d violates the extraction schema: %s", e.Index, e.Reason)
}
