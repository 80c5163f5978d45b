package store

import (
	"fmt"

	"pigate/pkg/platform/sentinel"
)

func errNotFound(id string) error {
	return fmt.Errorf("audit entry %s: %w", id, sentinel.ErrNotFound)
}
