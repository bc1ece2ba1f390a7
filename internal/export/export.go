// Package export writes a snapshot to a flat JSON document. This is a
// one-shot operation on demand, not part of the refresh loop.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"sysmon/internal/model"
)

// Write serializes snap to path, mirroring the in-memory layout verbatim.
func Write(path string, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// WriteFailure records a failed collection cycle in place of a snapshot.
func WriteFailure(path string, cause error) error {
	doc := map[string]string{
		"error": fmt.Sprintf("Failed to collect system data: %v", cause),
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding failure document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing failure document: %w", err)
	}
	return nil
}
