package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// PrintResults writes the records of one session as JSON lines.
func PrintResults(ctx context.Context, opts StoreOptions, sessionID string, stdout io.Writer) error {
	backend, err := OpenStore(ctx, opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	results, err := backend.Store.List(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session %q: %w", sessionID, err)
	}

	enc := json.NewEncoder(stdout)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// ListSessions writes one stored session ID per line.
func ListSessions(ctx context.Context, opts StoreOptions, stdout io.Writer) error {
	backend, err := OpenStore(ctx, opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	ids, err := backend.Store.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(stdout, id)
	}
	return nil
}
