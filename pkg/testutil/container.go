package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

const terminateTimeout = 10 * time.Second

// terminate stops a container, logging rather than failing so cleanup of
// the remaining resources still runs.
func terminate(t *testing.T, name string, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()
	if err := c.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate %s container: %v", name, err)
	}
}
