package testutil

import (
	"fmt"
	"time"
)

// FixedTime is a reference instant for deterministic tests.
var FixedTime = time.Date(2024, time.June, 1, 2, 15, 0, 0, time.UTC)

// TransactionID returns a deterministic transaction ID for n.
func TransactionID(n int) string {
	return fmt.Sprintf("TX%08X", n)
}
