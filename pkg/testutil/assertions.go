package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireErrorAs fails the test unless err wraps a T, and returns it.
func RequireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T in chain, got %v", target, err)
	return target
}
