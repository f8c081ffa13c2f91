package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/navyx/nexus/nexus-users/pkg/migrate"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	t.Run("Status", func(t *testing.T) {
		t.Parallel()

		status, direction, err := parseCommand("status")
		require.NoError(t, err)
		require.True(t, status)
		require.Empty(t, direction)
	})

	t.Run("Directions", func(t *testing.T) {
		t.Parallel()

		for arg, expected := range map[string]migrate.Direction{"up": migrate.DirectionUp, "down": migrate.DirectionDown, "UP": migrate.DirectionUp} {
			status, direction, err := parseCommand(arg)
			require.NoError(t, err, arg)
			require.False(t, status)
			require.Equal(t, expected, direction)
		}
	})

	t.Run("Unknown command", func(t *testing.T) {
		t.Parallel()

		for _, arg := range []string{"upp", "migrate", ""} {
			_, _, err := parseCommand(arg)
			require.ErrorContains(t, err, "unknown command", arg)
		}
	})
}
