package instance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIDPrefersConfiguredValue(t *testing.T) {
	t.Setenv("CELLSPHERE_WORKER_ID", "cron-7")
	require.Equal(t, "cron-7", GetID())
}

func TestGetIDFallsBackWhenUnset(t *testing.T) {
	t.Setenv("CELLSPHERE_WORKER_ID", "")
	require.NotEmpty(t, GetID())
}
