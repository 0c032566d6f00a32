package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	batchRows int
	software  string
	calls     []string
}

var errNonPositive = errors.New("batch rows must be positive")

func withBatchRows(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if n <= 0 {
			return errNonPositive
		}
		c.batchRows = n
		c.calls = append(c.calls, "batchRows")

		return nil
	})
}

func withSoftware(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.software = name
		c.calls = append(c.calls, "software")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withSoftware("a"), withBatchRows(10), withSoftware("b"))
		require.NoError(t, err)
		require.Equal(t, "b", cfg.software)
		require.Equal(t, 10, cfg.batchRows)
		require.Equal(t, []string{"software", "batchRows", "software"}, cfg.calls)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withBatchRows(0), withSoftware("never"))
		require.ErrorIs(t, err, errNonPositive)
		require.Empty(t, cfg.software)
		require.Empty(t, cfg.calls)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &testConfig{batchRows: 3}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 3, cfg.batchRows)
	})

	t.Run("nil option skipped", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withSoftware("x")))
		require.Equal(t, "x", cfg.software)
	})
}
