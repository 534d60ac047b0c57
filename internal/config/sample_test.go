package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load("../../imu_config.txt")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}
