package vtesting

import (
	"testing"

	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/pstotal/config"
)

// A validated default config with debug logging.
func GetTestConfig(t *testing.T) *config.Config {
	config_obj := config.GetDefaultConfig()
	config_obj.Logging.Level = "debug"
	require.NoError(t, config.Validate(config_obj))

	return config_obj
}
