package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"
)

func TestFlowSample_VolumePerHour(t *testing.T) {
	s := FlowSample{From: 1, To: 2, Interval: "0830", Volume: 75}

	assert.Equal(t, 300.0, s.VolumePerHour())
	assert.Equal(t, domain.EdgeKey{From: 1, To: 2}, s.EdgeKey())
}

func TestFlowSample_Validate(t *testing.T) {
	require.NoError(t, FlowSample{From: 1, To: 2, Volume: 10}.Validate())
	require.NoError(t, FlowSample{From: 1, To: 2, Interval: "2345", Volume: 0}.Validate())

	err := FlowSample{From: 1, To: 2, Volume: -3}.Validate()
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidVolume))

	err = FlowSample{From: 1, To: 2, Interval: "0810", Volume: 1}.Validate()
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInterval))
}

func TestValidateInterval(t *testing.T) {
	valid := []string{"0000", "0015", "0830", "1245", "2300", "2345"}
	for _, interval := range valid {
		assert.NoError(t, ValidateInterval(interval), interval)
	}

	invalid := []string{"", "830", "08300", "2400", "0860", "0810", "ab30", "08:30"}
	for _, interval := range invalid {
		err := ValidateInterval(interval)
		require.Error(t, err, interval)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidInterval), interval)
	}
}
