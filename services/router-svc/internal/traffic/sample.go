package traffic

import (
	"fmt"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"
)

// FlowSample is a single traffic observation on a directed road segment:
// the number of vehicles counted during one 15-minute interval.
type FlowSample struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	Interval string  `json:"interval"` // start of the 15-minute window, "HHMM"
	Volume   float64 `json:"volume"`   // vehicles per 15 minutes
}

// EdgeKey returns the segment identifier of the sample.
func (s FlowSample) EdgeKey() domain.EdgeKey {
	return domain.EdgeKey{From: s.From, To: s.To}
}

// VolumePerHour scales the 15-minute count to an hourly flow rate,
// the unit the conversion model is calibrated in.
func (s FlowSample) VolumePerHour() float64 {
	return s.Volume * 4
}

// Validate checks the sample fields. Volume must be non-negative and the
// interval, when set, must be a valid 15-minute window start.
func (s FlowSample) Validate() error {
	if s.Volume < 0 {
		return apperror.NewWithField(apperror.CodeInvalidVolume,
			fmt.Sprintf("sample %d->%d has negative volume %.2f", s.From, s.To, s.Volume),
			"volume")
	}
	if s.Interval != "" {
		if err := ValidateInterval(s.Interval); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInterval checks that the interval is "HHMM" with HH in 00..23
// and MM on a quarter-hour boundary (00, 15, 30, 45).
func ValidateInterval(interval string) error {
	invalid := func() error {
		return apperror.NewWithField(apperror.CodeInvalidInterval,
			fmt.Sprintf("interval %q is not a 15-minute window start (HHMM)", interval),
			"interval")
	}

	if len(interval) != 4 {
		return invalid()
	}
	for _, r := range interval {
		if r < '0' || r > '9' {
			return invalid()
		}
	}

	hh := int(interval[0]-'0')*10 + int(interval[1]-'0')
	mm := int(interval[2]-'0')*10 + int(interval[3]-'0')
	if hh > 23 {
		return invalid()
	}
	switch mm {
	case 0, 15, 30, 45:
		return nil
	default:
		return invalid()
	}
}
