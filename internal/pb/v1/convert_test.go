package pb

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// TestFrame_SurvivesTheWire encodes a frame, pushes it through the binary
// protobuf encoding and decodes it, including non-finite readings.
func TestFrame_SurvivesTheWire(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 10, 17, 12, 0, 0, 500, time.UTC)
	frame := &scan.Frame{
		Timestamp:      ts,
		AngleMin:       -math.Pi / 2,
		AngleMax:       math.Pi / 2,
		AngleIncrement: math.Pi / 180,
		RangeMin:       0.1,
		RangeMax:       30,
		Ranges:         []float64{1, 2.5, math.Inf(1)},
	}

	data, err := proto.Marshal(FrameToStruct(frame))
	require.NoError(t, err)

	var decoded structpb.Struct
	require.NoError(t, proto.Unmarshal(data, &decoded))

	got, err := FrameFromStruct(&decoded)
	require.NoError(t, err)
	require.True(t, ts.Equal(got.Timestamp))
	require.Equal(t, frame.Geometry(), got.Geometry())
	require.InDelta(t, 0.1, got.RangeMin, 1e-12)
	require.InDelta(t, 30, got.RangeMax, 1e-12)
	require.Equal(t, []float64{1, 2.5}, got.Ranges[:2])
	require.True(t, math.IsInf(got.Ranges[2], 1))
}

// TestFrameFromStruct_Errors rejects missing and mistyped fields.
func TestFrameFromStruct_Errors(t *testing.T) {
	t.Parallel()

	_, err := FrameFromStruct(nil)
	require.ErrorIs(t, err, ErrMissingField)

	s, err := structpb.NewStruct(map[string]any{
		"angle_min":       -1.0,
		"angle_max":       1.0,
		"angle_increment": 0.5,
	})
	require.NoError(t, err)

	_, err = FrameFromStruct(s)
	require.ErrorIs(t, err, ErrMissingField)

	s.Fields[FieldRanges] = structpb.NewStringValue("1,2,3")
	_, err = FrameFromStruct(s)
	require.ErrorIs(t, err, ErrInvalidField)

	s.Fields[FieldRanges] = structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
		structpb.NewNumberValue(1),
		structpb.NewBoolValue(true),
	}})
	_, err = FrameFromStruct(s)
	require.ErrorIs(t, err, ErrInvalidField)

	s.Fields[FieldAngleMin] = structpb.NewStringValue("left")
	_, err = FrameFromStruct(s)
	require.ErrorIs(t, err, ErrInvalidField)
}

// TestFrameFromStruct_NullReadings decodes JSON-style nulls as missing returns.
func TestFrameFromStruct_NullReadings(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{
		"angle_min":       -1.0,
		"angle_max":       1.0,
		"angle_increment": 1.0,
		"ranges":          []any{2.0, nil, 3.0},
	})
	require.NoError(t, err)

	f, err := FrameFromStruct(s)
	require.NoError(t, err)
	require.True(t, math.IsNaN(f.Ranges[1]))
	require.NoError(t, f.Validate())
}

// TestState_Roundtrip covers active and idle states.
func TestState_Roundtrip(t *testing.T) {
	t.Parallel()

	active := &alarm.State{
		Timestamp:        time.Now().UTC(),
		Sequence:         42,
		Active:           true,
		ForwardDistance:  3,
		TriggeringSector: sector.Left45,
		TriggeringRange:  0.7,
	}

	got, err := StateFromStruct(StateToStruct(active))
	require.NoError(t, err)
	require.True(t, active.Timestamp.Equal(got.Timestamp))

	got.Timestamp = active.Timestamp
	require.Equal(t, active, got)

	idle := &alarm.State{Sequence: 1, ForwardDistance: 3}
	encoded := StateToStruct(idle)
	_, isNull := encoded.GetFields()[FieldTriggeringSector].GetKind().(*structpb.Value_NullValue)
	require.True(t, isNull)

	got, err = StateFromStruct(encoded)
	require.NoError(t, err)
	require.Equal(t, idle, got)

	got, err = StateFromStruct(StateToStruct(nil))
	require.NoError(t, err)
	require.False(t, got.Evaluated())
}
