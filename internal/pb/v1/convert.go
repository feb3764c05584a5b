package pb

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/scan"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// Struct field names of a scan frame message.
const (
	FieldTimestamp      = "timestamp"
	FieldAngleMin       = "angle_min"
	FieldAngleMax       = "angle_max"
	FieldAngleIncrement = "angle_increment"
	FieldRangeMin       = "range_min"
	FieldRangeMax       = "range_max"
	FieldRanges         = "ranges"
)

// Struct field names of an alarm state message.
const (
	FieldSequence         = "sequence"
	FieldAlarmActive      = "alarm_active"
	FieldForwardDistance  = "forward_distance_meters"
	FieldTriggeringSector = "triggering_sector"
	FieldTriggeringRange  = "triggering_range_meters"
)

var (
	// ErrMissingField is returned when a required Struct field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField is returned when a Struct field has the wrong kind.
	ErrInvalidField = errors.New("invalid field")
)

// FrameToStruct encodes a scan frame.
func FrameToStruct(f *scan.Frame) *structpb.Struct {
	ranges := make([]*structpb.Value, len(f.Ranges))
	for i, r := range f.Ranges {
		ranges[i] = structpb.NewNumberValue(r)
	}

	fields := map[string]*structpb.Value{
		FieldAngleMin:       structpb.NewNumberValue(f.AngleMin),
		FieldAngleMax:       structpb.NewNumberValue(f.AngleMax),
		FieldAngleIncrement: structpb.NewNumberValue(f.AngleIncrement),
		FieldRangeMin:       structpb.NewNumberValue(f.RangeMin),
		FieldRangeMax:       structpb.NewNumberValue(f.RangeMax),
		FieldRanges:         structpb.NewListValue(&structpb.ListValue{Values: ranges}),
	}

	if !f.Timestamp.IsZero() {
		fields[FieldTimestamp] = structpb.NewStringValue(f.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	return &structpb.Struct{Fields: fields}
}

// FrameFromStruct decodes a scan frame. Null range entries decode as NaN,
// the way JSON producers encode a missing return.
// The result is not validated; callers run scan.Frame.Validate.
func FrameFromStruct(s *structpb.Struct) (*scan.Frame, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: frame", ErrMissingField)
	}

	var (
		f   scan.Frame
		err error
	)

	for key, dst := range map[string]*float64{
		FieldAngleMin:       &f.AngleMin,
		FieldAngleMax:       &f.AngleMax,
		FieldAngleIncrement: &f.AngleIncrement,
	} {
		if *dst, err = number(s, key); err != nil {
			return nil, err
		}
	}

	for key, dst := range map[string]*float64{
		FieldRangeMin: &f.RangeMin,
		FieldRangeMax: &f.RangeMax,
	} {
		if *dst, err = optionalNumber(s, key); err != nil {
			return nil, err
		}
	}

	if f.Timestamp, err = optionalTime(s, FieldTimestamp); err != nil {
		return nil, err
	}

	list, ok := s.GetFields()[FieldRanges]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldRanges)
	}

	values, ok := list.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a list", ErrInvalidField, FieldRanges)
	}

	f.Ranges = make([]float64, len(values.ListValue.GetValues()))
	for i, v := range values.ListValue.GetValues() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			f.Ranges[i] = kind.NumberValue
		case *structpb.Value_NullValue:
			f.Ranges[i] = math.NaN()
		default:
			return nil, fmt.Errorf("%w: %s[%d] is not a number", ErrInvalidField, FieldRanges, i)
		}
	}

	return &f, nil
}

// StateToStruct encodes an alarm state.
func StateToStruct(state *alarm.State) *structpb.Struct {
	if state == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	fields := map[string]*structpb.Value{
		FieldSequence:         structpb.NewNumberValue(float64(state.Sequence)),
		FieldAlarmActive:      structpb.NewBoolValue(state.Active),
		FieldForwardDistance:  structpb.NewNumberValue(state.ForwardDistance),
		FieldTriggeringSector: structpb.NewNullValue(),
	}

	if state.TriggeringSector != "" {
		fields[FieldTriggeringSector] = structpb.NewStringValue(string(state.TriggeringSector))
		fields[FieldTriggeringRange] = structpb.NewNumberValue(state.TriggeringRange)
	}

	if !state.Timestamp.IsZero() {
		fields[FieldTimestamp] = structpb.NewStringValue(state.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	return &structpb.Struct{Fields: fields}
}

// StateFromStruct decodes an alarm state. An empty Struct decodes to the zero state.
func StateFromStruct(s *structpb.Struct) (*alarm.State, error) {
	var state alarm.State

	if len(s.GetFields()) == 0 {
		return &state, nil
	}

	seq, err := optionalNumber(s, FieldSequence)
	if err != nil {
		return nil, err
	}

	state.Sequence = uint64(seq)

	if state.ForwardDistance, err = number(s, FieldForwardDistance); err != nil {
		return nil, err
	}

	if state.TriggeringRange, err = optionalNumber(s, FieldTriggeringRange); err != nil {
		return nil, err
	}

	if state.Timestamp, err = optionalTime(s, FieldTimestamp); err != nil {
		return nil, err
	}

	active, ok := s.GetFields()[FieldAlarmActive]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldAlarmActive)
	}

	b, ok := active.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a bool", ErrInvalidField, FieldAlarmActive)
	}

	state.Active = b.BoolValue

	if v, ok := s.GetFields()[FieldTriggeringSector]; ok {
		if name, isString := v.GetKind().(*structpb.Value_StringValue); isString {
			state.TriggeringSector = sector.Name(name.StringValue)
		}
	}

	return &state, nil
}

func number(s *structpb.Struct, key string) (float64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidField, key)
	}

	return n.NumberValue, nil
}

func optionalNumber(s *structpb.Struct, key string) (float64, error) {
	if _, ok := s.GetFields()[key]; !ok {
		return 0, nil
	}

	return number(s, key)
}

func optionalTime(s *structpb.Struct, key string) (time.Time, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return time.Time{}, nil
	}

	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s is not a string", ErrInvalidField, key)
	}

	t, err := time.Parse(time.RFC3339Nano, str.StringValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidField, key, err)
	}

	return t, nil
}
