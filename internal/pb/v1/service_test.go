package pb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// protoRoot is where the .proto sources live relative to this package.
const protoRoot = "../../../api"

// TestServiceDesc_MatchesProto keeps the hand-written descriptor in line with alarm.proto.
func TestServiceDesc_MatchesProto(t *testing.T) {
	t.Parallel()

	contents, err := os.ReadFile(filepath.Join(protoRoot, AlarmServiceDesc.Metadata.(string)))
	require.NoError(t, err)

	source := string(contents)

	pkg, service, ok := strings.Cut(AlarmServiceName, ".AlarmService")
	require.True(t, ok)
	require.Empty(t, service)
	require.Contains(t, source, "package "+pkg+";")
	require.Contains(t, source, "service AlarmService {")

	for _, m := range AlarmServiceDesc.Methods {
		require.Contains(t, source, "rpc "+m.MethodName+"(")
	}

	for _, s := range AlarmServiceDesc.Streams {
		require.Contains(t, source, "rpc "+s.StreamName+"(")
		require.Contains(t, source, "returns (stream ")
	}

	for _, field := range []string{
		FieldTimestamp, FieldAngleMin, FieldAngleMax, FieldAngleIncrement, FieldRangeMin, FieldRangeMax, FieldRanges,
		FieldSequence, FieldAlarmActive, FieldForwardDistance, FieldTriggeringSector, FieldTriggeringRange,
	} {
		require.Contains(t, source, "//   "+field+" ")
	}
}
