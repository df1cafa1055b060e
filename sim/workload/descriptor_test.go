package workload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/energy-sched/sim"
)

func TestParseJSON_ValidDocument(t *testing.T) {
	descs, err := ParseJSON([]byte(`[{"arrival": 0, "burst": 3}, {"arrival": 2, "burst": 1, "priority": 4}]`))

	require.NoError(t, err)
	assert.Equal(t, Descriptors{{Arrival: 0, Burst: 3}, {Arrival: 2, Burst: 1, Priority: 4}}, descs)
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
		field string
	}{
		{"not an array", `{"arrival": 0}`, -1, "document"},
		{"missing burst", `[{"arrival": 0}]`, 0, "burst"},
		{"missing arrival", `[{"arrival": 0, "burst": 1}, {"burst": 2}]`, 1, "arrival"},
		{"negative arrival", `[{"arrival": -1, "burst": 2}]`, 0, "arrival"},
		{"zero burst", `[{"arrival": 0, "burst": 0}]`, 0, "burst"},
		{"wrong type", `[{"arrival": "soon", "burst": 2}]`, 0, "process"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))

			var ierr *sim.InvalidInputError
			require.True(t, errors.As(err, &ierr), "got %v", err)
			assert.Equal(t, tt.index, ierr.Index)
			assert.Equal(t, tt.field, ierr.Field)
		})
	}
}

func TestParseJSON_EmptyArray(t *testing.T) {
	descs, err := ParseJSON([]byte(`[]`))

	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestParseYAML_ValidDocument(t *testing.T) {
	doc := `
- arrival: 0
  burst: 2
- arrival: 5
  burst: 1
  priority: 3
`
	descs, err := ParseYAML([]byte(doc))

	require.NoError(t, err)
	assert.Equal(t, Descriptors{{Arrival: 0, Burst: 2}, {Arrival: 5, Burst: 1, Priority: 3}}, descs)
}

func TestParseYAML_UnknownField_Rejected(t *testing.T) {
	// GIVEN a typo in a field name
	_, err := ParseYAML([]byte("- arival: 0\n  burst: 2\n"))

	// THEN strict decoding rejects it
	var ierr *sim.InvalidInputError
	require.True(t, errors.As(err, &ierr), "got %v", err)
	assert.Equal(t, "document", ierr.Field)
}

func TestParseYAML_EmptyDocument(t *testing.T) {
	descs, err := ParseYAML(nil)

	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestParseCSV_ColumnsInAnyOrder(t *testing.T) {
	doc := "burst, priority, arrival\n3, 1, 0\n2, , 4\n"

	descs, err := ParseCSV(strings.NewReader(doc))

	require.NoError(t, err)
	assert.Equal(t, Descriptors{{Arrival: 0, Burst: 3, Priority: 1}, {Arrival: 4, Burst: 2}}, descs)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
		field string
	}{
		{"missing burst column", "arrival\n0\n", -1, "burst"},
		{"empty burst cell", "arrival,burst\n0,\n", 0, "burst"},
		{"non-integer", "arrival,burst\n0,2\nx,1\n", 1, "arrival"},
		{"negative burst", "arrival,burst\n0,-2\n", 0, "burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.doc))

			var ierr *sim.InvalidInputError
			require.True(t, errors.As(err, &ierr), "got %v", err)
			assert.Equal(t, tt.index, ierr.Index)
			assert.Equal(t, tt.field, ierr.Field)
		})
	}
}

func TestDescriptors_ToProcesses_PIDsFromPosition(t *testing.T) {
	// GIVEN descriptors not sorted by arrival
	descs := Descriptors{{Arrival: 9, Burst: 1}, {Arrival: 0, Burst: 2, Priority: 1}}

	procs := descs.ToProcesses()

	// THEN PIDs follow input position, not arrival
	require.Len(t, procs, 2)
	assert.Equal(t, "1", procs[0].PID)
	assert.Equal(t, int64(9), procs[0].Arrival)
	assert.Equal(t, "2", procs[1].PID)
	assert.Equal(t, 1, procs[1].Priority)
}

func TestLoadProcesses_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"w.json": `[{"arrival": 1, "burst": 2}]`,
		"w.yaml": "- arrival: 1\n  burst: 2\n",
		"w.yml":  "- arrival: 1\n  burst: 2\n",
		"w.csv":  "arrival,burst\n1,2\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		procs, err := LoadProcesses(path)

		require.NoError(t, err, name)
		require.Len(t, procs, 1, name)
		assert.Equal(t, int64(1), procs[0].Arrival, name)
		assert.Equal(t, int64(2), procs[0].Burst, name)
	}
}

func TestLoadProcesses_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 1"), 0o644))

	_, err := LoadProcesses(path)

	assert.ErrorContains(t, err, "unsupported workload format")
}

func TestLoadProcesses_MissingFile(t *testing.T) {
	_, err := LoadProcesses(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestWriteJSON_ParsesBack(t *testing.T) {
	descs := Descriptors{{Arrival: 0, Burst: 3}, {Arrival: 4, Burst: 1, Priority: 2}}
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, descs))
	got, err := ParseJSON(buf.Bytes())

	require.NoError(t, err)
	assert.Equal(t, descs, got)
}
