// Package workload loads process descriptors from JSON, YAML and CSV files and
// generates synthetic workloads. It is the only place input files are parsed.
package workload

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/energy-sched/sim"
)

// Descriptor is one input process. PIDs are not part of the input; they are
// assigned from the position in the sequence.
type Descriptor struct {
	Arrival  int64 `json:"arrival" yaml:"arrival"`
	Burst    int64 `json:"burst" yaml:"burst"`
	Priority int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// rawDescriptor distinguishes missing fields from zero values.
type rawDescriptor struct {
	Arrival  *int64 `json:"arrival" yaml:"arrival"`
	Burst    *int64 `json:"burst" yaml:"burst"`
	Priority *int   `json:"priority" yaml:"priority"`
}

func (r rawDescriptor) resolve(index int) (Descriptor, error) {
	if r.Arrival == nil {
		return Descriptor{}, &sim.InvalidInputError{Index: index, Field: "arrival", Reason: "missing required field"}
	}
	if r.Burst == nil {
		return Descriptor{}, &sim.InvalidInputError{Index: index, Field: "burst", Reason: "missing required field"}
	}
	d := Descriptor{Arrival: *r.Arrival, Burst: *r.Burst}
	if r.Priority != nil {
		d.Priority = *r.Priority
	}
	return d, d.validate(index)
}

func (d Descriptor) validate(index int) error {
	if d.Arrival < 0 {
		return &sim.InvalidInputError{Index: index, Field: "arrival", Value: strconv.FormatInt(d.Arrival, 10), Reason: "must be >= 0"}
	}
	if d.Burst <= 0 {
		return &sim.InvalidInputError{Index: index, Field: "burst", Value: strconv.FormatInt(d.Burst, 10), Reason: "must be > 0"}
	}
	return nil
}

// Descriptors is an ordered input sequence.
type Descriptors []Descriptor

// ToProcesses builds one Process per descriptor with PID = 1-based position.
func (ds Descriptors) ToProcesses() []*sim.Process {
	procs := make([]*sim.Process, len(ds))
	for i, d := range ds {
		procs[i] = sim.NewProcess(strconv.Itoa(i+1), d.Arrival, d.Burst, d.Priority)
	}
	return procs
}

// LoadProcesses reads a descriptor file and returns validated processes.
// The format follows the extension: .json, .yaml/.yml or .csv.
func LoadProcesses(path string) ([]*sim.Process, error) {
	descs, err := LoadDescriptors(path)
	if err != nil {
		return nil, err
	}
	return descs.ToProcesses(), nil
}

// LoadDescriptors reads and validates a descriptor file without building processes.
func LoadDescriptors(path string) (Descriptors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload %s: %w", path, err)
	}

	var descs Descriptors
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		descs, err = ParseJSON(data)
	case ".yaml", ".yml":
		descs, err = ParseYAML(data)
	case ".csv":
		descs, err = ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported workload format %q (want .json, .yaml, .yml or .csv)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing workload %s: %w", path, err)
	}
	if len(descs) == 0 {
		logrus.Warnf("workload %s contains no processes", path)
	}
	logrus.Debugf("loaded %d process descriptors from %s", len(descs), path)
	return descs, nil
}

// ParseJSON parses a JSON array of {"arrival", "burst", "priority"} objects.
func ParseJSON(data []byte) (Descriptors, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &sim.InvalidInputError{Index: -1, Field: "document", Reason: err.Error()}
	}

	descs := make(Descriptors, 0, len(items))
	for i, item := range items {
		var raw rawDescriptor
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, &sim.InvalidInputError{Index: i, Field: "process", Value: string(item), Reason: err.Error()}
		}
		d, err := raw.resolve(i)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// ParseYAML parses a YAML sequence of descriptors with strict field checking,
// so typos in field names are errors rather than silently-missing values.
func ParseYAML(data []byte) (Descriptors, error) {
	var items []rawDescriptor
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptors{}, nil
		}
		return nil, &sim.InvalidInputError{Index: -1, Field: "document", Reason: err.Error()}
	}

	descs := make(Descriptors, 0, len(items))
	for i, raw := range items {
		d, err := raw.resolve(i)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// ParseCSV parses a CSV document whose header names the columns arrival, burst
// and optionally priority, in any order.
func ParseCSV(r io.Reader) (Descriptors, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptors{}, nil
		}
		return nil, &sim.InvalidInputError{Index: -1, Field: "header", Reason: err.Error()}
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"arrival", "burst"} {
		if _, ok := cols[required]; !ok {
			return nil, &sim.InvalidInputError{Index: -1, Field: required, Reason: "missing column"}
		}
	}

	descs := Descriptors{}
	for index := 0; ; index++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &sim.InvalidInputError{Index: index, Field: "row", Reason: err.Error()}
		}

		var raw rawDescriptor
		arrival, err := csvInt(row, cols, "arrival", index)
		if err != nil {
			return nil, err
		}
		burst, err := csvInt(row, cols, "burst", index)
		if err != nil {
			return nil, err
		}
		raw.Arrival, raw.Burst = arrival, burst
		if _, ok := cols["priority"]; ok {
			priority, err := csvInt(row, cols, "priority", index)
			if err != nil {
				return nil, err
			}
			if priority != nil {
				p := int(*priority)
				raw.Priority = &p
			}
		}

		d, err := raw.resolve(index)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// csvInt returns nil for an empty cell so resolve can report it as missing.
func csvInt(row []string, cols map[string]int, field string, index int) (*int64, error) {
	col := cols[field]
	if col >= len(row) {
		return nil, nil
	}
	cell := strings.TrimSpace(row[col])
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return nil, &sim.InvalidInputError{Index: index, Field: field, Value: cell, Reason: "not an integer"}
	}
	return &v, nil
}

// WriteJSON writes descriptors in the JSON input format.
func WriteJSON(w io.Writer, descs Descriptors) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(descs)
}
