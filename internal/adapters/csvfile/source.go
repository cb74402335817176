// Package csvfile reads observation tables and study metadata from disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bft-labs/pkfit/internal/domain"
)

// Column aliases, matched case-insensitively against the header row.
var columnAliases = map[string][]string{
	"id":        {"id", "participant_id", "subject", "subject_id"},
	"time":      {"time"},
	"conc":      {"conc", "avg", "concentration"},
	"dose":      {"dose"},
	"condition": {"condition"},
	"tinf":      {"tinf", "tinf_h", "infusion_duration"},
}

// Source implements ports.ObservationSource for a CSV file.
type Source struct {
	path string
}

// NewSource creates a Source reading path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Load reads and validates every row of the file.
func (s *Source) Load(ctx context.Context) ([]domain.Observation, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return obs, nil
}

// Read parses an observation table. The header must provide subject id,
// time, concentration and dose columns, plus either an explicit infusion
// duration column or a Condition column to derive it from.
func Read(r io.Reader) ([]domain.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []domain.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}

		o, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, aliases := range columnAliases {
			if _, seen := cols[key]; seen {
				continue
			}
			for _, a := range aliases {
				if name == a {
					cols[key] = i
				}
			}
		}
	}

	for _, key := range []string{"id", "time", "conc", "dose"} {
		if _, ok := cols[key]; !ok {
			return nil, fmt.Errorf("missing %s column (accepted: %s)", key, strings.Join(columnAliases[key], ", "))
		}
	}
	_, hasCond := cols["condition"]
	_, hasTinf := cols["tinf"]
	if !hasCond && !hasTinf {
		return nil, fmt.Errorf("missing condition or tinf column")
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int) (domain.Observation, error) {
	field := func(key string) string {
		i, ok := cols[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		o   domain.Observation
		err error
	)
	o.SubjectID = field("id")
	o.Condition = field("condition")
	if o.Time, err = parseField("time", field("time")); err != nil {
		return o, err
	}
	if o.Conc, err = parseField("conc", field("conc")); err != nil {
		return o, err
	}
	if o.Dose, err = parseField("dose", field("dose")); err != nil {
		return o, err
	}

	if raw := field("tinf"); raw != "" {
		if o.InfusionDuration, err = parseField("tinf", raw); err != nil {
			return o, err
		}
	} else {
		o.InfusionDuration = ParseInfusionDuration(o.Condition)
	}
	return o, nil
}

func parseField(name, raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is empty", name)
	}
	v, err := parseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

// parseNumber accepts both "1.5" and "1,5".
func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// MetadataFile implements ports.MetadataSource for a JSON document.
type MetadataFile struct {
	path string
}

// NewMetadataFile creates a MetadataFile reading path. An empty path
// always yields empty metadata.
func NewMetadataFile(path string) *MetadataFile {
	return &MetadataFile{path: path}
}

// LoadMetadata reads the metadata document.
// Returns empty metadata and nil error if the file does not exist.
func (m *MetadataFile) LoadMetadata(ctx context.Context) (domain.StudyMetadata, error) {
	if m.path == "" {
		return domain.StudyMetadata{}, nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.StudyMetadata{}, nil
		}
		return domain.StudyMetadata{}, err
	}

	var md domain.StudyMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return domain.StudyMetadata{}, fmt.Errorf("%s: %w", m.path, err)
	}
	return md, nil
}
