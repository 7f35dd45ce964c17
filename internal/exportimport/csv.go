package exportimport

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kgraph/kgcore/internal/kgerr"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

const (
	entitiesSectionHeader  = "# ENTITIES"
	relationsSectionHeader = "# RELATIONS"
)

var entityColumns = []string{"name", "entityType", "observations", "tags", "importance", "parentId", "createdAt", "lastModified"}
var relationColumns = []string{"from", "to", "relationType", "weight", "confidence", "properties", "createdAt", "lastModified"}

// EncodeCSV writes g as two RFC4180 sections headed "# ENTITIES" and
// "# RELATIONS" (§6 import/export formats: CSV). Multi-valued fields
// (observations, tags, properties) are JSON-encoded into a single cell.
// Every text cell (names, types, parent id, relation type and the
// JSON-encoded fields) that would otherwise start with =, +, -, or @ is
// prefixed with a leading apostrophe to neutralise spreadsheet formula
// injection when the file is opened in a spreadsheet application. Numeric
// and timestamp cells are written unprefixed.
func EncodeCSV(w io.Writer, g *kgtypes.Graph) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, entitiesSectionHeader); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "write CSV entities header")
	}
	ew := csv.NewWriter(bw)
	if err := ew.Write(entityColumns); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "write CSV entity columns")
	}
	for _, e := range g.Entities {
		row, err := encodeEntityRow(e)
		if err != nil {
			return err
		}
		if err := ew.Write(row); err != nil {
			return kgerr.Wrap(kgerr.ExportError, err, "write CSV entity row")
		}
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "flush CSV entities")
	}

	if _, err := fmt.Fprintln(bw, relationsSectionHeader); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "write CSV relations header")
	}
	rw := csv.NewWriter(bw)
	if err := rw.Write(relationColumns); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "write CSV relation columns")
	}
	for _, r := range g.Relations {
		row, err := encodeRelationRow(r)
		if err != nil {
			return err
		}
		if err := rw.Write(row); err != nil {
			return kgerr.Wrap(kgerr.ExportError, err, "write CSV relation row")
		}
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return kgerr.Wrap(kgerr.ExportError, err, "flush CSV relations")
	}

	return bw.Flush()
}

// guardFormula prefixes cell values that spreadsheet applications would
// otherwise interpret as a formula with a leading apostrophe.
func guardFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	default:
		return s
	}
}

func encodeEntityRow(e *kgtypes.Entity) ([]string, error) {
	obs, err := json.Marshal(e.Observations)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.ExportError, err, "encode observations")
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.ExportError, err, "encode tags")
	}
	importance := ""
	if e.Importance != nil {
		importance = strconv.Itoa(*e.Importance)
	}
	return []string{
		guardFormula(e.Name),
		guardFormula(e.EntityType),
		guardFormula(string(obs)),
		guardFormula(string(tags)),
		importance,
		guardFormula(e.ParentID),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.LastModified.UTC().Format(time.RFC3339Nano),
	}, nil
}

func encodeRelationRow(r *kgtypes.Relation) ([]string, error) {
	props, err := json.Marshal(r.Properties)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.ExportError, err, "encode properties")
	}
	weight, confidence := "", ""
	if r.Weight != nil {
		weight = strconv.FormatFloat(*r.Weight, 'f', -1, 64)
	}
	if r.Confidence != nil {
		confidence = strconv.FormatFloat(*r.Confidence, 'f', -1, 64)
	}
	return []string{
		guardFormula(r.From),
		guardFormula(r.To),
		guardFormula(r.RelationType),
		weight,
		confidence,
		guardFormula(string(props)),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.LastModified.UTC().Format(time.RFC3339Nano),
	}, nil
}

// DecodeCSV reads the two-section format produced by EncodeCSV, enforcing
// the shared MaxInputBytes/MaxItems caps.
func DecodeCSV(r io.Reader) (*kgtypes.Graph, error) {
	limited := io.LimitReader(r, MaxInputBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, kgerr.Wrap(kgerr.ImportError, err, "read CSV import")
	}
	if len(data) > MaxInputBytes {
		return nil, kgerr.New(kgerr.ImportError, "CSV import exceeds %d byte cap", MaxInputBytes)
	}

	lines := strings.SplitN(string(data), relationsSectionHeader, 2)
	entitiesBlock := lines[0]
	if !strings.HasPrefix(strings.TrimSpace(entitiesBlock), entitiesSectionHeader) {
		return nil, kgerr.New(kgerr.ImportError, "CSV import missing %q header", entitiesSectionHeader)
	}
	entitiesBlock = strings.TrimPrefix(strings.TrimSpace(entitiesBlock), entitiesSectionHeader)

	g := kgtypes.NewGraph()

	if err := decodeEntitySection(entitiesBlock, g); err != nil {
		return nil, err
	}
	if len(lines) == 2 {
		if err := decodeRelationSection(lines[1], g); err != nil {
			return nil, err
		}
	}
	if len(g.Entities) > MaxItems || len(g.Relations) > MaxItems {
		return nil, kgerr.New(kgerr.ImportError, "CSV import exceeds item cap of %d", MaxItems)
	}
	return g, nil
}

func unguard(s string) string {
	if strings.HasPrefix(s, "'") && len(s) > 1 {
		switch s[1] {
		case '=', '+', '-', '@':
			return s[1:]
		}
	}
	return s
}

func decodeEntitySection(block string, g *kgtypes.Graph) error {
	reader := csv.NewReader(strings.NewReader(block))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return kgerr.Wrap(kgerr.ImportError, err, "parse CSV entities section")
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows[1:] {
		if len(row) < len(entityColumns) {
			return kgerr.New(kgerr.ImportError, "CSV entity row has %d fields, want %d", len(row), len(entityColumns))
		}
		e, err := decodeEntityRow(row)
		if err != nil {
			return err
		}
		g.Entities[e.Name] = e
	}
	return nil
}

func decodeEntityRow(row []string) (*kgtypes.Entity, error) {
	e := &kgtypes.Entity{
		Name:       unguard(row[0]),
		EntityType: unguard(row[1]),
		ParentID:   unguard(row[5]),
	}
	if e.Name == "" {
		return nil, kgerr.New(kgerr.ImportError, "entity missing name")
	}
	if row[2] != "" {
		if err := json.Unmarshal([]byte(unguard(row[2])), &e.Observations); err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode observations for %q", e.Name)
		}
	}
	if row[3] != "" {
		if err := json.Unmarshal([]byte(unguard(row[3])), &e.Tags); err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode tags for %q", e.Name)
		}
	}
	if row[4] != "" {
		v, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode importance for %q", e.Name)
		}
		e.Importance = &v
	}
	createdAt, err := parseTimeOrNow(row[6])
	if err != nil {
		return nil, err
	}
	lastModified, err := parseTimeOrNow(row[7])
	if err != nil {
		return nil, err
	}
	e.CreatedAt, e.LastModified = createdAt, lastModified
	return e, nil
}

func decodeRelationSection(block string, g *kgtypes.Graph) error {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(block)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return kgerr.Wrap(kgerr.ImportError, err, "parse CSV relations section")
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows[1:] {
		if len(row) < len(relationColumns) {
			return kgerr.New(kgerr.ImportError, "CSV relation row has %d fields, want %d", len(row), len(relationColumns))
		}
		r, err := decodeRelationRow(row)
		if err != nil {
			return err
		}
		g.Relations[r.Key()] = r
	}
	return nil
}

func decodeRelationRow(row []string) (*kgtypes.Relation, error) {
	r := &kgtypes.Relation{
		From:         unguard(row[0]),
		To:           unguard(row[1]),
		RelationType: unguard(row[2]),
	}
	if r.From == "" || r.To == "" || r.RelationType == "" {
		return nil, kgerr.New(kgerr.ImportError, "relation missing from/to/relationType")
	}
	if row[3] != "" {
		v, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode weight for %s->%s", r.From, r.To)
		}
		r.Weight = &v
	}
	if row[4] != "" {
		v, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode confidence for %s->%s", r.From, r.To)
		}
		r.Confidence = &v
	}
	if row[5] != "" {
		if err := json.Unmarshal([]byte(unguard(row[5])), &r.Properties); err != nil {
			return nil, kgerr.Wrap(kgerr.ImportError, err, "decode properties for %s->%s", r.From, r.To)
		}
	}
	createdAt, err := parseTimeOrNow(row[6])
	if err != nil {
		return nil, err
	}
	lastModified, err := parseTimeOrNow(row[7])
	if err != nil {
		return nil, err
	}
	r.CreatedAt, r.LastModified = createdAt, lastModified
	return r, nil
}

// parseTimeOrNow synthesises the current instant for an absent timestamp,
// matching the JSONL codec's tolerant-reader behaviour.
func parseTimeOrNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, kgerr.Wrap(kgerr.ImportError, err, "parse timestamp %q", s)
	}
	return t, nil
}
