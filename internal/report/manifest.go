// Package report builds the optional JSON manifest of a batch run. Each
// written output is listed with its BLAKE3 digest and statistics; the
// document is validated against an embedded JSON Schema before it is
// written.
package report

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zeebo/blake3"

	"github.com/backmassage/cloak/internal/stats"
)

// Version is the manifest format version.
const Version = 1

const schemaURL = "manifest-v1.schema.json"

//go:embed manifest.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Manifest describes one batch run.
type Manifest struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Created   time.Time `json:"created"`
	Operation string    `json:"operation"`
	Mode      string    `json:"mode"`
	Marker    string    `json:"marker"`
	OutputDir string    `json:"output_dir,omitempty"`
	DryRun    bool      `json:"dry_run"`
	Items     []Entry   `json:"items"`
	Failed    []Failed  `json:"failed"`
}

// Entry is one successfully processed item.
type Entry struct {
	Source string       `json:"source"`
	Output string       `json:"output"`
	Bytes  int          `json:"bytes"`
	BLAKE3 string       `json:"blake3"`
	Stats  stats.Report `json:"stats"`
}

// Failed is one item that did not make it to disk.
type Failed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// New starts a manifest with a fresh run id.
func New(operation, mode string, marker rune) *Manifest {
	return &Manifest{
		Version:   Version,
		RunID:     uuid.New().String(),
		Created:   time.Now().UTC().Truncate(time.Second),
		Operation: operation,
		Mode:      mode,
		Marker:    fmt.Sprintf("U+%04X", marker),
		Items:     []Entry{},
		Failed:    []Failed{},
	}
}

// AddItem records an output and digests its content.
func (m *Manifest) AddItem(source, output, content string, st stats.Report) {
	m.Items = append(m.Items, Entry{
		Source: source,
		Output: output,
		Bytes:  len(content),
		BLAKE3: Digest(content),
		Stats:  st,
	})
}

// AddFailure records a failed item.
func (m *Manifest) AddFailure(source, message string) {
	m.Failed = append(m.Failed, Failed{Source: source, Error: message})
}

// Digest returns the hex BLAKE3-256 digest of content.
func Digest(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Marshal validates the manifest against the schema and returns it as
// indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write validates the manifest and writes it to path, creating parent
// directories as needed.
func (m *Manifest) Write(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ValidateJSON checks a manifest document against the embedded schema.
func ValidateJSON(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat = true
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}
