package shodan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maritime-sec/port-twin/pkg/models"
)

// ErrNotFound is returned when the scan response file does not exist
var ErrNotFound = errors.New("scan response file not found")

// ParseError wraps a failure while reading or decoding a scan response
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing scan response %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Metadata describes the provenance of a parsed document
type Metadata struct {
	SourceFile        string    `json:"source_file"`
	ParsedAt          time.Time `json:"parsed_timestamp"`
	ProcessingSeconds float64   `json:"processing_time_seconds"`
}

// ParsedDocument is a normalized scan response: one record per host block
type ParsedDocument struct {
	Hosts    []models.HostRecord `json:"hosts"`
	Total    int                 `json:"total"`
	Metadata Metadata            `json:"metadata"`
}

// Host blocks are separated by runs of blank lines
var blockSep = regexp.MustCompile(`\n\s*\n`)

// ParseText parses a block-structured scan response into host records.
// Within a block each line is a "key: value" pair split on the first colon.
// Lines without a colon and empty blocks are skipped, never an error.
func ParseText(content, source string) *ParsedDocument {
	start := time.Now()

	doc := &ParsedDocument{
		Hosts: []models.HostRecord{},
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, block := range blockSep.Split(content, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		host := models.HostRecord{}
		for _, line := range strings.Split(block, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			host[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}

		if len(host) > 0 {
			doc.Hosts = append(doc.Hosts, host)
		}
	}

	doc.Total = len(doc.Hosts)
	doc.Metadata = Metadata{
		SourceFile:        source,
		ParsedAt:          time.Now(),
		ProcessingSeconds: time.Since(start).Seconds(),
	}

	return doc
}

// ParseTextFile parses a scan response file. A missing file is reported as
// ErrNotFound; any other read failure is wrapped in a ParseError.
func ParseTextFile(path string, logger *logrus.Logger) (*ParsedDocument, error) {
	if logger == nil {
		logger = logrus.New()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	doc := ParseText(string(content), path)
	logger.Infof("Parsed %d hosts from %s in %.2f seconds", doc.Total, path, doc.Metadata.ProcessingSeconds)

	return doc, nil
}

// WriteJSON saves a parsed document as indented JSON, creating parent
// directories as needed
func WriteJSON(doc *ParsedDocument, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding parsed document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}
