// Package recordfile reads lineage records from JSON and YAML files.
//
// A file holds either a bare list of records, an object with a "records"
// list, or a search response of the lineage query service whose results
// wrap each record in an "entity" field:
//
//	{"searchAcrossLineage": {"searchResults": [{"degree": 1, "entity": {...}}]}}
package recordfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/fsutil"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"gopkg.in/yaml.v3"
)

// Extensions are the file extensions picked up when a directory is loaded.
var Extensions = []string{".json", ".yaml", ".yml"}

// searchResult is one entry of a lineage search response. The degree lives
// next to the entity, not inside it.
type searchResult struct {
	Degree int            `json:"degree" yaml:"degree"`
	Entity lineage.Record `json:"entity" yaml:"entity"`
}

type searchResponse struct {
	SearchResults []searchResult `json:"searchResults" yaml:"searchResults"`
}

// document covers every accepted top-level shape except the bare list.
type document struct {
	Records             []lineage.Record `json:"records" yaml:"records"`
	SearchResults       []searchResult   `json:"searchResults" yaml:"searchResults"`
	SearchAcrossLineage *searchResponse  `json:"searchAcrossLineage" yaml:"searchAcrossLineage"`
}

func (d document) records() []lineage.Record {
	results := d.SearchResults
	if d.SearchAcrossLineage != nil {
		results = append(results, d.SearchAcrossLineage.SearchResults...)
	}

	out := append([]lineage.Record(nil), d.Records...)
	for _, r := range results {
		rec := r.Entity
		if rec.Degree == 0 {
			rec.Degree = r.Degree
		}
		out = append(out, rec)
	}
	return out
}

// Load reads records from every given path. Directories are searched
// recursively; files keep the order in which they are found.
func Load(ctx context.Context, paths ...string) ([]lineage.Record, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindAll(paths, Extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to find record files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no record files found in %s", strings.Join(paths, ", "))
	}

	out := []lineage.Record{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read record file %s: %w", file, err)
		}
		records, err := Decode(data, filepath.Ext(file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse record file %s: %w", file, err)
		}
		logger.Debug("Loaded record file.", "path", file, "records", len(records))
		out = append(out, records...)
	}
	return out, nil
}

// Decode parses data in the format named by ext (".json", ".yaml" or
// ".yml").
func Decode(data []byte, ext string) ([]lineage.Record, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported record file extension %q", ext)
	}
}

func decodeJSON(data []byte) ([]lineage.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []lineage.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	// Responses are often wrapped in a "data" envelope.
	var envelope struct {
		Data *document `json:"data"`
		document
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data != nil {
		return envelope.Data.records(), nil
	}
	return envelope.document.records(), nil
}

func decodeYAML(data []byte) ([]lineage.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []lineage.Record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var envelope struct {
		Data     *document `yaml:"data"`
		document `yaml:",inline"`
	}
	if err := root.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Data != nil {
		return envelope.Data.records(), nil
	}
	return envelope.document.records(), nil
}

// Marshal encodes records as an indented JSON list.
func Marshal(records []lineage.Record) ([]byte, error) {
	return json.MarshalIndent(records, "", "  ")
}
