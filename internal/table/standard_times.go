package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/leadtime/schema"
	"gopkg.in/yaml.v3"
)

// ReadStandardTimes reads standard times written by the estimate command as json or yaml.
func ReadStandardTimes(path string) ([]schema.ProductionTimeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read standard times: %w", err)
	}
	entries, err := DecodeStandardTimes(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema.FromStandardTimes(entries)
}

// DecodeStandardTimes parses serialized standard times. The extension picks the decoder,
// anything other than .yaml or .yml is read as JSON.
func DecodeStandardTimes(data []byte, ext string) ([]schema.StandardTimeEntry, error) {
	var entries []schema.StandardTimeEntry
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode YAML standard times: %w", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode JSON standard times: %w", err)
		}
	}
	return entries, nil
}
