package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/leadtime/internal/parquet"
	"github.com/huangsam/leadtime/schema"
	"github.com/xuri/excelize/v2"
)

// Decode parses observation data in the given format.
func Decode(data []byte, format schema.InputFormat) ([]schema.Observation, error) {
	switch format {
	case schema.CSVInput:
		return DecodeCSV(bytes.NewReader(data))
	case schema.JSONInput:
		return DecodeJSON(bytes.NewReader(data))
	case schema.ParquetInput:
		return parquet.ReadObservations(bytes.NewReader(data), int64(len(data)))
	case schema.XLSXInput:
		return DecodeXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("format %q cannot be decoded from a file", format)
	}
}

// DecodeCSV reads a CSV observation table with a header row.
func DecodeCSV(r io.Reader) ([]schema.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx, err := resolveHeader(header)
	if err != nil {
		return nil, err
	}

	var observations []schema.Observation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		o, err := idx.parseRecord(record, line)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, nil
}

// jsonRecord is one observation in a JSON records array.
type jsonRecord struct {
	StartTime    string      `json:"start_time"`
	ForecastHour json.Number `json:"forecast_hour"`
	Time         string      `json:"time"`
	ArrivalTime  string      `json:"arrival_time"`
}

// DecodeJSON reads a JSON array of records. Unknown keys are rejected.
func DecodeJSON(r io.Reader) ([]schema.Observation, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	var records []jsonRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}
	idx := columnIndex{startTime: 0, forecastHour: 1, arrival: 2}
	observations := make([]schema.Observation, 0, len(records))
	for i, rec := range records {
		arrival := rec.Time
		if arrival == "" {
			arrival = rec.ArrivalTime
		} else if rec.ArrivalTime != "" {
			return nil, fmt.Errorf("row %d: both %q and %q are set", i+1, TimeColumn, ArrivalAliasColumn)
		}
		o, err := idx.parseRecord([]string{rec.StartTime, rec.ForecastHour.String(), arrival}, i+1)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, nil
}

// DecodeXLSX reads the first sheet of a workbook whose first row is the header.
func DecodeXLSX(r io.Reader) ([]schema.Observation, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	idx, err := resolveHeader(rows[0])
	if err != nil {
		return nil, err
	}
	observations := make([]schema.Observation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		o, err := idx.parseRecord(row, i+2)
		if err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, nil
}
