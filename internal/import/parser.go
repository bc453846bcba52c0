// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/models"
)

// ReadExport reads at most maxBytes from r and parses it with ParseExport.
// A body larger than maxBytes is rejected rather than truncated.
func ReadExport(r io.Reader, maxBytes int64) ([]AccessRecord, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("%w: non-positive body limit %d", models.ErrInvalidInput, maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read export: %v", models.ErrInvalidInput, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: export exceeds %d bytes", models.ErrInvalidInput, maxBytes)
	}
	return ParseExport(data)
}

// ParseExport decodes an export document. The document is either a bare
// array of records or an object with the records under "data". Every record
// must carry _id, userId, sequenceNumber and accessDay; the first bad record
// fails the whole batch and the error names its index.
func ParseExport(data []byte) ([]AccessRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty export", models.ErrInvalidInput)
	}

	var raw []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode export array: %v", models.ErrInvalidInput, err)
		}
	case '{':
		var envelope struct {
			Data *[]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decode export object: %v", models.ErrInvalidInput, err)
		}
		if envelope.Data == nil {
			return nil, fmt.Errorf("%w: export object has no \"data\" array", models.ErrInvalidInput)
		}
		raw = *envelope.Data
	default:
		return nil, fmt.Errorf("%w: export must be a JSON array or object", models.ErrInvalidInput)
	}

	records := make([]AccessRecord, len(raw))
	for i, item := range raw {
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", models.ErrInvalidInput, i, err)
		}
		if err := checkRecord(&records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", models.ErrInvalidInput, i, err)
		}
	}
	return records, nil
}
