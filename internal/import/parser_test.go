// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/accessboard/internal/models"
)

const sampleRecord = `{
	"_id": {"$oid": "65a0c1f2e4b0a1b2c3d4e5f6"},
	"userId": "u-1",
	"sequenceNumber": 7,
	"accessDay": {"$date": "2024-01-10T11:05:00.000Z"},
	"createdAt": {"$date": "2024-01-10T11:05:01.000Z"},
	"updatedAt": {"$date": "2024-01-10T11:05:01.000Z"},
	"__v": 0
}`

// idFields are the identifying fields every record must carry.
const idFields = `"_id": {"$oid": "65a0c1f2e4b0a1b2c3d4e5f6"}, "userId": "u-1", "sequenceNumber": 7`

func TestParseExportShapes(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 1, 10, 11, 5, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"bare array", "[" + sampleRecord + "]"},
		{"data envelope", `{"data": [` + sampleRecord + `]}`},
		{"string accessDay", `[{` + idFields + `, "accessDay": "2024-01-10T11:05:00Z"}]`},
		{"numberLong accessDay", `[{` + idFields + `, "accessDay": {"$date": {"$numberLong": "1704884700000"}}}]`},
		{"extra fields ignored", `[{` + idFields + `, "accessDay": "2024-01-10T11:05:00Z", "gate": "north", "extra": [1,2]}]`},
		{"offset timestamp", `[{` + idFields + `, "accessDay": "2024-01-10T08:05:00-03:00"}]`},
		{"string id and zero sequence", `[{"_id": "a1", "userId": "u-1", "sequenceNumber": 0, "accessDay": "2024-01-10T11:05:00Z"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records, err := ParseExport([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseExport() error = %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if !records[0].AccessDay.Equal(want) {
				t.Errorf("AccessDay = %s, want %s", records[0].AccessDay.Time, want)
			}
		})
	}
}

func TestParseExportCarriesOptionalFields(t *testing.T) {
	t.Parallel()

	records, err := ParseExport([]byte("[" + sampleRecord + "]"))
	if err != nil {
		t.Fatalf("ParseExport() error = %v", err)
	}
	r := records[0]
	if r.ID != "65a0c1f2e4b0a1b2c3d4e5f6" {
		t.Errorf("ID = %q", r.ID)
	}
	if r.UserID != "u-1" || r.SequenceNumber == nil || *r.SequenceNumber != 7 {
		t.Errorf("unexpected user/sequence: %q/%v", r.UserID, r.SequenceNumber)
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected createdAt to be parsed")
	}
}

func TestParseExportEmptyArray(t *testing.T) {
	t.Parallel()

	records, err := ParseExport([]byte(" [] "))
	if err != nil {
		t.Fatalf("ParseExport() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestParseExportRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty body", "", "empty export"},
		{"not json", "hello", "array or object"},
		{"object without data", `{"records": []}`, `no "data" array`},
		{"missing accessDay", `[{` + idFields + `, "accessDay": "2024-01-10T11:05:00Z"}, {` + idFields + `}]`, "record 1: missing accessDay"},
		{"null accessDay", `[{` + idFields + `, "accessDay": null}]`, "record 0: missing accessDay"},
		{"malformed date", `[{"accessDay": {"$date": "yesterday"}}]`, "record 0"},
		{"bad numberLong", `[{"accessDay": {"$date": {"$numberLong": "abc"}}}]`, "record 0"},
		{"date without $date", `[{"accessDay": {}}]`, "missing $date"},
		{"truncated array", `[{"accessDay": "2024-01-10T11:05:00Z"}`, "decode export array"},
		{"accessDay only", `[{"accessDay": {"$date": "2024-01-10T11:05:00Z"}}]`, "record 0: _id is required"},
		{"missing _id", `[{"userId": "u-1", "sequenceNumber": 7, "accessDay": "2024-01-10T11:05:00Z"}]`, "record 0: _id is required"},
		{"empty _id", `[{"_id": {"$oid": ""}, "userId": "u-1", "sequenceNumber": 7, "accessDay": "2024-01-10T11:05:00Z"}]`, "_id is required"},
		{"missing userId", `[{"_id": "a1", "sequenceNumber": 7, "accessDay": "2024-01-10T11:05:00Z"}]`, "record 0: userId is required"},
		{"missing sequenceNumber", `[{"_id": "a1", "userId": "u-1", "accessDay": "2024-01-10T11:05:00Z"}]`, "record 0: sequenceNumber is required"},
		{"null sequenceNumber", `[{"_id": "a1", "userId": "u-1", "sequenceNumber": null, "accessDay": "2024-01-10T11:05:00Z"}]`, "sequenceNumber is required"},
		{"second record missing userId", "[" + sampleRecord + `, {"_id": "a2", "sequenceNumber": 8, "accessDay": "2024-01-10T11:06:00Z"}]`, "record 1: userId is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records, err := ParseExport([]byte(tt.input))
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if records != nil {
				t.Errorf("expected no records on failure, got %d", len(records))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestReadExportEnforcesLimit(t *testing.T) {
	t.Parallel()

	body := `[{` + idFields + `, "accessDay": "2024-01-10T11:05:00Z"}]`

	if _, err := ReadExport(strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("body at the limit should parse: %v", err)
	}
	_, err := ReadExport(strings.NewReader(body), int64(len(body)-1))
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized body, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("unexpected error: %v", err)
	}
}
