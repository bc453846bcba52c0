// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package accessimport

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/validation"
)

// AccessRecord is one access event of an export file. An event must carry
// its id, user, sequence number and accessDay; only accessDay feeds the
// aggregation. SequenceNumber is a pointer so that 0 counts as present.
type AccessRecord struct {
	ID             ObjectID  `json:"_id" validate:"required"`
	UserID         string    `json:"userId" validate:"required"`
	SequenceNumber *int64    `json:"sequenceNumber" validate:"required"`
	AccessDay      Timestamp `json:"accessDay"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
	Version        int       `json:"__v"`
}

// checkRecord reports the first missing required field of r.
func checkRecord(r *AccessRecord) error {
	if r.AccessDay.IsZero() {
		return errors.New("missing accessDay")
	}
	if errs := validation.ValidateStruct(r); errs != nil {
		return errs
	}
	return nil
}

// ObjectID accepts {"$oid": "..."} or a bare string.
type ObjectID string

// UnmarshalJSON implements json.Unmarshaler.
func (o *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = ObjectID(s)
		return nil
	}
	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("object id: %w", err)
	}
	*o = ObjectID(wrapped.OID)
	return nil
}

// Timestamp is an absolute instant in any of the export encodings:
//
//	{"$date": "2024-01-10T11:05:00.000Z"}
//	{"$date": {"$numberLong": "1704884700000"}}
//	"2024-01-10T11:05:00.000Z"
//
// A missing or null value leaves the zero Time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return ts.parseString(s)
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if len(wrapped.Date) == 0 {
		return fmt.Errorf("timestamp: missing $date")
	}

	inner := bytes.TrimSpace(wrapped.Date)
	if len(inner) > 0 && inner[0] == '"' {
		var s string
		if err := json.Unmarshal(inner, &s); err != nil {
			return err
		}
		return ts.parseString(s)
	}

	var long struct {
		NumberLong string `json:"$numberLong"`
	}
	if err := json.Unmarshal(inner, &long); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	ms, err := strconv.ParseInt(long.NumberLong, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp: $numberLong %q: %w", long.NumberLong, err)
	}
	ts.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (ts *Timestamp) parseString(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	ts.Time = t.UTC()
	return nil
}

// Batch is a parsed export plus the source it came from.
type Batch struct {
	Source  string
	Records []AccessRecord
}
