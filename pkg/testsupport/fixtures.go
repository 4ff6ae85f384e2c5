package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-invoicedoc/pkg/document"
)

// FixedTime is the clock value tests pin renders to.
var FixedTime = time.Date(2024, time.October, 15, 9, 30, 0, 0, time.UTC)

// FixedClock returns FixedTime.
func FixedClock() time.Time {
	return FixedTime
}

// LoadRecord reads a JSON or YAML record fixture.
func LoadRecord(t *testing.T, path string) document.Record {
	t.Helper()

	record, err := LoadRecordFromPath(path)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	return record
}

// LoadRecordFromPath returns a Record without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadRecordFromPath(path string) (document.Record, error) {
	if path == "" {
		return document.Record{}, errors.New("testsupport: record path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Record{}, fmt.Errorf("testsupport: read record: %w", err)
	}
	record, err := document.Decode(data, path)
	if err != nil {
		return document.Record{}, fmt.Errorf("testsupport: decode record: %w", err)
	}
	return record, nil
}

// MustLoadRecords reads a fixture holding a list of records.
func MustLoadRecords(t *testing.T, path string) []document.Record {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	records, err := document.DecodeAll(data, path)
	if err != nil {
		t.Fatalf("decode records: %v", err)
	}
	return records
}

// SampleInvoice is the INV-003 record used across package tests.
func SampleInvoice() document.Record {
	return document.Record{
		Number:     "INV-003",
		ClientName: "Design Co",
		Items: []document.LineItem{
			{Description: "Mobile App Dev", Quantity: 1, Rate: 3200},
		},
		Amount:    3200,
		DueDate:   "2024-11-05",
		Status:    "sent",
		CreatedAt: "2024-10-10",
	}
}

// SampleQuote mirrors SampleInvoice with an expiry date and two items.
func SampleQuote() document.Record {
	return document.Record{
		Number:     "QT-001",
		ClientName: "Acme Corp",
		Items: []document.LineItem{
			{Description: "Full Stack Dev", Quantity: 2, Rate: 6000},
			{Description: "UI Design", Quantity: 1, Rate: 3500},
		},
		Amount:     15500,
		ExpiryDate: "2024-11-30",
		Status:     "draft",
		CreatedAt:  "2024-10-15",
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
