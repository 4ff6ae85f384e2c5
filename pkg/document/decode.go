package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type recordHeader struct {
	Number     string  `json:"number" yaml:"number"`
	ClientName string  `json:"clientName" yaml:"clientName"`
	Amount     float64 `json:"amount" yaml:"amount"`
	DueDate    string  `json:"dueDate" yaml:"dueDate"`
	ExpiryDate string  `json:"expiryDate" yaml:"expiryDate"`
	Status     string  `json:"status" yaml:"status"`
	CreatedAt  string  `json:"createdAt" yaml:"createdAt"`
	Template   string  `json:"template" yaml:"template"`
}

type jsonRecord struct {
	recordHeader
	Items json.RawMessage `json:"items"`
}

type yamlRecord struct {
	recordHeader `yaml:",inline"`
	Items        yaml.Node `yaml:"items"`
}

// Decode parses a JSON or YAML record. JSON is attempted first so that
// payloads from the browser keep precise error messages; anything that is not
// valid JSON is handed to the YAML decoder. The source is only used in errors.
func Decode(data []byte, source string) (Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, fmt.Errorf("document: %s is empty: %w", sourceName(source), ErrInvalidRecord)
	}
	if json.Valid(data) {
		return decodeJSON(data, source)
	}
	return decodeYAML(data, source)
}

// DecodeAll parses a JSON array or YAML sequence of records. The first
// malformed record fails the whole call; use DecodeEach to keep the others.
func DecodeAll(data []byte, source string) ([]Record, error) {
	records, errs, err := DecodeEach(data, source)
	if err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// DecodeEach parses a JSON array or YAML sequence record by record. errs has
// one slot per record; a failed record keeps whatever number could be read
// from it. err is only set when data is not a list at all.
func DecodeEach(data []byte, source string) (records []Record, errs []error, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("document: %s is empty: %w", sourceName(source), ErrInvalidRecord)
	}

	if json.Valid(data) {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, nil, fmt.Errorf("document: parse %s: expected an array: %w", sourceName(source), err)
		}
		records = make([]Record, len(raws))
		errs = make([]error, len(raws))
		for i, raw := range raws {
			records[i], errs[i] = decodeJSON(raw, fmt.Sprintf("%s[%d]", sourceName(source), i))
			if errs[i] != nil {
				var header recordHeader
				_ = json.Unmarshal(raw, &header)
				records[i] = Record{Number: header.Number}
			}
		}
		return records, errs, nil
	}

	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, nil, fmt.Errorf("document: parse %s: invalid JSON or YAML: %w", sourceName(source), err)
	}
	records = make([]Record, len(nodes))
	errs = make([]error, len(nodes))
	for i := range nodes {
		records[i], errs[i] = decodeYAMLNode(&nodes[i], fmt.Sprintf("%s[%d]", sourceName(source), i))
		if errs[i] != nil {
			var header recordHeader
			_ = nodes[i].Decode(&header)
			records[i] = Record{Number: header.Number}
		}
	}
	return records, errs, nil
}

func decodeYAMLNode(node *yaml.Node, source string) (Record, error) {
	var raw yamlRecord
	if err := node.Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("document: parse %s: %w", source, err)
	}
	return fromYAML(raw)
}

func decodeJSON(data []byte, source string) (Record, error) {
	var raw jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("document: parse %s: %w", sourceName(source), err)
	}

	record := fromHeader(raw.recordHeader)
	trimmed := bytes.TrimSpace(raw.Items)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return Record{}, &FieldError{Field: "items", Err: ErrMissingField}
	case trimmed[0] != '[':
		return Record{}, &FieldError{Field: "items", Err: fmt.Errorf("%w: expected an array", ErrMalformedField)}
	}

	var items []LineItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Record{}, &FieldError{Field: "items", Err: fmt.Errorf("%w: %v", ErrMalformedField, err)}
	}
	record.Items = nonNil(items)
	return record, nil
}

func decodeYAML(data []byte, source string) (Record, error) {
	var raw yamlRecord
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("document: parse %s: invalid JSON or YAML: %w", sourceName(source), err)
	}
	return fromYAML(raw)
}

func fromYAML(raw yamlRecord) (Record, error) {
	record := fromHeader(raw.recordHeader)
	node := raw.Items
	switch {
	case node.Kind == 0:
		return Record{}, &FieldError{Field: "items", Err: ErrMissingField}
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return Record{}, &FieldError{Field: "items", Err: ErrMissingField}
	case node.Kind != yaml.SequenceNode:
		return Record{}, &FieldError{Field: "items", Err: fmt.Errorf("%w: expected a sequence", ErrMalformedField)}
	}

	var items []LineItem
	if err := node.Decode(&items); err != nil {
		return Record{}, &FieldError{Field: "items", Err: fmt.Errorf("%w: %v", ErrMalformedField, err)}
	}
	record.Items = nonNil(items)
	return record, nil
}

func fromHeader(h recordHeader) Record {
	return Record{
		Number:     h.Number,
		ClientName: h.ClientName,
		Amount:     h.Amount,
		DueDate:    h.DueDate,
		ExpiryDate: h.ExpiryDate,
		Status:     h.Status,
		CreatedAt:  h.CreatedAt,
		Template:   h.Template,
	}
}

func nonNil(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}

func sourceName(source string) string {
	if s := strings.TrimSpace(source); s != "" {
		return s
	}
	return "record"
}
