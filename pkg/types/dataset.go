package types

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// rawSample is a JSONL row before the gold answer is coerced to text
type rawSample struct {
	Completion string          `json:"completion"`
	Gold       json.RawMessage `json:"gold"`
	Answer     json.RawMessage `json:"answer"`
	Language   string          `json:"language"`
}

// CoerceText converts a reference answer of any JSON scalar type to text
func CoerceText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// CoerceRaw decodes a raw JSON value and coerces it to text
func CoerceRaw(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("failed to decode gold answer: %w", err)
	}
	return CoerceText(v), nil
}

// LoadJSONL reads one sample per line. The reference answer is read from
// "gold", falling back to "answer", and may be any JSON scalar.
func LoadJSONL(r io.Reader) (Batch, error) {
	var samples []Sample

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var row rawSample
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return Batch{}, fmt.Errorf("line %d: failed to parse JSON: %w", line, err)
		}

		goldRaw := row.Gold
		if len(goldRaw) == 0 {
			goldRaw = row.Answer
		}
		gold, err := CoerceRaw(goldRaw)
		if err != nil {
			return Batch{}, fmt.Errorf("line %d: %w", line, err)
		}

		samples = append(samples, Sample{
			Completion: row.Completion,
			Gold:       gold,
			Language:   row.Language,
		})
	}
	if err := scanner.Err(); err != nil {
		return Batch{}, fmt.Errorf("failed to read samples: %w", err)
	}

	return NewBatch(samples), nil
}
