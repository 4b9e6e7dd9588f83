package generator

import (
	"encoding/json"
	"errors"
	"strings"
)

// StripFence removes a leading ``` or ```json fence and a trailing ``` fence,
// then trims surrounding whitespace. Unfenced text is only trimmed.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop the info string (json, JSON, markdown...) up to the first newline
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			info := strings.TrimSpace(text[:nl])
			if info == "" || !strings.ContainsAny(info, "{[") {
				text = text[nl+1:]
			}
		} else {
			text = strings.TrimPrefix(strings.TrimPrefix(text, "json"), "JSON")
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// DecodeDocument strips fencing and decodes the remaining text as JSON into an
// untyped tree. Any syntax problem is reported as a *DecodeError.
func DecodeDocument(raw string) (any, error) {
	cleaned := StripFence(raw)
	if cleaned == "" {
		return nil, &DecodeError{Err: errors.New("empty response")}
	}
	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return doc, nil
}

// ParsePlan runs the post-processing pipeline on raw generator output:
// fence stripping, JSON decoding and plan validation.
func ParsePlan(raw string) (Plan, error) {
	doc, err := DecodeDocument(raw)
	if err != nil {
		return Plan{}, err
	}
	return Validate(doc)
}
