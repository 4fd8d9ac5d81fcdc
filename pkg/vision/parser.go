package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pricewatch/pkg/domain"
)

// ParseError indicates the model produced output that yields no usable
// observation even after repair. The raw payload is kept for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse model response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// rawObservation accepts the loose typing models actually produce: numbers
// as strings, booleans as strings, confidences as either
type rawObservation struct {
	Price             json.RawMessage `json:"price"`
	InStock           json.RawMessage `json:"in_stock"`
	PriceConfidence   json.RawMessage `json:"price_confidence"`
	InStockConfidence json.RawMessage `json:"in_stock_confidence"`
}

// ParseResponse turns model output into a validated observation. It strips
// markdown fences, decodes strictly, and on failure optionally applies a
// structural repair pass (balancing quotes and braces, dropping trailing
// garbage). Returns whether repair was needed. A response where every field
// is unusable yields a ParseError.
func ParseResponse(content string, enableRepair bool) (*domain.Observation, bool, error) {
	cleaned := stripFences(content)

	var raw rawObservation
	repaired := false
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		if !enableRepair {
			return nil, false, &ParseError{Raw: content, Err: err}
		}
		fixed := repairJSON(cleaned)
		if err2 := json.Unmarshal([]byte(fixed), &raw); err2 != nil {
			return nil, false, &ParseError{Raw: content, Err: err}
		}
		lgr.Printf("[WARN] model response needed structural repair")
		repaired = true
	}

	obs := &domain.Observation{
		Price:             parsePrice(raw.Price),
		InStock:           parseStock(raw.InStock),
		PriceConfidence:   parseConfidence(raw.PriceConfidence),
		InStockConfidence: parseConfidence(raw.InStockConfidence),
	}

	if obs.Price == nil && obs.InStock == nil {
		return nil, repaired, &ParseError{Raw: content, Err: fmt.Errorf("no usable fields in response")}
	}
	return obs, repaired, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripFences removes markdown code fences and isolates the JSON object
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := fenceRe.FindStringSubmatch(content); len(m) > 1 {
		content = strings.TrimSpace(m[1])
	}
	// some models prepend prose before the object
	if idx := strings.Index(content, "{"); idx > 0 {
		content = content[idx:]
	}
	return content
}

// repairJSON applies a conservative structural fix to truncated output:
// closes an unterminated string, drops a dangling partial field, and
// balances braces. It never invents field values.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '{' {
		return s
	}

	// count quotes outside escapes, close an open string
	inString := false
	escaped := false
	depth := 0
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && r == '{':
			depth++
		case !inString && r == '}':
			depth--
		}
	}
	if inString {
		s += `"`
	}

	// drop a trailing partial field like `, "in_sto` or a dangling comma/colon
	s = strings.TrimRight(s, " \t\n")
	for _, suffix := range []string{",", ":"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimRight(s[:len(s)-1], " \t\n")
		}
	}
	if idx := strings.LastIndexAny(s, ",{"); idx >= 0 {
		tail := strings.TrimSpace(s[idx+1:])
		if tail != "" && !strings.Contains(tail, ":") && s[idx] == ',' {
			s = s[:idx]
		}
	}

	for i := 0; i < depth; i++ {
		s += "}"
	}
	return s
}

var priceCleanRe = regexp.MustCompile(`[^\d.,\-]`)

// parsePrice accepts a number or a price string with currency decorations
// ("$1,299.99", "EUR 49,90"). Unparseable or negative values become nil.
func parsePrice(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return validPrice(num)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = priceCleanRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// "1.299,99" style: comma is the decimal separator when it comes last
	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return validPrice(num)
}

func validPrice(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

// parseStock accepts booleans and the common textual spellings. Anything
// ambiguous stays nil, unknown is a valid stock state.
func parseStock(raw json.RawMessage) *bool {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "in stock", "in_stock", "available", "1":
		v := true
		return &v
	case "false", "no", "out of stock", "out_of_stock", "unavailable", "sold out", "0":
		v := false
		return &v
	}
	return nil
}

// parseConfidence accepts a number or numeric string and clamps it to [0, 1]
func parseConfidence(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil
		}
		parsed, err3 := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err3 != nil {
			return nil
		}
		num = parsed
	}

	if num < 0 {
		num = 0
	}
	if num > 1 {
		num = 1
	}
	return &num
}
