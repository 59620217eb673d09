// Package http serves the dashboard UI and the JSON API.
//
// This file implements utilities for parsing and validating request data:
// period selection, body decoding (JSON or form, both sent by the HTMX
// front end) and method guards.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gestor/internal/core"
)

// PeriodParams holds the parsed dashboard filter: a period selector with
// optional custom bounds, plus a free search term.
type PeriodParams struct {
	Period core.Period
	Start  core.Date
	End    core.Date
	Search string
}

// ParsePeriodParams extracts period/start/end/q from query parameters.
// Malformed custom bounds are dropped, leaving that side open.
func ParsePeriodParams(query url.Values) PeriodParams {
	p := PeriodParams{
		Period: core.ParsePeriod(strings.TrimSpace(query.Get("period"))),
		Search: sanitizeInput(query.Get("q")),
	}
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		if d, err := parseDate(v); err == nil {
			p.Start = d
		}
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		if d, err := parseDate(v); err == nil {
			p.End = d
		}
	}
	return p
}

// Resolve converts the params into a concrete date range.
func (p PeriodParams) Resolve(now time.Time) core.DateRange {
	return p.Period.Resolve(now, p.Start, p.End)
}

// CacheKey identifies the resolved filter for summary caching. The search
// term is excluded: it never changes aggregate numbers.
func (p PeriodParams) CacheKey() string {
	rng := p.Resolve(time.Now())
	key := string(p.Period)
	if !rng.Start.IsZero() {
		key += "|s:" + rng.Start.Format("2006-01-02")
	}
	if !rng.End.IsZero() {
		key += "|e:" + rng.End.Format("2006-01-02")
	}
	return key
}

// RequestBodyParser handles different content types for request body
// parsing. It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks the request method against the allowed set,
// returning an error response builder on mismatch.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience guard for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
