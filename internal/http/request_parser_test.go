package http

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gestor/internal/core"
)

func TestParsePeriodParams(t *testing.T) {
	tests := []struct {
		name       string
		rawQuery   string
		wantPeriod core.Period
		wantSearch string
	}{
		{"default", "", core.PeriodThisMonth, ""},
		{"explicit last month", "period=last_month", core.PeriodLastMonth, ""},
		{"this year", "period=this_year", core.PeriodThisYear, ""},
		{"unknown selector falls back", "period=whatever", core.PeriodThisMonth, ""},
		{"search term trimmed", "q=++camiseta++", core.PeriodThisMonth, "camiseta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.rawQuery)
			if err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			got := ParsePeriodParams(query)
			if got.Period != tt.wantPeriod {
				t.Errorf("Period = %q, want %q", got.Period, tt.wantPeriod)
			}
			if got.Search != tt.wantSearch {
				t.Errorf("Search = %q, want %q", got.Search, tt.wantSearch)
			}
		})
	}
}

func TestParsePeriodParamsCustomBounds(t *testing.T) {
	query, _ := url.ParseQuery("period=custom&start=2026-02-01&end=2026-02-15")
	params := ParsePeriodParams(query)

	rng := params.Resolve(time.Now())
	if got := rng.Start.Format("2006-01-02"); got != "2026-02-01" {
		t.Errorf("start = %s", got)
	}
	if got := rng.End.Format("2006-01-02"); got != "2026-02-15" {
		t.Errorf("end = %s", got)
	}
}

func TestParsePeriodParamsDropsMalformedBounds(t *testing.T) {
	query, _ := url.ParseQuery("period=custom&start=garbage&end=2026-02-30")
	params := ParsePeriodParams(query)
	if !params.Start.IsZero() {
		t.Errorf("malformed start must stay open, got %v", params.Start)
	}
	if !params.End.IsZero() {
		t.Errorf("impossible end must stay open, got %v", params.End)
	}
}

func TestCacheKeyIgnoresSearch(t *testing.T) {
	a, _ := url.ParseQuery("period=last_month&q=linha")
	b, _ := url.ParseQuery("period=last_month&q=tecido")
	if ParsePeriodParams(a).CacheKey() != ParsePeriodParams(b).CacheKey() {
		t.Error("search term must not split the summary cache")
	}
}

func TestCacheKeyDistinguishesOneSidedBounds(t *testing.T) {
	a, _ := url.ParseQuery("period=custom&start=2026-06-01")
	b, _ := url.ParseQuery("period=custom&end=2026-06-01")
	ka := ParsePeriodParams(a).CacheKey()
	kb := ParsePeriodParams(b).CacheKey()
	if ka == kb {
		t.Errorf("start-only and end-only ranges share cache key %q", ka)
	}
}

func TestRequestBodyParserForm(t *testing.T) {
	req := httptest.NewRequest("POST", "/transactions",
		strings.NewReader("description=Linha&amount=10,50"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.IsJSON() {
		t.Error("form body must not be detected as JSON")
	}
	if got := p.Get("description"); got != "Linha" {
		t.Errorf("Get(description) = %q", got)
	}
	if got := p.Get("amount"); got != "10,50" {
		t.Errorf("Get(amount) = %q", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}
}

func TestRequestBodyParserJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/transactions",
		strings.NewReader(`{"description":"Linha","amount":1050}`))
	req.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !p.IsJSON() {
		t.Error("JSON body not detected")
	}
	if got := p.Get("description"); got != "Linha" {
		t.Errorf("Get(description) = %q", got)
	}
	if got := p.Get("amount"); got != "1050" {
		t.Errorf("Get(amount) = %q", got)
	}
}

func TestRequestBodyParserMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(`{"broken`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Error("malformed JSON must fail to parse")
	}
}

func TestSanitizeInputStripsControlChars(t *testing.T) {
	got := sanitizeInput("  abc\x00def\x07  ")
	if got != "abcdef" {
		t.Errorf("sanitizeInput = %q", got)
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{1250, "R$ 12,50"},
		{100000, "R$ 1000,00"},
		{-4990, "-R$ 49,90"},
	}
	for _, tt := range tests {
		if got := formatBRL(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatBRL(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
