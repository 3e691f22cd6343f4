package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    records.Filters
		wantErr bool
	}{
		{
			name:  "empty query filters nothing",
			query: url.Values{},
			want:  records.Filters{},
		},
		{
			name: "all values provided",
			query: url.Values{
				"period": {"week"}, "category": {"cat_food"}, "type": {"expense"},
				"search": {" lunch "}, "sortBy": {"amount"}, "sortOrder": {"DESC"}, "limit": {"5"},
			},
			want: records.Filters{
				DateRange: core.PeriodWeek, Category: "cat_food", Type: core.Expense,
				Search: "lunch", SortBy: "amount", SortOrder: records.SortDesc, Limit: 5,
			},
		},
		{
			name:    "invalid type",
			query:   url.Values{"type": {"gift"}},
			wantErr: true,
		},
		{
			name:    "invalid sort order",
			query:   url.Values{"sortOrder": {"sideways"}},
			wantErr: true,
		},
		{
			name:    "negative limit",
			query:   url.Values{"limit": {"-1"}},
			wantErr: true,
		},
		{
			name:    "non numeric limit",
			query:   url.Values{"limit": {"ten"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bad := ParseFilters(tt.query)
			if tt.wantErr {
				if bad == nil {
					t.Fatal("expected an error response")
				}
				if bad.statusCode != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", bad.statusCode)
				}
				return
			}
			if bad != nil {
				t.Fatalf("unexpected error response: %+v", bad.body)
			}
			if got != tt.want {
				t.Errorf("ParseFilters() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	if got := ParsePeriod(url.Values{}); got != core.PeriodMonth {
		t.Errorf("default period = %q, want month", got)
	}
	if got := ParsePeriod(url.Values{"period": {"year"}}); got != core.PeriodYear {
		t.Errorf("period = %q, want year", got)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"", defaultTrendDays, false},
		{"7", 7, false},
		{"366", 366, false},
		{"0", 0, true},
		{"367", 0, true},
		{"week", 0, true},
	}

	for _, tt := range tests {
		got, bad := ParseDays(url.Values{"days": {tt.value}})
		if (bad != nil) != tt.wantErr {
			t.Errorf("ParseDays(%q) error = %v, wantErr %v", tt.value, bad != nil, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDays(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]string{
		"":     records.FormatJSON,
		"JSON": records.FormatJSON,
		"yaml": records.FormatYAML,
		"yml":  records.FormatYAML,
	}
	for in, want := range tests {
		got, bad := ParseFormat(url.Values{"format": {in}})
		if bad != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, bad != nil, want)
		}
	}
	if _, bad := ParseFormat(url.Values{"format": {"csv"}}); bad == nil {
		t.Error("ParseFormat(csv) should fail")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"x"}`, 0},
		{"empty body", ``, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
		{"unknown field", `{"nom":"x"}`, http.StatusBadRequest},
		{"two documents", `{"name":"x"} {"name":"y"}`, http.StatusBadRequest},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var p payload
			bad := DecodeJSON(w, req, &p)
			if tt.wantStatus == 0 {
				if bad != nil {
					t.Fatalf("unexpected error response: %+v", bad.body)
				}
				if p.Name != "x" {
					t.Errorf("Name = %q, want x", p.Name)
				}
				return
			}
			if bad == nil {
				t.Fatal("expected an error response")
			}
			if bad.statusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", bad.statusCode, tt.wantStatus)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
