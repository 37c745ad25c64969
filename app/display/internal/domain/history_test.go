package domain

import (
	"testing"
	"time"
)

func TestHistoryEntry_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		createdAt string
		want      bool
	}{
		{"recent", "2024-05-30 08:00", false},
		{"old", "2024-02-01 08:00", true},
		{"with seconds", "2024-02-01 08:00:00", true},
		{"rfc3339", "2024-05-01T08:00:00Z", false},
		{"date only", "2023-12-31", true},
		{"unparsable is kept", "dün", false},
		{"empty is kept", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &HistoryEntry{CreatedAt: tt.createdAt}
			if got := e.Expired(now, DefaultRetention); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryEntry_Summary(t *testing.T) {
	e := &HistoryEntry{ID: "pdf_1", Title: "Ali", CreatedAt: "2024-01-01 10:00", Type: "pdf", Template: "report.html"}
	s := e.Summary()
	if s.ID != "pdf_1" || s.Title != "Ali" || s.Type != "pdf" || s.CreatedAt != "2024-01-01 10:00" {
		t.Errorf("Summary() = %+v", s)
	}
}
