package cli

import (
	"testing"
	"time"
)

func TestParseItem(t *testing.T) {
	item, err := parseItem("Logo design; 2 ;150.5;hour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Description != "Logo design" || item.Quantity != 2 || item.UnitPrice != 150.5 || item.Unit != "hour" {
		t.Errorf("unexpected item %+v", item)
	}

	for _, bad := range []string{"just text", "a;b;1", "a;1;x", "a;1;2;u;extra"} {
		if _, err := parseItem(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.February || d.Day() != 29 {
		t.Errorf("unexpected date %v", d)
	}

	today, _ := parseDate("today")
	yesterday, _ := parseDate("yesterday")
	if !yesterday.Before(today) || today.Hour() != 0 {
		t.Errorf("expected yesterday before today at midnight, got %v and %v", yesterday, today)
	}

	if _, err := parseDate("29/02/2024"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncate("a very long description", 10); got != "a very ..." {
		t.Errorf("unexpected truncation %q", got)
	}
}
