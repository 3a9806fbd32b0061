package backend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestItemDisplayFallbacks(t *testing.T) {
	item := Item{Color: "Black", Brand: "Acme", ItemType: "Backpack"}
	if got := item.DisplayName(); got != "Black Acme Backpack" {
		t.Fatalf("DisplayName = %q, want composed name", got)
	}
	if got := (Item{}).DisplayName(); got != "Unnamed Item" {
		t.Fatalf("DisplayName = %q, want Unnamed Item", got)
	}
	if got := (Item{ItemType: "Phone"}).DisplayCategory(); got != "Phone" {
		t.Fatalf("DisplayCategory = %q, want Phone", got)
	}
	if got := (Item{}).DisplayCategory(); got != "General" {
		t.Fatalf("DisplayCategory = %q, want General", got)
	}
	if got := (Item{Location: "Gate 4"}).DisplayLocation(); got != "Gate 4" {
		t.Fatalf("DisplayLocation = %q, want Gate 4", got)
	}
	if got := (Item{}).DisplayLocation(); got != "Unknown" {
		t.Fatalf("DisplayLocation = %q, want Unknown", got)
	}
}

func TestUserAndCustomerHelpers(t *testing.T) {
	if got := (User{Email: "a@b.c"}).DisplayName(); got != "a@b.c" {
		t.Fatalf("DisplayName = %q, want email", got)
	}
	if !(User{RoleID: RoleAdmin}).IsAdmin() || (User{RoleID: RoleStaff}).IsAdmin() {
		t.Fatal("IsAdmin mismatch")
	}
	if !(Customer{Status: " Active "}).IsActive() {
		t.Fatal("IsActive should ignore case and spaces")
	}
	if (Customer{Status: "inactive"}).IsActive() {
		t.Fatal("inactive customer reported active")
	}
	if got := (StaffMember{FirstName: "Ada", LastName: ""}).FullName(); got != "Ada" {
		t.Fatalf("FullName = %q, want Ada", got)
	}
}

func TestParseTimeLayouts(t *testing.T) {
	if ParseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := ParseTime("2025-12-13T10:11:12.123456")
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !ParseTime("yesterday").IsZero() {
		t.Fatalf("parseTime should return zero for junk")
	}
}

func TestFlexDecoding(t *testing.T) {
	var payload struct {
		A FlexFloat  `json:"a"`
		B FlexFloat  `json:"b"`
		C FlexFloat  `json:"c"`
		D FlexString `json:"d"`
		E FlexString `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"a":0.5,"b":"0.91","c":null,"d":72.5,"e":"High"}`), &payload); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if payload.A != 0.5 || payload.B != 0.91 || payload.C != 0 {
		t.Fatalf("floats = %v %v %v", payload.A, payload.B, payload.C)
	}
	if payload.D != "72.5" || payload.E != "High" {
		t.Fatalf("strings = %q %q", payload.D, payload.E)
	}

	var bad FlexFloat
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}
