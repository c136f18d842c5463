package database

import (
	"testing"
	"time"
)

func TestStoredAttendanceBefore(t *testing.T) {
	base := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b StoredAttendance
		want bool
	}{
		{"earlier timestamp", StoredAttendance{ID: 9, CreatedAt: base}, StoredAttendance{ID: 1, CreatedAt: base.Add(time.Second)}, true},
		{"later timestamp", StoredAttendance{ID: 1, CreatedAt: base.Add(time.Second)}, StoredAttendance{ID: 9, CreatedAt: base}, false},
		{"tie broken by lower id", StoredAttendance{ID: 1, CreatedAt: base}, StoredAttendance{ID: 2, CreatedAt: base}, true},
		{"tie with higher id", StoredAttendance{ID: 2, CreatedAt: base}, StoredAttendance{ID: 1, CreatedAt: base}, false},
		{"same row", StoredAttendance{ID: 3, CreatedAt: base}, StoredAttendance{ID: 3, CreatedAt: base}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Before(tc.b); got != tc.want {
				t.Errorf("Before() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, s := range []AttendanceStatus{StatusPresent, StatusAbsent} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []AttendanceStatus{"", "present", "LATE"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
