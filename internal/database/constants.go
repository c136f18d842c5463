package database

// AttendanceStatus is the attendance outcome stored with a row.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// PPEStatus records how the attendance status was reached.
type PPEStatus string

const (
	PPEPassed         PPEStatus = "PASSED"
	PPEFailed         PPEStatus = "FAILED"
	PPEManualVerified PPEStatus = "MANUAL_VERIFIED"
	PPEAdminOverride  PPEStatus = "ADMIN_OVERRIDE"
)

// DateLayout is the layout of StoredAttendance.Date.
const DateLayout = "2006-01-02"
