package domain

import (
	"strconv"
	"strings"
	"time"
)

// NoMaskValue is the discrete mask-state reported by the camera when no mask
// is detected on the subject.
const NoMaskValue = 2

// TemperatureRecord is one temperature capture at a device. Append-only;
// never updated by this service.
type TemperatureRecord struct {
	TemperatureRecordID int
	PersonUID           string
	PersonName          string
	DeviceID            string
	Temperature         float64
	Timestamp           time.Time
	ImagePath           string
	ImageBase64         string
	IC                  string
	Mobile              string
}

func (r TemperatureRecord) Subject() Subject {
	return SubjectOf(r.PersonUID, r.Mobile)
}

// MaskRecord mirrors TemperatureRecord with a mask-state value in place of
// the temperature reading.
type MaskRecord struct {
	MaskRecordID int
	PersonUID    string
	PersonName   string
	DeviceID     string
	MaskValue    int
	Timestamp    time.Time
	ImagePath    string
	ImageBase64  string
	IC           string
	Mobile       string
}

func (r MaskRecord) Subject() Subject {
	return SubjectOf(r.PersonUID, r.Mobile)
}

// TruncateSecond drops the sub-second part of a capture timestamp. Records
// carry millisecond precision but all cross-stream correlation happens at
// whole-second granularity.
func TruncateSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// DisplayTime renders a timestamp the way dashboards expect it, with any
// sub-second or timezone suffix stripped.
func DisplayTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp parses a caller-supplied timestamp string. Unlike the
// permissive parsing this service used to rely on, a failed parse is an
// error returned to the caller instead of a silent epoch default.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Field: "timestamp", Value: s}
}

// ParseID parses a numeric scope id (site/building/floor/gate).
func ParseID(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Field: field, Value: s}
	}
	return n, nil
}

// FormatTemperature renders a reading with at most one decimal place,
// matching the display convention of the capture devices ("36.7", "38").
func FormatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// ParseError reports a malformed caller-supplied value.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Field + ": " + strconv.Quote(e.Value)
}
