// Package dateutils provides common date operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutUS       = "01/02/2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonFormats is a list of standard formats to try when parsing dates
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutUS,
	DateLayoutFull,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

var spacePattern = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using multiple common formats.
// Dates before 1900 are rejected as implausible bank-export values.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)

	for _, format := range CommonFormats {
		t, err := time.Parse(format, dateStr)
		if err != nil {
			continue
		}
		if t.Year() <= 1900 {
			return time.Time{}, fmt.Errorf("implausible date: %s", dateStr)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return spacePattern.ReplaceAllString(dateStr, " ")
}
