package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/epd-student-api/internal/models"
)

var (
	separatorRegex     = regexp.MustCompile(`[;,]`)
	dateRegex          = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2}`)
	phoneRegex         = regexp.MustCompile(`\d{9,10}`)
	percentRegex       = regexp.MustCompile(`\d{1,3}`)
	removeFromNotes    = regexp.MustCompile(`[()%]`)
	examResultRegex    = regexp.MustCompile(`P|F`)
	columnResultRegex  = regexp.MustCompile(`P|F|WD`)
	insideParenRegex   = regexp.MustCompile(`\(([^)]+)\)`)
	phoneStripReplacer = strings.NewReplacer(" ", "", `"`, "")
)

// dateLayouts are tried in order; output always uses displayDateLayout.
var dateLayouts = []string{"1/2/2006", "1/2/06"}

const displayDateLayout = "1/2/2006"

func splitAndTrim(value string, sep *regexp.Regexp) []string {
	if sep == nil {
		sep = separatorRegex
	}
	parts := sep.Split(value, -1)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// parseDate reads the last separator-delimited fragment of value as a date.
func parseDate(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	parts := splitAndTrim(value, nil)
	candidate := parts[len(parts)-1]
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format(displayDateLayout), true
		}
	}
	return "", false
}

// isOne mirrors checkbox columns where "1" means true.
func isOne(value string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && n == 1
}

func isTruthy(value string) bool {
	return value != ""
}

func parseNumber(value string) (int64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func parseDecimal(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func extractPhone(value string) (int64, bool) {
	match := phoneRegex.FindString(phoneStripReplacer.Replace(value))
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// extractPercentage returns the first run of one to three digits. It is a
// best-effort read: digits inside free-text notes are picked up as well.
func extractPercentage(value string) (int, bool) {
	match := percentRegex.FindString(value)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	return n, err == nil
}

func replaceFirst(re *regexp.Regexp, value string) string {
	loc := re.FindStringIndex(value)
	if loc == nil {
		return value
	}
	return value[:loc[0]] + value[loc[1]:]
}

// gradeNotes strips the percentage and punctuation leaving free-form notes.
func gradeNotes(value string, stripResult bool) string {
	notes := replaceFirst(percentRegex, value)
	notes = removeFromNotes.ReplaceAllString(notes, "")
	if stripResult {
		notes = replaceFirst(examResultRegex, notes)
	}
	return strings.TrimSpace(notes)
}

// parseCorrespondence pairs every date in value with the note fragment that
// follows it. Dates and notes are zipped positionally and the longer list is
// truncated, so notes written before the first date shift the pairing.
func parseCorrespondence(value string) []models.Correspondence {
	dates := dateRegex.FindAllString(value, -1)
	fragments := splitAndTrim(strings.ReplaceAll(value, ":", ""), dateRegex)
	notes := fragments[:0]
	for _, fragment := range fragments {
		if fragment == "" || fragment == "/" {
			continue
		}
		notes = append(notes, fragment)
	}

	n := len(dates)
	if len(notes) < n {
		n = len(notes)
	}
	entries := make([]models.Correspondence, 0, n)
	for i := 0; i < n; i++ {
		date, ok := parseDate(dates[i])
		if !ok {
			continue
		}
		entries = append(entries, models.Correspondence{Date: date, Notes: notes[i]})
	}
	return entries
}
