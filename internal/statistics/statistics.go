// Package statistics derives the dashboard figures from a snapshot of the
// student and waiting-list collections. Compute is pure: the same snapshot
// always yields a deeply equal result.
package statistics

import (
	"math"
	"strconv"

	"github.com/noah-isme/epd-student-api/internal/models"
)

// UndefinedOutcome keys waiting-list entries without an outcome.
const UndefinedOutcome = "undefined"

// UnknownYear keys active students whose initial session is not a session label.
const UnknownYear = "unknown"

// Compute builds the statistics bundle.
func Compute(students []models.StudentRecord, waitingList []models.WaitingListEntry) models.Statistics {
	current := CurrentSession(students)
	sessions := SessionsWithoutSummer(students)

	stats := models.Statistics{
		CurrentSession: current,
		Sessions:       sessions,

		ActiveGenderCounts:           map[string]int{},
		ActiveInitialYearCounts:      map[string]int{},
		ActiveNationalityCounts:      map[models.Nationality]int{},
		ActiveSessionsAttendedCounts: map[string]int{},
		ActiveStatusCounts:           map[models.Status]int{},
		ActiveStatusDetailsCounts:    map[models.StatusDetail]int{},
		DroppedOutReasonCounts:       map[models.DroppedOutReason]int{},
		GenderCounts:                 map[string]int{},
		NationalityCounts:            map[models.Nationality]int{},
		PlacementLevelCounts:         map[models.LevelPlus]int{},
		SessionCounts:                map[string]int{},
		SessionsAttendedCounts:       map[string]int{},
		StatusCounts:                 map[models.Status]int{},
		WaitingListOutcomeCounts:     map[string]int{},
		OverallResultCountsByLevel:   seedResultsByLevel(),
	}

	activeLevels := map[models.GenderedLevel]int{}
	allLevels := map[models.GenderedLevel]int{}
	ageSum, ageCount := 0, 0

	for i := range students {
		student := &students[i]
		detail, attended := StatusDetails(student, sessions, current)
		attendedKey := strconv.Itoa(attended)

		stats.GenderCounts[student.Gender]++
		stats.NationalityCounts[student.Nationality]++
		stats.StatusCounts[student.Status.CurrentStatus]++
		stats.SessionsAttendedCounts[attendedKey]++
		stats.PlacementLevelCounts[student.Placement.OrigPlacementData.Level]++
		allLevels[student.CurrentLevel]++
		if student.InitialSession != "" {
			stats.SessionCounts[student.InitialSession]++
		}
		if student.Status.DroppedOutReason != "" {
			stats.DroppedOutReasonCounts[student.Status.DroppedOutReason]++
		}

		if isActive(student, current) {
			stats.TotalActive++
			stats.ActiveGenderCounts[student.Gender]++
			stats.ActiveInitialYearCounts[initialYear(student.InitialSession)]++
			stats.ActiveNationalityCounts[student.Nationality]++
			stats.ActiveStatusCounts[student.Status.CurrentStatus]++
			stats.ActiveStatusDetailsCounts[detail]++
			stats.ActiveSessionsAttendedCounts[attendedKey]++
			activeLevels[student.CurrentLevel]++
		}

		if student.Age.Known && student.Age.Years > 0 {
			ageSum += student.Age.Years
			ageCount++
		}
		if student.Status.InviteTag {
			stats.TotalEligible++
		}
		if student.Work.IsEnglishTeacher {
			stats.TotalEnglishTeachers++
		}
		if student.Work.IsTeacher {
			stats.TotalTeachers++
		}
		if student.Literacy.IlliterateAr {
			stats.TotalIlliterateArabic++
		}
		if student.Literacy.IlliterateEng {
			stats.TotalIlliterateEnglish++
		}
		if student.Status.NoContactList {
			stats.TotalNCL++
		}
		if student.Placement.Pending {
			stats.TotalPending++
		}
		if student.Status.CurrentStatus == models.StatusNew && len(student.AcademicRecords) == 0 {
			stats.TotalNewNextSession++
		}

		for _, record := range student.AcademicRecords {
			result := record.Result()
			if current != "" && record.Session == current && result == "" {
				stats.TotalEnrollment++
			}
			if result == "" {
				continue
			}
			stats.OverallResultCounts.Add(result)
			if counts, ok := stats.OverallResultCountsByLevel[record.Level]; ok {
				counts.Add(result)
				stats.OverallResultCountsByLevel[record.Level] = counts
			}
		}
	}

	for _, entry := range waitingList {
		outcome := entry.Outcome
		if outcome == "" {
			outcome = UndefinedOutcome
		}
		stats.WaitingListOutcomeCounts[outcome]++
	}

	stats.ActiveGenderedLevelCounts = activeLevels
	stats.ActiveLevelCounts = MergeLevels(activeLevels)
	stats.GenderedLevelCounts = allLevels
	stats.LevelCounts = MergeLevels(allLevels)
	stats.OverallResultCountsByMergedLevel = MergeResultsByLevel(stats.OverallResultCountsByLevel)
	stats.PlacementRegistrationCounts = PlacementRegistrations(students, sessions)
	stats.TotalRegistered = len(students)
	if ageCount > 0 {
		stats.AverageAge = float64(ageSum) / float64(ageCount)
	}
	return stats
}

func isActive(student *models.StudentRecord, current string) bool {
	return student.IsActive() && current != "" && student.AttendedSession(current)
}

func initialYear(label string) string {
	session, err := models.ParseSession(label)
	if err != nil {
		return UnknownYear
	}
	return strconv.Itoa(session.Year)
}

// MergeLevels folds gender-split levels into their base level. Every Level
// appears in the result, with zero when nothing was counted.
func MergeLevels(counts map[models.GenderedLevel]int) map[models.Level]int {
	merged := make(map[models.Level]int, len(models.Levels)+1)
	for _, level := range models.Levels {
		merged[level] = 0
	}
	merged[models.LevelL5Grad] = 0
	for level, n := range counts {
		merged[level.Base()] += n
	}
	return merged
}

func resultTableKeys() []models.GenderedLevel {
	keys := make([]models.GenderedLevel, 0, len(models.GenderedLevels)+1)
	keys = append(keys, models.GenderedLevels...)
	return append(keys, models.GenderedLevel(models.LevelL5Grad))
}

func seedResultsByLevel() map[models.GenderedLevel]models.ResultCounts {
	table := make(map[models.GenderedLevel]models.ResultCounts, len(models.GenderedLevels)+1)
	for _, level := range resultTableKeys() {
		table[level] = models.ResultCounts{}
	}
	return table
}

// MergeResultsByLevel folds the split result table into base levels.
func MergeResultsByLevel(table map[models.GenderedLevel]models.ResultCounts) map[models.Level]models.ResultCounts {
	merged := make(map[models.Level]models.ResultCounts, len(models.Levels)+1)
	for _, level := range models.Levels {
		merged[level] = models.ResultCounts{}
	}
	merged[models.LevelL5Grad] = models.ResultCounts{}
	for level, counts := range table {
		base := level.Base()
		sum := merged[base]
		sum.P += counts.P
		sum.F += counts.F
		sum.WD += counts.WD
		merged[base] = sum
	}
	return merged
}

// Rate returns registered/invited as a rounded whole percentage, or 0 when
// nobody was invited.
func Rate(registered, invited int) int {
	if invited == 0 {
		return 0
	}
	return int(math.Round(float64(registered) / float64(invited) * 100))
}
