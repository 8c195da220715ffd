package statistics

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/epd-student-api/internal/models"
)

func student(epID int64, mutate func(s *models.StudentRecord)) models.StudentRecord {
	s := models.NewStudentRecord()
	s.EpID = epID
	if mutate != nil {
		mutate(&s)
	}
	return s
}

func record(session string, level models.GenderedLevel, result models.FinalResult) models.AcademicRecord {
	ar := models.AcademicRecord{Session: session, Level: level}
	if result != "" {
		ar.FinalResult = &models.Grade{Result: result}
	}
	return ar
}

func TestMergeLevels(t *testing.T) {
	merged := MergeLevels(map[models.GenderedLevel]int{
		models.LevelPL1Men:   2,
		models.LevelPL1Women: 3,
		"L3":                 5,
	})

	assert.Equal(t, 5, merged[models.LevelPL1])
	assert.Equal(t, 5, merged[models.LevelL3])
	assert.Equal(t, 0, merged[models.LevelL1])
	_, split := merged[models.Level(models.LevelPL1Men)]
	assert.False(t, split)
	_, split = merged[models.Level(models.LevelPL1Women)]
	assert.False(t, split)
}

func TestRateZeroInvited(t *testing.T) {
	assert.Equal(t, 0, Rate(0, 0))
	assert.Equal(t, 67, Rate(2, 3))
	assert.Equal(t, 100, Rate(4, 4))
}

func TestComputeAverageAgeSkipsUnknown(t *testing.T) {
	students := []models.StudentRecord{
		student(1, func(s *models.StudentRecord) { s.Age = models.KnownAge(20) }),
		student(2, nil),
		student(3, func(s *models.StudentRecord) { s.Age = models.KnownAge(30) }),
	}

	stats := Compute(students, nil)
	assert.Equal(t, 25.0, stats.AverageAge)
}

func TestComputeAverageAgeWithoutAges(t *testing.T) {
	stats := Compute([]models.StudentRecord{student(1, nil)}, nil)
	assert.Equal(t, 0.0, stats.AverageAge)
}

func sampleSnapshot() ([]models.StudentRecord, []models.WaitingListEntry) {
	students := []models.StudentRecord{
		student(1, func(s *models.StudentRecord) {
			s.Gender = "F"
			s.CurrentLevel = models.LevelL1Women
			s.InitialSession = "Fa 21"
			s.Status.CurrentStatus = models.StatusReturn
			s.AcademicRecords = []models.AcademicRecord{
				record("Fa 21", models.LevelPL1Women, models.ResultPass),
				record("Sp 22", models.LevelL1Women, ""),
			}
			s.Work.IsTeacher = true
		}),
		student(2, func(s *models.StudentRecord) {
			s.CurrentLevel = models.LevelPL1Men
			s.InitialSession = "Sp 22"
			s.AcademicRecords = []models.AcademicRecord{
				record("Sp 22", models.LevelPL1Men, ""),
			}
			s.Literacy.IlliterateAr = true
		}),
		student(3, func(s *models.StudentRecord) {
			s.CurrentLevel = "L3"
			s.InitialSession = "Fa 21"
			s.Status.CurrentStatus = models.StatusWithdraw
			s.Status.DroppedOutReason = models.DroppedOutJob
			s.AcademicRecords = []models.AcademicRecord{
				record("Fa 21", "L3", models.ResultFail),
			}
		}),
		student(4, func(s *models.StudentRecord) {
			s.Status.InviteTag = true
			s.Placement.Pending = true
		}),
	}
	waiting := []models.WaitingListEntry{
		{ID: "a", Name: "Huda", Outcome: "Placed"},
		{ID: "b", Name: "Omar"},
	}
	return students, waiting
}

func TestComputeCounts(t *testing.T) {
	students, waiting := sampleSnapshot()
	stats := Compute(students, waiting)

	assert.Equal(t, "Sp 22", stats.CurrentSession)
	assert.Equal(t, []string{"Fa 21", "Sp 22"}, stats.Sessions)
	assert.Equal(t, 2, stats.TotalActive)
	assert.Equal(t, 4, stats.TotalRegistered)
	assert.Equal(t, 2, stats.TotalEnrollment)
	assert.Equal(t, 1, stats.TotalNewNextSession)
	assert.Equal(t, 1, stats.TotalEligible)
	assert.Equal(t, 1, stats.TotalPending)
	assert.Equal(t, 1, stats.TotalTeachers)
	assert.Equal(t, 1, stats.TotalIlliterateArabic)

	assert.Equal(t, map[string]int{"F": 1, "M": 1}, stats.ActiveGenderCounts)
	assert.Equal(t, map[string]int{"2021": 1, "2022": 1}, stats.ActiveInitialYearCounts)
	assert.Equal(t, 1, stats.ActiveLevelCounts[models.LevelL1])
	assert.Equal(t, 1, stats.ActiveLevelCounts[models.LevelPL1])
	assert.Equal(t, 1, stats.ActiveGenderedLevelCounts[models.LevelPL1Men])
	assert.Equal(t, 2, stats.LevelCounts[models.LevelPL1])
	assert.Equal(t, 1, stats.LevelCounts[models.LevelL3])

	assert.Equal(t, map[models.DroppedOutReason]int{models.DroppedOutJob: 1}, stats.DroppedOutReasonCounts)
	assert.Equal(t, map[string]int{"Fa 21": 2, "Sp 22": 1}, stats.SessionCounts)
	assert.Equal(t, map[string]int{"Placed": 1, UndefinedOutcome: 1}, stats.WaitingListOutcomeCounts)

	assert.Equal(t, models.ResultCounts{P: 1, F: 1}, stats.OverallResultCounts)
	assert.Equal(t, models.ResultCounts{P: 1}, stats.OverallResultCountsByLevel[models.LevelPL1Women])
	assert.Equal(t, models.ResultCounts{}, stats.OverallResultCountsByLevel[models.GenderedLevel(models.LevelL5Grad)])
	assert.Equal(t, models.ResultCounts{P: 1}, stats.OverallResultCountsByMergedLevel[models.LevelPL1])
	assert.Len(t, stats.OverallResultCountsByLevel, len(models.GenderedLevels)+1)
}

func TestComputeStatusDetails(t *testing.T) {
	students, _ := sampleSnapshot()
	stats := Compute(students, nil)

	assert.Equal(t, map[models.StatusDetail]int{
		models.StatusDetailSE:   1,
		models.StatusDetailSES1: 1,
	}, stats.ActiveStatusDetailsCounts)
	assert.Equal(t, map[string]int{"0": 2, "1": 2}, stats.SessionsAttendedCounts)
}

func TestStatusDetailsSkip(t *testing.T) {
	s := student(9, func(s *models.StudentRecord) {
		s.Status.CurrentStatus = models.StatusReturn
		s.AcademicRecords = []models.AcademicRecord{
			record("Fa 21", "L3", models.ResultPass),
			record("Su 22", "L3", models.ResultPass),
			record("Fa 22", "L4", ""),
		}
	})
	sessions := []string{"Fa 21", "Sp 22", "Fa 22"}

	detail, completed := StatusDetails(&s, sessions, "Fa 22")
	assert.Equal(t, models.StatusDetailSkip, detail)
	assert.Equal(t, 1, completed)
}

func TestStatusDetailsDropouts(t *testing.T) {
	s := student(9, func(s *models.StudentRecord) {
		s.Status.CurrentStatus = models.StatusWithdraw
		s.AcademicRecords = []models.AcademicRecord{
			record("Fa 20", "L1-M", models.ResultPass),
			record("Sp 21", "L2-M", models.ResultFail),
			record("Fa 21", "L2-M", models.ResultPass),
		}
	})

	detail, completed := StatusDetails(&s, nil, "Fa 21")
	assert.Equal(t, models.StatusDetailDO3, detail)
	assert.Equal(t, 3, completed)
}

func TestPlacementRegistrations(t *testing.T) {
	students, _ := sampleSnapshot()
	regs := PlacementRegistrations(students, []string{"Fa 21", "Sp 22"})
	require.Len(t, regs, 2)

	first := regs[0]
	assert.Equal(t, "Fa 21", first.Session)
	assert.Equal(t, 2, first.InviteCounts[models.StatusNew])
	assert.Equal(t, 2, first.RegistrationCounts[models.StatusNew])
	assert.Equal(t, 100, first.Rates[models.StatusNew])
	assert.Equal(t, 0, first.InviteCounts[models.StatusReturn])
	assert.Equal(t, 0, first.Rates[models.StatusReturn])

	second := regs[1]
	assert.Equal(t, 1, second.InviteCounts[models.StatusNew])
	assert.Equal(t, 2, second.InviteCounts[models.StatusReturn])
	assert.Equal(t, 1, second.RegistrationCounts[models.StatusReturn])
	assert.Equal(t, 50, second.Rates[models.StatusReturn])
}

func TestComputeIsDeterministic(t *testing.T) {
	students, waiting := sampleSnapshot()
	first := Compute(students, waiting)
	second := Compute(students, waiting)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(nil, nil)
	assert.Equal(t, "", stats.CurrentSession)
	assert.Empty(t, stats.Sessions)
	assert.Empty(t, stats.PlacementRegistrationCounts)
	assert.Equal(t, 0, stats.LevelCounts[models.LevelPL1])
}
