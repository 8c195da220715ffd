package statistics

import (
	"github.com/noah-isme/epd-student-api/internal/models"
)

// CurrentSession returns the latest session label found in any academic
// record, or "" when no record carries a valid label.
func CurrentSession(students []models.StudentRecord) string {
	var (
		latest models.Session
		label  string
	)
	for _, student := range students {
		for _, record := range student.AcademicRecords {
			session, err := models.ParseSession(record.Session)
			if err != nil {
				continue
			}
			if label == "" || latest.Before(session) {
				latest, label = session, record.Session
			}
		}
	}
	return label
}

// SessionsWithoutSummer lists the distinct non-summer session labels in
// chronological order.
func SessionsWithoutSummer(students []models.StudentRecord) []string {
	seen := map[string]struct{}{}
	labels := []string{}
	for _, student := range students {
		for _, record := range student.AcademicRecords {
			if _, ok := seen[record.Session]; ok {
				continue
			}
			session, err := models.ParseSession(record.Session)
			if err != nil || session.IsSummer() {
				continue
			}
			seen[record.Session] = struct{}{}
			labels = append(labels, record.Session)
		}
	}
	models.SortSessionLabels(labels)
	return labels
}

// completedSessions counts records with a pass or fail result in a non-summer session.
func completedSessions(student *models.StudentRecord) int {
	n := 0
	for _, record := range student.AcademicRecords {
		result := record.Result()
		if result != models.ResultPass && result != models.ResultFail {
			continue
		}
		session, err := models.ParseSession(record.Session)
		if err != nil || session.IsSummer() {
			continue
		}
		n++
	}
	return n
}

// StatusDetails classifies a student's attendance history and returns the
// number of completed sessions alongside it.
func StatusDetails(student *models.StudentRecord, sessions []string, current string) (models.StatusDetail, int) {
	completed := completedSessions(student)
	if student.Status.CurrentStatus == models.StatusWithdraw || current == "" || !student.AttendedSession(current) {
		switch {
		case completed == 0:
			return models.StatusDetailWD1, completed
		case completed == 1:
			return models.StatusDetailDO1, completed
		case completed == 2:
			return models.StatusDetailDO2, completed
		default:
			return models.StatusDetailDO3, completed
		}
	}
	if completed == 0 {
		return models.StatusDetailSES1, completed
	}
	if skippedSession(student, sessions, current) {
		return models.StatusDetailSkip, completed
	}
	return models.StatusDetailSE, completed
}

// skippedSession reports whether a non-summer session between the student's
// first session and current has no record.
func skippedSession(student *models.StudentRecord, sessions []string, current string) bool {
	first := -1
	last := -1
	for i, label := range sessions {
		if first < 0 && student.AttendedSession(label) {
			first = i
		}
		if label == current {
			last = i
		}
	}
	if first < 0 {
		return false
	}
	if last < 0 {
		last = len(sessions) - 1
	}
	for i := first; i <= last; i++ {
		if !student.AttendedSession(sessions[i]) {
			return true
		}
	}
	return false
}

// PlacementRegistrations compares invitations with registrations for every
// non-summer session. New students are invited for their initial session;
// returning students are invited when they attended the previous session.
func PlacementRegistrations(students []models.StudentRecord, sessions []string) []models.PlacementRegistration {
	out := make([]models.PlacementRegistration, 0, len(sessions))
	for i, label := range sessions {
		previous := ""
		if i > 0 {
			previous = sessions[i-1]
		}
		invites := map[models.Status]int{models.StatusNew: 0, models.StatusReturn: 0}
		registrations := map[models.Status]int{models.StatusNew: 0, models.StatusReturn: 0}
		for j := range students {
			student := &students[j]
			registered := student.AttendedSession(label)
			if student.InitialSession == label {
				invites[models.StatusNew]++
				if registered {
					registrations[models.StatusNew]++
				}
			}
			if previous != "" && student.AttendedSession(previous) {
				invites[models.StatusReturn]++
				if registered {
					registrations[models.StatusReturn]++
				}
			}
		}
		out = append(out, models.PlacementRegistration{
			Session:            label,
			InviteCounts:       invites,
			RegistrationCounts: registrations,
			Rates: map[models.Status]int{
				models.StatusNew:    Rate(registrations[models.StatusNew], invites[models.StatusNew]),
				models.StatusReturn: Rate(registrations[models.StatusReturn], invites[models.StatusReturn]),
			},
		})
	}
	return out
}
