package models

// ResultCounts tallies final results.
type ResultCounts struct {
	P  int `json:"P"`
	F  int `json:"F"`
	WD int `json:"WD"`
}

// Add increments the counter for result. Unknown results are ignored.
func (c *ResultCounts) Add(result FinalResult) {
	switch result {
	case ResultPass:
		c.P++
	case ResultFail:
		c.F++
	case ResultWithdraw:
		c.WD++
	}
}

// Total returns the sum of all results.
func (c ResultCounts) Total() int {
	return c.P + c.F + c.WD
}

// PlacementRegistration compares invitations against registrations for one session.
// Rates are whole percentages; a status with no invitations has rate 0.
type PlacementRegistration struct {
	Session            string         `json:"session"`
	InviteCounts       map[Status]int `json:"inviteCounts"`
	RegistrationCounts map[Status]int `json:"registrationCounts"`
	Rates              map[Status]int `json:"rates"`
}

// Statistics is the dashboard bundle derived from the student and waiting-list collections.
type Statistics struct {
	CurrentSession string   `json:"currentSession"`
	Sessions       []string `json:"sessions"`

	ActiveGenderCounts           map[string]int           `json:"activeGenderCounts"`
	ActiveInitialYearCounts      map[string]int           `json:"activeInitialYearCounts"`
	ActiveLevelCounts            map[Level]int            `json:"activeLevelCounts"`
	ActiveGenderedLevelCounts    map[GenderedLevel]int    `json:"activeGenderedLevelCounts"`
	ActiveNationalityCounts      map[Nationality]int      `json:"activeNationalityCounts"`
	ActiveSessionsAttendedCounts map[string]int           `json:"activeSessionsAttendedCounts"`
	ActiveStatusCounts           map[Status]int           `json:"activeStatusCounts"`
	ActiveStatusDetailsCounts    map[StatusDetail]int     `json:"activeStatusDetailsCounts"`
	DroppedOutReasonCounts       map[DroppedOutReason]int `json:"droppedOutReasonCounts"`
	GenderCounts                 map[string]int           `json:"genderCounts"`
	LevelCounts                  map[Level]int            `json:"levelCounts"`
	GenderedLevelCounts          map[GenderedLevel]int    `json:"genderedLevelCounts"`
	NationalityCounts            map[Nationality]int      `json:"nationalityCounts"`
	PlacementLevelCounts         map[LevelPlus]int        `json:"placementLevelCounts"`
	SessionCounts                map[string]int           `json:"sessionCounts"`
	SessionsAttendedCounts       map[string]int           `json:"sessionsAttendedCounts"`
	StatusCounts                 map[Status]int           `json:"statusCounts"`
	WaitingListOutcomeCounts     map[string]int           `json:"waitingListOutcomeCounts"`

	OverallResultCounts              ResultCounts                   `json:"overallResultCounts"`
	OverallResultCountsByLevel       map[GenderedLevel]ResultCounts `json:"overallResultCountsByLevel"`
	OverallResultCountsByMergedLevel map[Level]ResultCounts         `json:"overallResultCountsByMergedLevel"`

	PlacementRegistrationCounts []PlacementRegistration `json:"placementRegistrationCounts"`

	AverageAge             float64 `json:"averageAge"`
	TotalActive            int     `json:"totalActive"`
	TotalEligible          int     `json:"totalEligible"`
	TotalEnglishTeachers   int     `json:"totalEnglishTeachers"`
	TotalEnrollment        int     `json:"totalEnrollment"`
	TotalIlliterateArabic  int     `json:"totalIlliterateArabic"`
	TotalIlliterateEnglish int     `json:"totalIlliterateEnglish"`
	TotalNCL               int     `json:"totalNCL"`
	TotalNewNextSession    int     `json:"totalNewNextSession"`
	TotalPending           int     `json:"totalPending"`
	TotalRegistered        int     `json:"totalRegistered"`
	TotalTeachers          int     `json:"totalTeachers"`
}
