package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnknownAge is the sentinel stored when a student's age is not known.
const UnknownAge = "Unknown"

// StudentRecord is the document stored for one enrollee, keyed by EpID.
type StudentRecord struct {
	EpID                int64            `json:"epId" validate:"required,gt=0"`
	Name                StudentName      `json:"name"`
	Gender              string           `json:"gender" validate:"oneof=M F"`
	Age                 Age              `json:"age"`
	Nationality         Nationality      `json:"nationality"`
	CurrentLevel        GenderedLevel    `json:"currentLevel"`
	InitialSession      string           `json:"initialSession"`
	Status              StudentStatus    `json:"status"`
	Placement           Placement        `json:"placement"`
	Work                StudentWork      `json:"work"`
	Literacy            Literacy         `json:"literacy"`
	Phone               PhoneInfo        `json:"phone"`
	ClassList           ClassList        `json:"classList"`
	Correspondence      []Correspondence `json:"correspondence"`
	AcademicRecords     []AcademicRecord `json:"academicRecords" validate:"dive"`
	CertificateRequests string           `json:"certificateRequests,omitempty"`
	ImageName           string           `json:"imageName,omitempty"`
	Zoom                string           `json:"zoom,omitempty"`
}

// StudentName holds the bilingual student name.
type StudentName struct {
	English string `json:"english"`
	Arabic  string `json:"arabic"`
}

// StudentStatus tracks enrolment state flags and dates.
type StudentStatus struct {
	CurrentStatus      Status           `json:"currentStatus"`
	InviteTag          bool             `json:"inviteTag"`
	NoContactList      bool             `json:"noContactList"`
	Audit              bool             `json:"audit,omitempty"`
	DroppedOutReason   DroppedOutReason `json:"droppedOutReason,omitempty"`
	FinalGradeSentDate string           `json:"finalGradeSentDate,omitempty"`
	LevelReevalDate    string           `json:"levelReevalDate,omitempty"`
	ReactivatedDate    string           `json:"reactivatedDate,omitempty"`
	WithdrawDate       string           `json:"withdrawDate,omitempty"`
}

// Placement records placement-test outcomes and follow up.
type Placement struct {
	OrigPlacementData         OrigPlacementData `json:"origPlacementData"`
	ConfDate                  string            `json:"confDate,omitempty"`
	NoAnswerClassScheduleDate string            `json:"noAnswerClassScheduleDate,omitempty"`
	Pending                   bool              `json:"pending,omitempty"`
	PhotoContact              string            `json:"photoContact,omitempty"`
	Placement                 string            `json:"placement,omitempty"`
	SectionsOffered           string            `json:"sectionsOffered,omitempty"`
}

// OrigPlacementData is the raw placement-test result.
type OrigPlacementData struct {
	Adjustment string    `json:"adjustment,omitempty"`
	Level      LevelPlus `json:"level"`
	Speaking   LevelPlus `json:"speaking"`
	Writing    LevelPlus `json:"writing"`
}

// StudentWork describes employment.
type StudentWork struct {
	Occupation             string `json:"occupation"`
	LookingForJob          string `json:"lookingForJob,omitempty"`
	IsTeacher              bool   `json:"isTeacher,omitempty"`
	TeachingSubjectAreas   string `json:"teachingSubjectAreas,omitempty"`
	IsEnglishTeacher       bool   `json:"isEnglishTeacher,omitempty"`
	EnglishTeacherLocation string `json:"englishTeacherLocation,omitempty"`
}

// Literacy flags.
type Literacy struct {
	IlliterateAr  bool   `json:"illiterateAr,omitempty"`
	IlliterateEng bool   `json:"illiterateEng,omitempty"`
	TutorAndDate  string `json:"tutorAndDate,omitempty"`
}

// ClassList tracks whether the class list was sent to the student.
type ClassList struct {
	ClassListSent      bool   `json:"classListSent,omitempty"`
	ClassListSentDate  string `json:"classListSentDate,omitempty"`
	ClassListSentNotes string `json:"classListSentNotes,omitempty"`
}

// Correspondence is one dated contact note.
type Correspondence struct {
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

// Grade is a result with optional percentage and notes.
type Grade struct {
	Result     FinalResult `json:"result"`
	Percentage *int        `json:"percentage,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// AcademicRecord is one session attended by a student.
type AcademicRecord struct {
	Session          string        `json:"session" validate:"required"`
	Level            GenderedLevel `json:"level,omitempty"`
	LevelAudited     GenderedLevel `json:"levelAudited,omitempty"`
	FinalResult      *Grade        `json:"finalResult,omitempty"`
	ExitWritingExam  *Grade        `json:"exitWritingExam,omitempty"`
	ExitSpeakingExam *Grade        `json:"exitSpeakingExam,omitempty"`
	Attendance       *int          `json:"attendance,omitempty"`
	Comments         string        `json:"comments,omitempty"`
	ElectiveClass    string        `json:"electiveClass,omitempty"`
}

// Result returns the final result of the record, or "" when none was recorded.
func (r AcademicRecord) Result() FinalResult {
	if r.FinalResult == nil {
		return ""
	}
	return r.FinalResult.Result
}

// NewStudentRecord returns a record populated with the defaults of an empty student.
func NewStudentRecord() StudentRecord {
	return StudentRecord{
		Name:         StudentName{Arabic: "N/A"},
		Gender:       "M",
		Age:          Age{},
		Nationality:  NationalityUNKNWN,
		CurrentLevel: GenderedLevel(LevelPL1),
		Status:       StudentStatus{CurrentStatus: StatusNew},
		Placement: Placement{
			OrigPlacementData: OrigPlacementData{Level: "PL1", Speaking: "PL1", Writing: "PL1"},
		},
		Work:            StudentWork{Occupation: "Unknown"},
		Phone:           PhoneInfo{HasWhatsapp: true, PhoneNumbers: []PhoneNumber{}, PrimaryPhone: -1},
		Correspondence:  []Correspondence{},
		AcademicRecords: []AcademicRecord{},
	}
}

// LastAcademicRecord returns a pointer to the most recently appended record or nil.
func (s *StudentRecord) LastAcademicRecord() *AcademicRecord {
	if len(s.AcademicRecords) == 0 {
		return nil
	}
	return &s.AcademicRecords[len(s.AcademicRecords)-1]
}

// AttendedSession reports whether the student has a record for the session label.
func (s *StudentRecord) AttendedSession(session string) bool {
	for _, record := range s.AcademicRecords {
		if record.Session == session {
			return true
		}
	}
	return false
}

// IsActive reports whether the student is currently enrolled in the program.
func (s *StudentRecord) IsActive() bool {
	return s.Status.CurrentStatus == StatusNew || s.Status.CurrentStatus == StatusReturn
}

// Key returns the persistence key of the record.
func (s *StudentRecord) Key() string {
	return strconv.FormatInt(s.EpID, 10)
}

// Age is either a known number of years or Unknown. It encodes as a JSON number or "Unknown".
type Age struct {
	Years int
	Known bool
}

// KnownAge builds a known Age.
func KnownAge(years int) Age {
	return Age{Years: years, Known: true}
}

// MarshalJSON implements json.Marshaler.
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return json.Marshal(UnknownAge)
	}
	return json.Marshal(a.Years)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Age{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		if text == UnknownAge || text == "" {
			*a = Age{}
			return nil
		}
		years, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("invalid age %q", text)
		}
		*a = KnownAge(years)
		return nil
	}
	var years float64
	if err := json.Unmarshal(data, &years); err != nil {
		return fmt.Errorf("invalid age: %w", err)
	}
	*a = KnownAge(int(years))
	return nil
}
