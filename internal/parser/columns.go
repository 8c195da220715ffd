package parser

import (
	"fmt"
	"strings"

	"github.com/noah-isme/epd-student-api/internal/models"
)

const (
	// DefaultAcademicGroups is the number of repeated academic-record column groups.
	DefaultAcademicGroups = 20
	phoneGroups           = 5
	broadcastPrefix       = "WA BC "
)

func unknownEnum(text string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEnum, text)
}

func unparseable(value string) error {
	return fmt.Errorf("%w: %q", ErrUnparseable, value)
}

func setText(set func(rec *models.StudentRecord, value string)) Assign {
	return Assign{Set: func(rec *models.StudentRecord, value string) error {
		set(rec, value)
		return nil
	}}
}

func setDate(set func(rec *models.StudentRecord, date string)) Assign {
	return Assign{Set: func(rec *models.StudentRecord, value string) error {
		date, ok := parseDate(value)
		if !ok {
			return unparseable(value)
		}
		set(rec, date)
		return nil
	}}
}

func flag(set func(rec *models.StudentRecord)) Conditional {
	return Conditional{Gate: IsOne, Then: func(rec *models.StudentRecord, _ string) { set(rec) }}
}

func lookupStatus(text string) (string, bool) {
	return text, models.Status(text).Valid()
}

func lookupGenderedLevel(text string) (string, bool) {
	return text, models.GenderedLevel(text).Valid()
}

func lookupLevelPlus(text string) (string, bool) {
	return text, models.LevelPlus(text).Valid()
}

func lookupNationality(text string) (string, bool) {
	n, ok := models.LookupNationality(text)
	return string(n), ok
}

func lookupDroppedOutReason(text string) (string, bool) {
	return text, models.DroppedOutReason(text).Valid()
}

func droppedOutReasonKeys() string {
	keys := make([]string, 0, len(models.DroppedOutReasons))
	for _, reason := range models.DroppedOutReasons {
		keys = append(keys, string(reason))
	}
	return strings.Join(keys, ", ")
}

func isNationalityHeader(header string) bool {
	_, ok := models.LookupNationality(header)
	return ok
}

func isBroadcastHeader(header string) bool {
	return strings.HasPrefix(header, broadcastPrefix)
}

// applyWhatsappStatus reads free text such as "Has WhatsApp (son's phone)".
func applyWhatsappStatus(rec *models.StudentRecord, value string) {
	lower := strings.ToLower(value)
	rec.Phone.HasWhatsapp = strings.Contains(lower, "has whatsapp") || strings.Contains(lower, "has wa")
	rec.Phone.WhatsappNotes = value
}

func addPhone(rec *models.StudentRecord, _ string, value string) error {
	if value == "has whatsapp" {
		applyWhatsappStatus(rec, value)
		return nil
	}
	number, ok := extractPhone(value)
	if !ok {
		return unparseable(value)
	}
	var notes string
	if match := insideParenRegex.FindStringSubmatch(value); match != nil {
		notes = match[1]
	}
	if idx := rec.Phone.IndexOf(number); idx >= 0 {
		if notes != "" {
			rec.Phone.PhoneNumbers[idx].Notes = notes
		}
		return nil
	}
	rec.Phone.AddNumber(models.PhoneNumber{Number: number, Notes: notes})
	return nil
}

func examGrade(value string) (*models.Grade, error) {
	result := examResultRegex.FindString(value)
	if result == "" {
		return nil, unparseable(value)
	}
	grade := &models.Grade{Result: models.FinalResult(result), Notes: gradeNotes(value, true)}
	if pct, ok := extractPercentage(value); ok {
		grade.Percentage = &pct
	}
	return grade, nil
}

// DefaultRegistry declares every column the student spreadsheet carries.
// academicGroups bounds the Session0..SessionN column families; values <= 0
// fall back to DefaultAcademicGroups.
func DefaultRegistry(academicGroups int) *Registry {
	if academicGroups <= 0 {
		academicGroups = DefaultAcademicGroups
	}
	r := NewRegistry()

	// Identity.
	r.Register("Name", Assign{KeepEmpty: true, Set: func(rec *models.StudentRecord, value string) error {
		rec.Name.English = value
		return nil
	}})
	r.Register("Arabic Name", setText(func(rec *models.StudentRecord, v string) { rec.Name.Arabic = v }))
	r.Register("ID, EP ID", Assign{Set: func(rec *models.StudentRecord, value string) error {
		id, ok := parseNumber(value)
		if !ok || id <= 0 {
			return unparseable(value)
		}
		rec.EpID = id
		return nil
	}})
	r.Register("Male", Conditional{
		Gate: IsOne,
		Then: func(rec *models.StudentRecord, _ string) { rec.Gender = "M" },
		Else: func(rec *models.StudentRecord, _ string) { rec.Gender = "F" },
	})
	r.Register("Age", Assign{Set: func(rec *models.StudentRecord, value string) error {
		years, ok := parseDecimal(value)
		if !ok || years < 0 {
			return unparseable(value)
		}
		// fractional ages are truncated to whole years
		rec.Age = models.KnownAge(int(years))
		return nil
	}})
	r.RegisterMatch("nationality code", isNationalityHeader, EnumLookup{
		FromKey: true,
		Gate:    IsOne,
		Lookup:  lookupNationality,
		Set:     func(rec *models.StudentRecord, member string) { rec.Nationality = models.Nationality(member) },
	})

	// Status.
	r.Register("Status", EnumLookup{
		Lookup: lookupStatus,
		Set:    func(rec *models.StudentRecord, member string) { rec.Status.CurrentStatus = models.Status(member) },
	})
	r.Register("Current Level", EnumLookup{
		Lookup: lookupGenderedLevel,
		Set:    func(rec *models.StudentRecord, member string) { rec.CurrentLevel = models.GenderedLevel(member) },
	})
	r.Register("Invite", Assign{KeepEmpty: true, Set: func(rec *models.StudentRecord, value string) error {
		rec.Status.InviteTag = isTruthy(value)
		return nil
	}})
	r.Register("NCL", Assign{KeepEmpty: true, Set: func(rec *models.StudentRecord, value string) error {
		rec.Status.NoContactList = isTruthy(value)
		return nil
	}})
	r.Register("Audit", flag(func(rec *models.StudentRecord) { rec.Status.Audit = true }))
	r.Register("FGR Sent", setDate(func(rec *models.StudentRecord, d string) { rec.Status.FinalGradeSentDate = d }))
	r.Register("Level Reeval Date", setDate(func(rec *models.StudentRecord, d string) { rec.Status.LevelReevalDate = d }))
	r.Register("Reactivated Date", setDate(func(rec *models.StudentRecord, d string) { rec.Status.ReactivatedDate = d }))
	r.Register("Withdraw Date", setDate(func(rec *models.StudentRecord, d string) { rec.Status.WithdrawDate = d }))
	r.Register(droppedOutReasonKeys(), EnumLookup{
		FromKey: true,
		Gate:    IsOne,
		Lookup:  lookupDroppedOutReason,
		Set: func(rec *models.StudentRecord, member string) {
			rec.Status.DroppedOutReason = models.DroppedOutReason(member)
		},
	})

	// Placement.
	r.Register("Sections Offered", setText(func(rec *models.StudentRecord, v string) { rec.Placement.SectionsOffered = v }))
	r.Register("Photo Contact", setText(func(rec *models.StudentRecord, v string) { rec.Placement.PhotoContact = v }))
	r.Register("Placement", setText(func(rec *models.StudentRecord, v string) { rec.Placement.Placement = v }))
	r.Register("Placement Confirmed", setDate(func(rec *models.StudentRecord, d string) { rec.Placement.ConfDate = d }))
	r.Register("Pending", flag(func(rec *models.StudentRecord) { rec.Placement.Pending = true }))
	r.Register("NA Class Schedule", setDate(func(rec *models.StudentRecord, d string) {
		rec.Placement.NoAnswerClassScheduleDate = d
	}))
	r.Register("Orig Placement Level", EnumLookup{
		Lookup: lookupLevelPlus,
		Set: func(rec *models.StudentRecord, member string) {
			rec.Placement.OrigPlacementData.Level = models.LevelPlus(member)
		},
	})
	r.Register("Orig Placement Speaking", EnumLookup{
		Lookup: lookupLevelPlus,
		Set: func(rec *models.StudentRecord, member string) {
			rec.Placement.OrigPlacementData.Speaking = models.LevelPlus(member)
		},
	})
	r.Register("Orig Placement Writing", EnumLookup{
		Lookup: lookupLevelPlus,
		Set: func(rec *models.StudentRecord, member string) {
			rec.Placement.OrigPlacementData.Writing = models.LevelPlus(member)
		},
	})
	r.Register("Orig Placement Adjustment", setText(func(rec *models.StudentRecord, v string) {
		rec.Placement.OrigPlacementData.Adjustment = v
	}))
	r.RegisterMatch("session label", models.IsSessionLabel, Conditional{
		Gate: IsOne,
		Then: func(rec *models.StudentRecord, key string) { rec.InitialSession = key },
	})

	// Correspondence and class lists.
	r.Register("Correspondence", Append{Add: func(rec *models.StudentRecord, _ string, value string) error {
		rec.Correspondence = append(rec.Correspondence, parseCorrespondence(value)...)
		return nil
	}})
	r.Register("Class List Sent", Assign{KeepEmpty: true, Set: func(rec *models.StudentRecord, value string) error {
		switch value {
		case "", "N/A", "NA", "No WA":
			rec.ClassList.ClassListSent = false
		default:
			rec.ClassList.ClassListSent = true
		}
		if value != "" {
			rec.ClassList.ClassListSentNotes = value
		}
		return nil
	}})
	r.Register("Class List Sent Date", setDate(func(rec *models.StudentRecord, d string) { rec.ClassList.ClassListSentDate = d }))

	// Work.
	r.Register("Occupation", setText(func(rec *models.StudentRecord, v string) { rec.Work.Occupation = v }))
	r.Register("Looking for Job", setText(func(rec *models.StudentRecord, v string) { rec.Work.LookingForJob = v }))
	r.Register("Teacher", flag(func(rec *models.StudentRecord) { rec.Work.IsTeacher = true }))
	r.Register("Teaching Subject Areas", setText(func(rec *models.StudentRecord, v string) { rec.Work.TeachingSubjectAreas = v }))
	r.Register("English Teacher", flag(func(rec *models.StudentRecord) { rec.Work.IsEnglishTeacher = true }))
	r.Register("English Teacher Location", setText(func(rec *models.StudentRecord, v string) {
		rec.Work.EnglishTeacherLocation = v
	}))

	// Phone and WhatsApp.
	r.Register(GenerateKeys("Phone", phoneGroups, false), Append{Add: addPhone})
	r.Register("WA Status", setText(applyWhatsappStatus))
	r.Register("WA Primary Phone", Assign{Set: func(rec *models.StudentRecord, value string) error {
		number, ok := extractPhone(value)
		if !ok {
			return unparseable(value)
		}
		rec.Phone.SetPrimary(number)
		return nil
	}})
	r.Register("WA Broadcast SAR", setText(func(rec *models.StudentRecord, v string) { rec.Phone.WaBroadcastSAR = v }))
	r.RegisterMatch("WA broadcast group", isBroadcastHeader, Append{
		Gate: IsOne,
		Add: func(rec *models.StudentRecord, key, _ string) error {
			rec.Phone.OtherWaBroadcastGroups = append(rec.Phone.OtherWaBroadcastGroups, key)
			return nil
		},
	})

	// Literacy and misc.
	r.Register("Illiterate Arabic", flag(func(rec *models.StudentRecord) { rec.Literacy.IlliterateAr = true }))
	r.Register("Illiterate English", flag(func(rec *models.StudentRecord) { rec.Literacy.IlliterateEng = true }))
	r.Register("Literacy Tutor", setText(func(rec *models.StudentRecord, v string) { rec.Literacy.TutorAndDate = v }))
	r.Register("Zoom Tutor", setText(func(rec *models.StudentRecord, v string) { rec.Zoom = v }))
	r.Register("Certificate Requests", setText(func(rec *models.StudentRecord, v string) { rec.CertificateRequests = v }))

	registerAcademicGroups(r, academicGroups)
	return r
}

func registerAcademicGroups(r *Registry, n int) {
	r.Register(GenerateKeys("Session", n, false), Append{Add: func(rec *models.StudentRecord, _ string, value string) error {
		rec.AcademicRecords = append(rec.AcademicRecords, models.AcademicRecord{Session: value})
		if !models.IsSessionLabel(value) {
			return fmt.Errorf("%w: %q", ErrUnknownSession, value)
		}
		return nil
	}})
	r.Register(GenerateKeys("Level", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		if !models.GenderedLevel(value).Valid() {
			return unknownEnum(value)
		}
		ar.Level = models.GenderedLevel(value)
		return nil
	}})
	r.Register(GenerateKeys("Level Audited", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		if !models.GenderedLevel(value).Valid() {
			return unknownEnum(value)
		}
		ar.LevelAudited = models.GenderedLevel(value)
		return nil
	}})
	resultKeys := strings.Join([]string{
		GenerateKeys("P", n, false),
		GenerateKeys("F", n, false),
		GenerateKeys("WD", n, false),
	}, ",")
	r.Register(resultKeys, LastRecord{Mutate: func(ar *models.AcademicRecord, key, value string) error {
		if !isOne(value) {
			return nil
		}
		// Leftmost match: "WD3" yields WD, "P3" yields P.
		result := columnResultRegex.FindString(key)
		if result == "" {
			return unknownEnum(key)
		}
		ar.FinalResult = &models.Grade{Result: models.FinalResult(result)}
		return nil
	}})
	r.Register(GenerateKeys("Final Grade", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		if ar.FinalResult == nil {
			return ErrMissingResult
		}
		if pct, ok := extractPercentage(value); ok {
			ar.FinalResult.Percentage = &pct
		}
		if notes := gradeNotes(value, false); notes != "" {
			ar.FinalResult.Notes = notes
		}
		return nil
	}})
	r.Register(GenerateKeys("Exit Writing Exam", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		grade, err := examGrade(value)
		if err != nil {
			return err
		}
		ar.ExitWritingExam = grade
		return nil
	}})
	r.Register(GenerateKeys("Exit Speaking Exam", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		grade, err := examGrade(value)
		if err != nil {
			return err
		}
		ar.ExitSpeakingExam = grade
		return nil
	}})
	r.Register(GenerateKeys("Attendance", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		pct, ok := extractPercentage(value)
		if !ok {
			return unparseable(value)
		}
		ar.Attendance = &pct
		return nil
	}})
	r.Register(GenerateKeys("Teacher Comments", n, false), LastRecord{Mutate: func(ar *models.AcademicRecord, _ string, value string) error {
		ar.Comments = value
		return nil
	}})
}
