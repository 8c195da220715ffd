package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/pkg/spreadsheet"
)

func parseOne(t *testing.T, header []string, row []string) (models.StudentRecord, []Diagnostic) {
	t.Helper()
	result := New(nil, nil).ParseTable(spreadsheet.Table{Header: header, Rows: [][]string{row}})
	require.Len(t, result.Records, 1)
	return result.Records[0], result.Diagnostics
}

func reasons(diagnostics []Diagnostic) []string {
	out := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		out = append(out, d.Reason)
	}
	return out
}

func TestParseTableCoercesEpID(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"ID", "Name"}, []string{"1024", "Ahmad Ali"})

	assert.Equal(t, int64(1024), record.EpID)
	assert.Equal(t, "Ahmad Ali", record.Name.English)
	assert.Equal(t, "N/A", record.Name.Arabic)
	assert.Empty(t, diagnostics)
}

func TestParseTableIgnoresUnknownHeaders(t *testing.T) {
	header := []string{"ID", "Name", "Status", "Session", "P"}
	row := []string{"7", "Sara", "RET", "Fa 21", "1"}

	without, _ := parseOne(t, header, row)
	with, diagnostics := parseOne(t,
		[]string{"ID", "Favourite Colour", "Name", "Status", "Session", "Unlisted", "P"},
		[]string{"7", "blue", "Sara", "RET", "Fa 21", "x", "1"},
	)

	assert.Equal(t, without, with)
	assert.Empty(t, diagnostics)
}

func TestParseTableDefaults(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"Name"}, []string{"Nobody"})

	assert.Equal(t, "M", record.Gender)
	assert.Equal(t, models.NationalityUNKNWN, record.Nationality)
	assert.Equal(t, models.StatusNew, record.Status.CurrentStatus)
	assert.Equal(t, -1, record.Phone.PrimaryPhone)
	assert.Equal(t, []string{ReasonMissingEpID}, reasons(diagnostics))
	assert.Equal(t, 2, diagnostics[0].Row)
}

func TestParseTableGenderColumn(t *testing.T) {
	male, _ := parseOne(t, []string{"ID", "Male"}, []string{"1", "1"})
	female, _ := parseOne(t, []string{"ID", "Male"}, []string{"1", ""})

	assert.Equal(t, "M", male.Gender)
	assert.Equal(t, "F", female.Gender)
}

func TestParseTableCheckboxAndKeyColumns(t *testing.T) {
	record, diagnostics := parseOne(t,
		[]string{"ID", "CE AFR-RE", "Fa 21", "Lack of Transport", "Teacher/English Teacher", "Invite", "NCL", "WA BC Moms"},
		[]string{"3", "1", "1", "1", "1", "x", "", "1"},
	)

	assert.Empty(t, diagnostics)
	assert.Equal(t, models.NationalityCEAFRRE, record.Nationality)
	assert.Equal(t, "Fa 21", record.InitialSession)
	assert.Equal(t, models.DroppedOutLT, record.Status.DroppedOutReason)
	assert.True(t, record.Work.IsTeacher)
	assert.True(t, record.Work.IsEnglishTeacher)
	assert.True(t, record.Status.InviteTag)
	assert.False(t, record.Status.NoContactList)
	assert.Equal(t, []string{"WA BC Moms"}, record.Phone.OtherWaBroadcastGroups)
}

func TestParseTableUnknownEnumIsOmitted(t *testing.T) {
	record, diagnostics := parseOne(t,
		[]string{"ID", "Status", "Current Level", "Orig Placement Level"},
		[]string{"9", "GONE", "L9", "L3+"},
	)

	assert.Equal(t, models.StatusNew, record.Status.CurrentStatus)
	assert.Equal(t, models.GenderedLevel(models.LevelPL1), record.CurrentLevel)
	assert.Equal(t, models.LevelPlus("L3+"), record.Placement.OrigPlacementData.Level)
	assert.Equal(t, []string{ReasonUnknownEnum, ReasonUnknownEnum}, reasons(diagnostics))
	assert.Equal(t, "Status", diagnostics[0].Column)
	assert.Equal(t, "GONE", diagnostics[0].Value)
}

func TestParseTableAcademicRecordsFollowColumnOrder(t *testing.T) {
	record, diagnostics := parseOne(t,
		[]string{
			"ID",
			"Session", "Level", "P", "F", "WD", "Final Grade", "Attendance", "Exit Writing Exam", "Teacher Comments",
			"Session0", "Level0", "P0", "F0", "WD0", "Final Grade0",
		},
		[]string{
			"11",
			"Fa 21", "L3", "1", "", "", "85 (good)", "90%", "P 75%", "steady",
			"Sp 22", "L4", "", "", "1", "",
		},
	)

	assert.Empty(t, diagnostics)
	require.Len(t, record.AcademicRecords, 2)

	first := record.AcademicRecords[0]
	assert.Equal(t, "Fa 21", first.Session)
	assert.Equal(t, models.GenderedLevel("L3"), first.Level)
	require.NotNil(t, first.FinalResult)
	assert.Equal(t, models.ResultPass, first.FinalResult.Result)
	require.NotNil(t, first.FinalResult.Percentage)
	assert.Equal(t, 85, *first.FinalResult.Percentage)
	assert.Equal(t, "good", first.FinalResult.Notes)
	require.NotNil(t, first.Attendance)
	assert.Equal(t, 90, *first.Attendance)
	require.NotNil(t, first.ExitWritingExam)
	assert.Equal(t, models.ResultPass, first.ExitWritingExam.Result)
	assert.Equal(t, 75, *first.ExitWritingExam.Percentage)
	assert.Empty(t, first.ExitWritingExam.Notes)
	assert.Equal(t, "steady", first.Comments)

	second := record.AcademicRecords[1]
	assert.Equal(t, "Sp 22", second.Session)
	assert.Equal(t, models.GenderedLevel("L4"), second.Level)
	assert.Equal(t, models.ResultWithdraw, second.Result())
}

func TestParseTableAcademicColumnWithoutSession(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"ID", "Level", "Final Grade"}, []string{"5", "L2-W", "70"})

	assert.Empty(t, record.AcademicRecords)
	assert.Equal(t, []string{ReasonNoAcademicRecord, ReasonNoAcademicRecord}, reasons(diagnostics))
}

func TestParseTableFinalGradeWithoutResult(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"ID", "Session", "Final Grade"}, []string{"5", "Su 22", "70"})

	require.Len(t, record.AcademicRecords, 1)
	assert.Nil(t, record.AcademicRecords[0].FinalResult)
	assert.Equal(t, []string{ReasonMissingResult}, reasons(diagnostics))
}

func TestParseTableUnknownSessionStillCorrelates(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"ID", "Session", "Level"}, []string{"5", "Winter 21", "L1-M"})

	require.Len(t, record.AcademicRecords, 1)
	assert.Equal(t, "Winter 21", record.AcademicRecords[0].Session)
	assert.Equal(t, models.LevelL1Men, record.AcademicRecords[0].Level)
	assert.Equal(t, []string{ReasonUnknownSession}, reasons(diagnostics))
}

func TestParseTableCorrespondence(t *testing.T) {
	matched, _ := parseOne(t, []string{"ID", "Correspondence"}, []string{"1", "1/2/21: called back 3/4/21: no answer"})
	assert.Equal(t, []models.Correspondence{
		{Date: "1/2/2021", Notes: "called back"},
		{Date: "3/4/2021", Notes: "no answer"},
	}, matched.Correspondence)

	// Three dates but two notes: the zip truncates to two pairs.
	mismatched, _ := parseOne(t, []string{"ID", "Correspondence"}, []string{"1", "1/2/21 3/4/21: called 5/6/21: texted"})
	assert.Len(t, mismatched.Correspondence, 2)
	assert.Equal(t, "1/2/2021", mismatched.Correspondence[0].Date)
	assert.Equal(t, "called", mismatched.Correspondence[0].Notes)
}

func TestParseTablePhones(t *testing.T) {
	record, diagnostics := parseOne(t,
		[]string{"ID", "WA Primary Phone", "Phone", "Phone0", "Phone1", "WA Status"},
		[]string{"8", "079 555 1234", "0795551234 (husband)", "0781112222", "none", "Has WA"},
	)

	require.Len(t, record.Phone.PhoneNumbers, 2)
	assert.Equal(t, int64(795551234), record.Phone.PhoneNumbers[0].Number)
	assert.Equal(t, "husband", record.Phone.PhoneNumbers[0].Notes)
	assert.Equal(t, int64(781112222), record.Phone.PhoneNumbers[1].Number)
	assert.Equal(t, 0, record.Phone.PrimaryPhone)
	assert.True(t, record.Phone.HasWhatsapp)
	assert.Equal(t, "Has WA", record.Phone.WhatsappNotes)
	assert.Equal(t, []string{ReasonUnparseable}, reasons(diagnostics))
	assert.Equal(t, "Phone1", diagnostics[0].Column)
}

func TestParseTableDates(t *testing.T) {
	record, diagnostics := parseOne(t,
		[]string{"ID", "Withdraw Date", "FGR Sent", "Placement Confirmed"},
		[]string{"4", "called; 2/14/22", "3/1/2022", "soon"},
	)

	assert.Equal(t, "2/14/2022", record.Status.WithdrawDate)
	assert.Equal(t, "3/1/2022", record.Status.FinalGradeSentDate)
	assert.Empty(t, record.Placement.ConfDate)
	assert.Equal(t, []string{ReasonUnparseable}, reasons(diagnostics))
}

func TestParseTableClassListSent(t *testing.T) {
	sent, _ := parseOne(t, []string{"ID", "Class List Sent"}, []string{"1", "sent via WA"})
	notSent, _ := parseOne(t, []string{"ID", "Class List Sent"}, []string{"1", "No WA"})

	assert.True(t, sent.ClassList.ClassListSent)
	assert.Equal(t, "sent via WA", sent.ClassList.ClassListSentNotes)
	assert.False(t, notSent.ClassList.ClassListSent)
	assert.Equal(t, "No WA", notSent.ClassList.ClassListSentNotes)
}

func TestParseTableShortRowsArePadded(t *testing.T) {
	result := New(nil, nil).ParseTable(spreadsheet.Table{
		Header: []string{"ID", "Name", "Age"},
		Rows:   [][]string{{"1", "A", "30"}, {"2"}},
	})

	require.Len(t, result.Records, 2)
	assert.Equal(t, models.KnownAge(30), result.Records[0].Age)
	assert.Equal(t, int64(2), result.Records[1].EpID)
	assert.Equal(t, "", result.Records[1].Name.English)
	assert.False(t, result.Records[1].Age.Known)
}

func TestParseTableRejectsNonPositiveEpID(t *testing.T) {
	for _, raw := range []string{"-5", "0", "-1e3"} {
		record, diagnostics := parseOne(t, []string{"ID", "Name"}, []string{raw, "Nadia"})

		assert.Zero(t, record.EpID, raw)
		assert.Equal(t, []string{ReasonUnparseable, ReasonMissingEpID}, reasons(diagnostics), raw)
	}

	record, diagnostics := parseOne(t, []string{"ID"}, []string{"1e3"})
	assert.Equal(t, int64(1000), record.EpID)
	assert.Empty(t, diagnostics)
}

func TestParseTableFlagsDuplicateEpIDs(t *testing.T) {
	result := New(nil, nil).ParseTable(spreadsheet.Table{
		Header: []string{"ID", "Name"},
		Rows:   [][]string{{"5", "Alice"}, {"6", "Omar"}, {"5", "Bob"}},
	})

	require.Len(t, result.Records, 3)
	assert.Equal(t, "Bob", result.Records[2].Name.English)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, Diagnostic{
		Row:    4,
		Column: "ID",
		Value:  "5",
		Reason: ReasonDuplicateEpID,
		Detail: "ep id already used on row 2",
	}, result.Diagnostics[0])
}

func TestParseTableFractionalAgeIsTruncated(t *testing.T) {
	record, diagnostics := parseOne(t, []string{"ID", "Age"}, []string{"3", "25.5"})
	assert.Equal(t, models.KnownAge(25), record.Age)
	assert.Empty(t, diagnostics)

	record, diagnostics = parseOne(t, []string{"ID", "Age"}, []string{"3", "-4"})
	assert.False(t, record.Age.Known)
	assert.Equal(t, []string{ReasonUnparseable}, reasons(diagnostics))
}
