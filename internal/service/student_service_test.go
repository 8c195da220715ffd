package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/epd-student-api/internal/models"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
)

func TestStudentServiceListNormalisesPagination(t *testing.T) {
	repo := newFakeStudentRepo(studentWith(1, nil))
	svc := NewStudentService(repo, nil, nil, nil)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, PageSize: 500, Search: "ah"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, pagination)
	assert.Equal(t, "ah", repo.filter.Search)
}

func TestStudentServiceListRejectsUnknownEnums(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), nil, nil, nil)

	_, _, err := svc.List(context.Background(), models.StudentFilter{Status: "GONE"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), nil, nil, nil)

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newFakeStudentRepo(studentWith(5, nil))
	refresher := &recordingRefresher{}
	svc := NewStudentService(repo, refresher, nil, nil)

	created, err := svc.Create(context.Background(), studentWith(6, func(s *models.StudentRecord) {
		s.Phone.PhoneNumbers = []models.PhoneNumber{{Number: 791}}
		s.Phone.PrimaryPhone = 4
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.EpID)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, -1, created.Phone.PrimaryPhone)
	assert.Equal(t, []string{"student_created"}, refresher.reasons)

	_, err = svc.Create(context.Background(), studentWith(5, nil))
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), studentWith(0, nil))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), studentWith(7, func(s *models.StudentRecord) {
		s.AcademicRecords = []models.AcademicRecord{{Session: "Winter 21"}}
	}))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateConflictKeepsStoredDocument(t *testing.T) {
	repo := newFakeStudentRepo(studentWith(5, func(s *models.StudentRecord) { s.Name.English = "First" }))
	refresher := &recordingRefresher{}
	svc := NewStudentService(repo, refresher, nil, nil)

	_, err := svc.Create(context.Background(), studentWith(5, func(s *models.StudentRecord) { s.Name.English = "Second" }))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Equal(t, "First", repo.students[5].Name.English)
	assert.Zero(t, repo.upserts)
	assert.Empty(t, refresher.reasons)
}

func TestStudentServiceRejectsUnknownEnumValues(t *testing.T) {
	cases := map[string]func(s *models.StudentRecord){
		"dropped out reason":  func(s *models.StudentRecord) { s.Status.DroppedOutReason = "Bored" },
		"current level":       func(s *models.StudentRecord) { s.CurrentLevel = "L9" },
		"empty current level": func(s *models.StudentRecord) { s.CurrentLevel = "" },
		"placement level":     func(s *models.StudentRecord) { s.Placement.OrigPlacementData.Speaking = "L7+" },
		"record level": func(s *models.StudentRecord) {
			s.AcademicRecords = []models.AcademicRecord{{Session: "Fa 21", Level: "XX"}}
		},
		"audited level": func(s *models.StudentRecord) {
			s.AcademicRecords = []models.AcademicRecord{{Session: "Fa 21", LevelAudited: "L0"}}
		},
		"final result": func(s *models.StudentRecord) {
			s.AcademicRecords = []models.AcademicRecord{{Session: "Fa 21", FinalResult: &models.Grade{Result: "Z"}}}
		},
		"exit writing result": func(s *models.StudentRecord) {
			s.AcademicRecords = []models.AcademicRecord{{Session: "Fa 21", ExitWritingExam: &models.Grade{Result: "WD?"}}}
		},
		"exit speaking result": func(s *models.StudentRecord) {
			s.AcademicRecords = []models.AcademicRecord{{Session: "Fa 21", ExitSpeakingExam: &models.Grade{}}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newFakeStudentRepo(studentWith(5, nil))
			svc := NewStudentService(repo, nil, nil, nil)

			_, err := svc.Create(context.Background(), studentWith(6, mutate))
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

			_, err = svc.Update(context.Background(), 5, studentWith(5, mutate))
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

			_, stored := repo.students[6]
			assert.False(t, stored)
			assert.Zero(t, repo.upserts)
		})
	}
}

func TestStudentServiceAcceptsOptionalEnumsWhenEmpty(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), nil, nil, nil)

	created, err := svc.Create(context.Background(), studentWith(8, func(s *models.StudentRecord) {
		s.CurrentLevel = models.LevelL1Women
		s.Placement.OrigPlacementData = models.OrigPlacementData{}
		s.AcademicRecords = []models.AcademicRecord{
			{Session: "Fa 21", Level: models.LevelL1Women, FinalResult: &models.Grade{Result: models.ResultPass}},
			{Session: "Sp 22"},
		}
	}))
	require.NoError(t, err)
	assert.Equal(t, models.LevelL1Women, created.CurrentLevel)
}

func TestStudentServiceUpdateKeepsPathEpID(t *testing.T) {
	repo := newFakeStudentRepo(studentWith(5, nil))
	svc := NewStudentService(repo, nil, nil, nil)

	updated, err := svc.Update(context.Background(), 5, studentWith(42, func(s *models.StudentRecord) {
		s.Name.English = "Renamed"
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.EpID)
	assert.Equal(t, "Renamed", repo.students[5].Name.English)
	_, stray := repo.students[42]
	assert.False(t, stray)

	_, err = svc.Update(context.Background(), 77, studentWith(77, nil))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceWithdraw(t *testing.T) {
	repo := newFakeStudentRepo(studentWith(5, func(s *models.StudentRecord) {
		s.Status.CurrentStatus = models.StatusReturn
		s.Status.InviteTag = true
		s.AcademicRecords = []models.AcademicRecord{
			{Session: "Fa 21", FinalResult: &models.Grade{Result: models.ResultPass}},
			{Session: "Sp 22"},
		}
	}))
	refresher := &recordingRefresher{}
	svc := NewStudentService(repo, refresher, nil, nil)
	svc.now = func() time.Time { return time.Date(2022, 3, 4, 0, 0, 0, 0, time.UTC) }

	reason := models.DroppedOutJob
	student, err := svc.Withdraw(context.Background(), 5, WithdrawRequest{NoContactList: true, DroppedOutReason: &reason})
	require.NoError(t, err)

	assert.Equal(t, models.StatusWithdraw, student.Status.CurrentStatus)
	assert.False(t, student.Status.InviteTag)
	assert.True(t, student.Status.NoContactList)
	assert.Equal(t, "3/4/2022", student.Status.WithdrawDate)
	assert.Equal(t, models.DroppedOutJob, student.Status.DroppedOutReason)
	assert.Equal(t, models.ResultPass, student.AcademicRecords[0].Result())
	assert.Equal(t, models.ResultWithdraw, student.AcademicRecords[1].Result())
	assert.Equal(t, models.StatusWithdraw, repo.students[5].Status.CurrentStatus)
	assert.Equal(t, []string{"student_withdrawn"}, refresher.reasons)
}

func TestStudentServiceWithdrawRejectsUnknownReason(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(studentWith(5, nil)), nil, nil, nil)
	reason := models.DroppedOutReason("bored")

	_, err := svc.Withdraw(context.Background(), 5, WithdrawRequest{DroppedOutReason: &reason})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceSaveFailure(t *testing.T) {
	repo := newFakeStudentRepo()
	repo.upsertErr = errors.New("db down")
	refresher := &recordingRefresher{}
	svc := NewStudentService(repo, refresher, nil, nil)

	_, err := svc.Create(context.Background(), studentWith(3, nil))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, refresher.reasons)
}
