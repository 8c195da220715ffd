package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/epd-student-api/internal/models"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/jobs"
)

type fakeStudentRepo struct {
	students  map[int64]models.StudentRecord
	listErr   error
	upsertErr error
	upserts   int
	inserts   int
	batches   [][]models.StudentRecord
	filter    models.StudentFilter
}

func newFakeStudentRepo(students ...models.StudentRecord) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[int64]models.StudentRecord)}
	for _, s := range students {
		repo.students[s.EpID] = s
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.StudentRecord, int, error) {
	f.filter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	all, _ := f.ListAll(context.Background())
	return all, len(all), nil
}

func (f *fakeStudentRepo) ListAll(context.Context) ([]models.StudentRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.StudentRecord, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStudentRepo) FindByEpID(_ context.Context, epID int64) (*models.StudentRecord, error) {
	s, ok := f.students[epID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudentRepo) Insert(_ context.Context, student *models.StudentRecord) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	if _, taken := f.students[student.EpID]; taken {
		return false, nil
	}
	f.inserts++
	f.students[student.EpID] = *student
	return true, nil
}

func (f *fakeStudentRepo) Upsert(_ context.Context, student *models.StudentRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.students[student.EpID] = *student
	return nil
}

func (f *fakeStudentRepo) UpsertBatch(_ context.Context, students []models.StudentRecord) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.batches = append(f.batches, students)
	for _, s := range students {
		f.students[s.EpID] = s
	}
	return len(students), nil
}

type fakeWaitingRepo struct {
	entries []models.WaitingListEntry
	search  string
}

func (f *fakeWaitingRepo) List(_ context.Context, search string) ([]models.WaitingListEntry, error) {
	f.search = search
	return f.entries, nil
}

func (f *fakeWaitingRepo) Create(_ context.Context, entry *models.WaitingListEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type recordingRefresher struct {
	reasons []string
}

func (r *recordingRefresher) ScheduleRefresh(_ context.Context, reason string) {
	r.reasons = append(r.reasons, reason)
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	store   map[string][]byte
	deleted []string
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.store, key)
		}
	}
	return nil
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func studentWith(epID int64, mutate func(s *models.StudentRecord)) models.StudentRecord {
	s := models.NewStudentRecord()
	s.EpID = epID
	s.Name.English = "Student"
	if mutate != nil {
		mutate(&s)
	}
	return s
}
