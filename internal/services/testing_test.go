package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
)

// fakeRepo is an in-memory Repository for service tests. Only the entities
// the tests touch are implemented; the rest return errNotImplemented.
type fakeRepo struct {
	users         map[string]*models.User
	departments   map[string]*models.Department
	courses       map[string]*models.Course
	sections      map[string]*models.Section
	enrollments   map[string]*models.Enrollment
	videos        map[string]*models.Video
	quizzes       map[string]*models.Quiz
	attempts      map[string]*models.QuizAttempt
	announcements map[string]*models.Announcement
	logs          []*models.Log
}

var errNotImplemented = errors.New("not implemented in fake")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         make(map[string]*models.User),
		departments:   make(map[string]*models.Department),
		courses:       make(map[string]*models.Course),
		sections:      make(map[string]*models.Section),
		enrollments:   make(map[string]*models.Enrollment),
		videos:        make(map[string]*models.Video),
		quizzes:       make(map[string]*models.Quiz),
		attempts:      make(map[string]*models.QuizAttempt),
		announcements: make(map[string]*models.Announcement),
	}
}

func (f *fakeRepo) User() repositories.UserRepository                 { return &fakeUserRepo{f} }
func (f *fakeRepo) Department() repositories.DepartmentRepository     { return nil }
func (f *fakeRepo) Course() repositories.CourseRepository             { return &fakeCourseRepo{f} }
func (f *fakeRepo) Section() repositories.SectionRepository           { return &fakeSectionRepo{f} }
func (f *fakeRepo) Enrollment() repositories.EnrollmentRepository     { return &fakeEnrollmentRepo{f} }
func (f *fakeRepo) Video() repositories.VideoRepository               { return &fakeVideoRepo{f} }
func (f *fakeRepo) Quiz() repositories.QuizRepository                 { return &fakeQuizRepo{f} }
func (f *fakeRepo) Attempt() repositories.AttemptRepository           { return &fakeAttemptRepo{f} }
func (f *fakeRepo) Announcement() repositories.AnnouncementRepository { return &fakeAnnouncementRepo{f} }
func (f *fakeRepo) Log() repositories.LogRepository                   { return &fakeLogRepo{f} }
func (f *fakeRepo) Dashboard() repositories.DashboardRepository       { return nil }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// ===== users =====

type fakeUserRepo struct{ f *fakeRepo }

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, u := range r.f.users {
		if u.Email == user.Email || u.UID == user.UID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	if u, ok := r.f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUID(_ context.Context, _ *gorm.DB, uid string) (*models.User, error) {
	for _, u := range r.f.users {
		if u.UID == uid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ *gorm.DB, user *models.User) error {
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ *gorm.DB, _ repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	for _, u := range r.f.users {
		users = append(users, u)
	}
	return users, int64(len(users)), nil
}

// ===== courses =====

type fakeCourseRepo struct{ f *fakeRepo }

func (r *fakeCourseRepo) Create(_ context.Context, _ *gorm.DB, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	r.f.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Course, error) {
	if c, ok := r.f.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) GetByCode(_ context.Context, _ *gorm.DB, code string) (*models.Course, error) {
	for _, c := range r.f.courses {
		if c.CourseCode == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) GetByIDWithSections(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *fakeCourseRepo) Update(_ context.Context, _ *gorm.DB, course *models.Course) error {
	r.f.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.courses, id)
	return nil
}

func (r *fakeCourseRepo) List(_ context.Context, _ *gorm.DB, _ repositories.CourseFilters) ([]*models.Course, int64, error) {
	return nil, 0, errNotImplemented
}

// ===== sections =====

type fakeSectionRepo struct{ f *fakeRepo }

func (r *fakeSectionRepo) Create(_ context.Context, _ *gorm.DB, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.New().String()
	}
	r.f.sections[section.ID] = section
	return nil
}

func (r *fakeSectionRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Section, error) {
	if s, ok := r.f.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSectionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Section, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *fakeSectionRepo) Update(_ context.Context, _ *gorm.DB, section *models.Section) error {
	r.f.sections[section.ID] = section
	return nil
}

func (r *fakeSectionRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.sections, id)
	return nil
}

func (r *fakeSectionRepo) ListByCourse(_ context.Context, _ *gorm.DB, courseID string) ([]*models.Section, error) {
	var sections []*models.Section
	for _, s := range r.f.sections {
		if s.CourseID == courseID {
			sections = append(sections, s)
		}
	}
	return sections, nil
}

// ===== enrollments =====

type fakeEnrollmentRepo struct{ f *fakeRepo }

func (r *fakeEnrollmentRepo) Create(_ context.Context, _ *gorm.DB, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	for _, existing := range r.f.enrollments {
		if existing.UserID == e.UserID && existing.SectionID == e.SectionID && existing.Role == e.Role {
			return gorm.ErrDuplicatedKey
		}
	}
	r.f.enrollments[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Enrollment, error) {
	if e, ok := r.f.enrollments[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) Find(_ context.Context, _ *gorm.DB, userID, sectionID string, role models.Role) (*models.Enrollment, error) {
	for _, e := range r.f.enrollments {
		if e.UserID == userID && e.SectionID == sectionID && e.Role == role {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.enrollments, id)
	return nil
}

func (r *fakeEnrollmentRepo) ListByUser(_ context.Context, _ *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range r.f.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) ListBySection(_ context.Context, _ *gorm.DB, sectionID string, role *models.Role) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range r.f.enrollments {
		if e.SectionID == sectionID && (role == nil || e.Role == *role) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) CountStudents(_ context.Context, _ *gorm.DB, sectionID string) (int64, error) {
	var count int64
	for _, e := range r.f.enrollments {
		if e.SectionID == sectionID && e.Role == models.RoleStudent {
			count++
		}
	}
	return count, nil
}

func (r *fakeEnrollmentRepo) FindForCourse(_ context.Context, _ *gorm.DB, userID, courseID string) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range r.f.enrollments {
		section, ok := r.f.sections[e.SectionID]
		if ok && e.UserID == userID && section.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) CourseIDsForUser(_ context.Context, _ *gorm.DB, userID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.f.enrollments {
		section, ok := r.f.sections[e.SectionID]
		if ok && e.UserID == userID && !seen[section.CourseID] {
			seen[section.CourseID] = true
			out = append(out, section.CourseID)
		}
	}
	return out, nil
}

// ===== videos =====

type fakeVideoRepo struct{ f *fakeRepo }

func (r *fakeVideoRepo) Create(_ context.Context, _ *gorm.DB, v *models.Video) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	r.f.videos[v.ID] = v
	return nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Video, error) {
	if v, ok := r.f.videos[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVideoRepo) Update(_ context.Context, _ *gorm.DB, v *models.Video) error {
	r.f.videos[v.ID] = v
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.videos, id)
	return nil
}

func (r *fakeVideoRepo) ListByCourse(_ context.Context, _ *gorm.DB, courseID string, filters repositories.VideoFilters) ([]*models.Video, int64, error) {
	var out []*models.Video
	for _, v := range r.f.videos {
		if v.CourseID != courseID {
			continue
		}
		if filters.Status != nil && v.Status != *filters.Status {
			continue
		}
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVideoRepo) ListPending(_ context.Context, _ *gorm.DB, _, _ int) ([]*models.Video, int64, error) {
	var out []*models.Video
	for _, v := range r.f.videos {
		if v.Status == models.VideoPending {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

// ===== quizzes =====

type fakeQuizRepo struct{ f *fakeRepo }

func (r *fakeQuizRepo) Create(_ context.Context, _ *gorm.DB, q *models.Quiz) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	r.f.quizzes[q.ID] = q
	return nil
}

func (r *fakeQuizRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Quiz, error) {
	if q, ok := r.f.quizzes[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuizRepo) Update(_ context.Context, _ *gorm.DB, q *models.Quiz) error {
	r.f.quizzes[q.ID] = q
	return nil
}

func (r *fakeQuizRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.quizzes, id)
	return nil
}

func (r *fakeQuizRepo) ListByCourse(_ context.Context, _ *gorm.DB, courseID string) ([]*models.Quiz, error) {
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) ListByVideo(_ context.Context, _ *gorm.DB, videoID string) ([]*models.Quiz, error) {
	var out []*models.Quiz
	for _, q := range r.f.quizzes {
		if q.VideoID != nil && *q.VideoID == videoID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== attempts =====

type fakeAttemptRepo struct{ f *fakeRepo }

func (r *fakeAttemptRepo) Create(_ context.Context, _ *gorm.DB, a *models.QuizAttempt) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	r.f.attempts[a.ID] = a
	return nil
}

func (r *fakeAttemptRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.QuizAttempt, error) {
	if a, ok := r.f.attempts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) ListByQuiz(_ context.Context, _ *gorm.DB, quizID string) ([]*models.QuizAttempt, error) {
	var out []*models.QuizAttempt
	for _, a := range r.f.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListByUser(_ context.Context, _ *gorm.DB, userID string) ([]*models.QuizAttempt, error) {
	var out []*models.QuizAttempt
	for _, a := range r.f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) FindByQuizAndUser(_ context.Context, _ *gorm.DB, quizID, userID string) ([]*models.QuizAttempt, error) {
	var out []*models.QuizAttempt
	for _, a := range r.f.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ===== announcements =====

type fakeAnnouncementRepo struct{ f *fakeRepo }

func (r *fakeAnnouncementRepo) Create(_ context.Context, _ *gorm.DB, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	r.f.announcements[a.ID] = a
	return nil
}

func (r *fakeAnnouncementRepo) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.Announcement, error) {
	if a, ok := r.f.announcements[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAnnouncementRepo) Update(_ context.Context, _ *gorm.DB, a *models.Announcement) error {
	r.f.announcements[a.ID] = a
	return nil
}

func (r *fakeAnnouncementRepo) Delete(_ context.Context, _ *gorm.DB, id string) error {
	delete(r.f.announcements, id)
	return nil
}

/// List mirrors the SQL visibility predicate: audience, course or global
// scope, section scope within a course, and expiry.
func (r *fakeAnnouncementRepo) List(_ context.Context, _ *gorm.DB, filters repositories.AnnouncementFilters) ([]*models.Announcement, int64, error) {
	inTargets := func(t models.AnnouncementTarget) bool {
		for _, want := range filters.Targets {
			if t == want {
				return true
			}
		}
		return len(filters.Targets) == 0
	}
	inSet := func(id string, set []string) bool {
		for _, want := range set {
			if id == want {
				return true
			}
		}
		return false
	}

	var out []*models.Announcement
	for _, a := range r.f.announcements {
		if !inTargets(a.TargetRole) {
			continue
		}
		switch {
		case a.CourseID == nil:
			if !filters.IncludeGlobal {
				continue
			}
		case !inSet(*a.CourseID, filters.CourseIDs):
			continue
		case a.SectionID != nil && !inSet(*a.SectionID, filters.SectionIDs):
			continue
		}
		if filters.ActiveAt != nil && a.ExpiryDate != nil && !a.ExpiryDate.After(*filters.ActiveAt) {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAnnouncementRepo) ListBySender(_ context.Context, _ *gorm.DB, senderID string, _, _ int) ([]*models.Announcement, int64, error) {
	var out []*models.Announcement
	for _, a := range r.f.announcements {
		if a.SenderID == senderID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

// ===== logs =====

type fakeLogRepo struct{ f *fakeRepo }

func (r *fakeLogRepo) Create(_ context.Context, _ *gorm.DB, log *models.Log) error {
	r.f.logs = append(r.f.logs, log)
	return nil
}

func (r *fakeLogRepo) List(_ context.Context, _ *gorm.DB, _ repositories.LogFilters) ([]*models.Log, int64, error) {
	return r.f.logs, int64(len(r.f.logs)), nil
}

// testLogger discards everything.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
