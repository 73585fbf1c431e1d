package services

import (
	"context"
	"testing"
	"time"

	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/validator"
)

type announcementFixture struct {
	svc  AnnouncementService
	repo *fakeRepo
}

func newAnnouncementFixture(t *testing.T) *announcementFixture {
	t.Helper()
	repo := newFakeRepo()
	svc := NewAnnouncementService(repo, nil, testLogger(), validator.New(), NopAuditRecorder{})

	repo.courses["c1"] = &models.Course{ID: "c1", CourseName: "Algorithms", CourseCode: "CS301", DeptID: "d1"}
	repo.sections["sA"] = &models.Section{ID: "sA", SectionName: "A", CourseID: "c1", Capacity: 50}
	repo.sections["sB"] = &models.Section{ID: "sB", SectionName: "B", CourseID: "c1", Capacity: 50}
	repo.courses["c2"] = &models.Course{ID: "c2", CourseName: "Databases", CourseCode: "CS302", DeptID: "d1"}
	repo.sections["sC"] = &models.Section{ID: "sC", SectionName: "A", CourseID: "c2", Capacity: 50}

	return &announcementFixture{svc: svc, repo: repo}
}

func (f *announcementFixture) addAnnouncement(id string, target models.AnnouncementTarget, courseID, sectionID *string, expiry *time.Time) {
	f.repo.announcements[id] = &models.Announcement{
		ID:         id,
		Title:      "Announcement " + id,
		Content:    "body",
		SenderID:   "teacher1",
		TargetRole: target,
		CourseID:   courseID,
		SectionID:  sectionID,
		ExpiryDate: expiry,
	}
}

func strp(s string) *string { return &s }

func TestListVisibleScopesByCourseAndSection(t *testing.T) {
	f := newAnnouncementFixture(t)

	// Reader is a student of section A of course c1, nothing else.
	f.repo.enrollments["e1"] = &models.Enrollment{ID: "e1", UserID: "student1", SectionID: "sA", Role: models.RoleStudent}

	f.addAnnouncement("global", models.TargetBoth, nil, nil, nil)
	f.addAnnouncement("course-wide", models.TargetStudents, strp("c1"), nil, nil)
	f.addAnnouncement("own-section", models.TargetStudents, strp("c1"), strp("sA"), nil)
	f.addAnnouncement("other-section", models.TargetStudents, strp("c1"), strp("sB"), nil)
	f.addAnnouncement("other-course", models.TargetStudents, strp("c2"), nil, nil)
	f.addAnnouncement("teachers-only", models.TargetTeachers, strp("c1"), nil, nil)

	got, err := f.svc.ListVisible(context.Background(), studentPrincipal("student1"), 20, 0)
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}

	seen := map[string]bool{}
	for _, a := range got.Announcements {
		seen[a.ID] = true
	}
	for _, want := range []string{"global", "course-wide", "own-section"} {
		if !seen[want] {
			t.Errorf("announcement %q missing from feed: %v", want, seen)
		}
	}
	for _, hidden := range []string{"other-section", "other-course", "teachers-only"} {
		if seen[hidden] {
			t.Errorf("announcement %q leaked into feed: %v", hidden, seen)
		}
	}
}

func TestListVisibleFiltersExpired(t *testing.T) {
	f := newAnnouncementFixture(t)
	f.repo.enrollments["e1"] = &models.Enrollment{ID: "e1", UserID: "student1", SectionID: "sA", Role: models.RoleStudent}

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	f.addAnnouncement("expired", models.TargetBoth, nil, nil, &past)
	f.addAnnouncement("current", models.TargetBoth, nil, nil, &future)

	got, err := f.svc.ListVisible(context.Background(), studentPrincipal("student1"), 20, 0)
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(got.Announcements) != 1 || got.Announcements[0].ID != "current" {
		t.Errorf("feed = %+v, want only the unexpired announcement", got.Announcements)
	}
}
