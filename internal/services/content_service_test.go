package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/validator"
)

func TestScoreAnswers(t *testing.T) {
	tests := []struct {
		name      string
		key       []int
		submitted []int
		want      float64
	}{
		{"all correct", []int{0, 1, 2}, []int{0, 1, 2}, 100},
		{"two of three", []int{0, 1, 0}, []int{0, 1, 1}, 200.0 / 3.0},
		{"none correct", []int{0, 1}, []int{1, 0}, 0},
		{"missing answers count wrong", []int{0, 1, 2}, []int{0}, 100.0 / 3.0},
		{"extra answers ignored", []int{0}, []int{0, 3, 3}, 100},
		{"empty key scores zero", nil, []int{0}, 0},
		{"empty submission", []int{0, 1}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, maxScore := ScoreAnswers(tt.key, tt.submitted)
			if maxScore != 100 {
				t.Errorf("maxScore = %v, want 100", maxScore)
			}
			if math.Abs(score-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.want)
			}
		})
	}
}

type contentFixture struct {
	svc     ContentService
	repo    *fakeRepo
	course  *models.Course
	section *models.Section
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	repo := newFakeRepo()
	svc := NewContentService(repo, nil, testLogger(), validator.New(), NopAuditRecorder{})

	course := &models.Course{ID: "c1", CourseName: "Algorithms", CourseCode: "CS301", DeptID: "d1", CreatedBy: "u0"}
	repo.courses[course.ID] = course
	section := &models.Section{ID: "s1", SectionName: "A", CourseID: course.ID, Capacity: 50}
	repo.sections[section.ID] = section

	return &contentFixture{svc: svc, repo: repo, course: course, section: section}
}

func (f *contentFixture) enroll(userID string, role models.Role) {
	f.repo.enrollments[userID+":"+string(role)] = &models.Enrollment{
		ID:        userID + ":" + string(role),
		UserID:    userID,
		SectionID: f.section.ID,
		Role:      role,
	}
}

func (f *contentFixture) addVideo(id string, status models.VideoStatus) {
	f.repo.videos[id] = &models.Video{
		ID:         id,
		Title:      "Video " + id,
		VideoURL:   "https://cdn.example.com/" + id,
		CourseID:   f.course.ID,
		UploadedBy: "teacher1",
		Status:     status,
	}
}

func studentPrincipal(id string) auth.Principal {
	return auth.Principal{UserID: id, Roles: []models.Role{models.RoleStudent}, DefaultDashboard: models.RoleStudent}
}

func TestCourseContentVisibility(t *testing.T) {
	f := newContentFixture(t)
	f.addVideo("v1", models.VideoApproved)
	f.addVideo("v2", models.VideoPending)
	f.addVideo("v3", models.VideoRejected)
	f.enroll("student1", models.RoleStudent)
	f.enroll("teacher1", models.RoleTeacher)

	ctx := context.Background()

	// Students see only APPROVED videos.
	got, err := f.svc.GetCourseContent(ctx, f.course.ID, studentPrincipal("student1"))
	if err != nil {
		t.Fatalf("GetCourseContent(student) error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Video == nil || got.Items[0].Video.ID != "v1" {
		t.Errorf("student items = %+v, want only v1", got.Items)
	}

	// Teaching enrollments see every status.
	teacher := auth.Principal{UserID: "teacher1", Roles: []models.Role{models.RoleTeacher}, DefaultDashboard: models.RoleTeacher}
	got, err = f.svc.GetCourseContent(ctx, f.course.ID, teacher)
	if err != nil {
		t.Fatalf("GetCourseContent(teacher) error = %v", err)
	}
	if len(got.Items) != 3 {
		t.Errorf("teacher items = %d, want 3", len(got.Items))
	}

	// No enrollment, no elevated role: rejected.
	if _, err := f.svc.GetCourseContent(ctx, f.course.ID, studentPrincipal("outsider")); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("GetCourseContent(outsider) error = %v, want ErrNotEnrolled", err)
	}

	// Elevated global role bypasses the enrollment check.
	admin := auth.Principal{UserID: "admin1", Roles: []models.Role{models.RoleAdmin}, DefaultDashboard: models.RoleAdmin}
	got, err = f.svc.GetCourseContent(ctx, f.course.ID, admin)
	if err != nil {
		t.Fatalf("GetCourseContent(admin) error = %v", err)
	}
	if len(got.Items) != 3 {
		t.Errorf("admin items = %d, want 3", len(got.Items))
	}
}

func TestCourseContentHidesQuizzesOnUnapprovedVideos(t *testing.T) {
	f := newContentFixture(t)
	f.addVideo("v1", models.VideoApproved)
	f.addVideo("v2", models.VideoPending)
	f.enroll("student1", models.RoleStudent)
	f.enroll("teacher1", models.RoleTeacher)

	payload := models.NewQuizQuestions(models.QuizPayload{
		Questions: []models.QuizQuestion{{Text: "a", Options: []string{"x", "y"}, Answer: 0}},
	})
	pendingVideo := "v2"
	approvedVideo := "v1"
	f.repo.quizzes["q-pending"] = &models.Quiz{ID: "q-pending", Title: "on pending video", CourseID: f.course.ID, VideoID: &pendingVideo, Questions: payload, CreatedBy: "teacher1"}
	f.repo.quizzes["q-approved"] = &models.Quiz{ID: "q-approved", Title: "on approved video", CourseID: f.course.ID, VideoID: &approvedVideo, Questions: payload, CreatedBy: "teacher1"}
	f.repo.quizzes["q-standalone"] = &models.Quiz{ID: "q-standalone", Title: "standalone", CourseID: f.course.ID, Questions: payload, CreatedBy: "teacher1"}

	ctx := context.Background()

	// A quiz rides its video's visibility: students get it only once the
	// video is APPROVED. Standalone quizzes are always listed.
	got, err := f.svc.GetCourseContent(ctx, f.course.ID, studentPrincipal("student1"))
	if err != nil {
		t.Fatalf("GetCourseContent(student) error = %v", err)
	}
	seen := map[string]bool{}
	for _, item := range got.Items {
		if item.Quiz != nil {
			seen[item.Quiz.ID] = true
		}
	}
	if seen["q-pending"] {
		t.Errorf("student sees quiz attached to a pending video: %v", seen)
	}
	if !seen["q-approved"] || !seen["q-standalone"] {
		t.Errorf("student quiz set = %v, want q-approved and q-standalone", seen)
	}

	// Teaching enrollments see all three.
	teacher := auth.Principal{UserID: "teacher1", Roles: []models.Role{models.RoleTeacher}, DefaultDashboard: models.RoleTeacher}
	got, err = f.svc.GetCourseContent(ctx, f.course.ID, teacher)
	if err != nil {
		t.Fatalf("GetCourseContent(teacher) error = %v", err)
	}
	quizCount := 0
	for _, item := range got.Items {
		if item.Quiz != nil {
			quizCount++
		}
	}
	if quizCount != 3 {
		t.Errorf("teacher quiz count = %d, want 3", quizCount)
	}
}

func TestCourseContentStripsAnswerKey(t *testing.T) {
	f := newContentFixture(t)
	f.enroll("student1", models.RoleStudent)
	f.repo.quizzes["q1"] = &models.Quiz{
		ID:       "q1",
		Title:    "Unit 1 Quiz",
		CourseID: f.course.ID,
		Questions: models.NewQuizQuestions(models.QuizPayload{
			Questions: []models.QuizQuestion{
				{Text: "2+2?", Options: []string{"3", "4"}, Answer: 1},
			},
		}),
		CreatedBy: "teacher1",
	}

	got, err := f.svc.GetCourseContent(context.Background(), f.course.ID, studentPrincipal("student1"))
	if err != nil {
		t.Fatalf("GetCourseContent() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quiz == nil {
		t.Fatalf("items = %+v, want one quiz", got.Items)
	}
	quiz := got.Items[0].Quiz
	if len(quiz.Questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(quiz.Questions))
	}
	if quiz.Questions[0].Text != "2+2?" || len(quiz.Questions[0].Options) != 2 {
		t.Errorf("question view = %+v", quiz.Questions[0])
	}
}

func TestSubmitQuizScoresAndRecordsAttempt(t *testing.T) {
	f := newContentFixture(t)
	f.enroll("student1", models.RoleStudent)
	f.repo.quizzes["q1"] = &models.Quiz{
		ID:       "q1",
		Title:    "Unit 1 Quiz",
		CourseID: f.course.ID,
		Questions: models.NewQuizQuestions(models.QuizPayload{
			Questions: []models.QuizQuestion{
				{Text: "a", Options: []string{"x", "y"}, Answer: 0},
				{Text: "b", Options: []string{"x", "y"}, Answer: 1},
				{Text: "c", Options: []string{"x", "y"}, Answer: 0},
			},
		}),
		CreatedBy: "teacher1",
	}

	resp, err := f.svc.SubmitQuiz(context.Background(), "q1", &SubmitQuizRequest{Answers: []int{0, 1, 1}}, studentPrincipal("student1"))
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if math.Abs(resp.Score-200.0/3.0) > 1e-9 || resp.MaxScore != 100 {
		t.Errorf("score = %v/%v, want 66.67/100", resp.Score, resp.MaxScore)
	}

	attempts, err := f.svc.MyAttempts(context.Background(), studentPrincipal("student1"))
	if err != nil {
		t.Fatalf("MyAttempts() error = %v", err)
	}
	if len(attempts) != 1 || attempts[0].QuizID != "q1" {
		t.Errorf("attempts = %+v, want one for q1", attempts)
	}

	// Outsiders cannot submit.
	if _, err := f.svc.SubmitQuiz(context.Background(), "q1", &SubmitQuizRequest{Answers: []int{0}}, studentPrincipal("outsider")); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("SubmitQuiz(outsider) error = %v, want ErrNotEnrolled", err)
	}
}

func TestListAttemptsRequiresTeachingAccess(t *testing.T) {
	f := newContentFixture(t)
	f.enroll("student1", models.RoleStudent)
	f.enroll("teacher1", models.RoleTeacher)
	f.repo.quizzes["q1"] = &models.Quiz{
		ID:       "q1",
		CourseID: f.course.ID,
		Questions: models.NewQuizQuestions(models.QuizPayload{
			Questions: []models.QuizQuestion{{Text: "a", Options: []string{"x", "y"}, Answer: 0}},
		}),
		CreatedBy: "teacher1",
	}

	teacher := auth.Principal{UserID: "teacher1", Roles: []models.Role{models.RoleTeacher}, DefaultDashboard: models.RoleTeacher}
	if _, err := f.svc.ListAttempts(context.Background(), "q1", teacher); err != nil {
		t.Errorf("ListAttempts(teacher) error = %v", err)
	}

	if _, err := f.svc.ListAttempts(context.Background(), "q1", studentPrincipal("student1")); !IsPermissionError(err) {
		t.Errorf("ListAttempts(student) error = %v, want permission error", err)
	}
}
