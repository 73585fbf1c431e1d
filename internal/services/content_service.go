package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/auth"
	"github.com/campushub/lms-service/internal/models"
	"github.com/campushub/lms-service/internal/repositories"
	"github.com/campushub/lms-service/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditRecorder
}

func NewContentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, audit AuditRecorder) ContentService {
	return &contentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		audit:     audit,
	}
}

// ===== VIDEOS =====

func (s *contentService) CreateVideo(ctx context.Context, req *CreateVideoRequest, actor auth.Principal) (*models.Video, error) {
	if !actor.HasRole(models.RoleTeacher) {
		return nil, NewPermissionError("video.create", "requires TEACHER role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	if _, err := s.repo.Course().GetByID(ctx, s.db, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	video := &models.Video{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		CourseID:    req.CourseID,
		UploadedBy:  actor.UserID,
		Status:      models.VideoPending,
		Deadline:    req.Deadline,
	}
	if err := s.repo.Video().Create(ctx, s.db, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "video.create", map[string]interface{}{"video_id": video.ID, "course_id": req.CourseID})
	return video, nil
}

func (s *contentService) ReviewVideo(ctx context.Context, videoID string, req *ReviewVideoRequest, actor auth.Principal) (*models.Video, error) {
	if !actor.HasRole(models.RoleCC) {
		return nil, NewPermissionError("video.review", "requires CC role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	video, err := s.repo.Video().GetByID(ctx, s.db, videoID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	video.Status = req.Status
	if err := s.repo.Video().Update(ctx, s.db, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	s.logger.Info("Video reviewed", "video_id", videoID, "status", req.Status, "actor", actor.UserID)
	s.audit.Record(ctx, actor.UserID, "video.review", map[string]interface{}{"video_id": videoID, "status": req.Status})
	return video, nil
}

func (s *contentService) DeleteVideo(ctx context.Context, videoID string, actor auth.Principal) error {
	video, err := s.repo.Video().GetByID(ctx, s.db, videoID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to get video: %w", err)
	}
	// Uploaders manage their own videos; CC and above manage any.
	if video.UploadedBy != actor.UserID && !actor.HasRole(models.RoleCC) {
		return NewPermissionError("video.delete", "not the uploader")
	}

	if err := s.repo.Video().Delete(ctx, s.db, videoID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "video.delete", map[string]interface{}{"video_id": videoID})
	return nil
}

func (s *contentService) ListPendingVideos(ctx context.Context, limit, offset int) ([]*models.Video, int64, error) {
	return s.repo.Video().ListPending(ctx, s.db, limit, offset)
}

// ===== QUIZZES =====

func (s *contentService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, actor auth.Principal) (*models.Quiz, error) {
	if !actor.HasRole(models.RoleTeacher) {
		return nil, NewPermissionError("quiz.create", "requires TEACHER role or above")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}
	if err := s.validator.ValidateQuizPayload(req.Payload); err != nil {
		return nil, NewValidationError(err)
	}

	if _, err := s.repo.Course().GetByID(ctx, s.db, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if req.VideoID != nil {
		video, err := s.repo.Video().GetByID(ctx, s.db, *req.VideoID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrVideoNotFound
			}
			return nil, fmt.Errorf("failed to get video: %w", err)
		}
		if video.CourseID != req.CourseID {
			return nil, NewValidationError(fmt.Errorf("video belongs to a different course"))
		}
	}

	quiz := &models.Quiz{
		Title:     req.Title,
		VideoID:   req.VideoID,
		CourseID:  req.CourseID,
		Questions: models.NewQuizQuestions(req.Payload),
		CreatedBy: actor.UserID,
	}
	if err := s.repo.Quiz().Create(ctx, s.db, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.audit.Record(ctx, actor.UserID, "quiz.create", map[string]interface{}{"quiz_id": quiz.ID, "course_id": req.CourseID})
	return quiz, nil
}

func (s *contentService) DeleteQuiz(ctx context.Context, quizID string, actor auth.Principal) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, s.db, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.CreatedBy != actor.UserID && !actor.HasRole(models.RoleCC) {
		return NewPermissionError("quiz.delete", "not the creator")
	}

	if err := s.repo.Quiz().Delete(ctx, s.db, quizID); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	s.audit.Record(ctx, actor.UserID, "quiz.delete", map[string]interface{}{"quiz_id": quizID})
	return nil
}

// ===== ACCESS RESOLUTION =====

// courseAccess is the visibility decision for one principal on one course.
type courseAccess struct {
	isTeacher bool
	isStudent bool
	elevated  bool
}

func (a courseAccess) seesAllStatuses() bool {
	return a.isTeacher || a.elevated
}

func (s *contentService) resolveAccess(ctx context.Context, courseID string, principal auth.Principal) (courseAccess, error) {
	// Elevated global roles browse any course without an enrollment.
	if principal.HasRole(models.RoleCC) {
		return courseAccess{elevated: true}, nil
	}

	enrollments, err := s.repo.Enrollment().FindForCourse(ctx, s.db, principal.UserID, courseID)
	if err != nil {
		return courseAccess{}, fmt.Errorf("failed to resolve enrollments: %w", err)
	}
	if len(enrollments) == 0 {
		return courseAccess{}, ErrNotEnrolled
	}

	var access courseAccess
	for _, e := range enrollments {
		switch e.Role {
		case models.RoleTeacher:
			access.isTeacher = true
		case models.RoleStudent:
			access.isStudent = true
		}
	}
	return access, nil
}

func (s *contentService) GetCourseContent(ctx context.Context, courseID string, principal auth.Principal) (*CourseContentResponse, error) {
	if _, err := s.repo.Course().GetByID(ctx, s.db, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	access, err := s.resolveAccess(ctx, courseID, principal)
	if err != nil {
		return nil, err
	}

	filters := repositories.VideoFilters{}
	if !access.seesAllStatuses() {
		approved := models.VideoApproved
		filters.Status = &approved
	}
	videos, _, err := s.repo.Video().ListByCourse(ctx, s.db, courseID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	quizzes, err := s.repo.Quiz().ListByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	// Students only get quizzes that are standalone or attached to a video
	// they can see; a quiz on a PENDING or REJECTED video stays hidden.
	if !access.seesAllStatuses() {
		visible := make(map[string]bool, len(videos))
		for _, v := range videos {
			visible[v.ID] = true
		}
		kept := quizzes[:0]
		for _, q := range quizzes {
			if q.VideoID == nil || visible[*q.VideoID] {
				kept = append(kept, q)
			}
		}
		quizzes = kept
	}

	resp := &CourseContentResponse{CourseID: courseID, Items: make([]ContentItem, 0, len(videos)+len(quizzes))}
	for _, v := range videos {
		resp.Items = append(resp.Items, ContentItem{Kind: models.ContentVideo, Video: v})
	}
	for _, q := range quizzes {
		resp.Items = append(resp.Items, ContentItem{Kind: models.ContentQuiz, Quiz: quizViewOf(q)})
	}
	return resp, nil
}

// quizViewOf strips the answer key before a quiz leaves the service.
func quizViewOf(q *models.Quiz) *QuizView {
	payload := q.Questions.Data()
	view := &QuizView{
		ID:        q.ID,
		Title:     q.Title,
		VideoID:   q.VideoID,
		CourseID:  q.CourseID,
		Questions: make([]QuizQuestionView, len(payload.Questions)),
		CreatedAt: q.CreatedAt,
	}
	for i, question := range payload.Questions {
		view.Questions[i] = QuizQuestionView{Text: question.Text, Options: question.Options}
	}
	return view
}

// ===== SCORING =====

// ScoreAnswers grades a submission against an answer key. The score is the
// percentage of correct answers, capped at 100. Extra submitted answers are
// ignored; missing ones count as wrong. An empty key scores zero.
func ScoreAnswers(key, submitted []int) (score, maxScore float64) {
	maxScore = 100
	if len(key) == 0 {
		return 0, maxScore
	}

	correct := 0
	for i, want := range key {
		if i < len(submitted) && submitted[i] == want {
			correct++
		}
	}
	score = float64(correct) / float64(len(key)) * 100
	score = math.Min(score, maxScore)
	return score, maxScore
}

func (s *contentService) SubmitQuiz(ctx context.Context, quizID string, req *SubmitQuizRequest, principal auth.Principal) (*AttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError(err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, s.db, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	access, err := s.resolveAccess(ctx, quiz.CourseID, principal)
	if err != nil {
		return nil, err
	}
	if !access.isStudent && !access.elevated {
		return nil, NewPermissionError("quiz.submit", "only enrolled students submit attempts")
	}

	payload := quiz.Questions.Data()
	score, maxScore := ScoreAnswers(payload.AnswerKey(), req.Answers)

	attempt := &models.QuizAttempt{
		QuizID:   quizID,
		UserID:   principal.UserID,
		Answers:  req.Answers,
		Score:    score,
		MaxScore: maxScore,
	}
	if err := s.repo.Attempt().Create(ctx, s.db, attempt); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.logger.Info("Quiz attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", principal.UserID,
		"score", score)
	s.audit.Record(ctx, principal.UserID, "quiz.submit", map[string]interface{}{"quiz_id": quizID, "score": score})

	return &AttemptResponse{
		ID:          attempt.ID,
		QuizID:      quizID,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		CompletedAt: attempt.CompletedAt,
	}, nil
}

func (s *contentService) ListAttempts(ctx context.Context, quizID string, principal auth.Principal) ([]*models.QuizAttempt, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, s.db, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	access, err := s.resolveAccess(ctx, quiz.CourseID, principal)
	if err != nil {
		return nil, err
	}
	if !access.seesAllStatuses() {
		return nil, NewPermissionError("quiz.attempts", "requires a teaching enrollment")
	}
	return s.repo.Attempt().ListByQuiz(ctx, s.db, quizID)
}

func (s *contentService) MyAttempts(ctx context.Context, principal auth.Principal) ([]*models.QuizAttempt, error) {
	return s.repo.Attempt().ListByUser(ctx, s.db, principal.UserID)
}
