package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campushub/lms-service/internal/cache"
	"github.com/campushub/lms-service/internal/repositories"
)

// PostgreSQLRepository implements the aggregate Repository interface. One
// instance is shared by every service; transactional variants are derived
// from it per call.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user         repositories.UserRepository
	department   repositories.DepartmentRepository
	course       repositories.CourseRepository
	section      repositories.SectionRepository
	enrollment   repositories.EnrollmentRepository
	video        repositories.VideoRepository
	quiz         repositories.QuizRepository
	attempt      repositories.AttemptRepository
	announcement repositories.AnnouncementRepository
	log          repositories.LogRepository
	dashboard    repositories.DashboardRepository
}

// RepositoryConfig holds the connections the repository layer is built from.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}
	repo.initSubRepositories(config.DB, cacheManager)
	return repo
}

func (r *PostgreSQLRepository) initSubRepositories(db *gorm.DB, cacheManager *cache.CacheManager) {
	r.user = NewUserPostgreSQL(db, cacheManager)
	r.department = NewDepartmentPostgreSQL(db)
	r.course = NewCoursePostgreSQL(db, cacheManager)
	r.section = NewSectionPostgreSQL(db, cacheManager)
	r.enrollment = NewEnrollmentPostgreSQL(db)
	r.video = NewVideoPostgreSQL(db, cacheManager)
	r.quiz = NewQuizPostgreSQL(db, cacheManager)
	r.attempt = NewAttemptPostgreSQL(db)
	r.announcement = NewAnnouncementPostgreSQL(db)
	r.log = NewLogPostgreSQL(db)
	r.dashboard = NewDashboardPostgreSQL(db, cacheManager)
}

func (r *PostgreSQLRepository) User() repositories.UserRepository                 { return r.user }
func (r *PostgreSQLRepository) Department() repositories.DepartmentRepository     { return r.department }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository             { return r.course }
func (r *PostgreSQLRepository) Section() repositories.SectionRepository           { return r.section }
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository     { return r.enrollment }
func (r *PostgreSQLRepository) Video() repositories.VideoRepository               { return r.video }
func (r *PostgreSQLRepository) Quiz() repositories.QuizRepository                 { return r.quiz }
func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository           { return r.attempt }
func (r *PostgreSQLRepository) Announcement() repositories.AnnouncementRepository { return r.announcement }
func (r *PostgreSQLRepository) Log() repositories.LogRepository                   { return r.log }
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository       { return r.dashboard }

// WithTransaction executes fn against a repository bound to one transaction.
// The tx repo gets a read-bypassing cache manager: reads inside the
// transaction always hit the database, while mutations still invalidate.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCache := r.cacheManager.ReadBypass()
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: txCache,
		}
		txRepo.initSubRepositories(tx, txCache)
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	return nil
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return err
		}
	}
	return sqlDB.Close()
}

// ===== Manager =====

type postgresRepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &postgresRepositoryManager{config: config}
}

func (m *postgresRepositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *postgresRepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *postgresRepositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.repo.Ping(ctx)
}

func (m *postgresRepositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
