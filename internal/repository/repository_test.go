package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/tasktrack/internal/database"
	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/repository"
)

// RepositoryTestSuite runs against a real PostgreSQL named by DATABASE_URL.
type RepositoryTestSuite struct {
	suite.Suite
	db       *database.DB
	pool     *pgxpool.Pool
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository

	user1 *domain.User
	user2 *domain.User
}

func TestRepositorySuite(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping PostgreSQL integration tests")
	}
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupSuite() {
	ctx := context.Background()

	db, err := database.New(ctx, os.Getenv("DATABASE_URL"), database.DefaultPoolOptions)
	s.Require().NoError(err, "failed to connect to database")
	s.db = db
	s.pool = db.Pool()

	s.Require().NoError(database.RunMigrations(ctx, s.pool), "failed to run migrations")

	s.taskRepo = repository.NewTaskRepository(s.pool)
	s.userRepo = repository.NewUserRepository(s.pool)
}

func (s *RepositoryTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "TRUNCATE users, tasks")
	s.Require().NoError(err, "failed to truncate tables")

	s.user1, err = s.userRepo.Create(ctx, "alice")
	s.Require().NoError(err)
	s.user2, err = s.userRepo.Create(ctx, "bob")
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *RepositoryTestSuite) createTask(title string, at time.Time) *domain.Task {
	task, err := domain.NewTask(domain.NewTaskParams{Title: title, CreatedBy: s.user1.ID}, at)
	s.Require().NoError(err)

	created, err := s.taskRepo.Create(context.Background(), task)
	s.Require().NoError(err)
	s.Require().NotEmpty(created.ID)
	return created
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	ctx := context.Background()
	created := s.createTask("Write release notes", time.Now())

	task, err := s.taskRepo.GetByID(ctx, created.ID)
	s.Require().NoError(err)

	s.Equal("Write release notes", task.Title)
	s.Equal(domain.TaskStatusTodo, task.Status)
	s.Equal(domain.TaskPriorityMedium, task.Priority)
	s.Equal(s.user1.ID, task.CreatedBy)
	s.Empty(task.Comments)
	s.Require().Len(task.Activity, 1)
	s.Equal(domain.ActionCreatedTask, task.Activity[0].Action)
}

func (s *RepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.taskRepo.GetByID(context.Background(), "99999999-9999-9999-9999-999999999999")
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestList_Pagination() {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		s.createTask(fmt.Sprintf("Task %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		limit, offset, want int
	}{
		{3, 0, 3},
		{3, 3, 3},
		{3, 6, 1},
		{3, 9, 0},
		{10, 0, 7},
	}
	for _, tt := range tests {
		tasks, total, err := s.taskRepo.List(ctx, repository.TaskListFilters{Limit: tt.limit, Offset: tt.offset})
		s.Require().NoError(err)
		s.Equal(7, total)
		s.Len(tasks, tt.want, "limit=%d offset=%d", tt.limit, tt.offset)
	}

	tasks, _, err := s.taskRepo.List(ctx, repository.TaskListFilters{Limit: 1})
	s.Require().NoError(err)
	s.Equal("Task 6", tasks[0].Title, "most recently updated first")
}

func (s *RepositoryTestSuite) TestList_SearchCaseInsensitive() {
	ctx := context.Background()
	s.createTask("Fix Bug", time.Now())
	s.createTask("Ship 100% of features", time.Now())
	s.createTask("Refactor", time.Now())

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskListFilters{Search: "bug", Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(tasks, 1)
	s.Equal("Fix Bug", tasks[0].Title)

	// Wildcards in the search term match literally.
	_, total, err = s.taskRepo.List(ctx, repository.TaskListFilters{Search: "%", Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *RepositoryTestSuite) TestList_EqualityFilters() {
	ctx := context.Background()
	task := s.createTask("Assigned", time.Now())
	s.createTask("Unassigned", time.Now())

	status := domain.TaskStatusDone
	_, err := s.taskRepo.Update(ctx, task.ID, domain.TaskUpdate{
		AssigneeID: &s.user2.ID,
		Status:     &status,
	}, domain.ActivityEntry{UserID: s.user1.ID, Action: domain.ActionUpdatedTask, Timestamp: time.Now()}, time.Now())
	s.Require().NoError(err)

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskListFilters{AssigneeID: &s.user2.ID, Status: &status, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("Assigned", tasks[0].Title)
}

func (s *RepositoryTestSuite) TestUpdate_AppendsActivityAndTouches() {
	ctx := context.Background()
	created := s.createTask("Original", time.Now().Add(-time.Minute))

	title := "Renamed"
	now := time.Now()
	task, err := s.taskRepo.Update(ctx, created.ID, domain.TaskUpdate{Title: &title},
		domain.ActivityEntry{UserID: s.user2.ID, Action: domain.ActionUpdatedTask, Timestamp: now}, now)
	s.Require().NoError(err)

	s.Equal("Renamed", task.Title)
	s.Equal(s.user1.ID, task.CreatedBy)
	s.False(task.UpdatedAt.Before(task.CreatedAt))
	s.True(task.UpdatedAt.After(created.UpdatedAt))
	s.Require().Len(task.Activity, 2)
	s.Equal(domain.ActionUpdatedTask, task.Activity[1].Action)
	s.Equal(s.user2.ID, task.Activity[1].UserID)
}

func (s *RepositoryTestSuite) TestUpdate_NotFound() {
	_, err := s.taskRepo.Update(context.Background(), "99999999-9999-9999-9999-999999999999", domain.TaskUpdate{},
		domain.ActivityEntry{Action: domain.ActionUpdatedTask}, time.Now())
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestAppendComment_Concurrent() {
	ctx := context.Background()
	created := s.createTask("Busy", time.Now())

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			now := time.Now()
			_, err := s.taskRepo.AppendComment(ctx, created.ID,
				domain.Comment{UserID: s.user2.ID, Text: fmt.Sprintf("comment %d", i), CreatedAt: now},
				domain.ActivityEntry{UserID: s.user2.ID, Action: domain.ActionAddedComment, Timestamp: now},
				now)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	task, err := s.taskRepo.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Len(task.Comments, writers)
	s.Len(task.Activity, writers+1)
}

func (s *RepositoryTestSuite) TestDelete_Idempotent() {
	ctx := context.Background()
	created := s.createTask("Doomed", time.Now())

	s.Require().NoError(s.taskRepo.Delete(ctx, created.ID))
	s.Require().NoError(s.taskRepo.Delete(ctx, created.ID))

	_, err := s.taskRepo.GetByID(ctx, created.ID)
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *RepositoryTestSuite) TestUsernames() {
	names, err := s.userRepo.Usernames(context.Background(),
		[]string{s.user1.ID, s.user2.ID, "99999999-9999-9999-9999-999999999999"})
	s.Require().NoError(err)

	s.Equal(map[string]string{s.user1.ID: "alice", s.user2.ID: "bob"}, names)
}

func (s *RepositoryTestSuite) TestCreateUser_DuplicateUsername() {
	_, err := s.userRepo.Create(context.Background(), "alice")
	s.ErrorIs(err, domain.ErrUsernameTaken)
}

func (s *RepositoryTestSuite) TestGetStats() {
	ctx := context.Background()
	s.createTask("One", time.Now())
	task := s.createTask("Two", time.Now())

	past := time.Now().Add(-24 * time.Hour)
	priority := domain.TaskPriorityHigh
	_, err := s.taskRepo.Update(ctx, task.ID, domain.TaskUpdate{DueDate: &past, Priority: &priority},
		domain.ActivityEntry{UserID: s.user1.ID, Action: domain.ActionUpdatedTask, Timestamp: time.Now()}, time.Now())
	s.Require().NoError(err)

	stats, err := s.taskRepo.GetStats(ctx, time.Now())
	s.Require().NoError(err)

	s.Equal(2, stats.Total)
	s.Equal(2, stats.ByStatus["todo"])
	s.Equal(1, stats.ByPriority["high"])
	s.Equal(1, stats.ByPriority["medium"])
	s.Equal(1, stats.OverdueCount)
}
