package services

import (
	"context"
	"testing"
	"time"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTaskService(t *testing.T) (*TaskService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTaskService(db), mock
}

func taskColumns() []string {
	return []string{
		"id", "task_code", "title", "description", "project_id", "workspace_id",
		"status", "priority", "assigned_to", "created_by", "due_date", "created_at", "updated_at",
	}
}

func TestTaskService_Create_DefaultsAndSelfAssign(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()
	userID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id`).
		WithArgs(projectID, workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM tasks WHERE project_id`).
		WithArgs(projectID, "Ship it").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	rows := pgxmock.NewRows(taskColumns()).
		AddRow(taskID, "a1b2c3", "Ship it", (*string)(nil), projectID, workspaceID,
			models.TaskStatusTodo, models.TaskPriorityMedium, userID, userID, (*time.Time)(nil), now, now)
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "Ship it", (*string)(nil), projectID, workspaceID,
			models.TaskStatusTodo, models.TaskPriorityMedium, userID, userID, (*time.Time)(nil)).
		WillReturnRows(rows)

	task, err := svc.Create(ctx, workspaceID, projectID, userID, TaskInput{Title: "Ship it"})

	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, userID, task.AssignedToID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_ProjectNotInWorkspace(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id`).
		WithArgs(projectID, workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.Create(ctx, workspaceID, projectID, uuid.New(), TaskInput{Title: "Lost"})

	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_AssigneeNotMember(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()
	outsiderID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id`).
		WithArgs(projectID, workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM members WHERE workspace_id`).
		WithArgs(workspaceID, outsiderID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.Create(ctx, workspaceID, projectID, uuid.New(), TaskInput{
		Title:      "Assigned away",
		AssignedTo: &outsiderID,
	})

	assert.ErrorIs(t, err, ErrAssigneeNotMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_DuplicateTitle(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id`).
		WithArgs(projectID, workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM tasks WHERE project_id`).
		WithArgs(projectID, "Ship it").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(ctx, workspaceID, projectID, uuid.New(), TaskInput{Title: "Ship it"})

	assert.ErrorIs(t, err, ErrDuplicateTaskTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectTaskLookup(mock pgxmock.PgxPoolIface, workspaceID, projectID, taskID, assigneeID uuid.UUID) {
	now := time.Now()
	rows := pgxmock.NewRows(taskColumns()).
		AddRow(taskID, "a1b2c3", "Existing", (*string)(nil), projectID, workspaceID,
			models.TaskStatusInProgress, models.TaskPriorityHigh, assigneeID, assigneeID, (*time.Time)(nil), now, now)
	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND project_id = \$2 AND workspace_id = \$3`).
		WithArgs(taskID, projectID, workspaceID).
		WillReturnRows(rows)
}

func TestTaskService_Update_KeepsStatusWhenBlank(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	assigneeID := uuid.New()
	now := time.Now()

	expectTaskLookup(mock, workspaceID, projectID, taskID, assigneeID)

	rows := pgxmock.NewRows(taskColumns()).
		AddRow(taskID, "a1b2c3", "Retitled", (*string)(nil), projectID, workspaceID,
			models.TaskStatusInProgress, models.TaskPriorityHigh, assigneeID, assigneeID, (*time.Time)(nil), now, now)
	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs("Retitled", (*string)(nil), models.TaskStatusInProgress, models.TaskPriorityHigh, assigneeID, (*time.Time)(nil), taskID).
		WillReturnRows(rows)

	task, err := svc.Update(ctx, workspaceID, projectID, taskID, TaskInput{Title: "Retitled"})

	require.NoError(t, err)
	assert.Equal(t, "Retitled", task.Title)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List_Filtered(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM workspaces WHERE id`).
		WithArgs(workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	statuses := []string{models.TaskStatusTodo, models.TaskStatusInProgress}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE workspace_id = \$1 AND project_id = \$2 AND status = ANY\(\$3\)`).
		WithArgs(workspaceID, projectID, statuses).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	rows := pgxmock.NewRows(taskColumns()).
		AddRow(uuid.New(), "x9y8z7", "Only match", (*string)(nil), projectID, workspaceID,
			models.TaskStatusTodo, models.TaskPriorityLow, uuid.New(), uuid.New(), (*time.Time)(nil), now, now)
	mock.ExpectQuery(`FROM tasks\s+WHERE workspace_id = \$1 AND project_id = \$2 AND status = ANY\(\$3\)`).
		WithArgs(workspaceID, projectID, statuses, 10, 0).
		WillReturnRows(rows)

	filters := TaskFilters{ProjectID: &projectID, Status: statuses}
	tasks, total, err := svc.List(ctx, workspaceID, filters, 1, 10)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Only match", tasks[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List_WorkspaceMissing(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM workspaces WHERE id`).
		WithArgs(workspaceID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, _, err := svc.List(ctx, workspaceID, TaskFilters{}, 1, 10)

	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_GetByID_ScopedToProject(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND project_id = \$2 AND workspace_id = \$3`).
		WithArgs(taskID, projectID, workspaceID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, workspaceID, projectID, taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Delete(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	taskID := uuid.New()

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND workspace_id = \$2`).
		WithArgs(taskID, workspaceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(ctx, workspaceID, taskID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Delete_NotFound(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	workspaceID := uuid.New()
	taskID := uuid.New()

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND workspace_id = \$2`).
		WithArgs(taskID, workspaceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(ctx, workspaceID, taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
