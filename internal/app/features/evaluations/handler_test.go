package evaluations_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/teamhub/internal/app/features/evaluations"
	evaluationstore "github.com/dalemusser/teamhub/internal/app/store/evaluations"
	taskstore "github.com/dalemusser/teamhub/internal/app/store/tasks"
	"github.com/dalemusser/teamhub/internal/app/system/auth"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*evaluations.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return evaluations.NewHandler(db, zap.NewNop()), db
}

func asUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	})
}

func run(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	// Error paths render templates, which may panic without initialized templates.
	func() {
		defer func() { _ = recover() }()
		h(rec, r)
	}()
	return rec
}

func postForm(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return run(h, r)
}

// completedTask creates a team with a manager and an assignee, plus a task
// assigned to the assignee and moved to completed.
func completedTask(t *testing.T, ctx context.Context, db *mongo.Database, fx *testutil.Fixtures) (mgr, assignee models.User, task models.Task) {
	t.Helper()

	mgr = fx.CreateUser(ctx, "Manager", "mgr@example.com", models.RoleManager)
	assignee = fx.CreateUser(ctx, "Assignee", "assignee@example.com", models.RoleMember)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, mgr.ID, models.TeamRoleManager)
	fx.AddMembership(ctx, team.ID, assignee.ID, models.TeamRoleMember)

	task = fx.CreateTask(ctx, team.ID, mgr.ID, "Finished work")
	store := taskstore.New(db)
	if err := store.UpdateInfo(ctx, task.ID, taskstore.Update{
		Title:      task.Title,
		Priority:   task.Priority,
		AssigneeID: &assignee.ID,
	}); err != nil {
		t.Fatalf("assign task: %v", err)
	}
	done, err := store.SetStatus(ctx, task.ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	return mgr, assignee, done
}

func postEvaluation(handler *evaluations.Handler, taskID primitive.ObjectID, u models.User, score, comment string) *httptest.ResponseRecorder {
	form := url.Values{
		"task_id": {taskID.Hex()},
		"score":   {score},
		"comment": {comment},
	}
	req := httptest.NewRequest("POST", "/evaluations", strings.NewReader(form.Encode()))
	req = asUser(req, u)
	return postForm(handler.HandleCreate, req)
}

func TestHandleCreate_ManagerEvaluatesCompletedTask(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr, assignee, task := completedTask(t, ctx, db, fx)

	rec := postEvaluation(handler, task.ID, mgr, "4", "Solid work.")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}

	evals, err := evaluationstore.New(db).ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(evals) != 1 {
		t.Fatalf("expected one evaluation, got %d", len(evals))
	}
	e := evals[0]
	if e.Score != 4 {
		t.Errorf("score: got %d, want 4", e.Score)
	}
	if e.EvaluatorID != mgr.ID {
		t.Errorf("evaluator: got %s, want %s", e.EvaluatorID.Hex(), mgr.ID.Hex())
	}
	if e.UserID != assignee.ID {
		t.Errorf("rated user: got %s, want %s", e.UserID.Hex(), assignee.ID.Hex())
	}
}

func TestHandleCreate_SecondEvaluationBySameManagerRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr, _, task := completedTask(t, ctx, db, fx)

	if rec := postEvaluation(handler, task.ID, mgr, "4", ""); rec.Code != http.StatusSeeOther {
		t.Fatalf("first evaluation: expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if rec := postEvaluation(handler, task.ID, mgr, "5", ""); rec.Code == http.StatusSeeOther {
		t.Fatalf("second evaluation should be rejected, got %d", rec.Code)
	}

	evals, err := evaluationstore.New(db).ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(evals) != 1 {
		t.Errorf("expected one evaluation, got %d", len(evals))
	}
}

func TestHandleCreate_MemberForbidden(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	_, assignee, task := completedTask(t, ctx, db, fx)

	rec := postEvaluation(handler, task.ID, assignee, "5", "Rating myself.")
	if rec.Code == http.StatusSeeOther {
		t.Fatalf("member should not evaluate, got %d", rec.Code)
	}

	evals, err := evaluationstore.New(db).ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(evals) != 0 {
		t.Errorf("expected no evaluations, got %d", len(evals))
	}
}

func TestHandleCreate_OpenTaskRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr := fx.CreateUser(ctx, "Manager", "mgr@example.com", models.RoleManager)
	team := fx.CreateTeam(ctx, "Core Team")
	fx.AddMembership(ctx, team.ID, mgr.ID, models.TeamRoleManager)
	task := fx.CreateTask(ctx, team.ID, mgr.ID, "Still open")

	rec := postEvaluation(handler, task.ID, mgr, "3", "")
	if rec.Code == http.StatusSeeOther {
		t.Fatalf("open task should not be evaluable, got %d", rec.Code)
	}
}

func TestHandleCreate_ScoreOutOfRangeRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr, _, task := completedTask(t, ctx, db, fx)

	for _, score := range []string{"0", "6", "abc"} {
		if rec := postEvaluation(handler, task.ID, mgr, score, ""); rec.Code == http.StatusSeeOther {
			t.Errorf("score %q should be rejected, got %d", score, rec.Code)
		}
	}

	evals, err := evaluationstore.New(db).ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(evals) != 0 {
		t.Errorf("expected no evaluations, got %d", len(evals))
	}
}

func TestAverageAfterMultipleEvaluators(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	mgr, assignee, task := completedTask(t, ctx, db, fx)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")

	if rec := postEvaluation(handler, task.ID, mgr, "4", ""); rec.Code != http.StatusSeeOther {
		t.Fatalf("manager evaluation: got %d", rec.Code)
	}
	if rec := postEvaluation(handler, task.ID, admin, "2", ""); rec.Code != http.StatusSeeOther {
		t.Fatalf("admin evaluation: got %d", rec.Code)
	}

	avg, count, err := evaluationstore.New(db).AverageScoreForUser(ctx, assignee.ID)
	if err != nil {
		t.Fatalf("AverageScoreForUser: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}
	if avg != 3.0 {
		t.Errorf("average: got %v, want 3.0", avg)
	}
}
