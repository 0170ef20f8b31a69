package evaluationstore_test

import (
	"math"
	"testing"

	evaluationstore "github.com/dalemusser/teamhub/internal/app/store/evaluations"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := evaluationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Evaluation{
		TaskID:      primitive.NewObjectID(),
		EvaluatorID: primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		Score:       4,
		Comment:     "Solid work",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_ScoreBounds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := evaluationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, score := range []int{0, 6, -1} {
		if _, err := store.Create(ctx, models.Evaluation{
			TaskID:      primitive.NewObjectID(),
			EvaluatorID: primitive.NewObjectID(),
			UserID:      primitive.NewObjectID(),
			Score:       score,
		}); err == nil {
			t.Errorf("score %d: expected error", score)
		}
	}

	for _, score := range []int{1, 5} {
		if _, err := store.Create(ctx, models.Evaluation{
			TaskID:      primitive.NewObjectID(),
			EvaluatorID: primitive.NewObjectID(),
			UserID:      primitive.NewObjectID(),
			Score:       score,
		}); err != nil {
			t.Errorf("score %d: unexpected error %v", score, err)
		}
	}
}

func TestStore_Create_DuplicatePerEvaluator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := evaluationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	taskID := primitive.NewObjectID()
	evaluator := primitive.NewObjectID()
	user := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Evaluation{
		TaskID: taskID, EvaluatorID: evaluator, UserID: user, Score: 3,
	}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same evaluator rating the same task again is rejected.
	if _, err := store.Create(ctx, models.Evaluation{
		TaskID: taskID, EvaluatorID: evaluator, UserID: user, Score: 5,
	}); err != evaluationstore.ErrDuplicateEvaluation {
		t.Errorf("expected ErrDuplicateEvaluation, got %v", err)
	}

	// A different evaluator may rate the same task.
	if _, err := store.Create(ctx, models.Evaluation{
		TaskID: taskID, EvaluatorID: primitive.NewObjectID(), UserID: user, Score: 4,
	}); err != nil {
		t.Errorf("second evaluator should succeed, got %v", err)
	}
}

func TestStore_AverageScoreForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := evaluationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()

	// No evaluations yet.
	avg, n, err := store.AverageScoreForUser(ctx, user)
	if err != nil {
		t.Fatalf("AverageScoreForUser failed: %v", err)
	}
	if avg != 0 || n != 0 {
		t.Errorf("expected (0, 0), got (%v, %d)", avg, n)
	}

	for _, score := range []int{2, 3, 5} {
		if _, err := store.Create(ctx, models.Evaluation{
			TaskID:      primitive.NewObjectID(),
			EvaluatorID: primitive.NewObjectID(),
			UserID:      user,
			Score:       score,
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	avg, n, err = store.AverageScoreForUser(ctx, user)
	if err != nil {
		t.Fatalf("AverageScoreForUser failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 evaluations, got %d", n)
	}
	if math.Abs(avg-10.0/3.0) > 1e-9 {
		t.Errorf("expected avg 3.33..., got %v", avg)
	}
}
