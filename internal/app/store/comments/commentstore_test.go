package commentstore_test

import (
	"strings"
	"testing"

	commentstore "github.com/dalemusser/teamhub/internal/app/store/comments"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/teamhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_SanitizesBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.TaskComment{
		TaskID:     primitive.NewObjectID(),
		AuthorID:   primitive.NewObjectID(),
		AuthorName: "Commenter",
		Body:       `<p>Looks good</p><script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if strings.Contains(created.Body, "<script>") {
		t.Errorf("script tag should be stripped, got %q", created.Body)
	}
	if !strings.Contains(created.Body, "Looks good") {
		t.Errorf("text content should survive, got %q", created.Body)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_EmptyAfterSanitize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []string{
		"",
		"   ",
		`<script>alert("only script")</script>`,
	}
	for _, body := range cases {
		if _, err := store.Create(ctx, models.TaskComment{
			TaskID:   primitive.NewObjectID(),
			AuthorID: primitive.NewObjectID(),
			Body:     body,
		}); err != commentstore.ErrEmptyBody {
			t.Errorf("body %q: expected ErrEmptyBody, got %v", body, err)
		}
	}
}

func TestStore_ListByTask_OldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	taskID := primitive.NewObjectID()
	author := primitive.NewObjectID()

	for _, body := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, models.TaskComment{
			TaskID:   taskID,
			AuthorID: author,
			Body:     body,
		}); err != nil {
			t.Fatalf("Create(%q) failed: %v", body, err)
		}
	}
	// A comment on another task stays out of the list.
	if _, err := store.Create(ctx, models.TaskComment{
		TaskID:   primitive.NewObjectID(),
		AuthorID: author,
		Body:     "elsewhere",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	comments, err := store.ListByTask(ctx, taskID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if comments[i].Body != w {
			t.Errorf("comments[%d].Body = %q, want %q", i, comments[i].Body, w)
		}
	}
}

func TestStore_DeleteByTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	taskID := primitive.NewObjectID()
	author := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := store.Create(ctx, models.TaskComment{
			TaskID: taskID, AuthorID: author, Body: "bye",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.DeleteByTask(ctx, taskID)
	if err != nil {
		t.Fatalf("DeleteByTask failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	count, err := store.CountByTask(ctx, taskID)
	if err != nil {
		t.Fatalf("CountByTask failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 comments left, got %d", count)
	}
}
