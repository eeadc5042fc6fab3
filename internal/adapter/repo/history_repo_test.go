package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

func newTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	db, err := infra.OpenDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryRepository(db)
}

func saveRecord(t *testing.T, r *HistoryRepository, prompt string) string {
	t.Helper()
	id, err := r.SaveGeneration(context.Background(), domain.SaveGenerationInput{
		Kind:          domain.KindTextToImage,
		Prompt:        prompt,
		MediaFilePath: "media/images/job.png",
		MediaType:     "image/png",
		Status:        domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("SaveGeneration(%q): %v", prompt, err)
	}
	return id
}

func TestSaveAndGetByID(t *testing.T) {
	r := newTestRepo(t)
	id, err := r.SaveGeneration(context.Background(), domain.SaveGenerationInput{
		Kind:           domain.KindImageToVideo,
		Prompt:         "make it move",
		SourceFilePath: "media/uploads/cat.png",
		MediaFilePath:  "media/videos/job.mp4",
		MediaType:      "video/mp4",
		Status:         domain.StatusCompleted,
		Metadata:       map[string]any{"model": "amazon.nova-reel-v1:0"},
	})
	if err != nil {
		t.Fatalf("SaveGeneration: %v", err)
	}

	got, err := r.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Kind != domain.KindImageToVideo {
		t.Fatalf("kind = %s", got.Kind)
	}
	if got.MediaURL != "/api/media/job.mp4" {
		t.Fatalf("media url = %q", got.MediaURL)
	}
	if got.SourceFileURL != "/api/media/cat.png" {
		t.Fatalf("source url = %q", got.SourceFileURL)
	}
	if got.Metadata["model"] != "amazon.nova-reel-v1:0" {
		t.Fatalf("metadata = %#v", got.Metadata)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetHistoryOrderAndLimit(t *testing.T) {
	r := newTestRepo(t)
	for i := 0; i < 5; i++ {
		saveRecord(t, r, "prompt")
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}

	records, err := r.GetHistory(context.Background(), 3, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatalf("records not in descending created_at order")
		}
	}

	rest, err := r.GetHistory(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("GetHistory offset: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("offset page len = %d, want 2", len(rest))
	}

	count, err := r.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestGetHistoryOrderWithinSameSecond(t *testing.T) {
	r := newTestRepo(t)

	// Sub-second timestamps whose natural fractional representations have
	// different lengths (.123 vs .1234). The stored format must be
	// fixed-width so string comparison in SQL stays chronological.
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	insert := func(id string, ts time.Time) {
		t.Helper()
		_, err := r.db.ExecContext(context.Background(), `
INSERT INTO generations (id, type, prompt, media_file_path, media_type, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, id, string(domain.KindTextToImage), "prompt", "media/images/"+id+".png",
			"image/png", string(domain.StatusCompleted), ts.Format(createdAtFormat))
		if err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	insert("older", base.Add(123*time.Millisecond))
	insert("newer", base.Add(123400*time.Microsecond))

	records, err := r.GetHistory(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "newer" || records[1].ID != "older" {
		t.Fatalf("order = [%s %s], want [newer older]", records[0].ID, records[1].ID)
	}
}

func TestDeleteByID(t *testing.T) {
	r := newTestRepo(t)
	id := saveRecord(t, r, "delete me")

	deleted, err := r.DeleteByID(context.Background(), id)
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if !deleted {
		t.Fatalf("expected a deleted row")
	}
	if _, err := r.GetByID(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("record still readable after delete: %v", err)
	}

	deleted, err = r.DeleteByID(context.Background(), id)
	if err != nil {
		t.Fatalf("DeleteByID second call: %v", err)
	}
	if deleted {
		t.Fatalf("second delete should report no rows")
	}
}

func TestDeleteOlderThan(t *testing.T) {
	r := newTestRepo(t)
	saveRecord(t, r, "fresh")

	n, err := r.DeleteOlderThan(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 0 {
		t.Fatalf("removed %d fresh rows", n)
	}

	n, err = r.DeleteOlderThan(context.Background(), -time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan with past cutoff: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
}
