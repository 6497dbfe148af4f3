package firefly

import (
	"errors"
	"testing"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

func strptr(s string) *string { return &s }

func boolptr(b bool) *bool { return &b }

func srcptr(s models.Source) *models.Source { return &s }

// fullRecord returns a raw record with every required field populated.
func fullRecord(id string) models.RawTask {
	return models.RawTask{
		ID:         strptr(id),
		Title:      strptr("Task " + id),
		IsDone:     boolptr(false),
		SetDate:    strptr("2024-09-01"),
		DueDate:    strptr("2024-09-14"),
		TaskSource: srcptr(models.SourceFF),
	}
}

func TestNormalize(t *testing.T) {
	t.Run("converts complete records", func(t *testing.T) {
		tasks, dropped, err := Normalize([]models.RawTask{fullRecord("1"), fullRecord("2")}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dropped != 0 {
			t.Errorf("expected no dropped records, got %d", dropped)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		if tasks[0].ID != 1 || tasks[1].ID != 2 {
			t.Errorf("expected ids 1 and 2, got %d and %d", tasks[0].ID, tasks[1].ID)
		}
	})

	t.Run("absent or unparseable id defaults to zero", func(t *testing.T) {
		missing := fullRecord("1")
		missing.ID = nil
		garbled := fullRecord("2")
		garbled.ID = strptr("not-a-number")

		tasks, _, err := Normalize([]models.RawTask{missing, garbled}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		for i, task := range tasks {
			if task.ID != 0 {
				t.Errorf("task %d: expected id 0, got %d", i, task.ID)
			}
		}
	})

	t.Run("records missing required fields are dropped and counted", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*models.RawTask)
		}{
			{name: "no title", mutate: func(r *models.RawTask) { r.Title = nil }},
			{name: "no completion state", mutate: func(r *models.RawTask) { r.IsDone = nil }},
			{name: "no set date", mutate: func(r *models.RawTask) { r.SetDate = nil }},
			{name: "no due date", mutate: func(r *models.RawTask) { r.DueDate = nil }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				broken := fullRecord("1")
				tt.mutate(&broken)

				tasks, dropped, err := Normalize([]models.RawTask{broken, fullRecord("2")}, nil)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if dropped != 1 {
					t.Errorf("expected 1 dropped record, got %d", dropped)
				}
				if len(tasks) != 1 || tasks[0].ID != 2 {
					t.Errorf("expected only task 2 to survive, got %+v", tasks)
				}
			})
		}
	})

	t.Run("fails when no record survives", func(t *testing.T) {
		broken := fullRecord("1")
		broken.Title = nil

		_, dropped, err := Normalize([]models.RawTask{broken}, nil)
		if !errors.Is(err, shared.ErrConversion) {
			t.Errorf("expected conversion error, got %v", err)
		}
		if dropped != 1 {
			t.Errorf("expected 1 dropped record, got %d", dropped)
		}
	})

	t.Run("empty input is not a failure", func(t *testing.T) {
		tasks, dropped, err := Normalize(nil, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tasks) != 0 || dropped != 0 {
			t.Errorf("expected empty result, got %d tasks %d dropped", len(tasks), dropped)
		}
	})

	t.Run("source filter", func(t *testing.T) {
		ff := fullRecord("1")
		gc := fullRecord("2")
		gc.TaskSource = srcptr(models.SourceGC)
		unsourced := fullRecord("3")
		unsourced.TaskSource = nil

		t.Run("keeps only matching records", func(t *testing.T) {
			tasks, _, err := Normalize([]models.RawTask{ff, gc, unsourced}, srcptr(models.SourceGC))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tasks) != 1 || tasks[0].ID != 2 {
				t.Errorf("expected only task 2, got %+v", tasks)
			}
		})

		t.Run("record without a source never matches", func(t *testing.T) {
			tasks, _, err := Normalize([]models.RawTask{unsourced, ff}, srcptr(models.SourceFF))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tasks) != 1 || tasks[0].ID != 1 {
				t.Errorf("expected only task 1, got %+v", tasks)
			}
		})

		t.Run("no filter passes everything through", func(t *testing.T) {
			tasks, _, err := Normalize([]models.RawTask{ff, gc, unsourced}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tasks) != 3 {
				t.Errorf("expected 3 tasks, got %d", len(tasks))
			}
		})

		t.Run("filtering everything out is not a conversion failure", func(t *testing.T) {
			tasks, dropped, err := Normalize([]models.RawTask{ff}, srcptr(models.SourceGC))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tasks) != 0 || dropped != 0 {
				t.Errorf("expected empty result, got %d tasks %d dropped", len(tasks), dropped)
			}
		})
	})
}
