package firefly

import (
	"fmt"
	"strconv"

	"github.com/desertthunder/ffx/internal/models"
	"github.com/desertthunder/ffx/internal/shared"
)

// Normalize maps raw portal records into canonical tasks, optionally keeping
// only records from one source.
//
// A record with no task source never matches a set source filter; with no
// filter it passes through unfiltered. Records missing title, due date, set
// date or completion state are dropped and counted; a missing id is tolerated
// and defaults to 0. The returned count is the number of records dropped for
// missing required fields. When every surviving record fails conversion the
// whole batch fails.
func Normalize(raw []models.RawTask, source *models.Source) ([]models.Task, int, error) {
	filtered := raw
	if source != nil {
		filtered = make([]models.RawTask, 0, len(raw))
		for _, item := range raw {
			if item.TaskSource != nil && *item.TaskSource == *source {
				filtered = append(filtered, item)
			}
		}
	}

	tasks := make([]models.Task, 0, len(filtered))
	dropped := 0
	for _, item := range filtered {
		task, ok := convert(item)
		if !ok {
			dropped++
			continue
		}
		tasks = append(tasks, task)
	}

	if len(filtered) > 0 && len(tasks) == 0 {
		return nil, dropped, fmt.Errorf("%w: %d records missing required fields", shared.ErrConversion, dropped)
	}

	return tasks, dropped, nil
}

// convert builds one canonical task, reporting false when a required field is
// absent. Non-numeric ids fall back to 0 like absent ones.
func convert(item models.RawTask) (models.Task, bool) {
	if item.Title == nil || item.IsDone == nil || item.SetDate == nil || item.DueDate == nil {
		return models.Task{}, false
	}

	id := 0
	if item.ID != nil {
		if parsed, err := strconv.Atoi(*item.ID); err == nil {
			id = parsed
		}
	}

	return models.Task{
		ID:      id,
		Title:   *item.Title,
		IsDone:  *item.IsDone,
		SetDate: *item.SetDate,
		DueDate: *item.DueDate,
	}, true
}
