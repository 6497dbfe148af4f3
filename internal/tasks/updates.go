package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveSchool Phase = iota
	AcquireSession
	RestoreSession
	FetchPages
	NormalizeTasks
	SaveSnapshot
)

func (p Phase) String() string {
	switch p {
	case ResolveSchool:
		return "resolve_school"
	case AcquireSession:
		return "acquire_session"
	case RestoreSession:
		return "restore_session"
	case FetchPages:
		return "fetch_pages"
	case NormalizeTasks:
		return "normalize_tasks"
	case SaveSnapshot:
		return "save_snapshot"
	default:
		return ""
	}
}

func resolveSchoolUpdate(schoolCode string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSchool,
		Message: fmt.Sprintf("Resolving school %q...", schoolCode),
	}
}

func acquireSessionUpdate(email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AcquireSession,
		Message: fmt.Sprintf("Requesting session secret for %s...", email),
	}
}

func sessionRestoredUpdate(email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RestoreSession,
		Message: fmt.Sprintf("Reusing stored session for %s", email),
	}
}

func fetchPagesUpdate(email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Message: fmt.Sprintf("Fetching tasks for %s...", email),
	}
}

func normalizeUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeTasks,
		Message: fmt.Sprintf("Normalizing %d records...", count),
	}
}

func saveSnapshotUpdate(email string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveSnapshot,
		Message: fmt.Sprintf("Saving %d tasks for %s", count, email),
	}
}
