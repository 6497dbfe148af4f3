package models

import "fmt"

// CompletionStatus filters tasks by completion state. Values are the literal
// strings the listing endpoint expects.
type CompletionStatus string

const (
	CompletionTodo           CompletionStatus = "Todo"
	CompletionDoneOrArchived CompletionStatus = "DoneOrArchived"
	CompletionAll            CompletionStatus = "AllIncludingArchived"
)

// ReadStatus filters tasks by read state.
type ReadStatus string

const (
	ReadAll    ReadStatus = "All"
	OnlyRead   ReadStatus = "OnlyRead"
	OnlyUnread ReadStatus = "OnlyUnread"
)

// SortBy selects the sorting column of the listing response.
type SortBy string

const (
	SortByDueDate SortBy = "DueDate"
	SortBySetDate SortBy = "SetDate"
)

// SortOrder selects the sorting direction of the listing response.
type SortOrder string

const (
	Ascending  SortOrder = "Ascending"
	Descending SortOrder = "Descending"
)

// Source identifies the provider a task record originated from.
type Source string

const (
	SourceFF Source = "FF" // native Firefly tasks
	SourceGC Source = "GC" // Google Classroom tasks surfaced through the portal
)

// TaskFilter is the ergonomic, caller-supplied description of one fetch.
// Immutable once handed to the engine.
type TaskFilter struct {
	Completion CompletionStatus
	Read       ReadStatus
	SortBy     SortBy
	SortOrder  SortOrder
	Source     *Source // nil means no source filtering
}

// DefaultFilter returns the filter used when the caller specifies nothing:
// outstanding tasks of any read state, soonest due date first.
func DefaultFilter() TaskFilter {
	return TaskFilter{
		Completion: CompletionTodo,
		Read:       ReadAll,
		SortBy:     SortByDueDate,
		SortOrder:  Ascending,
	}
}

// Validate checks every enum field against its known values.
func (f TaskFilter) Validate() error {
	switch f.Completion {
	case CompletionTodo, CompletionDoneOrArchived, CompletionAll:
	default:
		return fmt.Errorf("invalid completion status %q", f.Completion)
	}

	switch f.Read {
	case ReadAll, OnlyRead, OnlyUnread:
	default:
		return fmt.Errorf("invalid read status %q", f.Read)
	}

	switch f.SortBy {
	case SortByDueDate, SortBySetDate:
	default:
		return fmt.Errorf("invalid sort column %q", f.SortBy)
	}

	switch f.SortOrder {
	case Ascending, Descending:
	default:
		return fmt.Errorf("invalid sort order %q", f.SortOrder)
	}

	if f.Source != nil {
		switch *f.Source {
		case SourceFF, SourceGC:
		default:
			return fmt.Errorf("invalid task source %q", *f.Source)
		}
	}

	return nil
}

// ParseCompletionStatus parses the caller-facing completion status names.
// "All" maps to the wire value AllIncludingArchived.
func ParseCompletionStatus(s string) (CompletionStatus, error) {
	switch s {
	case "Todo":
		return CompletionTodo, nil
	case "DoneOrArchived":
		return CompletionDoneOrArchived, nil
	case "All", "AllIncludingArchived":
		return CompletionAll, nil
	default:
		return "", fmt.Errorf("invalid completion status %q (want Todo, DoneOrArchived or All)", s)
	}
}

// ParseReadStatus parses a read status name.
func ParseReadStatus(s string) (ReadStatus, error) {
	switch s {
	case "All":
		return ReadAll, nil
	case "OnlyRead":
		return OnlyRead, nil
	case "OnlyUnread":
		return OnlyUnread, nil
	default:
		return "", fmt.Errorf("invalid read status %q (want All, OnlyRead or OnlyUnread)", s)
	}
}

// ParseSortBy parses a sort column name.
func ParseSortBy(s string) (SortBy, error) {
	switch s {
	case "DueDate":
		return SortByDueDate, nil
	case "SetDate":
		return SortBySetDate, nil
	default:
		return "", fmt.Errorf("invalid sort column %q (want DueDate or SetDate)", s)
	}
}

// ParseSortOrder parses a sort order name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "Ascending":
		return Ascending, nil
	case "Descending":
		return Descending, nil
	default:
		return "", fmt.Errorf("invalid sort order %q (want Ascending or Descending)", s)
	}
}

// ParseSource parses a task source name. The empty string means no filter and
// returns a nil Source.
func ParseSource(s string) (*Source, error) {
	switch s {
	case "":
		return nil, nil
	case "FF":
		src := SourceFF
		return &src, nil
	case "GC":
		src := SourceGC
		return &src, nil
	default:
		return nil, fmt.Errorf("invalid task source %q (want FF or GC)", s)
	}
}
