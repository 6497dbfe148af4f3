package models

// Task is the canonical task representation used by the rest of the
// application. Unlike [RawTask], every field is mandatory; records that cannot
// satisfy this shape are dropped during normalization.
type Task struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	IsDone  bool   `json:"is_done"`
	SetDate string `json:"set_date"`
	DueDate string `json:"due_date"`
}

// StoredUser is the persisted record for one portal account.
//
// The device id is generated once and reused for the lifetime of the account;
// the secret is replaced whenever a session refresh succeeds.
type StoredUser struct {
	Email    string `json:"email"`
	Secret   string `json:"secret"`
	DeviceID string `json:"device_id"`
}

// PageResponse is one page of the task listing response.
type PageResponse struct {
	Items            []RawTask         `json:"items"`
	TotalCount       *int              `json:"totalCount"`
	FromIndex        *int              `json:"fromIndex"`
	ToIndex          *int              `json:"toIndex"`
	HasValues        *bool             `json:"hasValues"`
	AggregateOffsets *AggregateOffsets `json:"aggregateOffsets"`
}

// AggregateOffsets reports per-provider cursor positions within a listing.
type AggregateOffsets struct {
	ToFfIndex *int `json:"toFfIndex"`
	ToGcIndex *int `json:"toGcIndex"`
	ToMsIndex *int `json:"toMsIndex"`
}

// RawTask is a task record exactly as the portal returns it. The portal omits
// fields inconsistently, so everything is optional.
type RawTask struct {
	ID                     *string    `json:"id"`
	Title                  *string    `json:"title"`
	DueDate                *string    `json:"dueDate"`
	SetDate                *string    `json:"setDate"`
	IsDone                 *bool      `json:"isDone"`
	IsUnread               *bool      `json:"isUnread"`
	IsExcused              *bool      `json:"isExcused"`
	IsPersonalTask         *bool      `json:"isPersonalTask"`
	IsMissingDueDate       *bool      `json:"isMissingDueDate"`
	Archived               *bool      `json:"archived"`
	FileSubmissionRequired *bool      `json:"fileSubmissionRequired"`
	HasFileSubmission      *bool      `json:"hasFileSubmission"`
	TaskSource             *Source    `json:"taskSource"`
	Setter                 *Person    `json:"setter"`
	Student                *Person    `json:"student"`
	Addressees             []Addressee `json:"addressees"`
	Classes                []Class    `json:"classes"`
	Mark                   *Mark      `json:"mark"`
	AltLink                *string    `json:"altLink"`
}

// Person identifies a setter or student on a task record.
type Person struct {
	GUID    *string `json:"guid"`
	Name    *string `json:"name"`
	SortKey *string `json:"sortKey"`
	Deleted *bool   `json:"deleted"`
}

// Addressee is a person or group a task was assigned to.
type Addressee struct {
	GUID    *string `json:"guid"`
	Name    *string `json:"name"`
	IsGroup *bool   `json:"isGroup"`
	Source  *Source `json:"source"`
}

// Class is a class a task record belongs to.
type Class struct {
	ID        *string `json:"id"`
	ClassName *string `json:"classname"`
	Source    *Source `json:"source"`
}

// Mark holds grading state for a task record.
type Mark struct {
	IsMarked    *bool `json:"isMarked"`
	HasFeedback *bool `json:"hasFeedback"`
	MarkMax     *int  `json:"markMax"`
}
