package model

// ViewMode is the screen the controller currently renders.
type ViewMode string

const (
	ViewList   ViewMode = "list"
	ViewDetail ViewMode = "detail"
	ViewForm   ViewMode = "form"
	ViewEdit   ViewMode = "edit"
)

// Valid reports whether v is one of the four known modes.
func (v ViewMode) Valid() bool {
	switch v {
	case ViewList, ViewDetail, ViewForm, ViewEdit:
		return true
	}
	return false
}

// IsForm is true for both the create and the edit form.
func (v ViewMode) IsForm() bool {
	return v == ViewForm || v == ViewEdit
}

type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is the self-clearing banner shown after an action.
type StatusMessage struct {
	Kind StatusKind `json:"kind"`
	Text string     `json:"text"`
}

// Visible is false for the zero message.
func (m StatusMessage) Visible() bool {
	return m.Kind != StatusNone && m.Text != ""
}

// FormState is the draft being edited plus its validation errors.
type FormState struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Errors  FieldErrors `json:"-"`
}

// Empty reports whether the draft carries no text.
func (f FormState) Empty() bool {
	return f.Title == "" && f.Content == ""
}

// Snapshot is the restorable part of a dashboard session.
type Snapshot struct {
	View     ViewMode  `json:"view"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Search   string    `json:"search"`
	Selected *Article  `json:"selected,omitempty"`
	Draft    FormState `json:"draft"`
}
