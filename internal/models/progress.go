package models

import "time"

// Faction names recognized in reference data and player progress.
const (
	FactionAny  = "Any"
	FactionUSEC = "USEC"
	FactionBEAR = "BEAR"
)

// Defaults applied when a raw progress document (or one of its scalar
// fields) is absent.
const (
	DefaultPlayerLevel = 1
	DefaultGameEdition = 1
	MaxGameEdition     = 5
	// DisplayNamePrefixLen is how many characters of the user id are used
	// as the display name when none is stored.
	DisplayNamePrefixLen = 6
)

// TaskState is the externally visible state a task can be moved to.
// "locked" is never stored; consumers derive it from requirement
// satisfaction at read time.
type TaskState string

const (
	TaskStateUncompleted TaskState = "uncompleted"
	TaskStateCompleted   TaskState = "completed"
	TaskStateFailed      TaskState = "failed"
)

// IsValid reports whether the state is one of the enumerated values.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskStateUncompleted, TaskStateCompleted, TaskStateFailed:
		return true
	}
	return false
}

// RawEntry is one entry of a sparse raw progress map. Older writers stored
// a textual status, newer ones store boolean complete/failed flags; both
// shapes live side by side in persisted documents, so every field is
// optional and the normalizer resolves them in one place.
type RawEntry struct {
	Status    string     `json:"status,omitempty"`
	Complete  *bool      `json:"complete,omitempty"`
	Failed    *bool      `json:"failed,omitempty"`
	Invalid   *bool      `json:"invalid,omitempty"`
	Count     *int       `json:"count,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RawProgress is the persisted per-user progress document. All maps are
// sparse: an absent key means "never touched".
type RawProgress struct {
	TaskCompletions map[string]RawEntry `json:"taskCompletions,omitempty"`
	TaskObjectives  map[string]RawEntry `json:"taskObjectives,omitempty"`
	HideoutModules  map[string]RawEntry `json:"hideoutModules,omitempty"`
	HideoutParts    map[string]RawEntry `json:"hideoutParts,omitempty"`

	Level       int    `json:"level,omitempty"`
	GameEdition int    `json:"gameEdition,omitempty"`
	PMCFaction  string `json:"pmcFaction,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// ProgressItem is one entry of a formatted progress list.
type ProgressItem struct {
	ID       string `json:"id"`
	Complete bool   `json:"complete"`
	Count    int    `json:"count,omitempty"`
	Invalid  bool   `json:"invalid,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// FormattedProgress is the denormalized snapshot served to clients. It is
// recomputed on every read and never persisted.
type FormattedProgress struct {
	TasksProgress          []ProgressItem `json:"tasksProgress"`
	TaskObjectivesProgress []ProgressItem `json:"taskObjectivesProgress"`
	HideoutModulesProgress []ProgressItem `json:"hideoutModulesProgress"`
	HideoutPartsProgress   []ProgressItem `json:"hideoutPartsProgress"`

	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	PlayerLevel int    `json:"playerLevel"`
	GameEdition int    `json:"gameEdition"`
	PMCFaction  string `json:"pmcFaction"`
}

// fieldDelete is the sentinel value that marks a patch path for removal.
type fieldDelete struct{}

// DeleteField marks a field for deletion when a PatchSet is applied.
var DeleteField = fieldDelete{}

// PatchSet maps dot-separated document paths (e.g.
// "taskCompletions.59675d6fd3ad0x.failed") to new values, or to
// DeleteField to remove the field. It is applied atomically to a single
// user's progress document by the storage layer.
type PatchSet map[string]interface{}

// IsDelete reports whether v is the field-deletion sentinel.
func IsDelete(v interface{}) bool {
	_, ok := v.(fieldDelete)
	return ok
}
