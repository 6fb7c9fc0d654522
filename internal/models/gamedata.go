package models

import "time"

// Requirement statuses referenced by task prerequisites.
const (
	RequirementStatusComplete = "complete"
	RequirementStatusActive   = "active"
	RequirementStatusFailed   = "failed"
)

// TaskObjective is a sub-goal of a task.
type TaskObjective struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// TaskRequirement gates a task on the status of a prerequisite task.
// Status holds the set of acceptable states of the referenced task
// ("complete", "active", "failed").
type TaskRequirement struct {
	TaskID string   `json:"taskId"`
	Status []string `json:"status"`
}

// TaskStatusReward is a finish reward that changes the status of another
// task as a side effect (the upstream data uses these to express
// branch-foreclosing quests: completing one fails the other).
type TaskStatusReward struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// Task is one quest from the reference graph.
type Task struct {
	ID             string             `json:"id"`
	Name           string             `json:"name,omitempty"`
	MinPlayerLevel int                `json:"minPlayerLevel,omitempty"`
	FactionName    string             `json:"factionName,omitempty"`
	Objectives     []TaskObjective    `json:"objectives,omitempty"`
	Requirements   []TaskRequirement  `json:"taskRequirements,omitempty"`
	Alternatives   []string           `json:"alternatives,omitempty"`
	FinishRewards  []TaskStatusReward `json:"finishRewards,omitempty"`
}

// HideoutItemRequirement is one item cost of a hideout level.
type HideoutItemRequirement struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// HideoutLevel is a single upgrade tier of a station.
type HideoutLevel struct {
	ID               string                   `json:"id"`
	Level            int                      `json:"level"`
	ItemRequirements []HideoutItemRequirement `json:"itemRequirements,omitempty"`
}

// HideoutStation is a base-building station with its upgrade levels.
type HideoutStation struct {
	ID             string         `json:"id"`
	Name           string         `json:"name,omitempty"`
	NormalizedName string         `json:"normalizedName,omitempty"`
	Levels         []HideoutLevel `json:"levels"`
}

// Snapshot payload kinds persisted by the gamedata store.
const (
	GameDataKindTasks   = "tasks"
	GameDataKindHideout = "hideout"
)

// GameData is one immutable snapshot of the reference graph. Formatting
// calls hold a reference to a snapshot for their whole duration; refreshes
// swap in a new value instead of mutating.
type GameData struct {
	Tasks     []Task           `json:"tasks"`
	Stations  []HideoutStation `json:"stations"`
	FetchedAt time.Time        `json:"fetchedAt"`
}
