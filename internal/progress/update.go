package progress

import (
	"fmt"
	"time"

	"tracker-server/internal/models"
)

// UpdateTaskState computes the patch-set that moves one task to a new
// state for one user, including the side patches that keep dependent and
// mutually-exclusive tasks consistent:
//
//   - completing a task re-opens every dependent whose requirements are
//     now all satisfiable, unless that dependent is already completed or
//     failed;
//   - completing a task fails its alternatives, and moving it back to
//     uncompleted re-opens them; failing a task leaves alternatives
//     untouched;
//   - every patch in the set carries the same update timestamp.
//
// The function never touches storage: the caller applies the returned
// patch-set in a single transaction. An unknown task id yields an empty
// patch-set, a state outside the enumerated ones an error.
func UpdateTaskState(g *Graph, raw *models.RawProgress, taskID string, state models.TaskState, now time.Time) (models.PatchSet, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidTaskState, state)
	}
	task := g.Task(taskID)
	if task == nil {
		return models.PatchSet{}, nil
	}
	if raw == nil {
		raw = &models.RawProgress{}
	}

	patches := models.PatchSet{}
	setTaskPatch(patches, taskID, state, now)
	if state == models.TaskStateFailed {
		patches[taskPath(taskID, "failed")] = true
	} else {
		patches[taskPath(taskID, "failed")] = models.DeleteField
	}

	if state == models.TaskStateCompleted {
		for _, dep := range g.Dependents(taskID) {
			if depState := effectiveTaskState(raw, dep.ID); depState != models.TaskStateUncompleted {
				// Completed and failed dependents keep their state.
				continue
			}
			if !requirementsSatisfiable(raw, dep, taskID, state) {
				continue
			}
			setTaskPatch(patches, dep.ID, models.TaskStateUncompleted, now)
		}
	}

	switch state {
	case models.TaskStateCompleted:
		for _, altID := range task.Alternatives {
			setTaskPatch(patches, altID, models.TaskStateFailed, now)
			patches[taskPath(altID, "failed")] = true
		}
	case models.TaskStateUncompleted:
		for _, altID := range task.Alternatives {
			setTaskPatch(patches, altID, models.TaskStateUncompleted, now)
			patches[taskPath(altID, "failed")] = models.DeleteField
		}
	case models.TaskStateFailed:
		// Failing a task does not release its alternatives.
	}

	return patches, nil
}

func taskPath(taskID, field string) string {
	return "taskCompletions." + taskID + "." + field
}

func setTaskPatch(patches models.PatchSet, taskID string, state models.TaskState, now time.Time) {
	patches[taskPath(taskID, "status")] = string(state)
	patches[taskPath(taskID, "timestamp")] = now
}

// requirementsSatisfiable checks every requirement of dep against the
// stored progress, with the in-flight change to changedID applied on top.
// The first unmet requirement short-circuits the check.
func requirementsSatisfiable(raw *models.RawProgress, dep *models.Task, changedID string, changedState models.TaskState) bool {
	for _, req := range dep.Requirements {
		target := effectiveTaskState(raw, req.TaskID)
		if req.TaskID == changedID {
			target = changedState
		}
		if !requirementMet(req, target) {
			return false
		}
	}
	return true
}

func requirementMet(req models.TaskRequirement, target models.TaskState) bool {
	for _, s := range req.Status {
		switch s {
		case models.RequirementStatusComplete:
			if target == models.TaskStateCompleted {
				return true
			}
		case models.RequirementStatusFailed:
			if target == models.TaskStateFailed {
				return true
			}
		case models.RequirementStatusActive:
			if target == models.TaskStateUncompleted {
				return true
			}
		}
	}
	return false
}

// effectiveTaskState resolves a stored entry to a single state. Failure
// wins over completion when both are recorded; absent entries are
// uncompleted.
func effectiveTaskState(raw *models.RawProgress, taskID string) models.TaskState {
	entry, ok := raw.TaskCompletions[taskID]
	if !ok {
		return models.TaskStateUncompleted
	}

	var complete, failed bool
	if entry.Status != "" {
		complete = entry.Status == string(models.TaskStateCompleted)
		failed = entry.Status == string(models.TaskStateFailed)
	} else if entry.Complete != nil {
		complete = *entry.Complete
	}
	if entry.Failed != nil && *entry.Failed {
		failed = true
	}

	switch {
	case failed:
		return models.TaskStateFailed
	case complete:
		return models.TaskStateCompleted
	default:
		return models.TaskStateUncompleted
	}
}
