package progress

import (
	"tracker-server/internal/models"
)

// InvalidateTask marks a task and its objectives invalid, then walks the
// requirement graph and invalidates every task that needs this one to be
// active or complete. When childOnly is set the starting task itself is
// left untouched and only its successors are cut off; recursion below the
// starting node always invalidates fully.
//
// Unknown ids are a no-op: reference data is refreshed independently of
// stored progress and stale ids must not break formatting. The two lists
// are mutated in place where possible and returned (appends may
// reallocate).
func InvalidateTask(taskID string, g *Graph, tasks, objectives []models.ProgressItem, childOnly bool) ([]models.ProgressItem, []models.ProgressItem) {
	// Гард от циклов: источник данных не гарантирует ацикличность.
	visited := make(map[string]struct{})
	return invalidateTask(taskID, g, tasks, objectives, childOnly, visited)
}

func invalidateTask(taskID string, g *Graph, tasks, objectives []models.ProgressItem, childOnly bool, visited map[string]struct{}) ([]models.ProgressItem, []models.ProgressItem) {
	if _, seen := visited[taskID]; seen {
		return tasks, objectives
	}
	// Marked up front even for childOnly roots so a requirement cycle can
	// never loop back and invalidate the root node itself.
	visited[taskID] = struct{}{}

	task := g.Task(taskID)
	if task == nil {
		return tasks, objectives
	}

	if !childOnly {
		tasks = markInvalid(tasks, taskID)
		for _, obj := range task.Objectives {
			objectives = markInvalid(objectives, obj.ID)
		}
	}

	for _, dep := range g.Dependents(taskID) {
		if !dependsOnActiveOrComplete(dep, taskID) {
			continue
		}
		tasks, objectives = invalidateTask(dep.ID, g, tasks, objectives, false, visited)
	}
	return tasks, objectives
}

// dependsOnActiveOrComplete reports whether dep has a requirement on
// taskID that asks for it to be active or complete. Requirements that
// only accept "failed" are excluded: those branches stay reachable when
// taskID is invalidated.
func dependsOnActiveOrComplete(dep *models.Task, taskID string) bool {
	for _, req := range dep.Requirements {
		if req.TaskID != taskID {
			continue
		}
		if requirementWants(req, models.RequirementStatusComplete) || requirementWants(req, models.RequirementStatusActive) {
			return true
		}
	}
	return false
}

// markInvalid upserts an item as invalid and not complete. Existing
// entries keep their count and failed flag; created entries start from
// zero values.
func markInvalid(items []models.ProgressItem, id string) []models.ProgressItem {
	if i := findItem(items, id); i >= 0 {
		items[i].Complete = false
		items[i].Invalid = true
		return items
	}
	return append(items, models.ProgressItem{ID: id, Complete: false, Invalid: true})
}

func findItem(items []models.ProgressItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
