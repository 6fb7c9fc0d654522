package progress

import (
	"tracker-server/internal/models"
)

// The three consistency passes below share the same mutable lists, in a
// fixed order, so each pass sees the corrections of the previous one.

// invalidateWrongFaction invalidates every task locked to a faction other
// than the player's.
func invalidateWrongFaction(g *Graph, pmcFaction string, tasks, objectives []models.ProgressItem) ([]models.ProgressItem, []models.ProgressItem) {
	for i := range g.Tasks() {
		task := &g.Tasks()[i]
		if task.FactionName == "" || task.FactionName == models.FactionAny || task.FactionName == pmcFaction {
			continue
		}
		tasks, objectives = InvalidateTask(task.ID, g, tasks, objectives, false)
	}
	return tasks, objectives
}

// invalidateUnreachableFailBranches invalidates tasks that are reachable
// only through another task failing, once that task has been completed
// without failing. The fail branch can never open up after that.
func invalidateUnreachableFailBranches(g *Graph, tasks, objectives []models.ProgressItem) ([]models.ProgressItem, []models.ProgressItem) {
	for i := range g.Tasks() {
		task := &g.Tasks()[i]
		for _, req := range task.Requirements {
			if !requirementOnlyFailed(req) {
				continue
			}
			if !isCompleteNotFailed(tasks, req.TaskID) {
				continue
			}
			tasks, objectives = InvalidateTask(task.ID, g, tasks, objectives, false)
			break
		}
	}
	return tasks, objectives
}

// invalidateSupersededAlternatives cuts off the successors of any task
// whose mutually-exclusive alternative has been completed. The superseded
// task itself keeps its state: it was foreclosed, not invalidated, and
// only what depends on it downstream becomes unreachable.
func invalidateSupersededAlternatives(g *Graph, tasks, objectives []models.ProgressItem) ([]models.ProgressItem, []models.ProgressItem) {
	for i := range g.Tasks() {
		task := &g.Tasks()[i]
		for _, altID := range task.Alternatives {
			if !isCompleteNotFailed(tasks, altID) {
				continue
			}
			tasks, objectives = InvalidateTask(task.ID, g, tasks, objectives, true)
			break
		}
	}
	return tasks, objectives
}

// isCompleteNotFailed reports whether the list records the id as complete
// and not failed. Absent entries count as neither.
func isCompleteNotFailed(items []models.ProgressItem, id string) bool {
	i := findItem(items, id)
	return i >= 0 && items[i].Complete && !items[i].Failed
}
