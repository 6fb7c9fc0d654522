package progress

import (
	"tracker-server/internal/models"
)

// Graph is an indexed, read-only view over one reference-data snapshot.
// It is built once per snapshot and shared by all formatting calls that
// run against that snapshot; it is never mutated after construction.
type Graph struct {
	tasks    []models.Task
	stations []models.HideoutStation

	taskByID    map[string]*models.Task
	stationByID map[string]*models.HideoutStation

	// dependents[id] lists every task whose requirements reference id,
	// regardless of which statuses the requirement asks for.
	dependents map[string][]*models.Task
}

// NewGraph indexes a task list and a hideout station list.
func NewGraph(tasks []models.Task, stations []models.HideoutStation) *Graph {
	g := &Graph{
		tasks:       tasks,
		stations:    stations,
		taskByID:    make(map[string]*models.Task, len(tasks)),
		stationByID: make(map[string]*models.HideoutStation, len(stations)),
		dependents:  make(map[string][]*models.Task),
	}
	for i := range g.tasks {
		t := &g.tasks[i]
		g.taskByID[t.ID] = t
	}
	for i := range g.tasks {
		t := &g.tasks[i]
		for _, req := range t.Requirements {
			g.dependents[req.TaskID] = append(g.dependents[req.TaskID], t)
		}
	}
	for i := range g.stations {
		st := &g.stations[i]
		g.stationByID[st.ID] = st
	}
	return g
}

// Task returns the task with the given id, or nil when the id is unknown.
func (g *Graph) Task(id string) *models.Task {
	return g.taskByID[id]
}

// Tasks returns the underlying task list. Callers must not modify it.
func (g *Graph) Tasks() []models.Task {
	return g.tasks
}

// Station returns the station with the given id, or nil when unknown.
func (g *Graph) Station(id string) *models.HideoutStation {
	return g.stationByID[id]
}

// Stations returns the underlying station list. Callers must not modify it.
func (g *Graph) Stations() []models.HideoutStation {
	return g.stations
}

// Dependents returns every task that references id in its requirements.
func (g *Graph) Dependents(id string) []*models.Task {
	return g.dependents[id]
}

// requirementWants reports whether the requirement accepts the given status.
func requirementWants(req models.TaskRequirement, status string) bool {
	for _, s := range req.Status {
		if s == status {
			return true
		}
	}
	return false
}

// requirementOnlyFailed reports whether the requirement's status set is
// exactly ["failed"], i.e. the dependent is reachable only through the
// referenced task failing.
func requirementOnlyFailed(req models.TaskRequirement) bool {
	return len(req.Status) == 1 && req.Status[0] == models.RequirementStatusFailed
}
