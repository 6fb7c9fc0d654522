package progress_test

import (
	"tracker-server/internal/models"
	"tracker-server/internal/progress"
)

// questTasks is a small reference graph covering the interesting shapes:
// a pair of mutually exclusive branch tasks (t1/t2), a requirement chain
// behind t1 (t3 -> t4), a faction-locked task (t5) and a task reachable
// only through t2 failing (t6).
func questTasks() []models.Task {
	return []models.Task{
		{
			ID:           "t1",
			Name:         "Chief's Choice",
			Objectives:   []models.TaskObjective{{ID: "t1-o1"}, {ID: "t1-o2"}},
			Alternatives: []string{"t2"},
		},
		{
			ID:           "t2",
			Name:         "The Other Path",
			Objectives:   []models.TaskObjective{{ID: "t2-o1"}},
			Alternatives: []string{"t1"},
		},
		{
			ID:         "t3",
			Name:       "Follow-up",
			Objectives: []models.TaskObjective{{ID: "t3-o1"}},
			Requirements: []models.TaskRequirement{
				{TaskID: "t1", Status: []string{models.RequirementStatusComplete}},
			},
		},
		{
			ID:   "t4",
			Name: "Deep Follow-up",
			Requirements: []models.TaskRequirement{
				{TaskID: "t3", Status: []string{models.RequirementStatusComplete, models.RequirementStatusActive}},
			},
		},
		{
			ID:          "t5",
			Name:        "Bear Only",
			FactionName: models.FactionBEAR,
			Objectives:  []models.TaskObjective{{ID: "t5-o1"}},
		},
		{
			ID:   "t6",
			Name: "Fallback Road",
			Requirements: []models.TaskRequirement{
				{TaskID: "t2", Status: []string{models.RequirementStatusFailed}},
			},
		},
	}
}

func testStations() []models.HideoutStation {
	return []models.HideoutStation{
		{
			ID:   progress.StashStationID,
			Name: "Stash",
			Levels: []models.HideoutLevel{
				{ID: "stash-1", Level: 1, ItemRequirements: []models.HideoutItemRequirement{{ID: "stash-1-req", Count: 1}}},
				{ID: "stash-2", Level: 2, ItemRequirements: []models.HideoutItemRequirement{{ID: "stash-2-req", Count: 2}}},
				{ID: "stash-3", Level: 3, ItemRequirements: []models.HideoutItemRequirement{{ID: "stash-3-req", Count: 3}}},
				{ID: "stash-4", Level: 4, ItemRequirements: []models.HideoutItemRequirement{{ID: "stash-4-req", Count: 4}}},
			},
		},
		{
			ID:   progress.CultistCircleStationID,
			Name: "Cultist Circle",
			Levels: []models.HideoutLevel{
				{ID: "circle-1", Level: 1, ItemRequirements: []models.HideoutItemRequirement{{ID: "circle-1-req", Count: 15}}},
			},
		},
		{
			ID:   "station-generator",
			Name: "Generator",
			Levels: []models.HideoutLevel{
				{ID: "generator-1", Level: 1, ItemRequirements: []models.HideoutItemRequirement{{ID: "generator-1-req", Count: 5}}},
			},
		},
	}
}

func testGraph() *progress.Graph {
	return progress.NewGraph(questTasks(), testStations())
}

func itemByID(items []models.ProgressItem, id string) (models.ProgressItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return models.ProgressItem{}, false
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }
