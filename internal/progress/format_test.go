package progress_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracker-server/internal/models"
	"tracker-server/internal/progress"
)

func TestFormatDefaults(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()

	t.Run("nil raw progress falls back to defaults", func(t *testing.T) {
		got := f.Format(g, "user-1234567890", nil)

		assert.Equal(t, "user-1", got.DisplayName)
		assert.Equal(t, "user-1234567890", got.UserID)
		assert.Equal(t, models.DefaultPlayerLevel, got.PlayerLevel)
		assert.Equal(t, models.DefaultGameEdition, got.GameEdition)
		assert.Equal(t, models.FactionUSEC, got.PMCFaction)
	})

	t.Run("short user id is used whole as display name", func(t *testing.T) {
		got := f.Format(g, "abc", nil)
		assert.Equal(t, "abc", got.DisplayName)
	})

	t.Run("stored scalars win over defaults", func(t *testing.T) {
		raw := &models.RawProgress{
			Level:       42,
			GameEdition: 3,
			PMCFaction:  models.FactionBEAR,
			DisplayName: "Ripjaw",
		}
		got := f.Format(g, "user-1234567890", raw)

		assert.Equal(t, 42, got.PlayerLevel)
		assert.Equal(t, 3, got.GameEdition)
		assert.Equal(t, models.FactionBEAR, got.PMCFaction)
		assert.Equal(t, "Ripjaw", got.DisplayName)
	})

	t.Run("lists are never nil", func(t *testing.T) {
		got := f.Format(progress.NewGraph(nil, nil), "user-1234567890", nil)

		assert.NotNil(t, got.TasksProgress)
		assert.NotNil(t, got.TaskObjectivesProgress)
		assert.NotNil(t, got.HideoutModulesProgress)
		assert.NotNil(t, got.HideoutPartsProgress)
	})
}

func TestFormatDeterminism(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()
	raw := &models.RawProgress{
		TaskCompletions: map[string]models.RawEntry{
			"t2": {Status: "completed"},
			"t1": {Complete: boolPtr(true)},
			"t5": {Status: "failed"},
		},
		TaskObjectives: map[string]models.RawEntry{
			"t1-o1": {Complete: boolPtr(true), Count: intPtr(4)},
			"t2-o1": {Count: intPtr(2)},
		},
		HideoutModules: map[string]models.RawEntry{"generator-1": {Complete: boolPtr(true)}},
		HideoutParts:   map[string]models.RawEntry{"generator-1-req": {Count: intPtr(5)}},
		GameEdition:    2,
	}

	first := f.Format(g, "user-1234567890", raw)
	second := f.Format(g, "user-1234567890", raw)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestFormatInvalidImpliesIncomplete(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()
	raw := &models.RawProgress{
		PMCFaction: models.FactionUSEC,
		TaskCompletions: map[string]models.RawEntry{
			"t1": {Status: "completed"},
			"t2": {Status: "completed"},
			"t3": {Status: "completed"},
			"t5": {Status: "completed"},
		},
		TaskObjectives: map[string]models.RawEntry{
			"t5-o1": {Complete: boolPtr(true), Count: intPtr(9)},
		},
	}

	got := f.Format(g, "user-1234567890", raw)

	for _, list := range [][]models.ProgressItem{
		got.TasksProgress,
		got.TaskObjectivesProgress,
		got.HideoutModulesProgress,
		got.HideoutPartsProgress,
	} {
		for _, item := range list {
			if item.Invalid {
				assert.False(t, item.Complete, "item %s is invalid and must not be complete", item.ID)
			}
		}
	}
}

func TestFormatFactionExclusivity(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()

	t.Run("other-faction tasks invalidated for USEC", func(t *testing.T) {
		raw := &models.RawProgress{
			PMCFaction: models.FactionUSEC,
			TaskCompletions: map[string]models.RawEntry{
				"t5": {Status: "completed"},
			},
		}
		got := f.Format(g, "user-1234567890", raw)

		task, ok := itemByID(got.TasksProgress, "t5")
		assert.True(t, ok)
		assert.True(t, task.Invalid)
		assert.False(t, task.Complete)

		obj, ok := itemByID(got.TaskObjectivesProgress, "t5-o1")
		assert.True(t, ok)
		assert.True(t, obj.Invalid)
	})

	t.Run("matching faction keeps the task", func(t *testing.T) {
		raw := &models.RawProgress{
			PMCFaction: models.FactionBEAR,
			TaskCompletions: map[string]models.RawEntry{
				"t5": {Status: "completed"},
			},
		}
		got := f.Format(g, "user-1234567890", raw)

		task, ok := itemByID(got.TasksProgress, "t5")
		assert.True(t, ok)
		assert.False(t, task.Invalid)
		assert.True(t, task.Complete)
	})
}

func TestFormatFailBranchCorrection(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()

	t.Run("completing the happy branch closes the fail branch", func(t *testing.T) {
		// t6 открывается только при провале t2.
		raw := &models.RawProgress{
			TaskCompletions: map[string]models.RawEntry{
				"t2": {Status: "completed"},
			},
		}
		got := f.Format(g, "user-1234567890", raw)

		task, ok := itemByID(got.TasksProgress, "t6")
		assert.True(t, ok)
		assert.True(t, task.Invalid)
	})

	t.Run("failed branch keeps the fallback open", func(t *testing.T) {
		raw := &models.RawProgress{
			TaskCompletions: map[string]models.RawEntry{
				"t2": {Status: "failed"},
			},
		}
		got := f.Format(g, "user-1234567890", raw)

		_, ok := itemByID(got.TasksProgress, "t6")
		assert.False(t, ok, "t6 must stay untouched while the fail branch is live")
	})
}

func TestFormatAlternativeExclusivity(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()

	raw := &models.RawProgress{
		TaskCompletions: map[string]models.RawEntry{
			"t2": {Status: "completed"},
		},
	}
	got := f.Format(g, "user-1234567890", raw)

	// Сам t1 не помечается invalid, отрезаются только его наследники.
	if t1, ok := itemByID(got.TasksProgress, "t1"); ok {
		assert.False(t, t1.Invalid)
	}

	t3, ok := itemByID(got.TasksProgress, "t3")
	assert.True(t, ok, "successor of the superseded branch must be present")
	assert.True(t, t3.Invalid)

	t4, ok := itemByID(got.TasksProgress, "t4")
	assert.True(t, ok)
	assert.True(t, t4.Invalid)

	t2, ok := itemByID(got.TasksProgress, "t2")
	assert.True(t, ok)
	assert.True(t, t2.Complete)
	assert.False(t, t2.Invalid)
}

func TestFormatEditionOverlay(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())
	g := testGraph()

	t.Run("stash levels gate on edition tier", func(t *testing.T) {
		raw := &models.RawProgress{GameEdition: 2}
		got := f.Format(g, "user-1234567890", raw)

		for _, id := range []string{"stash-1", "stash-2"} {
			module, ok := itemByID(got.HideoutModulesProgress, id)
			assert.True(t, ok, id)
			assert.True(t, module.Complete, id)
		}
		_, ok := itemByID(got.HideoutModulesProgress, "stash-3")
		assert.False(t, ok)

		part, ok := itemByID(got.HideoutPartsProgress, "stash-2-req")
		assert.True(t, ok)
		assert.True(t, part.Complete)
		assert.Equal(t, 2, part.Count, "created part reports the full required count")
	})

	t.Run("recorded part count survives the overlay", func(t *testing.T) {
		raw := &models.RawProgress{
			GameEdition:  2,
			HideoutParts: map[string]models.RawEntry{"stash-1-req": {Count: intPtr(1)}},
		}
		got := f.Format(g, "user-1234567890", raw)

		part, ok := itemByID(got.HideoutPartsProgress, "stash-1-req")
		assert.True(t, ok)
		assert.True(t, part.Complete)
		assert.Equal(t, 1, part.Count)
	})

	t.Run("overlay is monotonic in edition", func(t *testing.T) {
		completed := func(edition int) map[string]bool {
			raw := &models.RawProgress{GameEdition: edition}
			got := f.Format(g, "user-1234567890", raw)
			set := make(map[string]bool)
			for _, m := range got.HideoutModulesProgress {
				if m.Complete {
					set[m.ID] = true
				}
			}
			return set
		}

		previous := completed(1)
		for edition := 2; edition <= models.MaxGameEdition; edition++ {
			current := completed(edition)
			for id := range previous {
				assert.True(t, current[id], "edition %d lost completed level %s", edition, id)
			}
			previous = current
		}
	})

	t.Run("top edition ships the cultist circle", func(t *testing.T) {
		raw := &models.RawProgress{GameEdition: models.MaxGameEdition}
		got := f.Format(g, "user-1234567890", raw)

		for _, id := range []string{"stash-1", "stash-2", "stash-3", "stash-4", "circle-1"} {
			module, ok := itemByID(got.HideoutModulesProgress, id)
			assert.True(t, ok, id)
			assert.True(t, module.Complete, id)
		}
		part, ok := itemByID(got.HideoutPartsProgress, "circle-1-req")
		assert.True(t, ok)
		assert.True(t, part.Complete)
		assert.Equal(t, 15, part.Count)
	})

	t.Run("lower editions leave the cultist circle alone", func(t *testing.T) {
		raw := &models.RawProgress{GameEdition: 4}
		got := f.Format(g, "user-1234567890", raw)

		_, ok := itemByID(got.HideoutModulesProgress, "circle-1")
		assert.False(t, ok)
	})
}

func TestFormatSurvivesBrokenReferenceData(t *testing.T) {
	f := progress.NewFormatter(zap.NewNop())

	raw := &models.RawProgress{
		TaskCompletions: map[string]models.RawEntry{"t1": {Status: "completed"}},
	}
	// Нулевой граф роняет каждый проход; снапшот всё равно собирается.
	got := f.Format(nil, "user-1234567890", raw)

	task, ok := itemByID(got.TasksProgress, "t1")
	assert.True(t, ok)
	assert.True(t, task.Complete)
	assert.Equal(t, models.FactionUSEC, got.PMCFaction)
}
