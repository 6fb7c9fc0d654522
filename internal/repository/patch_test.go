package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tracker-server/internal/models"
)

func TestApplyPatchSet(t *testing.T) {
	t.Run("sets nested paths creating intermediate objects", func(t *testing.T) {
		doc := applyPatchSet(nil, models.PatchSet{
			"taskCompletions.t1.status": "completed",
			"level":                     12,
		})

		completions, ok := doc["taskCompletions"].(map[string]interface{})
		assert.True(t, ok)
		entry, ok := completions["t1"].(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "completed", entry["status"])
		assert.Equal(t, 12, doc["level"])
	})

	t.Run("keeps sibling fields intact", func(t *testing.T) {
		doc := map[string]interface{}{
			"taskCompletions": map[string]interface{}{
				"t1": map[string]interface{}{"status": "completed", "failed": true},
				"t2": map[string]interface{}{"status": "uncompleted"},
			},
		}
		doc = applyPatchSet(doc, models.PatchSet{
			"taskCompletions.t1.status": "uncompleted",
		})

		completions := doc["taskCompletions"].(map[string]interface{})
		t1 := completions["t1"].(map[string]interface{})
		assert.Equal(t, "uncompleted", t1["status"])
		assert.Equal(t, true, t1["failed"])
		assert.Contains(t, completions, "t2")
	})

	t.Run("delete removes the leaf only", func(t *testing.T) {
		doc := map[string]interface{}{
			"taskCompletions": map[string]interface{}{
				"t1": map[string]interface{}{"status": "failed", "failed": true},
			},
		}
		doc = applyPatchSet(doc, models.PatchSet{
			"taskCompletions.t1.failed": models.DeleteField,
		})

		t1 := doc["taskCompletions"].(map[string]interface{})["t1"].(map[string]interface{})
		assert.NotContains(t, t1, "failed")
		assert.Equal(t, "failed", t1["status"])
	})

	t.Run("delete of absent path is a no-op", func(t *testing.T) {
		doc := applyPatchSet(map[string]interface{}{}, models.PatchSet{
			"taskCompletions.ghost.failed": models.DeleteField,
		})
		assert.Empty(t, doc)
	})

	t.Run("scalar in the middle of a path is replaced", func(t *testing.T) {
		doc := map[string]interface{}{"taskCompletions": "corrupt"}
		doc = applyPatchSet(doc, models.PatchSet{
			"taskCompletions.t1.status": "completed",
		})

		completions, ok := doc["taskCompletions"].(map[string]interface{})
		assert.True(t, ok)
		t1 := completions["t1"].(map[string]interface{})
		assert.Equal(t, "completed", t1["status"])
	})
}
