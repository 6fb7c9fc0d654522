package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tracker-server/internal/models"
	"tracker-server/internal/progress"
)

func TestNormalizeEntries(t *testing.T) {
	t.Run("nil map yields empty list", func(t *testing.T) {
		items := progress.NormalizeEntries(nil, true, true)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("empty entry gets defaults", func(t *testing.T) {
		items := progress.NormalizeEntries(map[string]models.RawEntry{"x": {}}, true, true)
		assert.Equal(t, []models.ProgressItem{{ID: "x", Complete: false, Count: 0, Invalid: false}}, items)
	})

	t.Run("textual status resolves completion", func(t *testing.T) {
		raw := map[string]models.RawEntry{
			"done":    {Status: "completed"},
			"failed":  {Status: "failed"},
			"pending": {Status: "uncompleted"},
		}
		items := progress.NormalizeEntries(raw, false, false)

		done, _ := itemByID(items, "done")
		assert.True(t, done.Complete)
		assert.False(t, done.Failed)

		failed, _ := itemByID(items, "failed")
		assert.False(t, failed.Complete)
		assert.True(t, failed.Failed)

		pending, _ := itemByID(items, "pending")
		assert.False(t, pending.Complete)
		assert.False(t, pending.Failed)
	})

	t.Run("boolean flags resolve completion", func(t *testing.T) {
		raw := map[string]models.RawEntry{
			"done":   {Complete: boolPtr(true)},
			"broken": {Complete: boolPtr(false), Failed: boolPtr(true)},
		}
		items := progress.NormalizeEntries(raw, false, false)

		done, _ := itemByID(items, "done")
		assert.True(t, done.Complete)

		broken, _ := itemByID(items, "broken")
		assert.False(t, broken.Complete)
		assert.True(t, broken.Failed)
	})

	t.Run("textual status wins over boolean complete", func(t *testing.T) {
		// Старые записи могут нести оба поля сразу.
		raw := map[string]models.RawEntry{
			"both": {Status: "completed", Complete: boolPtr(false)},
		}
		items := progress.NormalizeEntries(raw, false, false)
		both, _ := itemByID(items, "both")
		assert.True(t, both.Complete)
	})

	t.Run("count copied only when requested", func(t *testing.T) {
		raw := map[string]models.RawEntry{"obj": {Count: intPtr(7)}}

		withCount := progress.NormalizeEntries(raw, true, false)
		assert.Equal(t, 7, withCount[0].Count)

		withoutCount := progress.NormalizeEntries(raw, false, false)
		assert.Equal(t, 0, withoutCount[0].Count)
	})

	t.Run("invalid copied only when requested", func(t *testing.T) {
		raw := map[string]models.RawEntry{"task": {Complete: boolPtr(true), Invalid: boolPtr(true)}}

		withInvalid := progress.NormalizeEntries(raw, false, true)
		assert.True(t, withInvalid[0].Invalid)
		assert.False(t, withInvalid[0].Complete, "invalid entry must not be complete")

		withoutInvalid := progress.NormalizeEntries(raw, false, false)
		assert.False(t, withoutInvalid[0].Invalid)
		assert.True(t, withoutInvalid[0].Complete)
	})

	t.Run("output ordered by id", func(t *testing.T) {
		raw := map[string]models.RawEntry{"c": {}, "a": {}, "b": {}}
		items := progress.NormalizeEntries(raw, false, false)

		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})
}
