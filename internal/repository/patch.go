package repository

import (
	"sort"
	"strings"

	"tracker-server/internal/models"
)

// applyPatchSet applies dot-path patches to a decoded progress document.
// Intermediate objects are created as needed; a non-object in the middle
// of a path is replaced, the patch wins. Deletes of absent paths are
// no-ops. Paths are applied in sorted order so the result does not depend
// on map iteration.
func applyPatchSet(doc map[string]interface{}, patches models.PatchSet) map[string]interface{} {
	if doc == nil {
		doc = make(map[string]interface{})
	}

	paths := make([]string, 0, len(patches))
	for p := range patches {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		segments := strings.Split(path, ".")
		if models.IsDelete(patches[path]) {
			deleteAtPath(doc, segments)
			continue
		}
		setAtPath(doc, segments, patches[path])
	}
	return doc
}

func setAtPath(doc map[string]interface{}, segments []string, value interface{}) {
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

func deleteAtPath(doc map[string]interface{}, segments []string) {
	current := doc
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			return
		}
		current = next
	}
	delete(current, segments[len(segments)-1])
}
