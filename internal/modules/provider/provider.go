// Package provider canonicalizes business channel names.
//
// Providers were renamed over time. Rows written under an old name are
// presented under the current one, and files stored under an old
// directory stay reachable through StorageDirs.
package provider

import (
	"sort"
	"strings"
)

// Unassigned is used where a record carries no provider.
const Unassigned = "Unassigned"

var renames = map[string]string{
	"Umvuzo Fedhealth":   "Intelligene Fedhealth",
	"Umvuzo Intelligene": "Intelligene Umvuzo",
}

var legacy = buildLegacy()

var known = []string{
	"Geneway",
	"Optiway",
	"Enbiosis",
	"Reboot",
	"Intelligene",
	"Healthy Me",
	"Intelligene Fedhealth",
	"Geko",
}

func buildLegacy() map[string][]string {
	m := make(map[string][]string)
	for old, current := range renames {
		m[current] = append(m[current], old)
	}
	for _, names := range m {
		sort.Strings(names)
	}
	return m
}

// Normalize maps a legacy provider name to its current name.
// Unknown and empty names are returned unchanged.
func Normalize(name string) string {
	if name == "" {
		return name
	}
	if current, ok := renames[name]; ok {
		return current
	}
	return name
}

// OrUnassigned normalizes name and substitutes Unassigned for an empty result.
func OrUnassigned(name string) string {
	if n := Normalize(strings.TrimSpace(name)); n != "" {
		return n
	}
	return Unassigned
}

// LegacyNamesFor returns the old names that map to canonical, sorted.
func LegacyNamesFor(canonical string) []string {
	names := legacy[canonical]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Known returns the providers offered on forms, in display order.
func Known() []string {
	out := make([]string, len(known))
	copy(out, known)
	return out
}

// Renames returns a copy of the old -> current name map.
func Renames() map[string]string {
	out := make(map[string]string, len(renames))
	for k, v := range renames {
		out[k] = v
	}
	return out
}

// StorageDirs lists the directory names a provider's files may live under:
// the canonical name first, then each legacy name, then the raw input.
// Spaces become underscores and duplicates are dropped.
func StorageDirs(name string) []string {
	canonical := OrUnassigned(name)
	candidates := []string{canonical}
	candidates = append(candidates, legacy[canonical]...)
	if name != "" && name != canonical {
		candidates = append(candidates, name)
	}

	seen := make(map[string]bool, len(candidates))
	var dirs []string
	for _, c := range candidates {
		d := DirName(c)
		if seen[d] {
			continue
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	return dirs
}

// DirName is the on-disk directory for a provider name.
func DirName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// SortGroups orders provider group keys alphabetically with Unassigned last.
func SortGroups(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == Unassigned) != (keys[j] == Unassigned) {
			return keys[j] == Unassigned
		}
		return keys[i] < keys[j]
	})
}
