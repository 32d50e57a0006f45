package store

import (
	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
)

// FindDisplayEntry locates the display's record inside the document.
//
// First pass: exact case-insensitive UUID match across every
// section/group/record, sections in priority order. Second pass: when the
// display's UUID is unavailable or matched nothing, return the first
// record that carries a LinkDescription sub-record at all — only
// externally connected displays have one, which makes possession a usable
// substitute identity signal.
//
// The location is recomputed on every call; array order in the document
// may change between reads.
func FindDisplayEntry(doc map[string]any, ref entity.DisplayRef) *port.EntryLocation {
	if ref.UUID != "" {
		if loc := findByUUID(doc, ref.UUID); loc != nil {
			return loc
		}
	}
	return findByLinkPossession(doc)
}

func findByUUID(doc map[string]any, uuid string) *port.EntryLocation {
	var found *port.EntryLocation
	walkEntries(doc, func(loc port.EntryLocation, rec map[string]any) bool {
		id, _ := rec[uuidKey].(string)
		if entity.SameDisplayUUID(id, uuid) {
			loc.MatchedByUUID = true
			found = &loc
			return false
		}
		return true
	})
	return found
}

func findByLinkPossession(doc map[string]any) *port.EntryLocation {
	var found *port.EntryLocation
	walkEntries(doc, func(loc port.EntryLocation, rec map[string]any) bool {
		if _, ok := rec[linkDescKey].(map[string]any); ok {
			found = &loc
			return false
		}
		return true
	})
	return found
}

// walkEntries visits every per-display record in section priority order.
// The visitor returns false to stop the walk.
func walkEntries(doc map[string]any, visit func(port.EntryLocation, map[string]any) bool) {
	for _, section := range sectionKeys {
		sec, ok := doc[section].(map[string]any)
		if !ok {
			continue
		}
		configs, ok := sec[configsKey].([]any)
		if !ok {
			continue
		}
		for ci, c := range configs {
			group, ok := c.(map[string]any)
			if !ok {
				continue
			}
			displays, ok := group[displayConfigKey].([]any)
			if !ok {
				continue
			}
			for di, d := range displays {
				rec, ok := d.(map[string]any)
				if !ok {
					continue
				}
				loc := port.EntryLocation{Section: section, ConfigIndex: ci, DisplayIndex: di}
				if !visit(loc, rec) {
					return
				}
			}
		}
	}
}

// entryAt returns the record a location points to, or nil if the document
// no longer has it.
func entryAt(doc map[string]any, loc port.EntryLocation) map[string]any {
	sec, ok := doc[loc.Section].(map[string]any)
	if !ok {
		return nil
	}
	configs, ok := sec[configsKey].([]any)
	if !ok || loc.ConfigIndex >= len(configs) {
		return nil
	}
	group, ok := configs[loc.ConfigIndex].(map[string]any)
	if !ok {
		return nil
	}
	displays, ok := group[displayConfigKey].([]any)
	if !ok || loc.DisplayIndex >= len(displays) {
		return nil
	}
	rec, _ := displays[loc.DisplayIndex].(map[string]any)
	return rec
}
