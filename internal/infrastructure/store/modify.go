package store

import (
	"fmt"

	"howett.net/plist"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/domain/entity"
)

// BuildModified derives a full replacement document carrying desc for the
// display. The input snapshot is never mutated: the copy is made by a
// lossless plist round trip, so every field outside the LinkDescription
// records survives untouched.
//
// The new values are written into every section holding a matching record
// — both top-level sections when both contain an entry for this display.
// Returns ErrEntryNotFound when no section matches anywhere.
func (a *Accessor) BuildModified(snap *port.StoreSnapshot, ref entity.DisplayRef, desc entity.LinkDescription) (map[string]any, error) {
	doc, err := deepCopy(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("deep copy store document: %w", err)
	}

	locs := matchLocations(doc, ref)
	if len(locs) == 0 {
		return nil, port.ErrEntryNotFound
	}

	for _, loc := range locs {
		rec := entryAt(doc, loc)
		if rec == nil {
			continue
		}
		link, ok := rec[linkDescKey].(map[string]any)
		if !ok {
			link = make(map[string]any)
			rec[linkDescKey] = link
		}
		// Only the four link fields change; anything else a vendor put
		// inside the record passes through.
		link["PixelEncoding"] = desc.PixelEncoding
		link["Range"] = desc.Range
		link["BitDepth"] = desc.BitDepth
		link["EOTF"] = desc.EOTF
	}
	return doc, nil
}

// matchLocations collects every record to rewrite: all exact UUID matches
// across both sections, or — when UUID matching is unavailable — the
// first LinkDescription possessor per section.
func matchLocations(doc map[string]any, ref entity.DisplayRef) []port.EntryLocation {
	var locs []port.EntryLocation
	if ref.UUID != "" {
		walkEntries(doc, func(loc port.EntryLocation, rec map[string]any) bool {
			id, _ := rec[uuidKey].(string)
			if entity.SameDisplayUUID(id, ref.UUID) {
				loc.MatchedByUUID = true
				locs = append(locs, loc)
			}
			return true
		})
		if len(locs) > 0 {
			return locs
		}
	}
	seenSection := make(map[string]bool)
	walkEntries(doc, func(loc port.EntryLocation, rec map[string]any) bool {
		if seenSection[loc.Section] {
			return true
		}
		if _, ok := rec[linkDescKey].(map[string]any); ok {
			seenSection[loc.Section] = true
			locs = append(locs, loc)
		}
		return true
	})
	return locs
}

// deepCopy clones a document through a serialize/deserialize round trip.
// A structural copy would share the nested maps and slices; this cannot.
func deepCopy(doc map[string]any) (map[string]any, error) {
	raw, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if _, err := plist.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
