package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// InstalledMods is an insertion-ordered map of installed mods keyed by mod id.
// At most one record exists per id. The zero value is an empty set.
type InstalledMods struct {
	order []string
	byID  map[string]InstalledMod
}

// NewInstalledMods returns a set holding mods in the given order. A later
// record with the same id replaces an earlier one in place.
func NewInstalledMods(mods ...InstalledMod) InstalledMods {
	var s InstalledMods
	for _, im := range mods {
		s.Set(im)
	}
	return s
}

// Len returns the number of installed mods.
func (s *InstalledMods) Len() int {
	return len(s.order)
}

// Get returns the record for id.
func (s *InstalledMods) Get(id string) (InstalledMod, bool) {
	im, ok := s.byID[id]
	return im, ok
}

// Has reports whether id is installed.
func (s *InstalledMods) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Set stores im under im.M.ID. A new id is appended; an existing id keeps
// its position.
func (s *InstalledMods) Set(im InstalledMod) {
	if s.byID == nil {
		s.byID = make(map[string]InstalledMod)
	}
	if _, ok := s.byID[im.M.ID]; !ok {
		s.order = append(s.order, im.M.ID)
	}
	s.byID[im.M.ID] = im
}

// Delete removes id and reports whether it was present.
func (s *InstalledMods) Delete(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	if len(s.order) == 0 {
		*s = InstalledMods{}
	}
	return true
}

// IDs returns the mod ids in insertion order.
func (s *InstalledMods) IDs() []string {
	return slices.Clone(s.order)
}

// All iterates over the mods in insertion order.
func (s *InstalledMods) All() iter.Seq2[string, InstalledMod] {
	return func(yield func(string, InstalledMod) bool) {
		for _, id := range s.order {
			if !yield(id, s.byID[id]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of s.
func (s *InstalledMods) Clone() InstalledMods {
	var c InstalledMods
	for _, id := range s.order {
		im := s.byID[id]
		im.M = im.M.Clone()
		c.Set(im)
	}
	return c
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (s InstalledMods) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.byID[id])
		if err != nil {
			return nil, fmt.Errorf("encode mod %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping document order. Duplicate keys
// are rejected with a SchemaError.
func (s *InstalledMods) UnmarshalJSON(data []byte) error {
	*s = InstalledMods{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return schemaErr("mods", "expected an object keyed by mod id")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var im InstalledMod
		if err := dec.Decode(&im); err != nil {
			return fmt.Errorf("decode mod %q: %w", key, err)
		}
		if s.Has(key) {
			return schemaErr("mods."+key, "duplicate mod id")
		}
		if s.byID == nil {
			s.byID = make(map[string]InstalledMod)
		}
		s.order = append(s.order, key)
		s.byID[key] = im
	}
	_, err = dec.Token()
	return err
}
