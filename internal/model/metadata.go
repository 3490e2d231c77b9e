package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/go-openapi/strfmt"
	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

// MessageIcon classifies a catalog message.
type MessageIcon string

// Message icons.
const (
	IconInfo     MessageIcon = "Info"
	IconQuestion MessageIcon = "Question"
	IconError    MessageIcon = "Error"
	IconWarning  MessageIcon = "Warning"
)

// Message is an announcement published with the catalog.
type Message struct {
	ID string `json:"id"`
	// Version is the range of manager versions the message is meant for.
	// Empty matches every version.
	Version    string      `json:"version,omitempty"`
	Message    string      `json:"message"`
	Icon       MessageIcon `json:"icon,omitempty"`
	ShowAlways bool        `json:"show_always,omitempty"`
}

// IconOrDefault returns the message icon, IconInfo when unset.
func (m Message) IconOrDefault() MessageIcon {
	if m.Icon == "" {
		return IconInfo
	}
	return m.Icon
}

// Metadata is an immutable snapshot of the mod catalog.
type Metadata struct {
	Version string `json:"version"`
	// Update reports whether the catalog announces a newer manager release.
	Update    bool                      `json:"update"`
	Games     map[string]Game           `json:"games"`
	GameMods  map[string]map[string]Mod `json:"game_mods"`
	Mods      map[string]Mod            `json:"mods"`
	Downloads map[string]string         `json:"downloads,omitempty"`
	Messages  []Message                 `json:"messages,omitempty"`

	repairs []ConsistencyError
}

// NewMetadata returns an empty catalog snapshot.
func NewMetadata(version string) *Metadata {
	return &Metadata{
		Version:  version,
		Games:    make(map[string]Game),
		GameMods: make(map[string]map[string]Mod),
		Mods:     make(map[string]Mod),
	}
}

// ParseOption configures ParseMetadata.
type ParseOption func(*parseOptions)

type parseOptions struct {
	repair bool
}

// Repair makes ParseMetadata replace per-game records that differ from the
// flat catalog record instead of failing. The replaced pairs are available
// from Metadata.Repairs.
func Repair() ParseOption {
	return func(o *parseOptions) { o.repair = true }
}

// ParseMetadata decodes and validates a catalog snapshot.
func ParseMetadata(data []byte, opts ...ParseOption) (*Metadata, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !gjson.ValidBytes(data) {
		return nil, &SchemaError{Reason: "malformed JSON"}
	}
	if v := gjson.GetBytes(data, "version"); v.Type != gjson.String || v.Str == "" {
		return nil, schemaErr("version", "required")
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, decodeErr(err)
	}
	meta.init()

	if o.repair {
		meta.repairConsistency()
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ParseCatalog decodes the list-shaped catalog document published by the
// catalog server. Update is set when the catalog version is newer than
// appVersion.
func ParseCatalog(data []byte, appVersion string) (*Metadata, error) {
	if !gjson.ValidBytes(data) {
		return nil, &SchemaError{Reason: "malformed JSON"}
	}

	var doc struct {
		Version   string            `json:"version"`
		Downloads map[string]string `json:"downloads"`
		Messages  []Message         `json:"messages"`
		Games     []Game            `json:"games"`
		Mods      []Mod             `json:"mods"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, decodeErr(err)
	}

	meta := NewMetadata(doc.Version)
	meta.Downloads = doc.Downloads
	meta.Messages = doc.Messages

	var result *multierror.Error
	for i, g := range doc.Games {
		if _, dup := meta.Games[g.ID]; dup {
			result = multierror.Append(result, schemaErr(fmt.Sprintf("games[%d].id", i), "duplicate game id %q", g.ID))
			continue
		}
		meta.Games[g.ID] = g
	}
	mods, err := modsByID("mods", doc.Mods)
	result = multierror.Append(result, err)
	meta.Mods = mods
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if cmp, ok := CompareVersions(meta.Version, appVersion); ok && cmp > 0 {
		meta.Update = true
	}
	return meta, nil
}

// ParseGameMods decodes a per-game catalog document of the form
// {"mods": [...]}.
func ParseGameMods(data []byte) (map[string]Mod, error) {
	if !gjson.ValidBytes(data) {
		return nil, &SchemaError{Reason: "malformed JSON"}
	}
	var doc struct {
		Mods []Mod `json:"mods"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, decodeErr(err)
	}
	mods, err := modsByID("mods", doc.Mods)
	if err != nil {
		return nil, err
	}

	var result *multierror.Error
	for _, id := range slices.Sorted(maps.Keys(mods)) {
		result = multierror.Append(result, validateCatalogMod("mods."+id, id, mods[id])...)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return mods, nil
}

func modsByID(path string, list []Mod) (map[string]Mod, error) {
	var result *multierror.Error
	mods := make(map[string]Mod, len(list))
	for i, m := range list {
		if _, dup := mods[m.ID]; dup {
			result = multierror.Append(result, schemaErr(fmt.Sprintf("%s[%d].id", path, i), "duplicate mod id %q", m.ID))
			continue
		}
		mods[m.ID] = m
	}
	return mods, result.ErrorOrNil()
}

// MarshalMetadata encodes meta as indented JSON.
func MarshalMetadata(meta *Metadata) ([]byte, error) {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

func (m *Metadata) init() {
	if m.Games == nil {
		m.Games = make(map[string]Game)
	}
	if m.GameMods == nil {
		m.GameMods = make(map[string]map[string]Mod)
	}
	if m.Mods == nil {
		m.Mods = make(map[string]Mod)
	}
}

// Repairs returns the per-game records replaced while parsing with Repair.
func (m *Metadata) Repairs() []ConsistencyError {
	return slices.Clone(m.repairs)
}

func (m *Metadata) repairConsistency() {
	for _, gameID := range slices.Sorted(maps.Keys(m.GameMods)) {
		mods := m.GameMods[gameID]
		for _, modID := range slices.Sorted(maps.Keys(mods)) {
			base, ok := m.Mods[modID]
			if !ok || base.Equal(mods[modID]) {
				continue
			}
			mods[modID] = base.Clone()
			m.repairs = append(m.repairs, ConsistencyError{GameID: gameID, ModID: modID})
		}
	}
}

// LookupMod finds a catalog record for a mod installed in gameID. The flat
// catalog takes precedence over the per-game catalog.
func (m *Metadata) LookupMod(gameID, modID string) (Mod, bool) {
	if m == nil {
		return Mod{}, false
	}
	if mod, ok := m.Mods[modID]; ok {
		return mod, true
	}
	mod, ok := m.GameMods[gameID][modID]
	return mod, ok
}

// ModsFor returns every catalog mod available for gameID, keyed by id.
func (m *Metadata) ModsFor(gameID string) map[string]Mod {
	out := make(map[string]Mod, len(m.Mods)+len(m.GameMods[gameID]))
	maps.Copy(out, m.GameMods[gameID])
	maps.Copy(out, m.Mods)
	return out
}

// WithGameMods returns a copy of m in which the per-game catalog of gameID is
// replaced by mods. The receiver is not modified.
func (m *Metadata) WithGameMods(gameID string, mods map[string]Mod) *Metadata {
	c := *m
	c.GameMods = maps.Clone(m.GameMods)
	if c.GameMods == nil {
		c.GameMods = make(map[string]map[string]Mod)
	}
	c.GameMods[gameID] = maps.Clone(mods)
	c.repairs = slices.Clone(m.repairs)
	return &c
}

// UnresolvedRecommendations returns the recommended mods of every game that
// resolve neither in the global catalog nor in an attached per-game listing.
// Recommendations may name mods of listings not fetched yet, so these are
// informational and never fail validation.
func (m *Metadata) UnresolvedRecommendations() []ReferenceError {
	var out []ReferenceError
	for _, id := range slices.Sorted(maps.Keys(m.Games)) {
		for _, rec := range m.Games[id].RecommendedMods {
			if _, ok := m.LookupMod(id, rec); !ok {
				out = append(out, ReferenceError{Kind: "mod", ID: rec, Referrer: "games." + id + ".recommended_mods"})
			}
		}
	}
	return out
}

// Validate checks the structural invariants of the catalog. All problems
// are reported, aggregated in a *multierror.Error.
func (m *Metadata) Validate() error {
	var result *multierror.Error

	if m.Version == "" {
		result = multierror.Append(result, schemaErr("version", "required"))
	} else if _, err := ParseVersion(m.Version); err != nil {
		result = multierror.Append(result, schemaErr("version", "not a semantic version: %q", m.Version))
	}

	for _, id := range slices.Sorted(maps.Keys(m.Games)) {
		result = multierror.Append(result, validateGame("games."+id, id, m.Games[id])...)
	}

	for _, id := range slices.Sorted(maps.Keys(m.Mods)) {
		result = multierror.Append(result, validateCatalogMod("mods."+id, id, m.Mods[id])...)
	}

	for _, gameID := range slices.Sorted(maps.Keys(m.GameMods)) {
		if _, ok := m.Games[gameID]; !ok {
			result = multierror.Append(result, &ReferenceError{Kind: "game", ID: gameID, Referrer: "game_mods"})
		}
		mods := m.GameMods[gameID]
		for _, modID := range slices.Sorted(maps.Keys(mods)) {
			mod := mods[modID]
			result = multierror.Append(result, validateCatalogMod("game_mods."+gameID+"."+modID, modID, mod)...)
			if base, ok := m.Mods[modID]; ok && !base.Equal(mod) {
				result = multierror.Append(result, &ConsistencyError{GameID: gameID, ModID: modID})
			}
		}
	}

	seen := make(map[string]bool, len(m.Messages))
	for i, msg := range m.Messages {
		path := fmt.Sprintf("messages[%d]", i)
		if msg.ID == "" {
			result = multierror.Append(result, schemaErr(path+".id", "required"))
		} else if seen[msg.ID] {
			result = multierror.Append(result, schemaErr(path+".id", "duplicate message id %q", msg.ID))
		}
		seen[msg.ID] = true
		if _, err := ParseRange(msg.Version); err != nil {
			result = multierror.Append(result, schemaErr(path+".version", "invalid version range %q", msg.Version))
		}
		switch msg.IconOrDefault() {
		case IconInfo, IconQuestion, IconError, IconWarning:
		default:
			result = multierror.Append(result, schemaErr(path+".icon", "unknown icon %q", msg.Icon))
		}
	}

	return result.ErrorOrNil()
}

func validateCatalogMod(path, key string, mod Mod) []error {
	errs := validateMod(path, key, mod)
	if mod.Download != "" && !strfmt.Default.Validates("uri", mod.Download) {
		errs = append(errs, schemaErr(path+".download", "not a URI: %q", mod.Download))
	}
	if mod.Version != "" {
		if _, err := ParseVersion(mod.Version); err != nil {
			errs = append(errs, schemaErr(path+".version", "not a semantic version: %q", mod.Version))
		}
	}
	if v, ok := mod.Source.Get(); ok && !strfmt.Default.Validates("uri", v) {
		errs = append(errs, schemaErr(path+".source", "not a URI: %q", v))
	}
	if v, ok := mod.Homepage.Get(); ok && !strfmt.Default.Validates("uri", v) {
		errs = append(errs, schemaErr(path+".homepage", "not a URI: %q", v))
	}
	if r, ok := mod.YtinuVersion.Get(); ok {
		if _, err := ParseRange(r); err != nil {
			errs = append(errs, schemaErr(path+".ytinu_version", "invalid version range %q", r))
		}
	}
	return errs
}
