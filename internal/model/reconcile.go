package model

import "fmt"

// FindingKind classifies a reconciliation finding.
type FindingKind string

// Finding kinds.
const (
	// FindingOrphaned marks an installed mod the catalog does not know.
	FindingOrphaned FindingKind = "orphaned"
	// FindingOutdated marks an installed version older than the catalog's.
	FindingOutdated FindingKind = "outdated"
	// FindingVersionMismatch marks an installed version that differs from
	// the catalog's but is not older, or cannot be compared.
	FindingVersionMismatch FindingKind = "version_mismatch"
	// FindingIncompatible marks a catalog release that does not support the
	// running manager version.
	FindingIncompatible FindingKind = "incompatible"
)

// Finding is a single discrepancy between the state and the catalog.
type Finding struct {
	Kind             FindingKind `json:"kind"`
	GameID           string      `json:"game_id"`
	ModID            string      `json:"mod_id"`
	InstalledVersion string      `json:"installed_version,omitempty"`
	CatalogVersion   string      `json:"catalog_version,omitempty"`
	Detail           string      `json:"detail"`
}

// ReconcileOption configures Reconcile.
type ReconcileOption func(*reconcileOptions)

type reconcileOptions struct {
	appVersion string
}

// WithAppVersion enables compatibility checks of catalog releases against
// the given manager version. Versions that do not parse, such as the "dev"
// of local builds, leave the checks disabled.
func WithAppVersion(v string) ReconcileOption {
	return func(o *reconcileOptions) { o.appVersion = v }
}

func (o *reconcileOptions) knownVersion() bool {
	if o.appVersion == "" {
		return false
	}
	_, err := ParseVersion(o.appVersion)
	return err == nil
}

// Reconcile compares every installed mod with the catalog. Games are visited
// in ascending id order and mods in installation order. A nil catalog is
// treated as empty. Neither argument is modified.
func Reconcile(state *State, meta *Metadata, opts ...ReconcileOption) []Finding {
	var o reconcileOptions
	for _, opt := range opts {
		opt(&o)
	}

	var findings []Finding
	if state == nil {
		return findings
	}
	for _, gameID := range state.GameIDs() {
		g := state.Games[gameID]
		if g == nil {
			continue
		}
		findings = append(findings, reconcileGame(gameID, g, meta, o)...)
	}
	return findings
}

// ReconcileGame is Reconcile restricted to one set up game.
func ReconcileGame(gameID string, g *SetupGame, meta *Metadata, opts ...ReconcileOption) []Finding {
	var o reconcileOptions
	for _, opt := range opts {
		opt(&o)
	}
	return reconcileGame(gameID, g, meta, o)
}

func reconcileGame(gameID string, g *SetupGame, meta *Metadata, o reconcileOptions) []Finding {
	var findings []Finding
	for id, im := range g.Mods.All() {
		mod, ok := meta.LookupMod(gameID, id)
		if !ok {
			if im.M.DevMod {
				continue
			}
			findings = append(findings, Finding{
				Kind:             FindingOrphaned,
				GameID:           gameID,
				ModID:            id,
				InstalledVersion: im.Version,
				Detail:           "mod is not listed in the catalog",
			})
			continue
		}

		// "1.0" and "1.0.0" are the same release
		cmp, known := CompareVersions(im.Version, mod.Version)
		if im.Version != mod.Version && !(known && cmp == 0) {
			f := Finding{
				Kind:             FindingVersionMismatch,
				GameID:           gameID,
				ModID:            id,
				InstalledVersion: im.Version,
				CatalogVersion:   mod.Version,
				Detail:           fmt.Sprintf("installed %s differs from catalog %s", im.Version, mod.Version),
			}
			if known && cmp < 0 {
				f.Kind = FindingOutdated
				f.Detail = fmt.Sprintf("update available: %s -> %s", im.Version, mod.Version)
			}
			findings = append(findings, f)
		}

		if r, ok := mod.YtinuVersion.Get(); ok && o.knownVersion() && !MatchesRange(o.appVersion, r) {
			findings = append(findings, Finding{
				Kind:             FindingIncompatible,
				GameID:           gameID,
				ModID:            id,
				InstalledVersion: im.Version,
				CatalogVersion:   mod.Version,
				Detail:           fmt.Sprintf("catalog release requires manager %s", r),
			})
		}
	}
	return findings
}

// Summary counts findings per kind.
func Summary(findings []Finding) map[FindingKind]int {
	out := make(map[FindingKind]int)
	for _, f := range findings {
		out[f.Kind]++
	}
	return out
}
