package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconcileFixture(t *testing.T, installed ...InstalledMod) *State {
	t.Helper()
	s := NewState()
	g, err := s.AddGame(Game{ID: "g1", Name: "Game One"}, "/games/one")
	require.NoError(t, err)
	for _, im := range installed {
		g.Mods.Set(im)
	}
	return s
}

func catalogWith(mods ...Mod) *Metadata {
	meta := NewMetadata("1.0.0")
	meta.Games["g1"] = Game{ID: "g1", Name: "Game One"}
	for _, m := range mods {
		meta.Mods[m.ID] = m
	}
	return meta
}

func TestReconcile(t *testing.T) {
	devMod := testMod("dev", "0.0.1")
	devMod.DevMod = true

	tests := []struct {
		name      string
		installed []InstalledMod
		catalog   *Metadata
		want      []FindingKind
	}{
		{
			name:      "matching versions",
			installed: []InstalledMod{{M: testMod("m1", "1.0"), Version: "1.0", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0")),
			want:      nil,
		},
		{
			name:      "unknown mod is orphaned",
			installed: []InstalledMod{{M: testMod("ghost", "1.0.0"), Version: "1.0.0", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0.0")),
			want:      []FindingKind{FindingOrphaned},
		},
		{
			name:      "unknown dev mod is ignored",
			installed: []InstalledMod{{M: devMod, Version: "0.0.1", Enabled: true}},
			catalog:   catalogWith(),
			want:      nil,
		},
		{
			name:      "older installed version is outdated",
			installed: []InstalledMod{{M: testMod("m1", "0.9"), Version: "0.9", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0")),
			want:      []FindingKind{FindingOutdated},
		},
		{
			name:      "newer installed version mismatches",
			installed: []InstalledMod{{M: testMod("m1", "1.1.0"), Version: "1.1.0", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0.0")),
			want:      []FindingKind{FindingVersionMismatch},
		},
		{
			name:      "incomparable versions mismatch",
			installed: []InstalledMod{{M: testMod("m1", "nightly"), Version: "nightly", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0.0")),
			want:      []FindingKind{FindingVersionMismatch},
		},
		{
			name:      "equivalent version spellings match",
			installed: []InstalledMod{{M: testMod("m1", "1.0"), Version: "1.0", Enabled: true}},
			catalog:   catalogWith(testMod("m1", "1.0.0")),
			want:      nil,
		},
		{
			name:      "nil catalog orphans everything",
			installed: []InstalledMod{{M: testMod("m1", "1.0.0"), Version: "1.0.0"}, {M: devMod, Version: "0.0.1"}},
			catalog:   nil,
			want:      []FindingKind{FindingOrphaned},
		},
		{
			name: "findings follow installation order",
			installed: []InstalledMod{
				{M: testMod("z", "1.0.0"), Version: "1.0.0"},
				{M: testMod("a", "0.1.0"), Version: "0.1.0"},
			},
			catalog: catalogWith(testMod("a", "0.2.0")),
			want:    []FindingKind{FindingOrphaned, FindingOutdated},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reconcileFixture(t, tt.installed...)

			findings := Reconcile(s, tt.catalog)

			var kinds []FindingKind
			for _, f := range findings {
				assert.Equal(t, "g1", f.GameID)
				kinds = append(kinds, f.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestReconcile_OutdatedDetail(t *testing.T) {
	s := reconcileFixture(t, InstalledMod{M: testMod("m1", "0.9"), Version: "0.9", Enabled: true})

	findings := Reconcile(s, catalogWith(testMod("m1", "1.0")))
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, FindingOutdated, f.Kind)
	assert.Equal(t, "m1", f.ModID)
	assert.Equal(t, "0.9", f.InstalledVersion)
	assert.Equal(t, "1.0", f.CatalogVersion)
}

func TestReconcile_GameModsLookup(t *testing.T) {
	s := reconcileFixture(t, InstalledMod{M: testMod("local", "1.0.0"), Version: "1.0.0"})
	meta := catalogWith().WithGameMods("g1", map[string]Mod{"local": testMod("local", "1.0.0")})

	assert.Empty(t, Reconcile(s, meta))
}

func TestReconcile_Incompatible(t *testing.T) {
	m := testMod("m1", "1.0.0")
	m.YtinuVersion = Some(">=0.2.0")
	s := reconcileFixture(t, InstalledMod{M: m, Version: "1.0.0"})
	meta := catalogWith(m)

	assert.Empty(t, Reconcile(s, meta))
	assert.Empty(t, Reconcile(s, meta, WithAppVersion("0.2.1")))

	findings := Reconcile(s, meta, WithAppVersion("0.1.0"))
	require.Len(t, findings, 1)
	assert.Equal(t, FindingIncompatible, findings[0].Kind)
}

func TestReconcile_UnknownAppVersionSkipsCompatibility(t *testing.T) {
	m := testMod("m1", "1.0.0")
	m.YtinuVersion = Some(">=0.2.0")
	s := reconcileFixture(t, InstalledMod{M: m, Version: "1.0.0"})

	assert.Empty(t, Reconcile(s, catalogWith(m), WithAppVersion("dev")))
}

func TestReconcile_DoesNotMutate(t *testing.T) {
	s := reconcileFixture(t, InstalledMod{M: testMod("m1", "0.9.0"), Version: "0.9.0", Enabled: true})
	meta := catalogWith(testMod("m1", "1.0.0"))
	before := s.Clone()

	_ = Reconcile(s, meta)
	assert.Equal(t, before, s)
	assert.Equal(t, "1.0.0", meta.Mods["m1"].Version)
}

func TestReconcile_GamesSortedByID(t *testing.T) {
	s := NewState()
	for _, id := range []string{"b", "a"} {
		g, err := s.AddGame(Game{ID: id, Name: id}, "/"+id)
		require.NoError(t, err)
		g.Mods.Set(InstalledMod{M: testMod("x", "1.0.0"), Version: "1.0.0"})
	}

	findings := Reconcile(s, NewMetadata("1.0.0"))
	require.Len(t, findings, 2)
	assert.Equal(t, "a", findings[0].GameID)
	assert.Equal(t, "b", findings[1].GameID)

	assert.Equal(t, map[FindingKind]int{FindingOrphaned: 2}, Summary(findings))
}
