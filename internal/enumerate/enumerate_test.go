package enumerate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
)

func paths(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		p := e.Symbol.Violation().Path()
		if e.Diagnostic != nil {
			p = e.Diagnostic.RuleID + " " + p
		}
		out = append(out, p)
	}
	return out
}

func collect(units []*ir.Unit, f Filter) []Entry {
	var out []Entry
	for e := range Walk(units, f) {
		out = append(out, e)
	}
	return out
}

func sampleUnit(t *testing.T) *ir.Unit {
	t.Helper()
	exempt, err := ir.NewExemption("kept for save-game compatibility")
	require.NoError(t, err)

	getter := &ir.Member{Name: "get_Health", Kind: ir.MemberMethod, Special: true}
	player := &ir.Type{Namespace: "Game", Name: "Player", Kind: ir.TypeClass, Members: []*ir.Member{
		{Name: "Run", Kind: ir.MemberMethod},
		getter,
		{Name: "Health", Kind: ir.MemberProperty, Getter: getter},
		{Name: "<Run>b__0", Kind: ir.MemberMethod},
		{Name: "Legacy", Kind: ir.MemberMethod, Exemption: exempt},
		{Name: "Hack", Kind: ir.MemberMethod, ExemptionErr: ir.ErrEmptyJustification},
	}}
	color := &ir.Type{Namespace: "Game", Name: "Color", Kind: ir.TypeEnum, Members: []*ir.Member{
		{Name: "value__", Kind: ir.MemberField},
		{Name: "Red", Kind: ir.MemberField, Literal: true},
	}}
	hidden := &ir.Type{Namespace: "Game", Name: "Old", Kind: ir.TypeClass, Exemption: exempt, Members: []*ir.Member{
		{Name: "Stub", Kind: ir.MemberMethod},
	}}
	closure := &ir.Type{Namespace: "Game", Name: "<>c", Kind: ir.TypeClass}
	return ir.NewUnit("Game.dll", "", []*ir.Type{player, color, hidden, closure})
}

func TestWalk_SkipsAndDiagnostics(t *testing.T) {
	u := sampleUnit(t)
	got := paths(collect([]*ir.Unit{u}, Filter{}))

	assert.Equal(t, []string{
		"Game.Player",
		"Game.Player.Run",
		"Game.Player.Health",
		"INVALID-EXEMPTION Game.Player.Hack",
		"Game.Player.Hack",
		"Game.Color",
		"Game.Color.Red",
	}, got)
}

func TestWalk_UnloadableUnitContinues(t *testing.T) {
	bad := ir.FailedUnit("Broken.dll", "bin/Broken.dll", errors.New("bad image"))
	good := ir.NewUnit("Ok.dll", "", []*ir.Type{{Namespace: "Ok", Name: "A", Kind: ir.TypeClass}})

	entries := collect([]*ir.Unit{bad, good}, Filter{})
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Diagnostic)
	assert.Equal(t, RuleUnitNotAnalyzable, entries[0].Diagnostic.RuleID)
	assert.Equal(t, ir.SeverityHigh, entries[0].Diagnostic.Severity)
	assert.Contains(t, entries[0].Diagnostic.Message, "bad image")
	assert.Equal(t, "Ok.A", entries[1].Symbol.Type.FullName())
}

func TestWalk_IsRestartableAndStopsEarly(t *testing.T) {
	seq := Walk([]*ir.Unit{sampleUnit(t)}, Filter{})
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, first, second)

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestWalk_UnitFilters(t *testing.T) {
	mk := func(name string, refs ...string) *ir.Unit {
		return ir.NewUnit(name, "", []*ir.Type{{Name: "T", Kind: ir.TypeClass}}, ir.WithReferences(refs...))
	}
	units := []*ir.Unit{
		mk("Game.dll", "UnityEngine.CoreModule"),
		mk("Tools.dll"),
		mk("System.Runtime.dll"),
	}

	names, err := NameFilter(nil, []string{"System.*"})
	require.NoError(t, err)

	f := Filter{Units: names, Capabilities: Capabilities{HostPrefixes: []string{"UnityEngine"}}}
	var seen []string
	for e := range Walk(units, f) {
		seen = append(seen, e.Symbol.Unit.Name)
	}
	assert.Equal(t, []string{"Tools.dll"}, seen)

	f.Capabilities.HostRuntime = true
	seen = nil
	for e := range Walk(units, f) {
		seen = append(seen, e.Symbol.Unit.Name)
	}
	assert.Equal(t, []string{"Game.dll", "Tools.dll"}, seen)
}

func TestNameFilter(t *testing.T) {
	f, err := NameFilter([]string{"Game*.dll", "Assembly-CSharp*"}, []string{"*.Tests.dll"})
	require.NoError(t, err)
	assert.True(t, f("Game.Core.dll"))
	assert.True(t, f("Assembly-CSharp.dll"))
	assert.False(t, f("Game.Core.Tests.dll"))
	assert.False(t, f("Newtonsoft.Json.dll"))

	_, err = NameFilter([]string{"[bad"}, nil)
	assert.Error(t, err)
}

func TestGenerated(t *testing.T) {
	assert.True(t, Generated("<Main>$"))
	assert.True(t, Generated("__StaticArrayInit"))
	assert.False(t, Generated("Main"))
}
