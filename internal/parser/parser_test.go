package parser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/storage"
)

var defaultOpts = Options{ExemptionMarker: "StoryIgnore"}

func TestParse_Directory(t *testing.T) {
	units, diags := Parse(filepath.Join("testdata", "units"), defaultOpts)
	require.Len(t, units, 2)
	require.Len(t, diags.Warnings, 1)
	assert.Contains(t, diags.Warnings[0], "Broken.unit.json")

	game := units[0]
	require.NoError(t, game.LoadErr)
	assert.Equal(t, "Game.dll", game.Name)
	assert.Equal(t, "bin/Game.dll", game.Path)
	assert.Equal(t, []string{"mscorlib"}, game.References)
	require.Len(t, game.Types, 2)

	player := game.Types[0]
	assert.Equal(t, ir.TypeClass, player.Kind)
	assert.True(t, player.HasMarker("SerializableAttribute"))
	require.Len(t, player.Members, 5)

	speed, getter, setter, save, dump := player.Members[0], player.Members[1], player.Members[2], player.Members[3], player.Members[4]
	assert.Same(t, getter, speed.Getter)
	assert.Same(t, setter, speed.Setter)
	assert.True(t, getter.IsAccessor())
	assert.Equal(t, 8, setter.Body.Len())
	assert.Equal(t, ir.Private, dump.Visibility)
	assert.Equal(t, "editor-only diagnostics", dump.Exemption.Justification())

	facts, ok := save.Facts()
	require.True(t, ok)
	assert.True(t, facts.ThrowsNotImplemented)

	name, ok := game.Resolve(0x0A000040)
	require.True(t, ok)
	assert.Equal(t, "Game.Player::get_Speed", name)
	name, _ = game.Resolve(0x06000003)
	assert.Equal(t, "Game.Player::Save", name)

	state := game.Types[1]
	assert.Equal(t, ir.TypeEnum, state.Kind)
	assert.True(t, state.Members[1].Literal)

	broken := units[1]
	assert.Equal(t, "Broken", broken.Name)
	assert.Error(t, broken.LoadErr)
	assert.Empty(t, broken.Types)
}

func TestParse_SingleFileAndMissingPath(t *testing.T) {
	units, diags := Parse(filepath.Join("testdata", "units", "Game.unit.yaml"), defaultOpts)
	require.Len(t, units, 1)
	assert.Empty(t, diags.Warnings)

	units, diags = Parse(filepath.Join(t.TempDir(), "nope"), defaultOpts)
	assert.Empty(t, units)
	assert.NotEmpty(t, diags.Warnings)

	units, diags = Parse(t.TempDir(), defaultOpts)
	assert.Empty(t, units)
	assert.Equal(t, []string{"no unit manifests found"}, diags.Warnings)
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "types: [", "decode manifest"},
		{"bad hex", "types: [{name: T, members: [{name: M, body: 'ZZ'}]}]", "body"},
		{"odd hex", "types: [{name: T, members: [{name: M, body: '2'}]}]", "body"},
		{"bad token", "types: [{name: T, members: [{name: M, token: 'x1'}]}]", "bad token"},
		{"duplicate token", "types: [{name: T, members: [{name: A, token: 0x06000001}, {name: B, token: 0x06000001}]}]", "used by"},
		{"untokened overload", "types: [{name: T, members: [{name: Tick, token: 0x06000001}, {name: Tick}]}]", "needs a token"},
		{"type kind", "types: [{name: T, kind: record}]", "unknown kind"},
		{"member kind", "types: [{name: T, members: [{name: M, kind: indexer}]}]", "unknown kind"},
		{"missing accessor", "types: [{name: T, members: [{name: P, kind: property, getter: get_P}]}]", "missing accessor"},
		{"unnamed type", "types: [{kind: class}]", "without a name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.doc), "x.unit.yaml", defaultOpts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecode_Overloads(t *testing.T) {
	doc := "unit: A.dll\ntypes: [{name: Ticker, members: [{name: Tick, token: 0x06000001, body: '2A'}, {name: Tick, token: 0x06000002, body: '00 2A'}]}]\n"
	u, err := Decode([]byte(doc), "a.unit.yaml", defaultOpts)
	require.NoError(t, err)
	require.Len(t, u.Types[0].Members, 2)
	first, ok := u.Definition(0x06000001)
	require.True(t, ok)
	second, ok := u.Definition(0x06000002)
	require.True(t, ok)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, second.Body.Len())
}

func TestDecode_Exemptions(t *testing.T) {
	doc := `
unit: Game.dll
types:
  - name: Legacy
    exempt: ""
    members:
      - name: Tick
        markers: [StoryIgnoreAttribute]
      - name: Run
        exempt: "  waiting on the physics rewrite "
      - name: .ctor
        kind: constructor
`
	u, err := Decode([]byte(doc), "Game.unit.yaml", defaultOpts)
	require.NoError(t, err)
	typ := u.Types[0]
	assert.Nil(t, typ.Exemption)
	assert.ErrorIs(t, typ.ExemptionErr, ir.ErrEmptyJustification)
	assert.ErrorIs(t, typ.Members[0].ExemptionErr, ir.ErrEmptyJustification)
	assert.Equal(t, "waiting on the physics rewrite", typ.Members[1].Exemption.Justification())
	assert.True(t, typ.Members[2].Special)

	// Without an exemption marker configured the bare marker is just a marker.
	u, err = Decode([]byte(doc), "Game.unit.yaml", Options{})
	require.NoError(t, err)
	assert.NoError(t, u.Types[0].Members[0].ExemptionErr)
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"unit": "Tools.dll", "member_refs": {"0x0A000001": "Tools.Log::Write"},
	  "types": [{"namespace": "Tools", "name": "Log", "members": [{"name": "Write", "token": "0x06000001", "body": "2A"}]}]}`
	u, err := Decode([]byte(doc), "Tools.unit.json", defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, "Tools.dll", u.Name)
	assert.Equal(t, "Tools.unit.json", u.Path)
	assert.Equal(t, uint32(0x06000001), u.Types[0].Members[0].Token)
	name, ok := u.Resolve(0x0A000001)
	require.True(t, ok)
	assert.Equal(t, "Tools.Log::Write", name)
}

func TestIsManifest(t *testing.T) {
	assert.True(t, IsManifest("a/b/Game.unit.yaml"))
	assert.True(t, IsManifest("Game.unit.json"))
	assert.False(t, IsManifest("Game.yaml"))
	assert.False(t, IsManifest("Game.unit.toml"))
}

func TestApplyExemptions(t *testing.T) {
	units, _ := Parse(filepath.Join("testdata", "units"), defaultOpts)
	now := time.Now()
	expired := now.Add(-time.Minute)
	revoked := now.Add(-time.Hour)
	records := []storage.Exemption{
		{ID: 1, Pattern: "Game.Player::S*", Justification: "save rewrite in progress"},
		{ID: 2, Pattern: "Game.State", Justification: "expired", ExpiresAt: &expired},
		{ID: 3, Pattern: "Game.State", Justification: "revoked", RevokedAt: &revoked},
	}

	n := ApplyExemptions(units, records, now)
	// Speed and Save; DebugDump already carries its own exemption.
	assert.Equal(t, 2, n)

	player := units[0].Types[0]
	assert.Equal(t, "save rewrite in progress", player.Members[0].Exemption.Justification())
	assert.Equal(t, "save rewrite in progress", player.Members[3].Exemption.Justification())
	assert.Equal(t, "editor-only diagnostics", player.Members[4].Exemption.Justification())
	assert.Nil(t, player.Exemption)
	assert.Nil(t, units[0].Types[1].Exemption)

	assert.Zero(t, ApplyExemptions(units, nil, now))
}
