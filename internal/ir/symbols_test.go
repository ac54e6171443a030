package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExemption(t *testing.T) {
	for _, blank := range []string{"", "   ", "\t\n"} {
		e, err := NewExemption(blank)
		assert.Nil(t, e)
		assert.True(t, errors.Is(err, ErrEmptyJustification), "%q", blank)
	}

	e, err := NewExemption("  generated by the serializer  ")
	require.NoError(t, err)
	assert.Equal(t, "generated by the serializer", e.Justification())

	var none *Exemption
	assert.Equal(t, "", none.Justification())
}

func TestNewUnit_WiresSymbols(t *testing.T) {
	getter := &Member{Name: "get_Level", Kind: MemberMethod, Special: true, Token: 0x06000002, Body: NewBody([]byte{0x02, 0x2A})}
	prop := &Member{Name: "Level", Kind: MemberProperty, AutoImplemented: true, Getter: getter}
	run := &Member{Name: "Run", Kind: MemberMethod, Token: 0x06000001, Body: NewBody([]byte{0x73, 0x12, 0x00, 0x00, 0x0A, 0x7A})}
	typ := &Type{Namespace: "Game", Name: "Player", Kind: TypeClass, Members: []*Member{run, getter, prop}}

	u := NewUnit("Game.dll", "bin/Game.dll", []*Type{typ},
		WithReferences("UnityEngine"),
		WithMemberRefs(map[uint32]string{0x0A000040: "Game.Enemy::Hit"}),
		WithNotImplementedCtors(0x0A000099),
	)

	assert.Same(t, u, typ.Unit())
	assert.Same(t, typ, run.Owner())
	assert.True(t, getter.IsAccessor())
	assert.False(t, prop.IsAccessor())
	assert.Equal(t, []string{"UnityEngine"}, u.References)
	assert.Equal(t, "Game.Player::Run", run.QualifiedName())

	name, ok := u.Resolve(0x06000002)
	assert.True(t, ok)
	assert.Equal(t, "Game.Player::get_Level", name)
	name, ok = u.Resolve(0x0A000040)
	assert.True(t, ok)
	assert.Equal(t, "Game.Enemy::Hit", name)
	_, ok = u.Resolve(0x0A0000FF)
	assert.False(t, ok)

	// the unit's decoder only accepts 0x0A000099 as the placeholder constructor
	facts, ok := run.Facts()
	require.True(t, ok)
	assert.False(t, facts.ThrowsNotImplemented)

	_, ok = prop.Facts()
	assert.False(t, ok)
}

func TestBody_IsImmutable(t *testing.T) {
	src := []byte{0x14, 0x2A}
	b := NewBody(src)
	src[0] = 0x00

	got := b.Bytes()
	assert.Equal(t, []byte{0x14, 0x2A}, got)
	got[0] = 0xFF
	assert.Equal(t, []byte{0x14, 0x2A}, b.Bytes())
	assert.True(t, b.Facts().ReturnsConstant)
	assert.Equal(t, 2, b.Len())
}

func TestFailedUnit(t *testing.T) {
	u := FailedUnit("Broken.dll", "bin/Broken.dll", nil)
	require.Error(t, u.LoadErr)
	assert.Empty(t, u.Types)
}

func TestHasMarker(t *testing.T) {
	markers := []string{"System.ObsoleteAttribute", "StoryIgnore"}
	assert.True(t, HasMarker(markers, "Obsolete"))
	assert.True(t, HasMarker(markers, "storyignoreattribute"))
	assert.False(t, HasMarker(markers, "Serializable"))
}

func TestViolation_PathAndKey(t *testing.T) {
	v := Violation{Unit: "A.dll", Type: "Game.Player", Member: "Run", RuleID: "COLD-METHOD"}
	assert.Equal(t, "Game.Player.Run", v.Path())
	assert.Equal(t, "A.dll|Game.Player|Run|COLD-METHOD", v.Key())

	overload := v
	overload.Token = 0x06000002
	assert.Equal(t, "A.dll|Game.Player|Run#6000002|COLD-METHOD", overload.Key())
	assert.NotEqual(t, v.Key(), overload.Key())

	v.Member = ""
	assert.Equal(t, "Game.Player", v.Path())
	assert.Equal(t, 1, Severity("bogus").Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
}
