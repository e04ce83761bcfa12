package router_test

import (
	"testing"

	"git.fiblab.net/sim/metro/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStationRegular(t *testing.T) {
	s, err := router.ParseStation("kashmere gate_red")
	require.NoError(t, err)
	assert.Equal(t, "Kashmere Gate", s.Name)
	assert.Equal(t, []string{"red"}, s.Lines)
	assert.False(t, s.IsInterchange)
	assert.Equal(t, "kashmere gate", s.Key())

	// 名称中的下划线替换为空格，按最后一个下划线切分线路
	s, err = router.ParseStation("  hauz_khas__Yellow ")
	require.NoError(t, err)
	assert.Equal(t, "Hauz Khas", s.Name)
	assert.Equal(t, []string{"yellow"}, s.Lines)
}

func TestParseStationInterchange(t *testing.T) {
	s, err := router.ParseStation("Rajiv Chowk_(interchange yellow blue)")
	require.NoError(t, err)
	assert.Equal(t, "Rajiv Chowk", s.Name)
	assert.Equal(t, []string{"blue", "yellow"}, s.Lines)
	assert.True(t, s.IsInterchange)

	s, err = router.ParseStation("new_delhi_(Interchange  yellow orange yellow )")
	require.NoError(t, err)
	assert.Equal(t, "New Delhi", s.Name)
	assert.Equal(t, []string{"orange", "yellow"}, s.Lines)
}

func TestParseStationMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"central",
		"central_",
		"_red",
		"central_(interchange)",
		"central_(blue red)",
		"central_(interchange red",
		"central_red blue",
	} {
		_, err := router.ParseStation(raw)
		assert.ErrorIs(t, err, router.ErrMalformedStationName, "raw %q", raw)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Inderlok", router.DisplayName("inderlok"))
	assert.Equal(t, "Dilli Haat Ina", router.DisplayName("DILLI   haat_ina"))
	assert.Equal(t, "", router.DisplayName(" _ "))
}
