package plugin

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/probe"
	"digital.vasic.contracts/pkg/rule"
)

const typeServedBy rule.Type = "served_by"

func servedBy(def rule.Definition, resp *probe.Response) (bool, string) {
	if got := resp.Headers["Server"]; got != def.Substring {
		return false, "expected server " + def.Substring + ", got " + got
	}
	return true, ""
}

func TestLoader_LoadAndInit(t *testing.T) {
	r := NewRegistry()
	l := NewLoader(r)

	err := l.LoadAndInit([]Plugin{
		&mockPlugin{name: "p1", version: "1.0"},
		&mockPlugin{name: "p2", version: "2.0"},
	}, newContext())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.IsLoaded("p1"))
	assert.True(t, r.IsLoaded("p2"))
}

func TestLoader_LoadOne(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, NewLoader(r).LoadOne(&mockPlugin{name: "single"}, newContext()))
	assert.True(t, r.IsLoaded("single"))
}

func TestLoader_DuplicateError(t *testing.T) {
	l := NewLoader(NewRegistry())
	err := l.LoadAndInit([]Plugin{
		&mockPlugin{name: "same", version: "1.0"},
		&mockPlugin{name: "same", version: "2.0"},
	}, newContext())
	assert.ErrorContains(t, err, "load plugin")
}

func TestRulePack_RegistersEvaluators(t *testing.T) {
	engine := rule.NewEngine()
	pack := NewRulePack("servers", "1.0").Add(typeServedBy, servedBy)
	assert.Equal(t, []rule.Type{typeServedBy}, pack.Types())

	require.NoError(t, NewLoader(NewRegistry()).LoadOne(pack, &Context{Rules: engine}))
	assert.True(t, engine.HasEvaluator(typeServedBy))

	def := rule.Definition{Type: typeServedBy, Substring: "nginx"}
	require.NoError(t, engine.Validate(def))

	resp := probe.NewResponse(200, http.Header{"Server": {"Apache"}}, nil, time.Millisecond)
	out := engine.Evaluate(def, resp)
	assert.False(t, out.Passed)
	assert.Equal(t, "expected server nginx, got Apache", out.Reason)
}

func TestRulePack_BuiltinConflict(t *testing.T) {
	pack := NewRulePack("shadow", "1.0").Add(rule.TypeStatusEquals, servedBy)

	err := NewLoader(NewRegistry()).LoadOne(pack, newContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule type already registered: status_equals")
}
