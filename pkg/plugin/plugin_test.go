package plugin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/rule"
)

type mockPlugin struct {
	name    string
	version string
	initErr error
	inits   int
	order   *[]string
}

func (m *mockPlugin) Name() string    { return m.name }
func (m *mockPlugin) Version() string { return m.version }
func (m *mockPlugin) Init(_ *Context) error {
	if m.initErr != nil {
		return m.initErr
	}
	m.inits++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	return nil
}

func newContext() *Context {
	return &Context{Rules: rule.NewEngine()}
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		plugin  Plugin
		wantErr string
	}{
		{"nil", nil, "cannot be nil"},
		{"empty name", &mockPlugin{version: "1.0"}, "cannot be empty"},
		{"duplicate", &mockPlugin{name: "auth", version: "2.0"}, `plugin "auth" already registered`},
	}

	r := NewRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "auth", version: "1.0"}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.plugin)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "auth", version: "1.0"}))

	p, ok := r.Get("auth")
	require.True(t, ok)
	assert.Equal(t, "1.0", p.Version())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_InitAll_RegistrationOrder(t *testing.T) {
	var order []string
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(&mockPlugin{name: name, order: &order}))
	}

	require.NoError(t, r.InitAll(newContext()))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, order)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.List())
	for _, name := range order {
		assert.True(t, r.IsLoaded(name))
	}
}

func TestRegistry_InitAll_Error(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "bad", initErr: fmt.Errorf("boom")}))

	err := r.InitAll(newContext())
	require.Error(t, err)
	assert.Equal(t, `init plugin "bad": boom`, err.Error())
	assert.False(t, r.IsLoaded("bad"))
}

func TestRegistry_Init(t *testing.T) {
	r := NewRegistry()
	p := &mockPlugin{name: "auth"}
	require.NoError(t, r.Register(p))

	require.NoError(t, r.Init("auth", newContext()))
	require.NoError(t, r.Init("auth", newContext()))
	assert.Equal(t, 1, p.inits)

	assert.Error(t, r.Init("missing", newContext()))
}

func TestRegistry_Init_RequiresEngine(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockPlugin{name: "auth"}))

	assert.ErrorContains(t, r.Init("auth", nil), "no rule engine")
	assert.ErrorContains(t, r.Init("auth", &Context{}), "no rule engine")
}
