package symtab

import (
	"testing"

	"github.com/mna/sysyc/lang/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareLookup(t *testing.T) {
	env := NewEnv()
	require.NoError(t, env.Declare("x", IntVar{Name: "x_0"}))
	require.NoError(t, env.Declare("N", ConstInt{Val: 3}))

	b, ok := env.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, IntVar{Name: "x_0"}, b)

	b, ok = env.Lookup("N")
	require.True(t, ok)
	assert.Equal(t, ConstInt{Val: 3}, b)

	_, ok = env.Lookup("missing")
	assert.False(t, ok)
}

func TestRedefinitionSameDepth(t *testing.T) {
	env := NewEnv()
	require.NoError(t, env.Declare("x", IntVar{Name: "x_0"}))
	err := env.Declare("x", ConstInt{Val: 1})
	require.Error(t, err)
	assert.Equal(t, cerr.Redefinition, cerr.KindOf(err))
}

func TestShadowing(t *testing.T) {
	env := NewEnv()
	require.NoError(t, env.Declare("x", ConstInt{Val: 1}))

	snap := env.Enter()
	require.Equal(t, 1, env.Depth())
	require.NoError(t, env.Declare("x", ConstInt{Val: 2}))

	b, ok := env.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ConstInt{Val: 2}, b)

	env.Leave(snap)
	require.Equal(t, 0, env.Depth())

	b, ok = env.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ConstInt{Val: 1}, b)
}

func TestNestedScopesDiscardOnLeave(t *testing.T) {
	env := NewEnv()
	s1 := env.Enter()
	require.NoError(t, env.Declare("a", IntVar{Name: "a_0"}))
	s2 := env.Enter()
	require.NoError(t, env.Declare("b", IntVar{Name: "b_1"}))

	_, ok := env.Lookup("a")
	assert.True(t, ok)
	_, ok = env.Lookup("b")
	assert.True(t, ok)

	env.Leave(s2)
	_, ok = env.Lookup("b")
	assert.False(t, ok)
	_, ok = env.Lookup("a")
	assert.True(t, ok)

	env.Leave(s1)
	_, ok = env.Lookup("a")
	assert.False(t, ok)
}

func TestMustLookupUndefined(t *testing.T) {
	env := NewEnv()
	_, err := env.MustLookup("nope")
	require.Error(t, err)
	assert.Equal(t, cerr.Undefined, cerr.KindOf(err))
}

func TestPredeclareRuntime(t *testing.T) {
	env := NewEnv()
	env.PredeclareRuntime()

	cases := []struct {
		name    string
		void    bool
		ptrArgs []bool
	}{
		{"getint", false, []bool{}},
		{"getch", false, []bool{}},
		{"getarray", false, []bool{true}},
		{"putint", true, []bool{false}},
		{"putch", true, []bool{false}},
		{"putarray", true, []bool{false, true}},
		{"starttime", true, []bool{}},
		{"stoptime", true, []bool{}},
	}
	for _, c := range cases {
		b, ok := env.Lookup(c.name)
		require.True(t, ok, c.name)
		fn, ok := b.(Func)
		require.True(t, ok, c.name)
		assert.Equal(t, c.void, fn.Void, c.name)
		assert.Equal(t, c.ptrArgs, fn.PtrParams, c.name)
	}

	// runtime names can be shadowed by user declarations at deeper scopes
	snap := env.Enter()
	require.NoError(t, env.Declare("getint", IntVar{Name: "getint_0"}))
	env.Leave(snap)
}
