package trackby

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaTimeout bounds a single track-by call.
const DefaultLuaTimeout = 250 * time.Millisecond

// sandboxedGlobals are base functions that reach the filesystem or compile
// new code.
var sandboxedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// LuaTracker computes tracking keys with a Lua function body that receives
// index (0-based) and item. The Lua state is not goroutine-safe; calls are
// serialized.
type LuaTracker struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
	timeout time.Duration
	logger  *slog.Logger
}

// LuaOption configures a LuaTracker.
type LuaOption func(*LuaTracker)

// WithLuaTimeout sets the execution limit for each call. Zero or less
// keeps DefaultLuaTimeout.
func WithLuaTimeout(d time.Duration) LuaOption {
	return func(t *LuaTracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// Lua compiles source as the body of function(index, item). Only the base,
// table, string and math libraries are available, without the base
// functions that load files or code.
func Lua(source string, logger *slog.Logger, opts ...LuaOption) (*LuaTracker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range sandboxedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	if err := L.DoString("return function(index, item)\n" + source + "\nend"); err != nil {
		L.Close()
		return nil, fmt.Errorf("trackby: compile lua: %w", err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("trackby: lua source did not produce a function")
	}

	t := &LuaTracker{L: L, fn: fn, timeout: DefaultLuaTimeout, logger: logger}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TrackBy returns the key computed by the Lua function. When the function
// fails, runs past the timeout or returns nil the item itself is used.
func (t *LuaTracker) TrackBy(index int, item any) any {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	t.L.SetContext(ctx)
	err := t.L.CallByParam(lua.P{Fn: t.fn, NRet: 1, Protect: true},
		lua.LNumber(index), toLua(t.L, item))
	t.L.RemoveContext()
	cancel()
	if err != nil {
		t.logger.Warn("lua track-by failed", "index", index, "error", err)
		return item
	}
	ret := t.L.Get(-1)
	t.L.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case lua.LBool:
		return bool(v)
	case *lua.LNilType:
		return item
	default:
		return ret.String()
	}
}

// Close releases the Lua state.
func (t *LuaTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.L.Close()
}

// toLua converts item to a Lua value. Raw JSON is decoded first; values
// with no Lua counterpart become their printed form.
func toLua(L *lua.LState, item any) lua.LValue {
	switch v := item.(type) {
	case nil:
		return lua.LNil
	case json.RawMessage:
		return jsonToLua(L, v)
	case []byte:
		return jsonToLua(L, v)
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return lua.LString(v)
		}
		return lua.LNumber(f)
	case []any:
		t := L.NewTable()
		for _, e := range v {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, v[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

func jsonToLua(L *lua.LState, raw []byte) lua.LValue {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return lua.LString(raw)
	}
	return toLua(L, v)
}
