package tools

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/kode4food/nebula/pkg/api"
)

// LuaTool runs a sandboxed Lua script against the state bag. The script
// sees the state as the local table `state` and must return a table, which
// becomes the new state
type LuaTool struct {
	bytecode  []byte
	statePool chan *lua.State
}

const (
	luaStatePoolSize    = 4
	luaGlobalTableIndex = -2
	luaArrayTableIndex  = -3
	luaMapTableIndex    = -3
	luaGlobalTableName  = "_G"
	luaStatePrelude     = "local state = ...\n"
)

var (
	ErrLuaLoad      = errors.New("lua load error")
	ErrLuaExecution = errors.New("lua execution error")
	ErrLuaResult    = errors.New("lua script must return a table")
)

var luaExclude = [...]string{
	"io", "os", "debug", "package", "require", "dofile", "loadfile", "load",
}

// NewLuaTool compiles script into a reusable Lua tool
func NewLuaTool(script string) (*LuaTool, error) {
	L := lua.NewState()
	setupSandbox(L)

	if err := lua.LoadString(L, luaStatePrelude+script); err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrInvalidToolDefinition, err)
	}

	var buf bytes.Buffer
	if err := L.Dump(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrInvalidToolDefinition, err)
	}

	return &LuaTool{
		bytecode:  buf.Bytes(),
		statePool: make(chan *lua.State, luaStatePoolSize),
	}, nil
}

// Transform executes the script with st bound to `state`
func (t *LuaTool) Transform(st api.State) (api.State, error) {
	L := t.getState()
	defer t.returnState(L)

	setupSandbox(L)
	if err := L.Load(bytes.NewReader(t.bytecode), "chunk", "b"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}

	pushLuaState(L, st)
	if err := L.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLuaExecution, err)
	}

	if !L.IsTable(-1) {
		return nil, ErrLuaResult
	}
	res := luaTableToState(L, -1)
	L.Pop(1)
	return res, nil
}

func (t *LuaTool) getState() *lua.State {
	select {
	case L := <-t.statePool:
		return L
	default:
		return lua.NewState()
	}
}

func (t *LuaTool) returnState(L *lua.State) {
	L.SetTop(0)

	select {
	case t.statePool <- L:
	default:
	}
}

func setupSandbox(L *lua.State) {
	lua.OpenLibraries(L)
	L.Global(luaGlobalTableName)
	for _, name := range luaExclude {
		L.PushNil()
		L.SetField(luaGlobalTableIndex, name)
	}
	L.Pop(1)
}

func pushLuaState(L *lua.State, st api.State) {
	L.CreateTable(0, len(st))
	for k, val := range st {
		L.PushString(string(k))
		goToLua(L, val)
		L.SetTable(luaMapTableIndex)
	}
}

func goToLua(L *lua.State, value any) {
	switch v := value.(type) {
	case string:
		L.PushString(v)
	case bool:
		L.PushBoolean(v)
	case int:
		L.PushInteger(v)
	case int64:
		L.PushInteger(int(v))
	case float64:
		L.PushNumber(v)
	case []any:
		pushLuaArray(L, v)
	case []string:
		arr := make([]any, len(v))
		for i, s := range v {
			arr[i] = s
		}
		pushLuaArray(L, arr)
	case map[string]any:
		pushLuaMap(L, v)
	case api.State:
		pushLuaState(L, v)
	case nil:
		L.PushNil()
	default:
		L.PushString(fmt.Sprintf("%v", v))
	}
}

func pushLuaArray(L *lua.State, arr []any) {
	L.CreateTable(len(arr), 0)
	for i, item := range arr {
		L.PushInteger(i + 1)
		goToLua(L, item)
		L.SetTable(luaArrayTableIndex)
	}
}

func pushLuaMap(L *lua.State, m map[string]any) {
	L.CreateTable(0, len(m))
	for k, val := range m {
		L.PushString(k)
		goToLua(L, val)
		L.SetTable(luaMapTableIndex)
	}
}

func luaNumberToGo(L *lua.State, index int) any {
	num, _ := L.ToNumber(index)
	if num == float64(int(num)) {
		return int(num)
	}
	return num
}

func luaToGo(L *lua.State, index int) any {
	switch L.TypeOf(index) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return L.ToBoolean(index)
	case lua.TypeNumber:
		return luaNumberToGo(L, index)
	case lua.TypeString:
		s, _ := L.ToString(index)
		return s
	case lua.TypeTable:
		return luaTableToAny(L, index)
	default:
		return nil
	}
}

func luaTableToState(L *lua.State, index int) api.State {
	result := api.State{}

	L.PushNil()
	for L.Next(index - 1) {
		if L.TypeOf(-2) == lua.TypeString {
			key, _ := L.ToString(-2)
			result[api.Name(key)] = luaToGo(L, -1)
		}
		L.Pop(1)
	}

	return result
}

func luaTableToAny(L *lua.State, index int) any {
	isArray := true
	length := 0

	L.PushNil()
	for L.Next(index - 1) {
		if L.TypeOf(-2) != lua.TypeNumber {
			isArray = false
			L.Pop(2)
			break
		}
		length++
		L.Pop(1)
	}

	if isArray && length > 0 {
		return convertLuaArray(L, index, length)
	}

	result := map[string]any{}
	L.PushNil()
	for L.Next(index - 1) {
		if L.TypeOf(-2) != lua.TypeString {
			key := fmt.Sprintf("%v", luaToGo(L, -2))
			result[key] = luaToGo(L, -1)
			L.Pop(1)
			continue
		}
		key, _ := L.ToString(-2)
		result[key] = luaToGo(L, -1)
		L.Pop(1)
	}

	return result
}

func convertLuaArray(L *lua.State, index, length int) []any {
	arr := make([]any, length)
	absIndex := index
	if index < 0 {
		absIndex = L.Top() + index + 1
	}
	for i := 1; i <= length; i++ {
		L.RawGetInt(absIndex, i)
		arr[i-1] = luaToGo(L, -1)
		L.Pop(1)
	}
	return arr
}
