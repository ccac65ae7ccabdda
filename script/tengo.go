package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/crawler/levels"
)

// sandboxModules are the tengo stdlib modules scripts may import. os is
// left out on purpose.
var sandboxModules = []string{"math", "text", "times", "rand", "fmt", "json", "enum", "base64", "hex"}

type tengoHandler struct {
	name     string
	compiled *tengo.Compiled
	timeout  time.Duration
}

func compileTengo(name string, src []byte, timeout time.Duration) (*tengoHandler, error) {
	script := tengo.NewScript(src)
	_ = script.Add("game", map[string]any{})
	_ = script.Add("source", map[string]any{})
	_ = script.Add("event_type", "")
	_ = script.Add("params", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(sandboxModules...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &tengoHandler{name: name, compiled: compiled, timeout: timeout}, nil
}

// Handle runs the script against a clone of the compiled program so a
// handler may be dispatched again while it is still running.
func (h *tengoHandler) Handle(ctx *Context) error {
	if h == nil || h.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	run := h.compiled.Clone()

	params, err := tengo.FromInterface(ctx.Params)
	if err != nil {
		return err
	}

	if err := run.Set("game", buildGameModule(ctx.API)); err != nil {
		return err
	}
	if err := run.Set("source", propObject(ctx)); err != nil {
		return err
	}
	if err := run.Set("event_type", string(ctx.Event)); err != nil {
		return err
	}
	if err := run.Set("params", params); err != nil {
		return err
	}

	if h.timeout <= 0 {
		return run.Run()
	}
	runCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return run.RunContext(runCtx)
}

func propObject(ctx *Context) tengo.Object {
	if ctx == nil || ctx.Source == nil {
		return tengo.UndefinedValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id":    &tengo.Int{Value: int64(ctx.Source.ID)},
		"event": &tengo.String{Value: string(ctx.Event)},
	}}
}

func vec2(x, y float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatArg(args []tengo.Object, i int, name string) (float64, error) {
	v, ok := tengo.ToFloat64(args[i])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: name, Expected: "float", Found: args[i].TypeName()}
	}
	return v, nil
}

func intArg(args []tengo.Object, i int, name string) (int, error) {
	v, ok := tengo.ToInt(args[i])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: name, Expected: "int", Found: args[i].TypeName()}
	}
	return v, nil
}

func buildGameModule(api API) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	fn := func(name string, arity int, body func(args []tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			if arity >= 0 && len(args) != arity {
				return nil, tengo.ErrWrongNumArguments
			}
			return body(args)
		}}
	}

	// propArg accepts either a prop map carrying an id or a bare id.
	propArg := func(obj tengo.Object) (*levels.Prop, error) {
		idObj := obj
		switch v := obj.(type) {
		case *tengo.ImmutableMap:
			var ok bool
			if idObj, ok = v.Value["id"]; !ok {
				return nil, fmt.Errorf("prop map has no id")
			}
		case *tengo.Map:
			var ok bool
			if idObj, ok = v.Value["id"]; !ok {
				return nil, fmt.Errorf("prop map has no id")
			}
		}
		id, ok := tengo.ToInt(idObj)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "prop", Expected: "prop map or int id", Found: idObj.TypeName()}
		}
		p, ok := api.Prop(id)
		if !ok {
			return nil, fmt.Errorf("no prop with id %d", id)
		}
		return p, nil
	}

	fn("get_player_position", 0, func(args []tengo.Object) (tengo.Object, error) {
		return vec2(api.PlayerPosition()), nil
	})
	fn("set_player_position", 2, func(args []tengo.Object) (tengo.Object, error) {
		x, err := floatArg(args, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := floatArg(args, 1, "y")
		if err != nil {
			return nil, err
		}
		api.SetPlayerPosition(x, y)
		return tengo.UndefinedValue, nil
	})
	fn("get_player_rotation", 0, func(args []tengo.Object) (tengo.Object, error) {
		return vec2(api.PlayerRotation()), nil
	})
	fn("set_player_rotation", 2, func(args []tengo.Object) (tengo.Object, error) {
		h, err := floatArg(args, 0, "h")
		if err != nil {
			return nil, err
		}
		v, err := floatArg(args, 1, "v")
		if err != nil {
			return nil, err
		}
		api.SetPlayerRotation(h, v)
		return tengo.UndefinedValue, nil
	})
	fn("get_level_size", 0, func(args []tengo.Object) (tengo.Object, error) {
		w, h := api.LevelSize()
		return &tengo.Array{Value: []tengo.Object{&tengo.Int{Value: int64(w)}, &tengo.Int{Value: int64(h)}}}, nil
	})
	fn("get_daytime", 0, func(args []tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: api.Daytime()}, nil
	})
	fn("set_daytime", 1, func(args []tengo.Object) (tengo.Object, error) {
		v, err := floatArg(args, 0, "daytime")
		if err != nil {
			return nil, err
		}
		api.SetDaytime(v)
		return tengo.UndefinedValue, nil
	})
	fn("get_position", 1, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		return vec2(api.Position(p)), nil
	})
	fn("set_position", 3, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		x, err := floatArg(args, 1, "x")
		if err != nil {
			return nil, err
		}
		y, err := floatArg(args, 2, "y")
		if err != nil {
			return nil, err
		}
		api.SetPosition(p, x, y)
		return tengo.UndefinedValue, nil
	})
	fn("move", 4, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		x, err := floatArg(args, 1, "x")
		if err != nil {
			return nil, err
		}
		y, err := floatArg(args, 2, "y")
		if err != nil {
			return nil, err
		}
		d, err := floatArg(args, 3, "duration")
		if err != nil {
			return nil, err
		}
		api.Move(p, x, y, d)
		return tengo.UndefinedValue, nil
	})
	fn("get_data", 1, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		return &tengo.String{Value: api.Data(p)}, nil
	})
	fn("get_caption", 1, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		return &tengo.String{Value: api.Caption(p)}, nil
	})
	fn("set_caption", 2, func(args []tengo.Object) (tengo.Object, error) {
		p, err := propArg(args[0])
		if err != nil {
			return nil, err
		}
		caption, ok := tengo.ToString(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "caption", Expected: "string", Found: args[1].TypeName()}
		}
		api.SetCaption(p, caption)
		return tengo.UndefinedValue, nil
	})
	fn("get_tile_steppable", 2, func(args []tengo.Object) (tengo.Object, error) {
		x, err := intArg(args, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := intArg(args, 1, "y")
		if err != nil {
			return nil, err
		}
		return boolObject(api.TileSteppable(x, y)), nil
	})
	fn("set_tile_steppable", 3, func(args []tengo.Object) (tengo.Object, error) {
		x, err := intArg(args, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := intArg(args, 1, "y")
		if err != nil {
			return nil, err
		}
		api.SetTileSteppable(x, y, !args[2].IsFalsy())
		return tengo.UndefinedValue, nil
	})
	fn("change_level", 4, func(args []tengo.Object) (tengo.Object, error) {
		name, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "name", Expected: "string", Found: args[0].TypeName()}
		}
		x, err := floatArg(args, 1, "x")
		if err != nil {
			return nil, err
		}
		y, err := floatArg(args, 2, "y")
		if err != nil {
			return nil, err
		}
		r, err := floatArg(args, 3, "rotation")
		if err != nil {
			return nil, err
		}
		api.ChangeLevel(name, x, y, r)
		return tengo.UndefinedValue, nil
	})
	fn("log", -1, func(args []tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		api.Logf("%s", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
