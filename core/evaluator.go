package core

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/vuuvv/errors"
)

// Filter is a compiled CEL expression evaluated against every decoded packet.
type Filter struct {
	expr string
	prg  cel.Program
}

func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),   // vars为解码过程中的变量
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)), // fields为所有字段的值
		cel.Variable("msg", cel.MapType(cel.StringType, cel.DynType)),    // msg为报文摘要
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "compile filter '%s'", expr)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter. Values are normalized so CEL sees ints, strings, bytes and bools.
func (f *Filter) Match(msg, fields, vars map[string]any) (bool, error) {
	input := map[string]any{
		"msg":    celMap(msg),
		"fields": celMap(fields),
		"vars":   celMap(vars),
	}
	out, _, err := f.prg.Eval(input)
	if err != nil {
		return false, errors.Wrapf(err, "filter '%s'", f.expr)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter '%s' result is not a bool: %v", f.expr, out.Value())
	}
	return b, nil
}

func celMap(m map[string]any) map[string]any {
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = celValue(v)
	}
	return ret
}

func celValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, []byte, int64, float64:
		return val
	case fmt.Stringer:
		return val.String()
	}
	if u, ok := ToUint64(v); ok {
		return int64(u)
	}
	return ToString(v)
}
