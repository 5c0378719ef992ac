package symdiff

import (
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToMap returns the JSON-ready object form of e:
//
//	{"type":"num","value":2}
//	{"type":"sym","name":"x"}
//	{"type":"binop","op":"+","left":{…},"right":{…}}
//	{"type":"func","name":"sin","arg":{…}}
func ToMap(e Expr) map[string]interface{} {
	switch x := e.(type) {
	case Num:
		return map[string]interface{}{"type": "num", "value": x.Value}
	case Sym:
		return map[string]interface{}{"type": "sym", "name": x.Name}
	case BinOp:
		return map[string]interface{}{"type": "binop", "op": x.Op.Symbol(), "left": ToMap(x.Left), "right": ToMap(x.Right)}
	case Func:
		return map[string]interface{}{"type": "func", "name": x.Name, "arg": ToMap(x.Arg)}
	}
	panic(unknownNode(e))
}

func ToJSON(e Expr) (string, error) {
	b, err := sonic.Marshal(ToMap(e))
	if err != nil {
		return "", errors.Wrap(err, "encode expression")
	}
	return string(b), nil
}

func FromJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decode expression")
	}
	return FromMap(m)
}

// FromMap rebuilds an expression from its object form. Numbers may be JSON
// numbers or numeric strings; function names must be reserved names.
func FromMap(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, errors.New("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, errors.New("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromMap(m)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", typ, field)
		}
		return e, nil
	}
	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", errors.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		switch v := data["value"].(type) {
		case float64:
			return N(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.Errorf("num: invalid value %q", v)
			}
			return N(f), nil
		}
		return nil, errors.New("num: 'value' must be a number")

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "binop":
		sym, err := subString("op")
		if err != nil {
			return nil, err
		}
		op, ok := OperatorFromSymbol(sym)
		if !ok {
			return nil, errors.Errorf("binop: unknown operator %q", sym)
		}
		l, err := subObj("left")
		if err != nil {
			return nil, err
		}
		r, err := subObj("right")
		if err != nil {
			return nil, err
		}
		return BinOp{Op: op, Left: l, Right: r}, nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !IsFunctionName(name) {
			return nil, errors.Errorf("func: unknown function %q", name)
		}
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		return Func{Name: name, Arg: arg}, nil
	}
	return nil, errors.Errorf("unknown expression type: %s", typ)
}
