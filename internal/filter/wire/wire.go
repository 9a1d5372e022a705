// Package wire decodes a filter definition's JSON expression tree (as
// stored in the registry) into a predicate for one of the two backends,
// and compiles it straight to instructions.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/SkynetNext/bpf-filter/internal/filter/cbpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/compiler"
	"github.com/SkynetNext/bpf-filter/internal/filter/ebpf"
	"github.com/SkynetNext/bpf-filter/internal/filter/predicate"
)

// node is the wire shape of one predicate tree node.
//
//	{"op": "terminal", "offset": 12, "size": 16, "cmp": "eq", "value": 2048}
//	{"op": "not", "a": {...}}
//	{"op": "and", "a": {...}, "b": {...}}
//	{"op": "or",  "a": {...}, "b": {...}}
//	{"op": "const", "bool_value": true}
type node struct {
	Op     string          `json:"op"`
	Offset uint32          `json:"offset,omitempty"`
	Size   int             `json:"size,omitempty"` // 8, 16, or 32
	Cmp    string          `json:"cmp,omitempty"`
	Value  uint32          `json:"value,omitempty"`
	Bool   bool            `json:"bool_value,omitempty"`
	A      json.RawMessage `json:"a,omitempty"`
	B      json.RawMessage `json:"b,omitempty"`
}

// CompileClassic decodes raw as a classic-BPF predicate and compiles it.
func CompileClassic(raw json.RawMessage) ([]cbpf.Instruction, error) {
	n, err := decode(raw)
	if err != nil {
		return nil, err
	}
	pred, err := toClassic(n)
	if err != nil {
		return nil, err
	}
	return compiler.Compile[cbpf.Instruction](pred, cbpf.Backend{}), nil
}

// CompileExtended decodes raw as an extended-BPF predicate and compiles it.
func CompileExtended(raw json.RawMessage) ([]ebpf.Instruction, error) {
	n, err := decode(raw)
	if err != nil {
		return nil, err
	}
	pred, err := toExtended(n)
	if err != nil {
		return nil, err
	}
	return compiler.Compile[ebpf.Instruction](pred, ebpf.Backend{}), nil
}

func decode(raw json.RawMessage) (node, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return node{}, fmt.Errorf("wire: decoding predicate node: %w", err)
	}
	return n, nil
}

func toClassic(n node) (predicate.Expr[cbpf.Condition], error) {
	switch n.Op {
	case "const":
		return predicate.Const[cbpf.Condition](n.Bool), nil

	case "terminal":
		cmp, err := classicComparison(n.Cmp)
		if err != nil {
			return predicate.Expr[cbpf.Condition]{}, err
		}
		comp, err := loadFor(n.Size, n.Offset)
		if err != nil {
			return predicate.Expr[cbpf.Condition]{}, err
		}
		return predicate.Terminal(cbpf.Condition{
			Computation: comp,
			Comparison:  cmp,
			Operand:     n.Value,
		}), nil

	case "not":
		a, err := decodeAndConvert(n.A, toClassic)
		if err != nil {
			return predicate.Expr[cbpf.Condition]{}, err
		}
		return predicate.Not(a), nil

	case "and", "or":
		a, err := decodeAndConvert(n.A, toClassic)
		if err != nil {
			return predicate.Expr[cbpf.Condition]{}, err
		}
		b, err := decodeAndConvert(n.B, toClassic)
		if err != nil {
			return predicate.Expr[cbpf.Condition]{}, err
		}
		if n.Op == "and" {
			return predicate.And(a, b), nil
		}
		return predicate.Or(a, b), nil

	default:
		return predicate.Expr[cbpf.Condition]{}, fmt.Errorf("wire: unknown predicate op %q", n.Op)
	}
}

func toExtended(n node) (predicate.Expr[ebpf.Condition], error) {
	switch n.Op {
	case "const":
		return predicate.Const[ebpf.Condition](n.Bool), nil

	case "terminal":
		cmp, err := extendedComparison(n.Cmp)
		if err != nil {
			return predicate.Expr[ebpf.Condition]{}, err
		}
		comp, err := loadForExtended(n.Size, int32(n.Offset))
		if err != nil {
			return predicate.Expr[ebpf.Condition]{}, err
		}
		return predicate.Terminal(ebpf.Condition{
			Computation: comp,
			Comparison:  cmp,
			Operand:     int32(n.Value),
		}), nil

	case "not":
		a, err := decodeAndConvert(n.A, toExtended)
		if err != nil {
			return predicate.Expr[ebpf.Condition]{}, err
		}
		return predicate.Not(a), nil

	case "and", "or":
		a, err := decodeAndConvert(n.A, toExtended)
		if err != nil {
			return predicate.Expr[ebpf.Condition]{}, err
		}
		b, err := decodeAndConvert(n.B, toExtended)
		if err != nil {
			return predicate.Expr[ebpf.Condition]{}, err
		}
		if n.Op == "and" {
			return predicate.And(a, b), nil
		}
		return predicate.Or(a, b), nil

	default:
		return predicate.Expr[ebpf.Condition]{}, fmt.Errorf("wire: unknown predicate op %q", n.Op)
	}
}

func decodeAndConvert[C any](raw json.RawMessage, convert func(node) (predicate.Expr[C], error)) (predicate.Expr[C], error) {
	n, err := decode(raw)
	if err != nil {
		return predicate.Expr[C]{}, err
	}
	return convert(n)
}

func classicComparison(cmp string) (cbpf.Comparison, error) {
	switch cmp {
	case "eq":
		return cbpf.Equal, nil
	case "gt":
		return cbpf.GreaterThan, nil
	case "ge":
		return cbpf.GreaterEqual, nil
	case "set":
		return cbpf.AndMask, nil
	default:
		return 0, fmt.Errorf("wire: unknown classic comparison %q", cmp)
	}
}

func extendedComparison(cmp string) (ebpf.Comparison, error) {
	switch cmp {
	case "eq":
		return ebpf.Equal, nil
	case "ne":
		return ebpf.NotEqual, nil
	case "gt":
		return ebpf.GreaterThan, nil
	case "ge":
		return ebpf.GreaterEqual, nil
	case "lt":
		return ebpf.LesserThan, nil
	case "le":
		return ebpf.LesserEqual, nil
	case "set":
		return ebpf.AndMask, nil
	default:
		return 0, fmt.Errorf("wire: unknown extended comparison %q", cmp)
	}
}

func loadFor(size int, offset uint32) ([]cbpf.Instruction, error) {
	switch size {
	case 8:
		return cbpf.LoadU8At(offset), nil
	case 16:
		return cbpf.LoadU16At(offset), nil
	case 32:
		return cbpf.LoadU32At(offset), nil
	default:
		return nil, fmt.Errorf("wire: unsupported load size %d", size)
	}
}

func loadForExtended(size int, offset int32) ([]ebpf.Instruction, error) {
	switch size {
	case 8:
		return ebpf.LoadU8At(offset), nil
	case 16:
		return ebpf.LoadU16At(offset), nil
	case 32:
		return ebpf.LoadU32At(offset), nil
	default:
		return nil, fmt.Errorf("wire: unsupported load size %d", size)
	}
}
