package cbpf

import "github.com/SkynetNext/bpf-filter/internal/filter/predicate"

// ConditionFactory builds classic-BPF terminal conditions for the shared
// idiom package (idiom.Factory[Condition]).
type ConditionFactory struct{}

func (ConditionFactory) OffsetEqualsU8(offset uint32, value uint8) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU8At(offset),
		Comparison:  Equal,
		Operand:     uint32(value),
	})
}

func (ConditionFactory) OffsetEqualsU16(offset uint32, value uint16) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU16At(offset),
		Comparison:  Equal,
		Operand:     uint32(value),
	})
}

func (ConditionFactory) OffsetEqualsU32(offset uint32, value uint32) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU32At(offset),
		Comparison:  Equal,
		Operand:     value,
	})
}
