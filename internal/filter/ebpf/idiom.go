package ebpf

import "github.com/SkynetNext/bpf-filter/internal/filter/predicate"

// ConditionFactory builds extended-BPF terminal conditions for the shared
// idiom package (idiom.Factory[Condition]).
type ConditionFactory struct{}

func (ConditionFactory) OffsetEqualsU8(offset uint32, value uint8) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU8At(int32(offset)),
		Comparison:  Equal,
		Operand:     int32(value),
	})
}

func (ConditionFactory) OffsetEqualsU16(offset uint32, value uint16) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU16At(int32(offset)),
		Comparison:  Equal,
		Operand:     int32(value),
	})
}

func (ConditionFactory) OffsetEqualsU32(offset uint32, value uint32) predicate.Expr[Condition] {
	return predicate.Terminal(Condition{
		Computation: LoadU32At(int32(offset)),
		Comparison:  Equal,
		Operand:     int32(value),
	})
}
