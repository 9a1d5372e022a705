// Package compiler lowers a predicate tree into a flat instruction program
// for a given backend, sharing one generic walk across the classic and
// extended BPF backends.
package compiler

import "github.com/SkynetNext/bpf-filter/internal/filter/predicate"

// Builder is implemented by a backend's condition type: it knows how to
// lower itself to a jump to jt (true) or jf (false).
type Builder[I any] interface {
	Build(jt, jf int) []I
}

// Backend supplies the fixed instruction blocks a compiled program is
// assembled from, around the walk-generated condition checks.
type Backend[I any] interface {
	InitializationSequence() []I
	ReturnSequence() (seq []I, passEntry, dropEntry int)
	Tautology() []I
	Contradiction() []I
}

// Compile lowers predicate p to a complete program for backend b.
//
// After Simplify a Const(true)/Const(false) can only appear as the whole
// expression, since no simplification rule leaves a Const nested under
// And/Or/Not. That bare-constant case bypasses the general assembly
// path entirely: the backend's Tautology/Contradiction sequence already is
// the complete program, and running it through ReturnSequence/walk/init
// would append an unreachable return tail no scenario expects.
func Compile[I any, C Builder[I]](p predicate.Expr[C], b Backend[I]) []I {
	simplified := predicate.Simplify(p)

	if simplified.Kind() == predicate.KindConst {
		if simplified.Value() {
			return b.Tautology()
		}
		return b.Contradiction()
	}

	seq, passEntry, dropEntry := b.ReturnSequence()
	body := walk(simplified, passEntry, dropEntry)
	init := b.InitializationSequence()

	prearr := make([]I, 0, len(seq)+len(body)+len(init))
	prearr = append(prearr, seq...)
	prearr = append(prearr, body...)
	prearr = append(prearr, init...)

	reverse(prearr)
	return prearr
}

// walk lowers e into a pre-reversal instruction fragment whose control flow
// reaches jt on a true evaluation and jf on a false one, both measured as
// jump distances from the instruction immediately following the fragment
// that will precede it once the whole program is reversed.
func walk[I any, C Builder[I]](e predicate.Expr[C], jt, jf int) []I {
	switch e.Kind() {
	case predicate.KindTerminal:
		return e.Condition().Build(jt, jf)

	case predicate.KindNot:
		return walk[I](e.Operand(), jf, jt)

	case predicate.KindAnd:
		res := walk[I](e.Right(), jt, jf)
		res = append(res, walk[I](e.Left(), 0, jf+len(res))...)
		return res

	case predicate.KindOr:
		res := walk[I](e.Right(), jt, jf)
		res = append(res, walk[I](e.Left(), jt+len(res), 0)...)
		return res

	case predicate.KindConst:
		// Only reachable for a Const nested by a caller that bypassed
		// Simplify. No jump is emitted here: jumpAlways returns an empty
		// fragment, so control falls through to whatever follows.
		if e.Value() {
			return jumpAlways(jt)
		}
		return jumpAlways(jf)
	}
	return nil
}

// jumpAlways is unreachable in any program produced by Compile, since
// Simplify never leaves a Const nested under another node; it exists only
// so walk has a total, panic-free definition.
func jumpAlways[I any](int) []I {
	return nil
}

func reverse[I any](s []I) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
