package predicate

import "testing"

type stubCondition struct{ name string }

func TestSimplifyDoubleNegation(t *testing.T) {
	t.Parallel()
	leaf := Terminal(stubCondition{"a"})
	got := Simplify(Not(Not(leaf)))
	if got.Kind() != KindTerminal || got.Condition().name != "a" {
		t.Fatalf("Not(Not(a)) simplified to %+v, want the bare terminal", got)
	}
}

func TestSimplifyNotConst(t *testing.T) {
	t.Parallel()
	got := Simplify(Not(Const[stubCondition](true)))
	if got.Kind() != KindConst || got.Value() != false {
		t.Fatalf("Not(Const(true)) simplified to %+v, want Const(false)", got)
	}
}

func TestSimplifyAndAbsorbsConst(t *testing.T) {
	t.Parallel()
	leaf := Terminal(stubCondition{"a"})

	if got := Simplify(And(leaf, Const[stubCondition](true))); got.Kind() != KindTerminal {
		t.Fatalf("And(a, true) simplified to %+v, want bare a", got)
	}
	if got := Simplify(And(leaf, Const[stubCondition](false))); got.Kind() != KindConst || got.Value() {
		t.Fatalf("And(a, false) simplified to %+v, want Const(false)", got)
	}
}

func TestSimplifyOrAbsorbsConst(t *testing.T) {
	t.Parallel()
	leaf := Terminal(stubCondition{"a"})

	if got := Simplify(Or(leaf, Const[stubCondition](false))); got.Kind() != KindTerminal {
		t.Fatalf("Or(a, false) simplified to %+v, want bare a", got)
	}
	if got := Simplify(Or(leaf, Const[stubCondition](true))); got.Kind() != KindConst || !got.Value() {
		t.Fatalf("Or(a, true) simplified to %+v, want Const(true)", got)
	}
}

func TestSimplifyNeverLeavesConstNested(t *testing.T) {
	t.Parallel()
	a := Terminal(stubCondition{"a"})
	b := Terminal(stubCondition{"b"})

	cases := []Expr[stubCondition]{
		And(And(a, Const[stubCondition](true)), b),
		Or(Not(Const[stubCondition](false)), b),
		Not(And(a, Const[stubCondition](false))),
	}
	for i, c := range cases {
		got := Simplify(c)
		if got.Kind() == KindAnd || got.Kind() == KindOr || got.Kind() == KindNot {
			assertNoNestedConst(t, i, got)
		}
	}
}

func assertNoNestedConst[C any](t *testing.T, i int, e Expr[C]) {
	t.Helper()
	switch e.Kind() {
	case KindNot:
		if e.Operand().Kind() == KindConst {
			t.Fatalf("case %d: simplified tree has Const nested under Not: %+v", i, e)
		}
		assertNoNestedConst(t, i, e.Operand())
	case KindAnd, KindOr:
		if e.Left().Kind() == KindConst || e.Right().Kind() == KindConst {
			t.Fatalf("case %d: simplified tree has Const nested under And/Or: %+v", i, e)
		}
		assertNoNestedConst(t, i, e.Left())
		assertNoNestedConst(t, i, e.Right())
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	t.Parallel()
	a := Terminal(stubCondition{"a"})
	b := Terminal(stubCondition{"b"})
	e := Or(And(a, Not(b)), And(Not(a), b))

	once := Simplify(e)
	twice := Simplify(once)
	if once.Kind() != twice.Kind() {
		t.Fatalf("Simplify not idempotent: once=%+v twice=%+v", once, twice)
	}
}

func TestSatisfiable(t *testing.T) {
	t.Parallel()
	a := Terminal(stubCondition{"a"})
	b := Terminal(stubCondition{"b"})

	if !Satisfiable(Or(a, b)) {
		t.Fatal("Or(a, b) should be satisfiable")
	}
	if Satisfiable(Const[stubCondition](false)) {
		t.Fatal("Const(false) should not be satisfiable")
	}
	if !Satisfiable(And(a, Not(b))) {
		t.Fatal("And(a, Not(b)) should be satisfiable (terminals treated independently)")
	}
}
