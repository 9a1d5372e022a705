package cbpf

import "testing"

func TestConditionBuildDirect(t *testing.T) {
	t.Parallel()
	c := Condition{Computation: LoadU16At(12), Comparison: Equal, Operand: 0x0800}
	insns := c.Build(3, 10)
	if len(insns) != 1+len(c.Computation) {
		t.Fatalf("direct jt/jf build produced %d instructions, want %d", len(insns), 1+len(c.Computation))
	}
	jmp := insns[0]
	if jmp.Jt != 3 || jmp.Jf != 10 {
		t.Fatalf("jump instruction has jt=%d jf=%d, want 3/10", jmp.Jt, jmp.Jf)
	}
}

func TestConditionBuildTrampolineJf(t *testing.T) {
	t.Parallel()
	c := Condition{Computation: LoadU16At(12), Comparison: Equal, Operand: 0x0800}
	insns := c.Build(5, 300)
	if len(insns) != 2+len(c.Computation) {
		t.Fatalf("jf-trampoline build produced %d instructions, want %d", len(insns), 2+len(c.Computation))
	}
	if insns[0].K != 300 {
		t.Fatalf("trampoline jump K=%d, want 300", insns[0].K)
	}
	if insns[1].Jt != 6 || insns[1].Jf != 0 {
		t.Fatalf("conditional jump jt=%d jf=%d, want 6/0", insns[1].Jt, insns[1].Jf)
	}
}

func TestConditionBuildTrampolineJt(t *testing.T) {
	t.Parallel()
	c := Condition{Computation: LoadU16At(12), Comparison: Equal, Operand: 0x0800}
	insns := c.Build(300, 5)
	if insns[1].Jt != 0 || insns[1].Jf != 6 {
		t.Fatalf("conditional jump jt=%d jf=%d, want 0/6", insns[1].Jt, insns[1].Jf)
	}
}

func TestConditionBuildTrampolineBoth(t *testing.T) {
	t.Parallel()
	c := Condition{Computation: LoadU16At(12), Comparison: Equal, Operand: 0x0800}
	insns := c.Build(300, 400)
	if len(insns) != 3+len(c.Computation) {
		t.Fatalf("both-trampoline build produced %d instructions, want %d", len(insns), 3+len(c.Computation))
	}
	if insns[2].Jt != 0 || insns[2].Jf != 1 {
		t.Fatalf("conditional jump jt=%d jf=%d, want 0/1", insns[2].Jt, insns[2].Jf)
	}
}

func TestTautologyAndContradictionShape(t *testing.T) {
	t.Parallel()
	if len(Tautology()) != 2 {
		t.Fatalf("Tautology() has %d instructions, want 2", len(Tautology()))
	}
	if len(Contradiction()) != 1 {
		t.Fatalf("Contradiction() has %d instructions, want 1", len(Contradiction()))
	}
}
