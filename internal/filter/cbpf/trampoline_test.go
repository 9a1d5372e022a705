package cbpf_test

import (
	"testing"

	"github.com/SkynetNext/bpf-filter/internal/filter/bpfsim"
	"github.com/SkynetNext/bpf-filter/internal/filter/cbpf"
)

// TestConditionBuildTrampolineBothSemantics pads a manually assembled
// program around Condition.Build's double-trampoline case (both jt and jf
// beyond the 8-bit jump field) with filler instructions so the true and
// false jump targets land on distinguishable markers, then runs it through
// the reference interpreter. This checks the jump distances are actually
// correct, not just the instruction count condition_test.go already covers.
func TestConditionBuildTrampolineBothSemantics(t *testing.T) {
	t.Parallel()
	const jt, jf = 300, 400

	c := cbpf.Condition{Computation: cbpf.LoadU16At(12), Comparison: cbpf.Equal, Operand: 0x0800}
	block := c.Build(jt, jf)

	forward := make([]cbpf.Instruction, len(block))
	for i, insn := range block {
		forward[len(block)-1-i] = insn
	}

	condIdx := len(c.Computation)
	acceptIdx := condIdx + jt + 3
	dropIdx := condIdx + jf + 3

	filler := cbpf.LoadU16At(12)[0]
	prog := append([]cbpf.Instruction{}, forward...)
	for len(prog) < acceptIdx {
		prog = append(prog, filler)
	}
	prog = append(prog, cbpf.New(cbpf.ClassRET|cbpf.RetK, 0, 0, 0xAAAA))
	for len(prog) < dropIdx {
		prog = append(prog, filler)
	}
	prog = append(prog, cbpf.New(cbpf.ClassRET|cbpf.RetK, 0, 0, 0))

	matching := make([]byte, 14)
	matching[12], matching[13] = 0x08, 0x00
	accept, snaplen, err := bpfsim.RunClassic(prog, matching)
	if err != nil {
		t.Fatalf("RunClassic on matching packet: %v", err)
	}
	if !accept || snaplen != 0xAAAA {
		t.Fatalf("matching packet: accept=%v snaplen=%d, want accept=true snaplen=0xAAAA (true branch reached the accept landing)", accept, snaplen)
	}

	nonMatching := make([]byte, 14)
	nonMatching[12], nonMatching[13] = 0x08, 0x06
	accept, snaplen, err = bpfsim.RunClassic(prog, nonMatching)
	if err != nil {
		t.Fatalf("RunClassic on non-matching packet: %v", err)
	}
	if accept || snaplen != 0 {
		t.Fatalf("non-matching packet: accept=%v snaplen=%d, want accept=false snaplen=0 (false branch reached the drop landing)", accept, snaplen)
	}
}
