package socket

import "testing"

func TestProgram0DropAllRejectsEverything(t *testing.T) {
	t.Parallel()
	insns := program0DropAll()
	if len(insns) == 0 {
		t.Fatal("drop-all program should not be empty")
	}
	if insns[len(insns)-1].K != 0 {
		t.Fatalf("drop-all program's final return should carry K=0, got %d", insns[len(insns)-1].K)
	}
}
