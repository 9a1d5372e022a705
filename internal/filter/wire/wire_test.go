package wire

import (
	"encoding/json"
	"testing"

	"github.com/SkynetNext/bpf-filter/internal/filter/bpfsim"
)

func ethFrame(etherType uint16, ipProto byte) []byte {
	b := make([]byte, 64)
	b[12] = byte(etherType >> 8)
	b[13] = byte(etherType)
	b[14+9] = ipProto
	return b
}

func TestCompileClassicTerminalMatches(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"op":"terminal","offset":12,"size":16,"cmp":"eq","value":2048}`)
	insns, err := CompileClassic(raw)
	if err != nil {
		t.Fatalf("CompileClassic: %v", err)
	}
	accept, _, err := bpfsim.RunClassic(insns, ethFrame(0x0800, 6))
	if err != nil {
		t.Fatalf("RunClassic: %v", err)
	}
	if !accept {
		t.Fatal("expected IPv4 ethertype frame to be accepted")
	}
	accept, _, err = bpfsim.RunClassic(insns, ethFrame(0x0806, 6))
	if err != nil {
		t.Fatalf("RunClassic: %v", err)
	}
	if accept {
		t.Fatal("expected ARP ethertype frame to be rejected")
	}
}

func TestCompileClassicAndOfTwoTerminals(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{
		"op": "and",
		"a": {"op":"terminal","offset":12,"size":16,"cmp":"eq","value":2048},
		"b": {"op":"terminal","offset":23,"size":8,"cmp":"eq","value":6}
	}`)
	insns, err := CompileClassic(raw)
	if err != nil {
		t.Fatalf("CompileClassic: %v", err)
	}
	accept, _, err := bpfsim.RunClassic(insns, ethFrame(0x0800, 6))
	if err != nil || !accept {
		t.Fatalf("expected IPv4/TCP frame accepted, got accept=%v err=%v", accept, err)
	}
	accept, _, err = bpfsim.RunClassic(insns, ethFrame(0x0800, 17))
	if err != nil || accept {
		t.Fatalf("expected IPv4/UDP frame rejected, got accept=%v err=%v", accept, err)
	}
}

func TestCompileClassicConstTrue(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"op":"const","bool_value":true}`)
	insns, err := CompileClassic(raw)
	if err != nil {
		t.Fatalf("CompileClassic: %v", err)
	}
	accept, _, err := bpfsim.RunClassic(insns, ethFrame(0x0800, 6))
	if err != nil || !accept {
		t.Fatalf("expected tautology to accept everything, got accept=%v err=%v", accept, err)
	}
}

func TestCompileExtendedNotInvertsVerdict(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{
		"op": "not",
		"a": {"op":"terminal","offset":12,"size":16,"cmp":"eq","value":2048}
	}`)
	insns, err := CompileExtended(raw)
	if err != nil {
		t.Fatalf("CompileExtended: %v", err)
	}
	accept, _, err := bpfsim.RunExtended(insns, ethFrame(0x0800, 6))
	if err != nil || accept {
		t.Fatalf("expected IPv4 frame rejected by negated match, got accept=%v err=%v", accept, err)
	}
	accept, _, err = bpfsim.RunExtended(insns, ethFrame(0x0806, 6))
	if err != nil || !accept {
		t.Fatalf("expected ARP frame accepted by negated match, got accept=%v err=%v", accept, err)
	}
}

func TestCompileUnknownOpErrors(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"op":"xor"}`)
	if _, err := CompileClassic(raw); err == nil {
		t.Fatal("expected an error for an unknown op")
	}
}

func TestCompileUnsupportedLoadSizeErrors(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{"op":"terminal","offset":12,"size":24,"cmp":"eq","value":1}`)
	if _, err := CompileClassic(raw); err == nil {
		t.Fatal("expected an error for an unsupported load size")
	}
}
