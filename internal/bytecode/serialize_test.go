package bytecode

import (
	"bytes"
	"math/big"
	"testing"

	"smile/internal/closure"
	"smile/internal/value"
)

func TestSerializeDeserializeRoundTripsInstructions(t *testing.T) {
	p := NewProgram("test.sm")
	strIdx := p.Root.AddString("hi")
	objIdx := p.Root.AddObject(value.Int64(7))
	numIdx := p.Root.AddNumeric(big.NewFloat(3.25))
	p.Root.AddLocation(SourceLoc{File: "test.sm", Line: 1, Column: 1, Offset: 0})
	p.Root.Emit(Instruction{Op: LdStr, ConstIdx: strIdx, Loc: SourceLoc{File: "test.sm", Line: 1}})
	p.Root.Emit(Instruction{Op: LdObj, ConstIdx: objIdx})
	p.Root.Emit(Instruction{Op: LdR64, ConstIdx: numIdx})
	p.Root.Emit(Instruction{Op: Ret})

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.BuildID != p.BuildID {
		t.Fatalf("build id mismatch: got %s, want %s", got.BuildID, p.BuildID)
	}
	if got.SourceRef != "test.sm" {
		t.Fatalf("source ref mismatch: got %q", got.SourceRef)
	}
	if len(got.Root.Code) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(got.Root.Code))
	}
	if got.Root.Strings[0] != "hi" {
		t.Fatalf("expected string pool to round-trip, got %+v", got.Root.Strings)
	}
	if got.Root.Objects[0].Kind != value.KInt64 || got.Root.Objects[0].AsInt64() != 7 {
		t.Fatalf("expected object pool to round-trip an Int64(7), got %+v", got.Root.Objects[0])
	}
	if got.Root.Numerics[0].Cmp(big.NewFloat(3.25)) != 0 {
		t.Fatalf("expected numeric pool to round-trip 3.25, got %s", got.Root.Numerics[0].Text('g', -1))
	}
	if len(got.Root.Locations) != 1 || got.Root.Locations[0].File != "test.sm" {
		t.Fatalf("expected source location to round-trip, got %+v", got.Root.Locations)
	}
}

func TestSerializeDeserializeRoundTripsFunctionProto(t *testing.T) {
	p := NewProgram("test.sm")
	fn := &FunctionProto{
		Info: &closure.ClosureInfo{
			Name:      "double",
			NumArgs:   1,
			NumLocals: 0,
			MaxStack:  2,
			ArgCheck:  []closure.ArgCheck{{Position: 0, Kind: value.KInt64, Required: true}},
		},
		Code: []Instruction{{Op: LdArg0}, {Op: Ret}},
	}
	p.Root.AddFunction(fn)
	p.Root.AddTill(&TillMetadata{Names: []int32{1, 2}, Targets: []int{3, 4}})

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Root.Functions) != 1 {
		t.Fatalf("expected one function prototype, got %d", len(got.Root.Functions))
	}
	gotFn := got.Root.Functions[0]
	if gotFn.Info.Name != "double" || gotFn.Info.NumArgs != 1 {
		t.Fatalf("function closure info mismatch: %+v", gotFn.Info)
	}
	if len(gotFn.Info.ArgCheck) != 1 || gotFn.Info.ArgCheck[0].Kind != value.KInt64 {
		t.Fatalf("arg check mismatch: %+v", gotFn.Info.ArgCheck)
	}
	if len(gotFn.Code) != 2 {
		t.Fatalf("expected 2 instructions in function code, got %d", len(gotFn.Code))
	}

	if len(got.Root.Tills) != 1 {
		t.Fatalf("expected one till-metadata entry, got %d", len(got.Root.Tills))
	}
	till := got.Root.Tills[0]
	if len(till.Names) != 2 || till.Names[1] != 2 {
		t.Fatalf("till names mismatch: %+v", till.Names)
	}
	if len(till.Targets) != 2 || till.Targets[1] != 4 {
		t.Fatalf("till targets mismatch: %+v", till.Targets)
	}
}

func TestDeserializeRejectsBadMagicNumber(t *testing.T) {
	buf := bytes.NewBufferString("not a smile bytecode file at all, padding")
	if _, err := Deserialize(buf); err == nil {
		t.Fatal("expected an error for a non-bytecode file")
	}
}

func TestDeserializeRejectsFutureVersion(t *testing.T) {
	p := NewProgram("test.sm")
	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := buf.Bytes()
	// Version is the second little-endian uint32, right after the magic number.
	data[4] = 0xFF
	if _, err := Deserialize(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an error for a bytecode file from a future format version")
	}
}
