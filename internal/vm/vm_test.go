package vm

import (
	"testing"

	"smile/internal/bytecode"
	"smile/internal/closure"
	"smile/internal/list"
	"smile/internal/symbol"
	"smile/internal/value"
)

func newTestVM() *VM {
	tbl := symbol.New()
	known := tbl.Preload()
	return New(tbl, known)
}

func TestLiteralLoadAndReturn(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 42})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 1})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 42 {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestLocalVariableRoundTrip(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 7})
	seg.Emit(bytecode.Instruction{Op: bytecode.StpLoc, Scope: 0, Index: 0})
	seg.Emit(bytecode.Instruction{Op: bytecode.LdLoc0, Index: 0})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{NumLocals: 1, MaxStack: 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 7 {
		t.Fatalf("expected 7, got %v", result)
	}
}

func TestConsCarReturnsHead(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 1})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 2})
	seg.Emit(bytecode.Instruction{Op: bytecode.Cons})
	seg.Emit(bytecode.Instruction{Op: bytecode.Car})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 1 {
		t.Fatalf("(car (cons 1 2)) should be 1, got %v", result)
	}
}

func TestCarOfNonListReturnsNullNotError(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 5})
	seg.Emit(bytecode.Instruction{Op: bytecode.Car})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsNull() {
		t.Fatalf("out-of-shape car should yield Null, got %v", result)
	}
}

func TestCallNativeFunctionWithTwoArgs(t *testing.T) {
	vm := newTestVM()
	sym := vm.Symbols.Add("add")
	vm.Globals.Set(sym, NewNativeFunction("add", func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int64(args[0].AsInt64() + args[1].AsInt64()), nil
	}))

	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.LdX, Sym: sym})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 3})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 4})
	seg.Emit(bytecode.Instruction{Op: bytecode.Call2})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 3})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 7 {
		t.Fatalf("expected 3+4=7, got %v", result)
	}
}

func TestBranchOnTruthiness(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.LdBool, Bool: true})  // 0
	seg.Emit(bytecode.Instruction{Op: bytecode.Bt, Imm: 4})          // 1 -> jump to 4
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 111})      // 2 (skipped)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})                 // 3 (skipped)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 222})      // 4
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})                 // 5

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 1})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 222 {
		t.Fatalf("Bt on true should take the branch, got %v", result)
	}
}

func TestTillEscapeSameInvocationJumps(t *testing.T) {
	seg := bytecode.NewSegment()
	tillIdx := seg.AddTill(&bytecode.TillMetadata{Targets: []int{6}})

	seg.Emit(bytecode.Instruction{Op: bytecode.NewTill, ConstIdx: tillIdx}) // 0
	seg.Emit(bytecode.Instruction{Op: bytecode.StpLoc, Scope: 0, Index: 0}) // 1
	seg.Emit(bytecode.Instruction{Op: bytecode.LdLoc0, Index: 0})           // 2
	seg.Emit(bytecode.Instruction{Op: bytecode.TillEsc, Imm: 0})            // 3 -> jumps to 6
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 999})             // 4 (skipped)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})                        // 5 (skipped)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 42})              // 6
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})                        // 7

	vm := newTestVM()
	result, err := vm.Run(seg, &closure.ClosureInfo{NumLocals: 1, MaxStack: 2})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsInt64() != 42 {
		t.Fatalf("till-escape should land on the target and return 42, got %v", result)
	}
}

func TestTillEscapeAcrossNativeCallback(t *testing.T) {
	seg := bytecode.NewSegment()
	tillIdx := seg.AddTill(&bytecode.TillMetadata{Targets: []int{5}})

	vmRef := newTestVM()
	escapeSym := vmRef.Symbols.Add("escape-it")

	seg.Emit(bytecode.Instruction{Op: bytecode.NewTill, ConstIdx: tillIdx}) // 0
	seg.Emit(bytecode.Instruction{Op: bytecode.StpLoc, Scope: 0, Index: 0}) // 1
	seg.Emit(bytecode.Instruction{Op: bytecode.LdX, Sym: escapeSym})        // 2: push native fn
	seg.Emit(bytecode.Instruction{Op: bytecode.LdLoc0, Index: 0})           // 3: push till continuation as arg
	seg.Emit(bytecode.Instruction{Op: bytecode.Call1})                      // 4: call through a native frame (never returns normally)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ld64, Imm: 77})              // 5 (escape target)
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})                        // 6

	var captured *TillContinuation
	vmRef.Globals.Set(escapeSym, NewNativeFunction("escape-it", func(innerVM *VM, args []value.Value) (value.Value, error) {
		tc, ok := asTillContinuation(args[0])
		if !ok {
			t.Fatal("expected a till continuation argument")
		}
		captured = tc
		panic(&tillEscape{target: tc, branch: 0})
	}))

	result, err := vmRef.Run(seg, &closure.ClosureInfo{NumLocals: 1, MaxStack: 2})
	if err != nil {
		t.Fatal(err)
	}
	if captured == nil {
		t.Fatalf("native callback should have received the till continuation")
	}
	if result.AsInt64() != 77 {
		t.Fatalf("escape should resume at the target and return 77, got %v", result)
	}
}

func TestStateMachineDrivesListMap(t *testing.T) {
	lst := value.ConsOf(value.Int64(1), value.ConsOf(value.Int64(2), value.ConsOf(value.Int64(3), value.Null)))
	double := NewNativeFunction("double", func(vm *VM, args []value.Value) (value.Value, error) {
		return value.Int64(args[0].AsInt64() * 2), nil
	})

	machine := list.NewMap(lst, double)
	cur := closure.New(&closure.ClosureInfo{MaxStack: 4}, nil)
	cur.StateMachine = closure.NewStateMachineClosure(machine,
		func(host *closure.Closure) int { return machine.Start(host) },
		func(host *closure.Closure) int { return machine.Body(host) },
	)

	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.StateMachStart})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	vm := newTestVM()
	result, err := vm.execClosure(cur, seg, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := list.ToSlice(result)
	if len(got) != 3 || got[0].AsInt64() != 2 || got[1].AsInt64() != 4 || got[2].AsInt64() != 6 {
		t.Fatalf("expected [2 4 6], got %v", got)
	}
}

func TestUserObjectPropertyRoundTrip(t *testing.T) {
	vm := newTestVM()
	nameSym := vm.Symbols.Add("name")

	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.LdNull}) // base
	seg.Emit(bytecode.Instruction{Op: bytecode.LdSym, Sym: nameSym})
	seg.Emit(bytecode.Instruction{Op: bytecode.LdStr, ConstIdx: seg.AddString("ahab")})
	seg.Emit(bytecode.Instruction{Op: bytecode.NewObj, Imm: 1})
	seg.Emit(bytecode.Instruction{Op: bytecode.LdProp, Sym: nameSym})
	seg.Emit(bytecode.Instruction{Op: bytecode.Ret})

	result, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 4})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsString() != "ahab" {
		t.Fatalf("expected property round trip to read back \"ahab\", got %v", result)
	}
}

func TestCatchRecoversThrowFromNativeBody(t *testing.T) {
	vm := newTestVM()
	catchSym := vm.Symbols.Add("catch")
	throwSym := vm.Symbols.Add("throw")

	boom := NewNativeFunction("boom", func(innerVM *VM, args []value.Value) (value.Value, error) {
		thrower, _ := innerVM.Globals.Get(throwSym)
		return innerVM.CallFunction(thrower, []value.Value{value.Str("kaboom")})
	})
	handler := NewNativeFunction("handler", func(innerVM *VM, args []value.Value) (value.Value, error) {
		return value.Str("caught: " + args[0].AsString()), nil
	})

	catcher, ok := vm.Globals.Get(catchSym)
	if !ok {
		t.Fatal("catch builtin should be registered")
	}
	result, err := vm.CallFunction(catcher, []value.Value{boom, handler})
	if err != nil {
		t.Fatal(err)
	}
	if result.AsString() != "caught: kaboom" {
		t.Fatalf("expected the handler's result, got %v", result)
	}
}

func TestThrowWithNoActiveCatchErrors(t *testing.T) {
	vm := newTestVM()
	throwSym := vm.Symbols.Add("throw")
	thrower, _ := vm.Globals.Get(throwSym)
	if _, err := vm.CallFunction(thrower, []value.Value{value.Str("orphan")}); err == nil {
		t.Fatalf("throw with nothing caught should surface an error")
	}
}

func TestFellOffEndWithoutRetErrors(t *testing.T) {
	seg := bytecode.NewSegment()
	seg.Emit(bytecode.Instruction{Op: bytecode.Nop})

	vm := newTestVM()
	if _, err := vm.Run(seg, &closure.ClosureInfo{MaxStack: 1}); err == nil {
		t.Fatalf("a segment with no terminating Ret should error")
	}
}
