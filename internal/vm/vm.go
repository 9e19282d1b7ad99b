// Package vm implements the bytecode VM: a stack machine dispatching
// over internal/bytecode's Instruction stream, operating on
// internal/closure's Closure/Globals/ContinuationStack, with
// internal/list's Start/Body machines driving the interruptible
// higher-order list operations.
//
// The dispatch loop is a switch over opcode, with ip/closure/chunk
// cached as locals for the hot loop, addressing locals by a per-closure
// slot array indexed by (scope, index) rather than a flat register file.
package vm

import (
	"fmt"

	"smile/internal/bytecode"
	"smile/internal/closure"
	"smile/internal/errs"
	"smile/internal/list"
	"smile/internal/symbol"
	"smile/internal/value"
)

// VM holds the state shared across every closure activation: the global
// dictionary, the symbol table (needed to resolve property-optimized
// fast-path names), the escape-continuation stack, and a cache of
// lazily-initialized LdInclude results.
type VM struct {
	Globals       *closure.Globals
	Symbols       *symbol.Table
	Known         *symbol.KnownSymbols
	Continuations *closure.ContinuationStack

	includeCache map[int32]value.Value

	// pendingThrowIDs mirrors Continuations' own stack one-for-one: each
	// catch push/pop is paired with an id push/pop here, since
	// closure.Continuation's fields are sized for bytecode-level resumption
	// and carry nothing a native catch/throw pair can compare on identity.
	pendingThrowIDs []int
	nextContID      int
}

// New builds a VM sharing the given symbol table (the caller is expected
// to have already run Preload on it).
func New(tbl *symbol.Table, known *symbol.KnownSymbols) *VM {
	vm := &VM{
		Globals:       closure.NewGlobals(),
		Symbols:       tbl,
		Known:         known,
		Continuations: closure.NewContinuationStack(),
		includeCache:  make(map[int32]value.Value),
	}
	vm.registerBuiltins()
	return vm
}

// Run executes a top-level segment as the body of a freshly-allocated
// root closure (no parent, no arguments) and returns the value left on
// the stack by its final Ret.
func (vm *VM) Run(seg *bytecode.Segment, info *closure.ClosureInfo) (value.Value, error) {
	root := closure.New(info, nil)
	return vm.execClosure(root, seg, 0)
}

// CallFunction invokes fn (a KFunction Value) with args, the entry point
// both Call/Met opcodes and native code use to invoke a Smile callable.
func (vm *VM) CallFunction(fn value.Value, args []value.Value) (value.Value, error) {
	fv, ok := asFunction(fn)
	if !ok {
		return value.Null, errs.New(errs.TypeAssertion, "value is not callable")
	}
	if fv.Native != nil {
		return fv.Native(vm, args)
	}
	return vm.invokeClosure(fv, args)
}

func (vm *VM) invokeClosure(fv *FunctionValue, args []value.Value) (value.Value, error) {
	info := fv.Proto.Info
	if len(args) != info.NumArgs {
		return value.Null, errs.New(errs.EvalError,
			fmt.Sprintf("%s: expected %d arguments, got %d", info.Name, info.NumArgs, len(args)))
	}
	for _, chk := range info.ArgCheck {
		if !chk.Required {
			continue
		}
		if chk.Position < 0 || chk.Position >= len(args) {
			continue
		}
		if args[chk.Position].Kind != chk.Kind {
			return value.Null, errs.ArgCheckFailure(info.Name, chk.Position,
				chk.Kind.String(), args[chk.Position].Kind.String())
		}
	}
	frame := closure.New(info, fv.Env)
	for i, a := range args {
		if err := frame.StoreArg(0, i, a); err != nil {
			return value.Null, err
		}
	}
	return vm.execClosureProto(frame, fv.Proto)
}

// execClosureProto runs a user-defined function's own code, which lives
// directly on its FunctionProto rather than a standalone Segment (nested
// functions carry their constant pools on the segment that defined them,
// resolved once at NewFn time -- see execClosure's NewFn case).
func (vm *VM) execClosureProto(cur *closure.Closure, proto *bytecode.FunctionProto) (value.Value, error) {
	return vm.execCode(cur, proto.DefiningSegment, proto.Code, 0)
}

// execClosure runs seg's own top-level code inside cur.
func (vm *VM) execClosure(cur *closure.Closure, seg *bytecode.Segment, startIP int) (value.Value, error) {
	return vm.execCode(cur, seg, seg.Code, startIP)
}

// execCode is the dispatch loop proper: the three hot "registers" are the
// local variables ip/cur/code (seg only matters for constant-pool
// lookups, which share a Segment's pools across its own code and every
// FunctionProto it defines).
func (vm *VM) execCode(cur *closure.Closure, seg *bytecode.Segment, code []bytecode.Instruction, startIP int) (result value.Value, err error) {
	ip := startIP
	var openTills []*TillContinuation

	for {
		res, nextIP, done, rerr := vm.step(cur, seg, code, ip, &openTills)
		if rerr != nil {
			return value.Null, rerr
		}
		if done {
			return res, nil
		}
		ip = nextIP
	}
}

// step runs instructions starting at ip until either a Ret produces a
// final result (done=true), a TillEsc targeting one of this invocation's
// own openTills is caught (returns the resumed ip, done=false), or an
// error is raised.
func (vm *VM) step(cur *closure.Closure, seg *bytecode.Segment, code []bytecode.Instruction, ip int, openTills *[]*TillContinuation) (result value.Value, nextIP int, done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			esc, ok := r.(*tillEscape)
			if !ok {
				panic(r)
			}
			for _, t := range *openTills {
				if t == esc.target {
					cur.TruncateStack(esc.target.StackTop)
					nextIP = esc.target.Targets[esc.branch]
					done = false
					err = nil
					return
				}
			}
			panic(r)
		}
	}()

	for ip < len(code) {
		instr := code[ip]
		op := instr.Op

		if op.IsBlockMarker() {
			ip++
			continue
		}
		if op.IsReserved() {
			panic(fmt.Sprintf("bytecode: reserved opcode %s dispatched", op))
		}

		if scope, isArg, ok := op.FusedLocalScope(); ok {
			if isArg {
				v, e := cur.LoadArg(scope, int(instr.Index))
				if e != nil {
					return value.Null, 0, false, e
				}
				cur.Push(v)
			} else {
				v, e := cur.LoadLocal(scope, int(instr.Index))
				if e != nil {
					return value.Null, 0, false, e
				}
				cur.Push(v)
			}
			ip++
			continue
		}

		switch op {
		case bytecode.Nop:
			// no-op

		case bytecode.Dup1:
			cur.Push(cur.Peek())
		case bytecode.Dup2:
			top := cur.Pop()
			second := cur.Pop()
			cur.Push(second)
			cur.Push(top)
			cur.Push(second)
			cur.Push(top)
		case bytecode.DupN:
			n := int(instr.Imm)
			top := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				top[i] = cur.Pop()
			}
			for _, v := range top {
				cur.Push(v)
			}
			for _, v := range top {
				cur.Push(v)
			}
		case bytecode.Pop1:
			cur.Pop()
		case bytecode.Pop2:
			cur.Pop()
			cur.Pop()
		case bytecode.PopN:
			for i := int64(0); i < instr.Imm; i++ {
				cur.Pop()
			}
		case bytecode.Rep1:
			top := cur.Pop()
			cur.Pop()
			cur.Push(top)
		case bytecode.Rep2:
			top := cur.Pop()
			cur.Pop()
			cur.Pop()
			cur.Push(top)
		case bytecode.RepN:
			top := cur.Pop()
			for i := int64(0); i < instr.Imm; i++ {
				cur.Pop()
			}
			cur.Push(top)
		case bytecode.Brk:
			return value.Null, 0, false, errs.New(errs.EvalError, "breakpoint: no host attached")

		case bytecode.LdNull:
			cur.Push(value.Null)
		case bytecode.LdBool:
			cur.Push(value.Bool(instr.Bool))
		case bytecode.LdStr:
			cur.Push(value.Str(seg.Strings[instr.ConstIdx]))
		case bytecode.LdSym:
			cur.Push(value.Symbol(instr.Sym))
		case bytecode.LdObj:
			cur.Push(seg.Objects[instr.ConstIdx])
		case bytecode.LdChar:
			cur.Push(value.Char(instr.Char))
		case bytecode.LdUni:
			cur.Push(value.Uni(instr.Char))
		case bytecode.Ld8:
			cur.Push(value.Byte(byte(instr.Imm)))
		case bytecode.Ld16:
			cur.Push(value.Int16(int16(instr.Imm)))
		case bytecode.Ld32:
			cur.Push(value.Int32(int32(instr.Imm)))
		case bytecode.Ld64:
			cur.Push(value.Int64(instr.Imm))
		case bytecode.Ld128:
			cur.Push(value.Real64(seg.Numerics[instr.ConstIdx]))
		case bytecode.LdR32:
			cur.Push(value.Real32(seg.Numerics[instr.ConstIdx]))
		case bytecode.LdR64:
			cur.Push(value.Real64(seg.Numerics[instr.ConstIdx]))
		case bytecode.LdF32:
			cur.Push(value.Float32(float32(instr.Real)))
		case bytecode.LdF64:
			cur.Push(value.Float64(instr.Real))

		case bytecode.LdLoc:
			v, e := cur.LoadLocal(int(instr.Scope), int(instr.Index))
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(v)
		case bytecode.StLoc:
			if e := cur.StoreLocal(int(instr.Scope), int(instr.Index), cur.Peek()); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.StpLoc:
			if e := cur.StoreLocal(int(instr.Scope), int(instr.Index), cur.Pop()); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.LdArg:
			v, e := cur.LoadArg(int(instr.Scope), int(instr.Index))
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(v)
		case bytecode.StArg:
			if e := cur.StoreArg(int(instr.Scope), int(instr.Index), cur.Peek()); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.StpArg:
			if e := cur.StoreArg(int(instr.Scope), int(instr.Index), cur.Pop()); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.LdX:
			v, ok := vm.Globals.Get(instr.Sym)
			if !ok {
				v = value.Null
			}
			cur.Push(v)
		case bytecode.StX:
			vm.Globals.Set(instr.Sym, cur.Peek())
		case bytecode.StpX:
			vm.Globals.Set(instr.Sym, cur.Pop())
		case bytecode.NullLoc0:
			if e := cur.StoreLocal(0, 0, value.Null); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.NullArg0:
			if e := cur.StoreArg(0, 0, value.Null); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.NullX:
			vm.Globals.Set(instr.Sym, value.Null)

		case bytecode.LdProp, bytecode.LdA, bytecode.LdD, bytecode.LdStart, bytecode.LdEnd, bytecode.LdCount, bytecode.LdLength:
			recv := cur.Pop()
			v, e := vm.loadProperty(recv, op, instr.Sym)
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(v)
		case bytecode.StProp:
			// Stack order: receiver pushed, then value. St* leaves the
			// stored value on the stack (assignment-as-expression); Stp*
			// pops it.
			v := cur.Pop()
			recv := cur.Pop()
			if e := vm.storeProperty(recv, instr.Sym, v); e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(v)
		case bytecode.StpProp:
			v := cur.Pop()
			recv := cur.Pop()
			if e := vm.storeProperty(recv, instr.Sym, v); e != nil {
				return value.Null, 0, false, e
			}
		case bytecode.LdMember:
			recv := cur.Pop()
			getter, e := vm.resolveMethod(recv, instr.Sym)
			if e != nil {
				return value.Null, 0, false, e
			}
			res, e := vm.CallFunction(getter, nil)
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(res)
		case bytecode.StMember, bytecode.StpMember:
			v := cur.Pop()
			recv := cur.Pop()
			setter, e := vm.resolveMethod(recv, instr.Sym)
			if e != nil {
				return value.Null, 0, false, e
			}
			if _, e := vm.CallFunction(setter, []value.Value{v}); e != nil {
				return value.Null, 0, false, e
			}
			if op == bytecode.StMember {
				cur.Push(v)
			}
		case bytecode.LdInclude:
			v, e := vm.loadInclude(seg, instr.ConstIdx, instr.ConstIdx2)
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(v)

		case bytecode.Cons:
			d := cur.Pop()
			a := cur.Pop()
			cur.Push(value.ConsOf(a, d))
		case bytecode.Car:
			v := cur.Pop()
			if v.Kind != value.KList || v.IsNull() {
				cur.Push(value.Null)
			} else {
				cur.Push(v.AsCons().A)
			}
		case bytecode.Cdr:
			v := cur.Pop()
			if v.Kind != value.KList || v.IsNull() {
				cur.Push(value.Null)
			} else {
				cur.Push(v.AsCons().D)
			}
		case bytecode.NewFn:
			proto := seg.Functions[instr.ConstIdx]
			proto.DefiningSegment = seg
			cur.Push(NewClosureFunction(proto.Info.Name, proto, cur))
		case bytecode.NewObj:
			n := int(instr.Imm)
			obj := vm.buildUserObject(cur, n)
			cur.Push(obj)
		case bytecode.SuperEq:
			b := cur.Pop()
			a := cur.Pop()
			cur.Push(value.Bool(value.Equal(a, b)))
		case bytecode.SuperNe:
			b := cur.Pop()
			a := cur.Pop()
			cur.Push(value.Bool(!value.Equal(a, b)))
		case bytecode.Not:
			cur.Push(value.Bool(!cur.Pop().ToBool()))
		case bytecode.Is:
			b := cur.Pop()
			a := cur.Pop()
			cur.Push(value.Bool(a.Kind == b.Kind && value.Equal(a, b)))
		case bytecode.TypeOf:
			v := cur.Pop()
			cur.Push(value.Symbol(vm.symbolForKind(v.Kind)))

		case bytecode.Call0, bytecode.Call1, bytecode.Call2, bytecode.Call3,
			bytecode.Call4, bytecode.Call5, bytecode.Call6, bytecode.Call7, bytecode.CallN:
			argc := callArgc(op, instr)
			args := popN(cur, argc)
			callee := cur.Pop()
			res, e := vm.CallFunction(callee, args)
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(res)
		case bytecode.Met0, bytecode.Met1, bytecode.Met2, bytecode.Met3,
			bytecode.Met4, bytecode.Met5, bytecode.Met6, bytecode.Met7, bytecode.MetN:
			argc := callArgc(op, instr)
			args := popN(cur, argc)
			recv := cur.Pop()
			method, e := vm.resolveMethod(recv, instr.Sym)
			if e != nil {
				return value.Null, 0, false, e
			}
			res, e := vm.CallFunction(method, args)
			if e != nil {
				return value.Null, 0, false, e
			}
			cur.Push(res)

		case bytecode.Jmp:
			ip = int(instr.Imm)
			continue
		case bytecode.Bt:
			if popTruthy(cur) {
				ip = int(instr.Imm)
				continue
			}
		case bytecode.Bf:
			if !popTruthy(cur) {
				ip = int(instr.Imm)
				continue
			}
		case bytecode.Ret:
			return cur.Pop(), 0, true, nil

		case bytecode.NewTill:
			meta := seg.Tills[instr.ConstIdx]
			t := newTillContinuation(cur, seg, meta)
			*openTills = append(*openTills, t)
			cur.Push(value.Obj(value.KTillContinuation, t))
		case bytecode.TillEsc:
			tv := cur.Pop()
			t, ok := asTillContinuation(tv)
			if !ok {
				return value.Null, 0, false, errs.New(errs.EvalError, "till-escape target is not a till continuation")
			}
			if !t.Valid {
				return value.Null, 0, false, errs.New(errs.EvalError, "till continuation already escaped")
			}
			t.Valid = false
			branch := int(instr.Imm)
			if t.Closure == cur {
				cur.TruncateStack(t.StackTop)
				ip = t.Targets[branch]
				continue
			}
			panic(&tillEscape{target: t, branch: branch})
		case bytecode.EndTill:
			tv := cur.Pop()
			if t, ok := asTillContinuation(tv); ok {
				t.Valid = false
			}

		case bytecode.StateMachStart, bytecode.StateMachBody:
			if cur.StateMachine == nil {
				return value.Null, 0, false, errs.New(errs.EvalError, "StateMachStart/Body dispatched with no active state machine on this closure")
			}
			var argc int
			if op == bytecode.StateMachStart {
				argc = cur.StateMachine.Start(cur)
			} else {
				argc = cur.StateMachine.Body(cur)
			}
			// Drive the machine to completion here: each round pops the
			// (function, args...) pair it pushed, invokes it, and feeds the
			// result back to Body, so the higher-order operation never
			// grows the VM's own native call stack per element, even
			// though no bytecode-level loop is involved.
			for argc != closure.Done {
				args := popN(cur, argc)
				fn := cur.Pop()
				res, e := vm.CallFunction(fn, args)
				if e != nil {
					return value.Null, 0, false, e
				}
				cur.Push(res)
				argc = cur.StateMachine.Body(cur)
			}

		default:
			return value.Null, 0, false, errs.New(errs.EvalError, fmt.Sprintf("unhandled opcode %s", op))
		}
		ip++
	}
	return value.Null, 0, false, errs.New(errs.EvalError, "fell off the end of a segment without a Ret")
}

func callArgc(op bytecode.OpCode, instr bytecode.Instruction) int {
	switch op {
	case bytecode.CallN, bytecode.MetN:
		return int(instr.Imm)
	case bytecode.Call0, bytecode.Met0:
		return 0
	case bytecode.Call1, bytecode.Met1:
		return 1
	case bytecode.Call2, bytecode.Met2:
		return 2
	case bytecode.Call3, bytecode.Met3:
		return 3
	case bytecode.Call4, bytecode.Met4:
		return 4
	case bytecode.Call5, bytecode.Met5:
		return 5
	case bytecode.Call6, bytecode.Met6:
		return 6
	case bytecode.Call7, bytecode.Met7:
		return 7
	default:
		return 0
	}
}

func popN(c *closure.Closure, n int) []value.Value {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = c.Pop()
	}
	return args
}

func popTruthy(c *closure.Closure) bool {
	v := c.Pop()
	if v.Kind == value.KBool {
		return v.AsBool()
	}
	return v.ToBool()
}

func (vm *VM) buildUserObject(cur *closure.Closure, n int) value.Value {
	pairs := make([]struct {
		sym symbol.ID
		val value.Value
	}, n)
	for i := n - 1; i >= 0; i-- {
		v := cur.Pop()
		sym := cur.Pop().AsSymbol()
		pairs[i] = struct {
			sym symbol.ID
			val value.Value
		}{sym, v}
	}
	base := cur.Pop()

	obj := value.NewUserObject("Object")
	if baseObj, ok := base.AsObj().(*value.UserObject); ok {
		obj.Base = baseObj
	}
	for _, p := range pairs {
		obj.SetProperty(int32(p.sym), p.val)
	}
	return value.Obj(value.KUserObject, obj)
}

func (vm *VM) loadProperty(recv value.Value, op bytecode.OpCode, sym symbol.ID) (value.Value, error) {
	switch op {
	case bytecode.LdA:
		if recv.Kind != value.KList || recv.IsNull() {
			return value.Null, nil
		}
		return recv.AsCons().A, nil
	case bytecode.LdD:
		if recv.Kind != value.KList || recv.IsNull() {
			return value.Null, nil
		}
		return recv.AsCons().D, nil
	case bytecode.LdLength:
		if recv.Kind == value.KString {
			return value.Int64(int64(len([]rune(recv.AsString())))), nil
		}
		if recv.Kind == value.KList {
			return value.Int64(int64(len(list.ToSlice(recv)))), nil
		}
		return value.Null, nil
	case bytecode.LdCount:
		return value.Int64(int64(len(list.ToSlice(recv)))), nil
	case bytecode.LdStart, bytecode.LdEnd:
		return value.Null, errs.New(errs.PropertyError, "start/end have no default property binding outside a range object")
	}

	obj, ok := recv.AsObj().(*value.UserObject)
	if !ok {
		return value.Null, errs.New(errs.PropertyError, fmt.Sprintf("no property %d on non-object value", sym))
	}
	v, ok := obj.GetProperty(int32(sym))
	if !ok {
		return value.Null, errs.New(errs.PropertyError, fmt.Sprintf("unknown property %d", sym))
	}
	return v, nil
}

func (vm *VM) storeProperty(recv value.Value, sym symbol.ID, v value.Value) error {
	obj, ok := recv.AsObj().(*value.UserObject)
	if !ok {
		return errs.New(errs.PropertyError, "cannot set a property on a non-object value")
	}
	obj.SetProperty(int32(sym), v)
	return nil
}

func (vm *VM) resolveMethod(recv value.Value, sym symbol.ID) (value.Value, error) {
	obj, ok := recv.AsObj().(*value.UserObject)
	if !ok {
		return value.Null, errs.New(errs.PropertyError, "method call on a non-object value")
	}
	v, ok := obj.GetProperty(int32(sym))
	if !ok || v.Kind != value.KFunction {
		return value.Null, errs.New(errs.PropertyError, fmt.Sprintf("property %d is not a function", sym))
	}
	return v, nil
}

func (vm *VM) loadInclude(seg *bytecode.Segment, moduleIdx, varIdx int32) (value.Value, error) {
	if cached, ok := vm.includeCache[moduleIdx]; ok {
		return vm.memberOfModule(cached, varIdx)
	}
	if int(moduleIdx) >= len(seg.Functions) {
		return value.Null, errs.New(errs.LoadError, "unresolved module index")
	}
	initProto := seg.Functions[moduleIdx]
	initProto.DefiningSegment = seg
	initClosure := closure.New(initProto.Info, nil)
	result, err := vm.execClosureProto(initClosure, initProto)
	if err != nil {
		return value.Null, errs.Wrap(errs.LoadError, err, "module initializer failed")
	}
	vm.includeCache[moduleIdx] = result
	return vm.memberOfModule(result, varIdx)
}

func (vm *VM) memberOfModule(module value.Value, varSym int32) (value.Value, error) {
	obj, ok := module.AsObj().(*value.UserObject)
	if !ok {
		return value.Null, errs.New(errs.LoadError, "module initializer did not return an object")
	}
	v, ok := obj.GetProperty(varSym)
	if !ok {
		return value.Null, errs.New(errs.LoadError, "module has no such exported name")
	}
	return v, nil
}

func (vm *VM) symbolForKind(k value.Kind) symbol.ID {
	if vm.Known == nil {
		return 0
	}
	switch k {
	case value.KByte:
		return vm.Known.TByte
	case value.KInt16:
		return vm.Known.TInt16
	case value.KInt32:
		return vm.Known.TInt32
	case value.KInt64:
		return vm.Known.TInt64
	case value.KReal32:
		return vm.Known.TReal32
	case value.KReal64:
		return vm.Known.TReal64
	case value.KFloat32:
		return vm.Known.TFloat32
	case value.KFloat64:
		return vm.Known.TFloat64
	case value.KChar:
		return vm.Known.TChar
	case value.KUni:
		return vm.Known.TUni
	case value.KBool:
		return vm.Known.TBool
	case value.KSymbol:
		return vm.Known.TSymbol
	case value.KString:
		return vm.Known.TString
	case value.KList:
		return vm.Known.TList
	case value.KFunction:
		return vm.Known.TFunction
	case value.KNull:
		return vm.Known.TNull
	default:
		return 0
	}
}
