package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"

	"smile/internal/closure"
	"smile/internal/errs"
	"smile/internal/symbol"
	"smile/internal/value"
)

// MagicNumber identifies a serialized Program file.
const MagicNumber uint32 = 0x534D494C // "SMIL"

// FormatVersion is bumped whenever Serialize's on-disk layout changes in
// a way Deserialize can't read transparently.
const FormatVersion uint32 = 1

// Serialize writes p to w in the binary format `smile disasm` reads back:
// a magic number and version header (buildutil's own framing), followed
// by the build identifier, source reference, and the root Segment, whose
// Functions pool carries each FunctionProto's Info and Code.
//
// This is the one piece of the pipeline with no compiler upstream of it
// in this repository: Program values are built by hand (in tests, or by
// an external compiler this package only promises to stay compatible
// with), and Serialize/Deserialize exist so `smile disasm` has a real
// artifact format instead of only ever disassembling an in-process
// Segment.
func (p *Program) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, MagicNumber); err != nil {
		return errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	if err := binary.Write(w, binary.LittleEndian, FormatVersion); err != nil {
		return errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	idBytes, err := p.BuildID.MarshalBinary()
	if err != nil {
		return errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	if _, err := w.Write(idBytes); err != nil {
		return errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	if err := writeString(w, p.SourceRef); err != nil {
		return err
	}
	return serializeSegment(w, p.Root)
}

// Deserialize reads back a Program written by Serialize, rejecting a
// magic-number mismatch (not a smile bytecode file) or a version newer
// than FormatVersion (built by a future version of this package).
func Deserialize(r io.Reader) (*Program, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	if magic != MagicNumber {
		return nil, errs.New(errs.ExecError, fmt.Sprintf("not a smile bytecode file: bad magic number %#x", magic))
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	if version > FormatVersion {
		return nil, errs.New(errs.ExecError, fmt.Sprintf("bytecode file version %d is newer than this tool's %d", version, FormatVersion))
	}

	var idBytes [16]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	buildID, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	sourceRef, err := readString(r)
	if err != nil {
		return nil, err
	}
	root, err := deserializeSegment(r)
	if err != nil {
		return nil, err
	}
	return &Program{Root: root, BuildID: buildID, SourceRef: sourceRef}, nil
}

func serializeSegment(w io.Writer, seg *Segment) error {
	if err := writeInstructions(w, seg.Code); err != nil {
		return err
	}
	if err := writeStringSlice(w, seg.Strings); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(seg.Objects))); err != nil {
		return err
	}
	for _, v := range seg.Objects {
		if err := writeValue(w, v); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(seg.Numerics))); err != nil {
		return err
	}
	for _, n := range seg.Numerics {
		if err := writeString(w, n.Text('g', -1)); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(seg.Functions))); err != nil {
		return err
	}
	for _, fn := range seg.Functions {
		if err := serializeFunctionProto(w, fn); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(seg.Tills))); err != nil {
		return err
	}
	for _, t := range seg.Tills {
		if err := serializeTill(w, t); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(seg.Locations))); err != nil {
		return err
	}
	for _, loc := range seg.Locations {
		if err := writeLoc(w, loc); err != nil {
			return err
		}
	}
	return nil
}

func deserializeSegment(r io.Reader) (*Segment, error) {
	seg := NewSegment()
	code, err := readInstructions(r)
	if err != nil {
		return nil, err
	}
	seg.Code = code

	strs, err := readStringSlice(r)
	if err != nil {
		return nil, err
	}
	seg.Strings = strs

	objCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	seg.Objects = make([]value.Value, objCount)
	for i := range seg.Objects {
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		seg.Objects[i] = v
	}

	numCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	seg.Numerics = make([]*big.Float, numCount)
	for i := range seg.Numerics {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		n, _, err := big.ParseFloat(s, 10, 200, big.ToNearestEven)
		if err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		seg.Numerics[i] = n
	}

	fnCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	seg.Functions = make([]*FunctionProto, fnCount)
	for i := range seg.Functions {
		fn, err := deserializeFunctionProto(r)
		if err != nil {
			return nil, err
		}
		seg.Functions[i] = fn
	}

	tillCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	seg.Tills = make([]*TillMetadata, tillCount)
	for i := range seg.Tills {
		t, err := deserializeTill(r)
		if err != nil {
			return nil, err
		}
		seg.Tills[i] = t
	}

	locCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	seg.Locations = make([]SourceLoc, locCount)
	for i := range seg.Locations {
		loc, err := readLoc(r)
		if err != nil {
			return nil, err
		}
		seg.Locations[i] = loc
	}

	return seg, nil
}

func serializeFunctionProto(w io.Writer, fn *FunctionProto) error {
	if err := writeString(w, fn.Info.Name); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(fn.Info.NumArgs)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(fn.Info.NumLocals)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(fn.Info.MaxStack)); err != nil {
		return err
	}
	if err := writeBool(w, fn.Info.IsStateMach); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(fn.Info.ArgCheck))); err != nil {
		return err
	}
	for _, ac := range fn.Info.ArgCheck {
		if err := writeUint32(w, uint32(ac.Position)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(ac.Kind)); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := writeBool(w, ac.Required); err != nil {
			return err
		}
	}
	return writeInstructions(w, fn.Code)
}

func deserializeFunctionProto(r io.Reader) (*FunctionProto, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	numArgs, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	numLocals, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	maxStack, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	isStateMach, err := readBool(r)
	if err != nil {
		return nil, err
	}
	checkCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	checks := make([]closure.ArgCheck, checkCount)
	for i := range checks {
		pos, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		var kind uint8
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		required, err := readBool(r)
		if err != nil {
			return nil, err
		}
		checks[i] = closure.ArgCheck{Position: int(pos), Kind: value.Kind(kind), Required: required}
	}
	code, err := readInstructions(r)
	if err != nil {
		return nil, err
	}
	return &FunctionProto{
		Info: &closure.ClosureInfo{
			Name:        name,
			NumArgs:     int(numArgs),
			NumLocals:   int(numLocals),
			MaxStack:    int(maxStack),
			ArgCheck:    checks,
			IsStateMach: isStateMach,
		},
		Code: code,
	}, nil
}

func serializeTill(w io.Writer, t *TillMetadata) error {
	if err := writeUint32(w, uint32(len(t.Names))); err != nil {
		return err
	}
	for _, n := range t.Names {
		if err := binary.Write(w, binary.LittleEndian, n); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
	}
	if err := writeUint32(w, uint32(len(t.Targets))); err != nil {
		return err
	}
	for _, tgt := range t.Targets {
		if err := writeUint32(w, uint32(tgt)); err != nil {
			return err
		}
	}
	return nil
}

func deserializeTill(r io.Reader) (*TillMetadata, error) {
	nameCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	names := make([]int32, nameCount)
	for i := range names {
		if err := binary.Read(r, binary.LittleEndian, &names[i]); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
	}
	targetCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	targets := make([]int, targetCount)
	for i := range targets {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		targets[i] = int(v)
	}
	return &TillMetadata{Names: names, Targets: targets}, nil
}

func writeInstructions(w io.Writer, code []Instruction) error {
	if err := writeUint32(w, uint32(len(code))); err != nil {
		return err
	}
	for _, instr := range code {
		if err := binary.Write(w, binary.LittleEndian, uint8(instr.Op)); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.Scope); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.Index); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.ConstIdx); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.ConstIdx2); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.Imm); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := writeBool(w, instr.Bool); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(instr.Char)); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, instr.Real); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Write(w, binary.LittleEndian, int32(instr.Sym)); err != nil {
			return errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := writeLoc(w, instr.Loc); err != nil {
			return err
		}
	}
	return nil
}

func readInstructions(r io.Reader) ([]Instruction, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	code := make([]Instruction, count)
	for i := range code {
		var op uint8
		if err := binary.Read(r, binary.LittleEndian, &op); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		instr := Instruction{Op: OpCode(op)}
		if err := binary.Read(r, binary.LittleEndian, &instr.Scope); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Read(r, binary.LittleEndian, &instr.Index); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Read(r, binary.LittleEndian, &instr.ConstIdx); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Read(r, binary.LittleEndian, &instr.ConstIdx2); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		if err := binary.Read(r, binary.LittleEndian, &instr.Imm); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		b, err := readBool(r)
		if err != nil {
			return nil, err
		}
		instr.Bool = b
		var ch int32
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		instr.Char = rune(ch)
		if err := binary.Read(r, binary.LittleEndian, &instr.Real); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		var sym int32
		if err := binary.Read(r, binary.LittleEndian, &sym); err != nil {
			return nil, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		instr.Sym = symbol.ID(sym)
		loc, err := readLoc(r)
		if err != nil {
			return nil, err
		}
		instr.Loc = loc
		code[i] = instr
	}
	return code, nil
}

func writeLoc(w io.Writer, loc SourceLoc) error {
	if err := writeString(w, loc.File); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(loc.Line)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(loc.Column)); err != nil {
		return err
	}
	return writeUint32(w, uint32(loc.Offset))
}

func readLoc(r io.Reader) (SourceLoc, error) {
	file, err := readString(r)
	if err != nil {
		return SourceLoc{}, err
	}
	line, err := readUint32(r)
	if err != nil {
		return SourceLoc{}, err
	}
	col, err := readUint32(r)
	if err != nil {
		return SourceLoc{}, err
	}
	offset, err := readUint32(r)
	if err != nil {
		return SourceLoc{}, err
	}
	return SourceLoc{File: file, Line: int(line), Column: int(col), Offset: int(offset)}, nil
}

// valueTag enumerates the value.Kind values this format knows how to
// round-trip. A constant pool holding a KList/KFunction/KUserObject
// literal (possible in principle, but not something a constant-folding
// pass would ever produce) serializes as a placeholder string rather
// than failing the whole program.
const (
	tagNull uint8 = iota
	tagBool
	tagByte
	tagInt16
	tagInt32
	tagInt64
	tagReal32
	tagReal64
	tagFloat32
	tagFloat64
	tagChar
	tagSymbol
	tagString
	tagUnsupported
)

func writeValue(w io.Writer, v value.Value) error {
	switch v.Kind {
	case value.KNull:
		return writeTag(w, tagNull)
	case value.KBool:
		if err := writeTag(w, tagBool); err != nil {
			return err
		}
		return writeBool(w, v.AsBool())
	case value.KByte:
		if err := writeTag(w, tagByte); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsByte())
	case value.KInt16:
		if err := writeTag(w, tagInt16); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsInt16())
	case value.KInt32:
		if err := writeTag(w, tagInt32); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsInt32())
	case value.KInt64:
		if err := writeTag(w, tagInt64); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsInt64())
	case value.KReal32:
		if err := writeTag(w, tagReal32); err != nil {
			return err
		}
		return writeString(w, v.AsReal().Text('g', -1))
	case value.KReal64:
		if err := writeTag(w, tagReal64); err != nil {
			return err
		}
		return writeString(w, v.AsReal().Text('g', -1))
	case value.KFloat32:
		if err := writeTag(w, tagFloat32); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsFloat32())
	case value.KFloat64:
		if err := writeTag(w, tagFloat64); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.AsFloat64())
	case value.KChar:
		if err := writeTag(w, tagChar); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int32(v.AsChar()))
	case value.KSymbol:
		if err := writeTag(w, tagSymbol); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int32(v.AsSymbol()))
	case value.KString:
		if err := writeTag(w, tagString); err != nil {
			return err
		}
		return writeString(w, v.AsString())
	default:
		if err := writeTag(w, tagUnsupported); err != nil {
			return err
		}
		return writeString(w, fmt.Sprintf("<unserializable %s constant>", v.Kind))
	}
}

func readValue(r io.Reader) (value.Value, error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return value.Value{}, errs.Wrap(errs.ExecError, err, "bytecode serialization")
	}
	switch tag {
	case tagNull:
		return value.Null, nil
	case tagBool:
		b, err := readBool(r)
		return value.Bool(b), err
	case tagByte:
		var b byte
		err := binary.Read(r, binary.LittleEndian, &b)
		return value.Byte(b), errOrWrap(err)
	case tagInt16:
		var i int16
		err := binary.Read(r, binary.LittleEndian, &i)
		return value.Int16(i), errOrWrap(err)
	case tagInt32:
		var i int32
		err := binary.Read(r, binary.LittleEndian, &i)
		return value.Int32(i), errOrWrap(err)
	case tagInt64:
		var i int64
		err := binary.Read(r, binary.LittleEndian, &i)
		return value.Int64(i), errOrWrap(err)
	case tagReal32:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		n, _, err := big.ParseFloat(s, 10, 200, big.ToNearestEven)
		if err != nil {
			return value.Value{}, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		return value.Real32(n), nil
	case tagReal64:
		s, err := readString(r)
		if err != nil {
			return value.Value{}, err
		}
		n, _, err := big.ParseFloat(s, 10, 200, big.ToNearestEven)
		if err != nil {
			return value.Value{}, errs.Wrap(errs.ExecError, err, "bytecode serialization")
		}
		return value.Real64(n), nil
	case tagFloat32:
		var f float32
		err := binary.Read(r, binary.LittleEndian, &f)
		return value.Float32(f), errOrWrap(err)
	case tagFloat64:
		var f float64
		err := binary.Read(r, binary.LittleEndian, &f)
		return value.Float64(f), errOrWrap(err)
	case tagChar:
		var c int32
		err := binary.Read(r, binary.LittleEndian, &c)
		return value.Char(rune(c)), errOrWrap(err)
	case tagSymbol:
		var s int32
		err := binary.Read(r, binary.LittleEndian, &s)
		return value.Symbol(symbol.ID(s)), errOrWrap(err)
	case tagString:
		s, err := readString(r)
		return value.Str(s), err
	case tagUnsupported:
		s, err := readString(r)
		return value.Str(s), err
	default:
		return value.Value{}, errs.New(errs.ExecError, fmt.Sprintf("unknown constant tag %d", tag))
	}
}

func errOrWrap(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.ExecError, err, "bytecode serialization")
}

func writeTag(w io.Writer, tag uint8) error {
	return errOrWrap(binary.Write(w, binary.LittleEndian, tag))
}

func writeBool(w io.Writer, b bool) error {
	var v uint8
	if b {
		v = 1
	}
	return errOrWrap(binary.Write(w, binary.LittleEndian, v))
}

func readBool(r io.Reader) (bool, error) {
	var v uint8
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return false, errOrWrap(err)
	}
	return v != 0, nil
}

func writeUint32(w io.Writer, v uint32) error {
	return errOrWrap(binary.Write(w, binary.LittleEndian, v))
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, errOrWrap(err)
	}
	return v, nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return errOrWrap(err)
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errOrWrap(err)
	}
	return string(buf), nil
}

func writeStringSlice(w io.Writer, ss []string) error {
	if err := writeUint32(w, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStringSlice(r io.Reader) ([]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ss := make([]string, n)
	for i := range ss {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		ss[i] = s
	}
	return ss, nil
}
