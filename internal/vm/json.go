package vm

import (
	"smile/internal/errs"
	"smile/internal/jsonval"
	"smile/internal/value"
)

// registerJSONBuiltins installs the `Json` global object, the only
// caller of the json-error taxonomy entry: a UserObject whose `parse`
// and `stringify` properties are native functions, called the same way
// any other property-bound method is (Met* resolves the property, then
// calls it with the explicit argument list -- no implicit receiver, so
// `Json.parse(text)` just calls the native with args=[text]).
func (vm *VM) registerJSONBuiltins() {
	jsonObj := value.NewUserObject("Json")
	parseSym := vm.Symbols.Add("parse")
	stringifySym := vm.Symbols.Add("stringify")
	jsonObj.SetProperty(int32(parseSym), NewNativeFunction("Json.parse", vm.jsonParseBuiltin))
	jsonObj.SetProperty(int32(stringifySym), NewNativeFunction("Json.stringify", vm.jsonStringifyBuiltin))

	jsonSym := vm.Symbols.Add("Json")
	vm.Globals.Set(jsonSym, value.Obj(value.KUserObject, jsonObj))
}

func (vm *VM) jsonParseBuiltin(_ *VM, args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KString {
		return value.Null, errs.New(errs.JSONError, "Json.parse: expected a single string argument")
	}
	return jsonval.Parse(vm.Symbols, args[0].AsString())
}

func (vm *VM) jsonStringifyBuiltin(_ *VM, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, errs.New(errs.JSONError, "Json.stringify: expected exactly 1 argument")
	}
	text, err := jsonval.Stringify(vm.Symbols, args[0])
	if err != nil {
		return value.Null, err
	}
	return value.Str(text), nil
}
