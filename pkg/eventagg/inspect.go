package eventagg

import (
	"fmt"
	"reflect"
	"slices"
)

// boundContract is a contract resolved against a concrete listener type.
type boundContract struct {
	Contract

	// receiver maps the registered listener to the value the contract's
	// entry points expect. It returns false when an embedded pointer on the
	// path is nil.
	receiver func(target any) (any, bool)
}

// inspect discovers the contracts a listener implements, including those
// declared by embedded listeners, and binds each to a receiver accessor.
// Contracts for the same message type collapse to the first one found.
func inspect(listener any) ([]boundContract, error) {
	lt := reflect.TypeOf(listener)

	root, ok := listener.(Listener)
	if !ok {
		return nil, &NoHandlerContractError{ListenerType: lt}
	}

	contracts := slices.Clone(root.Contracts())
	visitEmbedded(reflect.ValueOf(listener), map[reflect.Type]bool{lt: true}, func(l Listener) {
		contracts = append(contracts, l.Contracts()...)
	})

	seen := make(map[reflect.Type]bool, len(contracts))
	bound := make([]boundContract, 0, len(contracts))
	for _, c := range contracts {
		if c.messageType == nil {
			return nil, &ContractError{ListenerType: lt, Message: "zero contract"}
		}
		if seen[c.messageType] {
			continue
		}
		if c.handle == nil {
			return nil, &ContractError{ListenerType: lt, MessageType: c.messageType, Message: "nil handle function"}
		}
		recv, ok := receiverFor(lt, c.listenerType)
		if !ok {
			return nil, &ContractError{
				ListenerType: lt,
				MessageType:  c.messageType,
				Message:      fmt.Sprintf("receiver type %s is not reachable from the listener", typeName(c.listenerType)),
			}
		}
		seen[c.messageType] = true
		bound = append(bound, boundContract{Contract: c, receiver: recv})
	}

	if len(bound) == 0 {
		return nil, &NoHandlerContractError{ListenerType: lt}
	}
	return bound, nil
}

// visitEmbedded calls visit for every exported embedded field, at any depth,
// whose pointer implements Listener. Nil embedded pointers are skipped.
func visitEmbedded(v reflect.Value, seen map[reflect.Type]bool, visit func(Listener)) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}

		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.Interface:
			continue
		case reflect.Pointer:
			if fv.IsNil() {
				continue
			}
		default:
			if !fv.CanAddr() {
				continue
			}
			fv = fv.Addr()
		}

		if seen[fv.Type()] {
			continue
		}
		seen[fv.Type()] = true

		if l, ok := fv.Interface().(Listener); ok {
			visit(l)
		}
		visitEmbedded(fv, seen, visit)
	}
}

// receiverFor returns an accessor that yields a value of type want from a
// listener of type lt: the listener itself, or one of its embedded fields.
func receiverFor(lt, want reflect.Type) (func(any) (any, bool), bool) {
	if lt.AssignableTo(want) {
		return func(target any) (any, bool) { return target, true }, true
	}

	path, addr, ok := findEmbedded(lt, want, make(map[reflect.Type]bool))
	if !ok {
		return nil, false
	}
	return func(target any) (any, bool) {
		return fieldAt(target, path, addr)
	}, true
}

// findEmbedded searches exported embedded fields breadth first for one
// assignable to want. addr is set when the field is embedded by value but
// want is satisfied by its pointer.
func findEmbedded(t, want reflect.Type, seen map[reflect.Type]bool) (path []int, addr bool, ok bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return nil, false, false
	}
	seen[t] = true

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		if f.Type.AssignableTo(want) {
			return []int{i}, false, true
		}
		if f.Type.Kind() != reflect.Pointer && reflect.PointerTo(f.Type).AssignableTo(want) {
			return []int{i}, true, true
		}
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous || !f.IsExported() {
			continue
		}
		if sub, subAddr, found := findEmbedded(f.Type, want, seen); found {
			return append([]int{i}, sub...), subAddr, true
		}
	}
	return nil, false, false
}

// fieldAt walks path from target. Intermediate nil pointers yield false.
func fieldAt(target any, path []int, addr bool) (any, bool) {
	v := reflect.ValueOf(target)
	for i, idx := range path {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		v = v.Field(idx)
		if i < len(path)-1 {
			continue
		}
		if addr {
			return v.Addr().Interface(), true
		}
		if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}
