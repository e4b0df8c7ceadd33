package evaluator

import (
	"blocks/internal/code"
	"blocks/internal/object"
)

// GetAttribute reads ref from obj, descending one instance per segment.
func (in *Interpreter) GetAttribute(obj object.Obj, ref code.VariableRef) (object.Obj, error) {
	inst, ok := obj.(*object.Instance)
	if !ok {
		return nil, in.errorf(object.TypeMismatch, "%s has no attributes (reading %q)", typeOf(obj), ref.Name)
	}
	v, ok := inst.Attributes[ref.Name]
	if !ok {
		return nil, in.errorf(object.MissingEntity, "%s has no attribute %q", inst.Class, ref.Name)
	}
	if ref.Attribute == nil {
		return v, nil
	}
	return in.GetAttribute(v, *ref.Attribute)
}

// SetAttribute writes val at the end of ref, mutating the instance in place.
// Only the last segment may name an attribute that does not exist yet.
func (in *Interpreter) SetAttribute(obj object.Obj, ref code.VariableRef, val object.Obj) error {
	inst, ok := obj.(*object.Instance)
	if !ok {
		return in.errorf(object.TypeMismatch, "%s has no attributes (writing %q)", typeOf(obj), ref.Name)
	}
	if ref.Attribute == nil {
		if _, exists := inst.Attributes[ref.Name]; !exists {
			if err := in.charge(object.CostAttribute()); err != nil {
				return err
			}
		}
		inst.Attributes[ref.Name] = val
		return nil
	}
	next, ok := inst.Attributes[ref.Name]
	if !ok {
		return in.errorf(object.MissingEntity, "%s has no attribute %q", inst.Class, ref.Name)
	}
	return in.SetAttribute(next, *ref.Attribute, val)
}

func typeOf(o object.Obj) object.Type {
	if o == nil {
		return "NULL"
	}
	return o.Type()
}
