package object

const (
	memPtrSize      int64 = 8
	memBooleanHead  int64 = 8
	memStringHead   int64 = 24
	memArrayHead    int64 = 24
	memInstanceHead int64 = 48
	memAttrEntry    int64 = 24
)

func CostBoolean() int64 {
	return memBooleanHead
}

func CostString(n int) int64 {
	if n < 0 {
		return memStringHead
	}
	return memStringHead + int64(n)
}

func CostArray(n int) int64 {
	if n < 0 {
		return memArrayHead
	}
	return memArrayHead + int64(n)*memPtrSize
}

func CostInstance() int64 {
	return memInstanceHead
}

func CostAttribute() int64 {
	return memAttrEntry
}

// Cost estimates the allocation size of a freshly created value, not
// counting the elements or attributes it shares.
func Cost(o Obj) int64 {
	switch v := o.(type) {
	case *Boolean:
		return CostBoolean()
	case *String:
		return CostString(len(v.Value))
	case *Array:
		return CostArray(len(v.Elements))
	case *Instance:
		return CostInstance() + int64(len(v.Attributes))*memAttrEntry
	}
	return 0
}
