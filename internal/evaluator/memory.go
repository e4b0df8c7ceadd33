package evaluator

import (
	"errors"

	"blocks/internal/limits"
	"blocks/internal/object"
)

func (in *Interpreter) charge(n int64) error {
	if err := in.budget.Charge(n); err != nil {
		var memErr limits.MaxMemoryError
		if errors.As(err, &memErr) {
			return in.errorf(object.LimitExceeded, "%s", limits.MaxMemoryMessage(memErr.Limit))
		}
		return in.errorf(object.LimitExceeded, "%s", err.Error())
	}
	return nil
}

// alloc charges the budget for a value created by a literal block.
func (in *Interpreter) alloc(o object.Obj) (object.Object, error) {
	if err := in.charge(object.Cost(o)); err != nil {
		return nil, err
	}
	return o, nil
}

// MemoryUsed reports the bytes charged so far, zero when no limit is set.
func (in *Interpreter) MemoryUsed() int64 {
	return in.budget.Used()
}
