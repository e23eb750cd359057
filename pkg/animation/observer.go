package animation

import "weak"

// ProgressObserver receives notifications from a [ProgressRunner].
//
// Update is called zero or more times per run with the elapsed fraction.
// Complete is called once when a run reaches a boundary: finished is true
// when a forward run reached its end and false when a reversed run got back
// to the start. An explicit Stop does not call Complete.
type ProgressObserver interface {
	Update(fraction float64)
	Complete(finished bool)
}

// ObserverRef resolves the observer to notify. Observer returns nil when
// the observer is no longer available, in which case the notification is
// skipped.
type ObserverRef interface {
	Observer() ProgressObserver
}

// Weak returns a reference that does not keep p alive. Once p has been
// garbage collected the runner silently stops notifying it.
func Weak[T any, P interface {
	*T
	ProgressObserver
}](p P) ObserverRef {
	if p == nil {
		return Strong(nil)
	}
	return weakObserver[T, P]{ptr: weak.Make((*T)(p))}
}

type weakObserver[T any, P interface {
	*T
	ProgressObserver
}] struct {
	ptr weak.Pointer[T]
}

func (w weakObserver[T, P]) Observer() ProgressObserver {
	v := w.ptr.Value()
	if v == nil {
		return nil
	}
	return P(v)
}

// Strong returns a reference that holds o directly. Use it when the caller
// already controls the observer's lifetime.
func Strong(o ProgressObserver) ObserverRef {
	return strongObserver{o: o}
}

type strongObserver struct {
	o ProgressObserver
}

func (s strongObserver) Observer() ProgressObserver {
	return s.o
}

// ObserverFuncs adapts a pair of functions to [ProgressObserver].
// Nil fields are ignored.
type ObserverFuncs struct {
	OnUpdate   func(fraction float64)
	OnComplete func(finished bool)
}

// Update calls OnUpdate if set.
func (f ObserverFuncs) Update(fraction float64) {
	if f.OnUpdate != nil {
		f.OnUpdate(fraction)
	}
}

// Complete calls OnComplete if set.
func (f ObserverFuncs) Complete(finished bool) {
	if f.OnComplete != nil {
		f.OnComplete(finished)
	}
}
