package core

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// Input is the caller-facing parameter value map for an action execution.
type Input map[string]any

// Output is the extracted result value map produced by an execution.
type Output map[string]any

// DeepCopy returns a deep copy of the input map. A nil receiver yields an
// empty map so callers can mutate the copy freely.
func (i Input) DeepCopy() (Input, error) {
	if i == nil {
		return Input{}, nil
	}
	copied, err := deepCopyMap(i)
	if err != nil {
		return nil, err
	}
	return Input(copied), nil
}

// Merge layers other under the receiver: keys already present keep their
// value even when it is empty, since present-but-empty is a valid caller
// choice that must win over mapped dependency values.
func (i Input) Merge(other Input) Input {
	out := make(Input, len(i)+len(other))
	for k, v := range i {
		out[k] = v
	}
	for k, v := range other {
		if _, present := out[k]; present {
			continue
		}
		out[k] = v
	}
	return out
}

func (o Output) DeepCopy() (Output, error) {
	if o == nil {
		return Output{}, nil
	}
	copied, err := deepCopyMap(o)
	if err != nil {
		return nil, err
	}
	return Output(copied), nil
}

// deepCopyMap returns a deep copy of the provided map[string]any.
func deepCopyMap(m map[string]any) (map[string]any, error) {
	copiedInterface := deepcopy.Copy(m)
	copied, ok := copiedInterface.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to copy map")
	}
	return copied, nil
}

// DeepCopy creates a deep copy of the supplied value, falling back to a
// generic copy for types without special handling.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	switch src := any(v).(type) {
	case Input:
		copied, err := src.DeepCopy()
		if err != nil {
			return zero, err
		}
		out, ok := any(copied).(T)
		if !ok {
			return zero, fmt.Errorf("failed to convert copied input")
		}
		return out, nil
	case Output:
		copied, err := src.DeepCopy()
		if err != nil {
			return zero, err
		}
		out, ok := any(copied).(T)
		if !ok {
			return zero, fmt.Errorf("failed to convert copied output")
		}
		return out, nil
	default:
		copied, ok := deepcopy.Copy(v).(T)
		if !ok {
			return zero, fmt.Errorf("failed to copy value of type %T", v)
		}
		return copied, nil
	}
}
