package paxos

import "reflect"

// valuesEqual compares two Value payloads. Concrete Value types are
// expected to be comparable with ==, but reflect.DeepEqual is used so a
// host may also choose a slice- or map-backed Value without the core
// panicking on comparison.
func valuesEqual(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}
