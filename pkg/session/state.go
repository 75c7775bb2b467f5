package session

import (
	"github.com/aislelist/aislelist/pkg/displayitem"
	"github.com/aislelist/aislelist/pkg/errmap"
)

type StateKind int

const (
	StateEmpty StateKind = iota
	StateLoading
	StateUpdated
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateEmpty:
		return "EMPTY"
	case StateLoading:
		return "LOADING"
	case StateUpdated:
		return "UPDATED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DisplayState is what the UI renders. Items is set only for StateUpdated;
// Code and Message only for StateError. Published item slices are never
// mutated afterwards.
type DisplayState struct {
	Kind    StateKind
	Items   []displayitem.Item
	Code    errmap.Code
	Message string
}

func emptyState() DisplayState   { return DisplayState{Kind: StateEmpty} }
func loadingState() DisplayState { return DisplayState{Kind: StateLoading} }

func updatedState(items []displayitem.Item) DisplayState {
	return DisplayState{Kind: StateUpdated, Items: items}
}

func errorState(code errmap.Code, message string) DisplayState {
	return DisplayState{Kind: StateError, Code: code, Message: message}
}
