package keymap

import "slices"

// maxDeviceKeys is the number of receivers reachable with a digit key.
const maxDeviceKeys = 9

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys, in binding order
}

// NewResolver creates a resolver from bindings. When two bindings claim the
// same key the later one wins.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
			if !slices.Contains(r.byAction[b.Action], key) {
				r.byAction[b.Action] = append(r.byAction[b.Action], key)
			}
		}
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// DeviceIndex maps the digit keys "1".."9" to roster indices 0..8. Digits
// bound to an action are not device keys.
func (r *Resolver) DeviceIndex(key string) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] >= '1'+maxDeviceKeys {
		return 0, false
	}
	if _, bound := r.bindings[key]; bound {
		return 0, false
	}
	return int(key[0] - '1'), true
}
