package shortcut

// Action is a binding handled outside the session state machine.
// Either func may be nil.
type Action struct {
	Start func(bindingID, token string)
	Stop  func(bindingID, token string)
}

func (a Action) start(id, token string) {
	if a.Start != nil {
		a.Start(id, token)
	}
}

func (a Action) stop(id, token string) {
	if a.Stop != nil {
		a.Stop(id, token)
	}
}

// Registry maps non-transcription binding ids to actions. It is built once
// and never mutated.
type Registry struct {
	actions map[string]Action
}

func NewRegistry(actions map[string]Action) *Registry {
	m := make(map[string]Action, len(actions))
	for id, a := range actions {
		m[id] = a
	}
	return &Registry{actions: m}
}

func (r *Registry) Lookup(id string) (Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}
