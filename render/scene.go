package render

// Scene is the host's scene collaborator. Traverse visits every active
// object once, in unspecified order.
type Scene interface {
	Traverse(visit func(Object))
}

// Object is a scene entity.
type Object interface {
	Components() []any
}

// Updater is implemented by components that need a per-frame update before
// resources are synchronized, such as transform propagation.
type Updater interface {
	Update(dt float64)
}

// Camera is a viewpoint rendered by a Pipeline.
type Camera interface {
	Label() string
}

// updateScene calls Update on every Updater component of every object.
func updateScene(s Scene, dt float64) int {
	if s == nil {
		return 0
	}
	n := 0
	s.Traverse(func(o Object) {
		for _, c := range o.Components() {
			if u, ok := c.(Updater); ok {
				u.Update(dt)
				n++
			}
		}
	})
	return n
}
