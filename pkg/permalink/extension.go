package permalink

// Extension contributes its own parameters to a Control.
//
// OnConstruct runs once while the control is being created, in registration
// order; it typically subscribes to TopicUpdate with On. OnAttach runs when the
// control is attached to a viewport (as part of TopicAdd); it typically starts
// listening to the feature's own state and calls Merge.
type Extension interface {
	OnConstruct(c *Control)
	OnAttach(c *Control)
}

// Detacher is implemented by extensions holding subscriptions of their own.
// Control.Close calls OnDetach.
type Detacher interface {
	OnDetach(c *Control)
}

// Funcs adapts functions to Extension and Detacher. Nil fields are skipped.
type Funcs struct {
	Construct func(c *Control)
	Attach    func(c *Control)
	Detach    func(c *Control)
}

// OnConstruct implements Extension.
func (f Funcs) OnConstruct(c *Control) {
	if f.Construct != nil {
		f.Construct(c)
	}
}

// OnAttach implements Extension.
func (f Funcs) OnAttach(c *Control) {
	if f.Attach != nil {
		f.Attach(c)
	}
}

// OnDetach implements Detacher.
func (f Funcs) OnDetach(c *Control) {
	if f.Detach != nil {
		f.Detach(c)
	}
}
