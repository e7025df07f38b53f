package engine

// newCoreModel builds the provider's bootstrap model: an ordinary model
// hosted on the provider's schema, except that it additionally fans "exit"
// out to every other registered model before the router's default exit
// handler kills the core model's own container.
func (p *Provider) newCoreModel() *Model {
	core := NewModel(p, p.router)
	p.registry.Register(core)
	core.setContainer(p.schema.StartHost(core))

	core.OnReadSignal(func(dest *Model, sig *Signal) {
		name, err := sig.HeaderName()
		if err != nil || name != "exit" {
			return
		}
		for _, m := range p.registry.All() {
			if m == dest {
				continue
			}
			m.Close()
			if c := m.Container(); c != nil {
				c.Kill()
			}
		}
	})

	return core
}
