package ir

// Context is threaded through generator calls that opt in via
// Generator.UsesContext. It carries no elaboration state of its own:
// the elaborator never reads or writes through it, and it exists only so
// generator functions can receive ambient configuration the pipeline was
// constructed with.
type Context struct {
	Params map[string]any
}

// NewContext constructs an empty Context.
func NewContext() *Context {
	return &Context{Params: make(map[string]any)}
}
