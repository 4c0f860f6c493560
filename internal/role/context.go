package role

import "context"

type bindingContextKey struct{}

// ContextWithBinding attaches the resolved role binding to the context.
func ContextWithBinding(ctx context.Context, b Binding) context.Context {
	return context.WithValue(ctx, bindingContextKey{}, &b)
}

// BindingFromContext extracts the role binding from the context.
func BindingFromContext(ctx context.Context) (Binding, bool) {
	if ctx == nil {
		return Binding{}, false
	}
	v, ok := ctx.Value(bindingContextKey{}).(*Binding)
	if !ok || v == nil {
		return Binding{}, false
	}
	return *v, true
}
