package quire

// bindOptions holds configuration for a bind and render pass. The
// struct has no reference fields, so the Binder's clone can copy it by
// value.
type bindOptions struct {
	title          string
	toc            bool
	highlightStyle string // empty disables highlighting
	stylesheet     string
	probeImages    bool
	strictRefs     bool
	parallel       int // parse workers; <= 1 means sequential
}

// defaultOptions returns the default bind options: no table of
// contents, no highlighting, sequential parsing. Manifests and chain
// methods turn features on.
func defaultOptions() bindOptions {
	return bindOptions{}
}
