package avrokit

import (
	"strconv"
	"strings"

	"github.com/reoring/avrokit/i18n"
)

// ValidationContext collects issues while a Writer walks a value. It keeps a
// path stack for issue prefixes and a stack of issue buffers so that union
// branches can be tried in isolation.
//
// A context belongs to one validation call and must not be shared across
// goroutines.
type ValidationContext struct {
	path    []string
	buffers []Issues
}

// NewValidationContext returns an empty context with a single issue buffer.
func NewValidationContext() *ValidationContext {
	return &ValidationContext{buffers: make([]Issues, 1, 4)}
}

// PushPath enters a record field or map key. Callers pair it with PopPath.
func (vc *ValidationContext) PushPath(segment string) {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(segment, "~", "~0"), "/", "~1")
	vc.path = append(vc.path, esc)
}

// PushIndex enters an array element.
func (vc *ValidationContext) PushIndex(i int) {
	vc.path = append(vc.path, strconv.Itoa(i))
}

// PopPath leaves the innermost segment.
func (vc *ValidationContext) PopPath() {
	if len(vc.path) > 0 {
		vc.path = vc.path[:len(vc.path)-1]
	}
}

// Path renders the current path as a JSON Pointer.
func (vc *ValidationContext) Path() string {
	if len(vc.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(vc.path, "/")
}

// AddIssue records an issue at the current path in the top buffer.
func (vc *ValidationContext) AddIssue(it Issue) {
	it.Path = vc.Path()
	top := len(vc.buffers) - 1
	vc.buffers[top] = AppendIssues(vc.buffers[top], it)
}

// AddError records an issue whose message comes from the i18n catalog.
func (vc *ValidationContext) AddError(code, hint string) {
	vc.AddIssue(Issue{Code: code, Message: i18n.T(code, nil), Hint: hint})
}

// PushContext starts a fresh issue buffer, used for speculative validation.
func (vc *ValidationContext) PushContext() {
	vc.buffers = append(vc.buffers, nil)
}

// PopContext drops the top buffer. Unless discard is set, its issues are
// merged into the parent buffer. It returns the popped issues either way.
func (vc *ValidationContext) PopContext(discard bool) Issues {
	if len(vc.buffers) == 1 {
		return nil
	}
	top := len(vc.buffers) - 1
	popped := vc.buffers[top]
	vc.buffers = vc.buffers[:top]
	if !discard && len(popped) > 0 {
		vc.buffers[top-1] = AppendIssues(vc.buffers[top-1], popped...)
	}
	return popped
}

// Depth reports how many speculative buffers are open.
func (vc *ValidationContext) Depth() int { return len(vc.buffers) - 1 }

// Issues returns the issues of the current top buffer.
func (vc *ValidationContext) Issues() Issues { return vc.buffers[len(vc.buffers)-1] }

// Errors renders the top buffer as path-qualified messages.
func (vc *ValidationContext) Errors() []string { return vc.Issues().Strings() }

// Valid reports whether the top buffer is empty.
func (vc *ValidationContext) Valid() bool { return len(vc.Issues()) == 0 }
