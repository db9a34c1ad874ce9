package handler

import (
	"sort"
	"strings"

	"attrsync/internal/decl"
)

// Registry is an ordered, immutable set of handlers.
type Registry struct {
	handlers []*Handler
}

func NewRegistry(handlers ...*Handler) *Registry {
	return &Registry{handlers: handlers}
}

// DefaultRegistry returns every handler attrsync knows.
func DefaultRegistry() *Registry {
	return NewRegistry(
		flag("Test", "@test", ScopeMember),
		flag("Before", "@before", ScopeMember),
		flag("After", "@after", ScopeMember),
		flag("BeforeClass", "@beforeClass", ScopeMember),
		flag("AfterClass", "@afterClass", ScopeMember),
		flag("PreCondition", "@preCondition", ScopeMember),
		flag("PostCondition", "@postCondition", ScopeMember),
		flag("DoesNotPerformAssertions", "@doesNotPerformAssertions", ScopeBoth),
		flag("RunInSeparateProcess", "@runInSeparateProcess", ScopeMember),
		flag("RunTestsInSeparateProcesses", "@runTestsInSeparateProcesses", ScopeClass),
		flag("RunClassInSeparateProcess", "@runClassInSeparateProcess", ScopeClass),
		flag("CoversNothing", "@coversNothing", ScopeBoth),
		flag("Small", "@small", ScopeClass),
		flag("Medium", "@medium", ScopeClass),
		flag("Large", "@large", ScopeClass),

		text("Group", "@group", "name", false, ScopeBoth),
		text("Ticket", "@ticket", "text", false, ScopeBoth),
		text("TestDox", "@testdox", "text", true, ScopeBoth),

		toggle("BackupGlobals", "@backupGlobals", ScopeBoth),
		toggle("BackupStaticProperties", "@backupStaticAttributes", ScopeBoth),
		toggle("PreserveGlobalState", "@preserveGlobalState", ScopeBoth),

		dataProvider(),
		depends(),
		newCoverage("covers", "Covers"),
		newCoverage("uses", "Uses"),
		testWith(),
		requires(),
	)
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []*Handler {
	return r.handlers
}

// Lookup finds a handler by name.
func (r *Registry) Lookup(name string) (*Handler, bool) {
	for _, h := range r.handlers {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return nil, false
}

// Known reports whether name is a handler or family name.
func (r *Registry) Known(name string) bool {
	for _, h := range r.handlers {
		if strings.EqualFold(h.Name, name) || strings.EqualFold(h.Family, name) {
			return true
		}
	}
	return false
}

// For returns the handlers that apply to declarations of kind k.
func (r *Registry) For(k decl.Kind) []*Handler {
	var out []*Handler
	for _, h := range r.handlers {
		if h.Scope.Allows(k) {
			out = append(out, h)
		}
	}
	return out
}

// Without returns a registry lacking the handlers whose name or family is
// listed.
func (r *Registry) Without(names ...string) *Registry {
	if len(names) == 0 {
		return r
	}
	out := make([]*Handler, 0, len(r.handlers))
next:
	for _, h := range r.handlers {
		for _, n := range names {
			if strings.EqualFold(h.Name, n) || strings.EqualFold(h.Family, n) {
				continue next
			}
		}
		out = append(out, h)
	}
	return NewRegistry(out...)
}

// Fingerprint identifies the enabled handler set.
func (r *Registry) Fingerprint() string {
	ns := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		ns[i] = h.Name
	}
	sort.Strings(ns)
	return strings.Join(ns, ",")
}
