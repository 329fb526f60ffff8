package orchestrator

import (
	"context"
	"strings"

	"github.com/specialistvlad/shadergen/internal/codegen"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
)

// LinkResolver resolves "<PassName>:<PortName>" references between the
// pass units of one shader. A reference that does not resolve is logged
// and skipped by the caller.
type LinkResolver struct {
	units map[string]*PassUnit
}

// NewLinkResolver indexes units by their template pass name. When two
// passes share a name the first one wins.
func NewLinkResolver(units []*PassUnit) *LinkResolver {
	r := &LinkResolver{units: make(map[string]*PassUnit, len(units))}
	for _, u := range units {
		if _, exists := r.units[u.OriginalPassName]; !exists {
			r.units[u.OriginalPassName] = u
		}
	}
	return r
}

// Resolve returns the port a link points at and the unit owning it.
func (r *LinkResolver) Resolve(ctx context.Context, link string) (*codegen.InputPort, *PassUnit, bool) {
	passName, portName, ok := strings.Cut(link, ":")
	if !ok {
		ctxlog.FromContext(ctx).Warn("Malformed port link, skipping.", "link", link)
		return nil, nil, false
	}
	u, ok := r.units[passName]
	if !ok {
		ctxlog.FromContext(ctx).Warn("Linked pass not found, skipping.", "link", link, "pass", passName)
		return nil, nil, false
	}
	port, ok := u.Port(portName)
	if !ok {
		ctxlog.FromContext(ctx).Warn("Linked port not found, skipping.", "link", link, "pass", passName, "port", portName)
		return nil, nil, false
	}
	return port, u, true
}

// LinkedUnit returns the unit the first linked port of u points at.
func (r *LinkResolver) LinkedUnit(ctx context.Context, u *PassUnit) (*PassUnit, bool) {
	for _, s := range u.ports {
		if !s.info.HasLink() {
			continue
		}
		_, target, ok := r.Resolve(ctx, s.info.LinkID)
		if ok {
			return target, true
		}
	}
	return nil, false
}
