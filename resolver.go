package roomcast

import (
	"go.uber.org/zap"
)

// Targets computes the socket ids addressed by opts against a consistent
// snapshot of the indices.
//
// Exclusion wins over inclusion. With an empty Rooms slice every
// registered socket is a candidate, including sockets with no rooms.
// Cost is proportional to the member counts of the rooms involved, except
// the everyone case which walks the whole socket index.
func (r *Registry) Targets(opts *BroadcastOptions) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := r.membersOfAny(opts.Except)

	if len(opts.Rooms) == 0 {
		targets := make([]string, 0, len(r.sids))
		for sid := range r.sids {
			if _, ok := excluded[sid]; ok {
				continue
			}
			targets = append(targets, sid)
		}
		return targets
	}

	var merged map[string]struct{}
	if len(opts.Merge) > 0 {
		merged = r.membersOfAll(opts.Merge)
	}

	var targets []string
	seen := make(map[string]struct{})
	for _, room := range opts.Rooms {
		for sid := range r.rooms[room] {
			if _, ok := excluded[sid]; ok {
				continue
			}
			if _, ok := seen[sid]; ok {
				continue
			}
			if merged != nil {
				if _, ok := merged[sid]; !ok {
					continue
				}
			}
			seen[sid] = struct{}{}
			targets = append(targets, sid)
		}
	}
	return targets
}

// membersOfAny unions the member sets of rooms. Unknown rooms contribute
// nothing. Caller holds at least the read lock.
func (r *Registry) membersOfAny(rooms []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, room := range rooms {
		for sid := range r.rooms[room] {
			out[sid] = struct{}{}
		}
	}
	return out
}

// membersOfAll intersects the member sets of rooms. A room that does not
// exist makes the intersection empty. Caller holds at least the read lock.
func (r *Registry) membersOfAll(rooms []string) map[string]struct{} {
	var out map[string]struct{}
	for _, room := range rooms {
		members, ok := r.rooms[room]
		if !ok {
			return map[string]struct{}{}
		}
		if out == nil {
			out = make(map[string]struct{}, len(members))
			for sid := range members {
				out[sid] = struct{}{}
			}
			continue
		}
		for sid := range out {
			if _, ok := members[sid]; !ok {
				delete(out, sid)
			}
		}
	}
	if out == nil {
		out = map[string]struct{}{}
	}
	return out
}

// Resolver turns a broadcast request into live sockets by walking the
// adapter and looking each target id up on the transport side.
type Resolver struct {
	adapter Adapter
	lookup  SocketLookup

	logger *zap.SugaredLogger
}

func NewResolver(adapter Adapter, lookup SocketLookup, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		adapter: adapter,
		lookup:  lookup,
		logger:  logger,
	}
}

// Resolve returns the live sockets addressed by opts. Ids the transport
// no longer knows are skipped: membership bookkeeping may lag connection
// lifetime and that is not an error.
func (rs *Resolver) Resolve(opts *BroadcastOptions) []Socket {
	sids := rs.adapter.Targets(opts)

	sockets := make([]Socket, 0, len(sids))
	for _, sid := range sids {
		s, ok := rs.lookup.FindSocket(sid)
		if !ok {
			rs.logger.Debugf("%s has no live connection, skipping", sid)
			continue
		}
		sockets = append(sockets, s)
	}
	return sockets
}
