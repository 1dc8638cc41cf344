package replication

import "arenasrv/internal/world"

// entityFields is the last-sent value of one component for one entity,
// keyed by field name.
type entityFields map[string]float64

// Snapshot holds, for every session and every networked component type,
// the last value sent to that session for each entity:
// last_sent[session][tag][entity_id] -> value. It is the central invariant
// of the replication pipeline: last_sent always equals "what the client
// has been told," so per-field thresholds accumulate correctly across
// ticks.
type Snapshot struct {
	// sessions[session][tag][networkID] -> field values last sent.
	sessions map[world.SessionID]map[string]map[world.NetworkID]entityFields
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{sessions: make(map[world.SessionID]map[string]map[world.NetworkID]entityFields)}
}

func (s *Snapshot) tagMap(session world.SessionID, tag string) map[world.NetworkID]entityFields {
	byTag, ok := s.sessions[session]
	if !ok {
		byTag = make(map[string]map[world.NetworkID]entityFields)
		s.sessions[session] = byTag
	}
	byEntity, ok := byTag[tag]
	if !ok {
		byEntity = make(map[world.NetworkID]entityFields)
		byTag[tag] = byEntity
	}
	return byEntity
}

// Diff returns the current field values and whether they are significant
// enough to send. There are two cases: no prior entry exists for (session,
// tag, entity), in which case the full current value is significant by
// definition; or a prior entry exists, in which case the component is
// significant if any field's absolute change from the stored value exceeds
// that field's threshold. When a component is significant at all, every
// one of its current field values is returned — the per-field thresholds
// gate whether the component is included in a message at all, not which
// individual fields are serialized.
func (s *Snapshot) Diff(session world.SessionID, b Bundle, id world.NetworkID, current Fields) (values []float64, significant bool) {
	byEntity := s.tagMap(session, b.Tag)
	stored, ok := byEntity[id]
	if !ok {
		return append([]float64(nil), current.Values...), true
	}

	for i, name := range current.Names {
		threshold := DefaultThreshold
		if i < len(b.Thresholds) {
			threshold = b.Thresholds[i]
		}
		prev, known := stored[name]
		if !known || absDiff(current.Values[i], prev) > threshold {
			significant = true
			break
		}
	}
	if !significant {
		return nil, false
	}
	return append([]float64(nil), current.Values...), true
}

// Commit overwrites last_sent for exactly the fields present in values.
// Fields not present keep their previously-recorded value.
func (s *Snapshot) Commit(session world.SessionID, b Bundle, id world.NetworkID, names []string, values []float64) {
	byEntity := s.tagMap(session, b.Tag)
	stored, ok := byEntity[id]
	if !ok {
		stored = make(entityFields, len(names))
		byEntity[id] = stored
	}
	for i, name := range names {
		if i < len(values) {
			stored[name] = values[i]
		}
	}
}

// PurgeEntity removes every recorded value for id across all sessions and
// component types, for use when the entity despawns.
func (s *Snapshot) PurgeEntity(id world.NetworkID) {
	for _, byTag := range s.sessions {
		for _, byEntity := range byTag {
			delete(byEntity, id)
		}
	}
}

// PurgeSession discards all snapshot state for a session, for use when the
// session disconnects.
func (s *Snapshot) PurgeSession(session world.SessionID) {
	delete(s.sessions, session)
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
