package domain

// StationIdentity is the static identity of a station from the DWD station
// description file. Read-only after load, safe for concurrent use.
type StationIdentity struct {
	Name  string
	State string
}

// IdentityLookup maps station identifiers to their static identity. Every
// station appearing in raw data is expected to be present; a miss is the
// fatal UnknownStationError, raised by the orphan synthesizer.
type IdentityLookup map[int]StationIdentity

// Lookup returns the identity for id, or UnknownStationError.
func (l IdentityLookup) Lookup(id int) (StationIdentity, error) {
	ident, ok := l[id]
	if !ok {
		return StationIdentity{}, &UnknownStationError{StationID: id}
	}
	return ident, nil
}
