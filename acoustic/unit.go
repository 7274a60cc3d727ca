package acoustic

// Unit is an atomic phonetic category known to an acoustic model.
// Units are created by a Model and referenced by pointer everywhere else;
// two units are the same unit iff they are the same pointer.
type Unit struct {
	Name    Phoneme
	ID      int // dense, starting at 0, in creation order
	Silence bool
	Filler  bool
}

// IsSilence reports whether the unit is the silence unit.
func (u *Unit) IsSilence() bool { return u.Silence }

// IsFiller reports whether the unit is a non-lexical filler (silence included).
func (u *Unit) IsFiller() bool { return u.Filler }

// IsContextIndependent reports whether HMMs for this unit ignore their
// left and right contexts. Silence and fillers are never context dependent.
func (u *Unit) IsContextIndependent() bool { return u.Silence || u.Filler }

func (u *Unit) String() string {
	if u == nil {
		return WordBoundary
	}
	return string(u.Name)
}
