package ustr

/// Ustr represents an immutable path string. Used here only for a
/// process's working directory, so the VFS-path-walking helpers the
/// teacher's Ustr carries (Isdot/Isdotdot/Extend/IndexByte/...) are
/// trimmed: there is no directory tree in this nucleus to walk.
type Ustr []uint8

/// Eq compares two Ustr values for equality.
///
/// \param s other Ustr to compare
/// \return true when both strings contain identical bytes.
func (us Ustr) Eq(s Ustr) bool {
	if len(us) != len(s) {
		return false
	}
	for i, v := range us {
		if v != s[i] {
			return false
		}
	}
	return true
}

/// MkUstrRoot returns a Ustr for the root directory '/', the working
/// directory every process starts in.
/// \return root Ustr value.
func MkUstrRoot() Ustr {
	us := Ustr("/")
	return us
}

/// String converts the Ustr to a Go string.
/// \return string representation of the Ustr.
func (us Ustr) String() string {
	return string(us)
}
