package authz

// Matrix maps a resource kind to the set of actions a role allows on it.
// A kind that is absent, or present with an empty action list, denies every
// action on that kind. The zero value denies everything.
type Matrix map[ResourceKind][]Action

// Permits reports whether the matrix allows the action on the resource kind.
func (m Matrix) Permits(kind ResourceKind, action Action) bool {
	for _, a := range m[kind] {
		if a == action {
			return true
		}
	}
	return false
}

// Grant returns a copy of the matrix with the action added for the kind.
// The receiver is not modified.
func (m Matrix) Grant(kind ResourceKind, action Action) Matrix {
	out := m.Clone()
	if out.Permits(kind, action) {
		return out
	}
	out[kind] = append(out[kind], action)
	return out
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for kind, acts := range m {
		out[kind] = append([]Action(nil), acts...)
	}
	return out
}

// Union merges multiple matrices permissively: the result permits a
// (kind, action) pair if any input matrix permits it. Additional roles add
// capability, never subtract it.
func Union(matrices ...Matrix) Matrix {
	out := make(Matrix)
	for _, m := range matrices {
		for kind, acts := range m {
			for _, a := range acts {
				if !out.Permits(kind, a) {
					out[kind] = append(out[kind], a)
				}
			}
		}
	}
	return out
}

// Covers reports whether the matrix permits every (kind, action) pair the
// other matrix permits. Used by role-edit policy checks.
func (m Matrix) Covers(other Matrix) bool {
	for kind, acts := range other {
		for _, a := range acts {
			if !m.Permits(kind, a) {
				return false
			}
		}
	}
	return true
}

// fullAccess builds a matrix granting the given actions on every kind.
func fullAccess(acts ...Action) Matrix {
	m := make(Matrix)
	for _, kind := range AllResourceKinds() {
		m[kind] = append([]Action(nil), acts...)
	}
	return m
}
