package clause

// Flatten normalizes a clause tree into disjunctive normal form: a list of
// AND-paths, any one of which satisfies the clause. For example
// Or(Or(a,b), And(c,d)) flattens to [[a], [b], [c, d]].
//
// An Or nested under an And is rejected: a shallow pass cannot flatten it,
// and silently returning a partial DNF would compile the wrong script.
// Callers must distribute the And over the Or before flattening.
func Flatten(c Clause) ([][]Clause, error) {
	return flatten(c, true)
}

func flatten(c Clause, orAllowed bool) ([][]Clause, error) {
	switch v := c.(type) {
	case nil:
		return nil, ErrNilClause

	case Satisfied:
		// Contributes nothing to its path.
		return [][]Clause{{}}, nil

	case And:
		if v.A == nil || v.B == nil {
			return nil, ErrNilClause
		}
		left, err := flatten(v.A, false)
		if err != nil {
			return nil, err
		}
		right, err := flatten(v.B, false)
		if err != nil {
			return nil, err
		}
		path := make([]Clause, 0, len(left[0])+len(right[0]))
		path = append(path, left[0]...)
		path = append(path, right[0]...)
		return [][]Clause{path}, nil

	case Or:
		if !orAllowed {
			return nil, ErrOrUnderAnd
		}
		if v.A == nil || v.B == nil {
			return nil, ErrNilClause
		}
		left, err := flatten(v.A, true)
		if err != nil {
			return nil, err
		}
		right, err := flatten(v.B, true)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil

	case SignedBy, PreimageSha256, After, CheckTemplateVerify:
		return [][]Clause{{c}}, nil

	default:
		return nil, ErrUnknownClause
	}
}
