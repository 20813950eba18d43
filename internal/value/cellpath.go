package value

import "fmt"

// PathError reports a missing column/row while walking a cell path, matching
// the *column/row not found* taxonomy entry.
type PathError struct {
	Member PathMember
	Span   Span
}

func (e *PathError) Error() string {
	if e.Member.IsName {
		return fmt.Sprintf("column not found: %s", e.Member.Name)
	}
	return fmt.Sprintf("row not found: %d", e.Member.Index)
}

// Follow walks head through the given path members, failing with a
// PathError at the first missing member.
func Follow(head Value, members []PathMember) (Value, error) {
	cur := head
	for _, m := range members {
		next, err := followOne(cur, m)
		if err != nil {
			if m.Optional {
				return NewNothing(head.Span()), nil
			}
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func followOne(cur Value, m PathMember) (Value, error) {
	switch v := cur.(type) {
	case Record:
		if !m.IsName {
			return nil, &PathError{Member: m}
		}
		if val, ok := v.Get(m.Name); ok {
			return val, nil
		}
		return nil, &PathError{Member: m}
	case List:
		if m.IsName {
			// Broadcast a column access across a table (list of records).
			items := make([]Value, 0, len(v.Items))
			for _, row := range v.Items {
				rec, ok := row.(Record)
				if !ok {
					return nil, &PathError{Member: m}
				}
				val, ok := rec.Get(m.Name)
				if !ok {
					return nil, &PathError{Member: m}
				}
				items = append(items, val)
			}
			return NewList(items, v.Span()), nil
		}
		if m.Index < 0 || m.Index >= len(v.Items) {
			return nil, &PathError{Member: m}
		}
		return v.Items[m.Index], nil
	default:
		return nil, &PathError{Member: m}
	}
}

// Upsert writes v at the tail path inside head, creating missing record
// columns / list slots as needed, and returns the new head value. This
// backs both plain cell-path assignment and the `$env.FOO = ...` path,
// which additionally re-reads the first tail segment after the upsert.
func Upsert(head Value, members []PathMember, v Value) (Value, error) {
	if len(members) == 0 {
		return v, nil
	}
	m := members[0]
	rest := members[1:]

	switch cur := head.(type) {
	case Record:
		if !m.IsName {
			return nil, &PathError{Member: m}
		}
		existing, ok := cur.Get(m.Name)
		if !ok {
			existing = NewNothing(head.Span())
		}
		var updated Value
		var err error
		if len(rest) == 0 {
			updated = v
		} else {
			updated, err = Upsert(existing, rest, v)
			if err != nil {
				return nil, err
			}
		}
		return cur.Upsert(m.Name, updated), nil

	case List:
		items := make([]Value, len(cur.Items))
		copy(items, cur.Items)
		if m.IsName {
			// Broadcast write across every row of a table.
			for i, row := range items {
				updated, err := Upsert(row, append([]PathMember{m}, rest...), v)
				if err != nil {
					return nil, err
				}
				items[i] = updated
			}
			return NewList(items, cur.Span()), nil
		}
		for len(items) <= m.Index {
			items = append(items, NewNothing(cur.Span()))
		}
		var updated Value
		var err error
		if len(rest) == 0 {
			updated = v
		} else {
			updated, err = Upsert(items[m.Index], rest, v)
			if err != nil {
				return nil, err
			}
		}
		items[m.Index] = updated
		return NewList(items, cur.Span()), nil

	case Nothing:
		// Create-on-write: an absent value becomes a record or list
		// depending on the shape of the member being written.
		if m.IsName {
			return Upsert(NewRecord(nil, nil, cur.Span()), members, v)
		}
		return Upsert(NewList(nil, cur.Span()), members, v)

	default:
		return nil, &PathError{Member: m}
	}
}
