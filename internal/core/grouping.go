package core

// StatusGroup is one bucket of GroupByStatus.
type StatusGroup struct {
	Status   Status
	Invoices []Invoice
}

// StatusGroups partitions a list of invoices. Groups appear in the order
// their status was first seen; invoices keep their relative order.
type StatusGroups struct {
	Groups []StatusGroup
	// Unrecognized holds invoices whose status is outside the closed set.
	Unrecognized []Invoice
}

// Len is the number of invoices across all buckets.
func (g StatusGroups) Len() int {
	n := len(g.Unrecognized)
	for _, grp := range g.Groups {
		n += len(grp.Invoices)
	}
	return n
}

// Get returns the invoices with status s, or nil.
func (g StatusGroups) Get(s Status) []Invoice {
	for _, grp := range g.Groups {
		if grp.Status == s {
			return grp.Invoices
		}
	}
	return nil
}

// GroupByStatus buckets invoices by status. An empty status counts as pending.
func GroupByStatus(invoices []Invoice) StatusGroups {
	var out StatusGroups
	index := make(map[Status]int, len(KnownStatuses))
	for _, inv := range invoices {
		st, err := ParseStatus(string(inv.Status))
		if err != nil {
			out.Unrecognized = append(out.Unrecognized, inv)
			continue
		}
		i, ok := index[st]
		if !ok {
			i = len(out.Groups)
			index[st] = i
			out.Groups = append(out.Groups, StatusGroup{Status: st})
		}
		out.Groups[i].Invoices = append(out.Groups[i].Invoices, inv)
	}
	return out
}
