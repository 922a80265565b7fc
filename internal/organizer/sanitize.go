package organizer

// Sanitize restores the board invariants after a mutation: duplicate
// questions inside a group are dropped (first wins), merged blocks with one
// member left become a Single in place, empty groups disappear, and group
// positions are renumbered 1..N. A case study with one member is kept.
func Sanitize(b Board) Board {
	out := b.Clone()
	for _, c := range Columns {
		src := out.Entries(c)
		if src == nil {
			continue
		}
		dst := make([]Entry, 0, len(src))
		for _, e := range src {
			switch v := e.(type) {
			case *Single:
				v.Question.ClearGroup()
				dst = append(dst, v)
			case *Group:
				dedupe(v)
				switch {
				case len(v.Items) == 0:
					continue
				case v.Kind == KindMergedBlock && len(v.Items) == 1:
					q := v.Items[0]
					q.ClearGroup()
					dst = append(dst, &Single{Question: q})
					continue
				}
				renumber(v)
				dst = append(dst, v)
			}
		}
		out.setEntries(c, dst)
	}
	return out
}

func dedupe(g *Group) {
	seen := make(map[string]bool, len(g.Items))
	kept := g.Items[:0]
	for _, q := range g.Items {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		kept = append(kept, q)
	}
	g.Items = kept
}

func renumber(g *Group) {
	for i := range g.Items {
		g.Items[i].SetGroup(g.ID, i+1)
	}
}
