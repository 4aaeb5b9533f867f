package core

// BoardColumn is one kanban column: a phase and the companies currently in it,
// in store order.
type BoardColumn struct {
	Phase     Phase     `json:"phase"`
	Statuses  []Status  `json:"statuses"`
	Companies []Company `json:"companies"`
}

// GroupByPhase derives the kanban board view: one column per catalog phase in
// ascending phase order, every phase present even when empty. Derived on each
// call, never cached.
func GroupByPhase(catalog Catalog, companies []Company) []BoardColumn {
	phases := catalog.Phases()
	columns := make([]BoardColumn, 0, len(phases))
	index := make(map[Phase]int, len(phases))
	for i, phase := range phases {
		columns = append(columns, BoardColumn{
			Phase:    phase,
			Statuses: catalog.StatusesIn(phase),
		})
		index[phase] = i
	}
	for _, c := range companies {
		i, ok := index[c.Phase]
		if !ok {
			continue
		}
		columns[i].Companies = append(columns[i].Companies, c)
	}
	return columns
}
