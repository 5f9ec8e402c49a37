package calculator

import (
	"sort"

	"github.com/tabkeeper/tabkeeper/internal/models"
)

// OutstandingBalances aggregates a user's unpaid dues into one edge per
// creditor: who the user owes, how much in total, and across how many
// orders. Edges are sorted by amount descending (ties by creditor ID) so
// the biggest debt surfaces first.
func OutstandingBalances(entries []models.DebtEntry) (total int64, owes []models.DebtEdge) {
	byPayer := make(map[string]*models.DebtEdge)

	for _, e := range entries {
		total += e.Amount
		edge, ok := byPayer[e.PayerID]
		if !ok {
			edge = &models.DebtEdge{To: e.PayerID}
			byPayer[e.PayerID] = edge
		}
		edge.Amount += e.Amount
		edge.Orders++
	}

	owes = make([]models.DebtEdge, 0, len(byPayer))
	for _, edge := range byPayer {
		owes = append(owes, *edge)
	}
	sort.Slice(owes, func(a, b int) bool {
		if owes[a].Amount != owes[b].Amount {
			return owes[a].Amount > owes[b].Amount
		}
		return owes[a].To < owes[b].To
	})

	return total, owes
}
