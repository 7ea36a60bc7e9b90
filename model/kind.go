// Package model holds the entities owned by the tracker: transactions, goals and investments.
package model

// Kind names an entity collection. Each kind has its own cache key and remote collection.
type Kind string

const (
	// KindTransactions is the collection of income, expense and investment events.
	KindTransactions Kind = "transactions"
	// KindGoals is the collection of savings goals.
	KindGoals Kind = "goals"
	// KindInvestments is the collection of investment holdings.
	KindInvestments Kind = "investments"
)

// Kinds lists every entity kind.
func Kinds() []Kind {
	return []Kind{KindTransactions, KindGoals, KindInvestments}
}

// Entity is implemented by every stored record.
type Entity interface {
	EntityID() string
}
