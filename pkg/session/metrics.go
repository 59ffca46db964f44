package session

// Metrics receives store activity. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// ObserveLoad is called once per Load. found reports whether the
	// presented identifier had at least one live entry; keys is the number
	// of live entries copied into the session.
	ObserveLoad(found bool, keys int)

	// ObserveSave is called once per Save that wrote entries. minted reports
	// whether a new identifier was issued.
	ObserveSave(minted bool, keys int)

	// ObserveCleanup is called after each sweep with the number of expired
	// entries and empty identifiers that were dropped.
	ObserveCleanup(expiredKeys, removedSessions int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLoad(bool, int) {}
func (nopMetrics) ObserveSave(bool, int) {}
func (nopMetrics) ObserveCleanup(int, int) {}
