package port

// Исходы обращения к реле рекомендаций
const (
	RelayOutcomeOK          = "ok"
	RelayOutcomeFailed      = "failed"
	RelayOutcomeEmpty       = "empty"
	RelayOutcomeNoCandidate = "no_candidates"
)

// MetricsPort - счетчики, которые пишут сценарии
type MetricsPort interface {
	SearchCompleted(resultCount int)
	RelayCompleted(outcome string)
	AnchorResolved(ok bool)
	PhotoLookupCompleted(poolSize int)
	// адаптеры хранения
	DatasetReloaded(ok bool, listings int)
	ActiveSessionsChanged(active int)
}
