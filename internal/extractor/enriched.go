package extractor

// Enriched is the result of an enrichment analysis (sentiment, language).
// It always carries a usable value: when the call failed, the value is the
// operation's default and Degraded reports true. There is no error to check.
type Enriched[T any] struct {
	value    T
	degraded bool
	cause    error
}

// Enrich wraps a successfully produced value.
func Enrich[T any](v T) Enriched[T] {
	return Enriched[T]{value: v}
}

// Fallback wraps the default used when the analysis failed.
func Fallback[T any](fallback T, cause error) Enriched[T] {
	return Enriched[T]{value: fallback, degraded: true, cause: cause}
}

func (e Enriched[T]) Value() T { return e.value }

func (e Enriched[T]) Degraded() bool { return e.degraded }

// Cause is the reason for degradation, for debug logging only.
func (e Enriched[T]) Cause() error { return e.cause }
