package tracing

// Span names.
const (
	SpanResolve   = "finder.resolve"
	SpanCount     = "finder.count"
	SpanDeleteAll = "finder.delete_all"
)

// Span attribute keys.
const (
	AttrOperation   = "finder.operation"
	AttrOrderBy     = "finder.order_by"
	AttrResultCount = "finder.result_count"
	AttrCacheHit    = "finder.cache_hit"
	AttrErrorType   = "error.type"
)

// Event names.
const (
	EventCacheInvalidated = "cache.invalidated"
)
