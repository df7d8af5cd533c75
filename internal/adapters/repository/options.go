package repository

// Option applies a configuration option to the BoardStore.
type Option func(*BoardStore)

// WithMaxLimit caps how many rows one query may return.
func WithMaxLimit(n int) Option {
	return func(s *BoardStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
