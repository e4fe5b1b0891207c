package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// ValueOrDefault returns def when v is nil.
func ValueOrDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
