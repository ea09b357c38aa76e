package sanitizer

// Deduplicate keeps the first occurrence of every element, preserving order.
func Deduplicate[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, item := range slice {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

// Without returns slice minus every element equal to v.
func Without[T comparable](slice []T, v T) []T {
	result := make([]T, 0, len(slice))
	for _, item := range slice {
		if item != v {
			result = append(result, item)
		}
	}
	return result
}
