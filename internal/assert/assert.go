package assert

import "fmt"

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

// LessThan panics if value is not strictly below bound.
func LessThan[T ~int | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64](name string, value, bound T) {
	if value >= bound {
		panic(fmt.Sprintf("expected %s to be less than %v, got %v", name, bound, value))
	}
}
