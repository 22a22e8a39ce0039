package compare

import (
	"cmp"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// A collate.Collator keeps iteration buffers and must not be shared between
// goroutines, so comparers borrow one from a pool per call.
var (
	numericCollators = sync.Pool{
		New: func() any { return collate.New(language.Und, collate.Numeric) },
	}
	foldCollators = sync.Pool{
		New: func() any { return collate.New(language.Und, collate.Numeric, collate.IgnoreCase) },
	}
)

func collateStrings(pool *sync.Pool, a, b string) int {
	c := pool.Get().(*collate.Collator)
	defer pool.Put(c)
	return c.CompareString(a, b)
}

// Strings compares strings with locale-aware collation where runs of digits
// compare by numeric value, so "task2" sorts before "task10". Case is only
// significant when the strings are otherwise equal.
func Strings(a, b string) int {
	if r := collateStrings(&numericCollators, a, b); r != 0 {
		return r
	}
	// Collation can equate distinct strings; fall back to bytes so that
	// equality stays consistent with ==.
	return cmp.Compare(a, b)
}

// StringsIgnoreCase is like Strings but treats case differences as equal.
func StringsIgnoreCase(a, b string) int {
	return collateStrings(&foldCollators, a, b)
}

// Numbers compares ordered values in ascending order.
func Numbers[T cmp.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// Booleans orders false before true.
func Booleans(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Times orders instants from earliest to latest.
func Times(a, b time.Time) int {
	return a.Compare(b)
}
