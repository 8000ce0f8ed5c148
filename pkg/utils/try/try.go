package try

// Fataler is anything with a Fatal method, like *testing.T or *log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either wraps a (T, error) pair.
//
// When the error is nil the Either is "ok" and the T value is valid;
// otherwise the value must not be used.
type Either[T any] interface {
	Get() (T, error)

	// OrFatal returns the value when the Either is ok.
	//
	// Otherwise it calls ftl.Fatal(err), after ftl.Helper() when ftl
	// has one (as *testing.T does).
	OrFatal(ftl Fataler) T

	// OrDefault returns the value when ok, the given default otherwise.
	OrDefault(T) T
}

func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct{ value T }

func (ok tryOk[T]) Get() (T, error)   { return ok.value, nil }
func (ok tryOk[T]) OrDefault(T) T     { return ok.value }
func (ok tryOk[T]) OrFatal(Fataler) T { return ok.value }

type tryNg[T any] struct{ err error }

func (ng tryNg[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ng tryNg[T]) OrDefault(d T) T {
	return d
}

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if h, ok := ftl.(interface{ Helper() }); ok {
		h.Helper()
	}
	ftl.Fatal(ng.err)
	return *new(T)
}
