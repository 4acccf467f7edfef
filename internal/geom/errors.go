package geom

import "fmt"

// ErrorKind classifies why a panel could not be laid out.
type ErrorKind int

const (
	KindVertexCount ErrorKind = iota + 1
	KindNonCoplanar
	KindOrientation
	KindNormalization
	KindAxisCapacity
	KindRowCapacity
	KindInverseMismatch
	KindSingular
	KindDegeneratePose
	KindInvalidConfig
)

var kindNames = map[ErrorKind]string{
	KindVertexCount:     "vertex count",
	KindNonCoplanar:     "non-coplanar",
	KindOrientation:     "orientation",
	KindNormalization:   "normalization",
	KindAxisCapacity:    "axis capacity",
	KindRowCapacity:     "row capacity",
	KindInverseMismatch: "inverse mismatch",
	KindSingular:        "singular matrix",
	KindDegeneratePose:  "degenerate pose",
	KindInvalidConfig:   "invalid config",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// GeometryError reports a failed geometric invariant. It is local to the
// panel being processed.
type GeometryError struct {
	Kind    ErrorKind
	Context string
}

func (e *GeometryError) Error() string {
	if e.Context == "" {
		return "geometry: " + e.Kind.String()
	}
	return fmt.Sprintf("geometry: %s: %s", e.Kind, e.Context)
}

// Is matches any GeometryError of the same kind, so the Err* sentinels work
// with errors.Is.
func (e *GeometryError) Is(target error) bool {
	t, ok := target.(*GeometryError)
	return ok && t.Kind == e.Kind
}

// Errorf builds a GeometryError with a formatted context.
func Errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &GeometryError{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrVertexCount     = &GeometryError{Kind: KindVertexCount}
	ErrNonCoplanar     = &GeometryError{Kind: KindNonCoplanar}
	ErrOrientation     = &GeometryError{Kind: KindOrientation}
	ErrNormalization   = &GeometryError{Kind: KindNormalization}
	ErrAxisCapacity    = &GeometryError{Kind: KindAxisCapacity}
	ErrRowCapacity     = &GeometryError{Kind: KindRowCapacity}
	ErrInverseMismatch = &GeometryError{Kind: KindInverseMismatch}
	ErrSingular        = &GeometryError{Kind: KindSingular}
	ErrDegeneratePose  = &GeometryError{Kind: KindDegeneratePose}
	ErrInvalidConfig   = &GeometryError{Kind: KindInvalidConfig}
)
