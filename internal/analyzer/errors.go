package analyzer

import "errors"

// ErrPatternAnalysis is the single error kind reported when model
// initialization, embedding generation, or clustering fails. The original
// cause is always wrapped alongside it, so callers can match the kind with
// errors.Is and still inspect the underlying failure.
var ErrPatternAnalysis = errors.New("pattern analysis failed")
