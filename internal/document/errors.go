package document

import "errors"

var (
	// ErrDocumentUnreadable marks a file that cannot be opened or decoded
	// (corrupt, unsupported, or encrypted beyond access). Fatal for the file.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrMissingGeometry marks a page without a resolvable MediaBox. Fatal
	// for the file.
	ErrMissingGeometry = errors.New("page missing required geometry")
	// ErrResourceExhaustion marks an out-of-memory condition on a huge
	// document. Fatal for the file.
	ErrResourceExhaustion = errors.New("resource exhaustion")
	// ErrExtractorPartial marks a single measurement sub-scan failure. The
	// analysis recovers with an empty sub-record and continues.
	ErrExtractorPartial = errors.New("extractor partial failure")
	// ErrAutoFixFailed marks a failed fix attempt. The original document is
	// kept and the analysis proceeds without the fix.
	ErrAutoFixFailed = errors.New("auto-fix failed")
	// ErrPersistenceFailed marks a storage write failure. Logged only,
	// never fatal for the job.
	ErrPersistenceFailed = errors.New("persistence failed")
	// ErrRenderingUnsupported is returned by document backends that cannot
	// rasterize pages.
	ErrRenderingUnsupported = errors.New("page rendering unsupported")
)

// Kind is the stable classification label attached to error results.
type Kind string

// Classification labels, carried in result records and logs.
const (
	KindDocumentUnreadable Kind = "document_unreadable"
	KindMissingGeometry    Kind = "missing_required_geometry"
	KindResourceExhaustion Kind = "resource_exhaustion"
	KindExtractorPartial   Kind = "extractor_partial_failure"
	KindAutoFixFailure     Kind = "auto_fix_failure"
	KindPersistenceFailure Kind = "persistence_failure"
	KindUnknown            Kind = "unknown"
)

// Classify maps an error to its taxonomy kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, ErrDocumentUnreadable):
		return KindDocumentUnreadable
	case errors.Is(err, ErrMissingGeometry):
		return KindMissingGeometry
	case errors.Is(err, ErrResourceExhaustion):
		return KindResourceExhaustion
	case errors.Is(err, ErrExtractorPartial):
		return KindExtractorPartial
	case errors.Is(err, ErrAutoFixFailed):
		return KindAutoFixFailure
	case errors.Is(err, ErrPersistenceFailed):
		return KindPersistenceFailure
	default:
		return KindUnknown
	}
}

// IsFatal reports whether an error aborts the single file's pipeline. All
// other kinds are recovered locally.
func IsFatal(err error) bool {
	switch Classify(err) {
	case KindDocumentUnreadable, KindMissingGeometry, KindResourceExhaustion:
		return true
	default:
		return false
	}
}

// UserMessage returns the short classification-derived message shown to the
// user. Full diagnostic detail stays in the side log.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindDocumentUnreadable:
		return "The file could not be read. It may be corrupt, encrypted, or not a valid PDF."
	case KindMissingGeometry:
		return "A page in this file has no size information (missing MediaBox)."
	case KindResourceExhaustion:
		return "The file is too large to analyze with the available memory."
	case KindAutoFixFailure:
		return "Automatic fixing failed; the original file was analyzed unchanged."
	case KindPersistenceFailure:
		return "The analysis finished but the result could not be saved to history."
	default:
		return "Analysis failed unexpectedly."
	}
}
