package document_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		kind document.Kind
	}{
		{document.ErrDocumentUnreadable, document.KindDocumentUnreadable},
		{document.ErrMissingGeometry, document.KindMissingGeometry},
		{document.ErrResourceExhaustion, document.KindResourceExhaustion},
		{document.ErrExtractorPartial, document.KindExtractorPartial},
		{document.ErrAutoFixFailed, document.KindAutoFixFailure},
		{document.ErrPersistenceFailed, document.KindPersistenceFailure},
		{errors.New("something else"), document.KindUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, document.Classify(tc.err))
	}
}

func TestClassifyWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("open %s: %w", "x.pdf", document.ErrDocumentUnreadable)
	assert.Equal(t, document.KindDocumentUnreadable, document.Classify(wrapped))
	assert.True(t, document.IsFatal(wrapped))
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	assert.True(t, document.IsFatal(document.ErrDocumentUnreadable))
	assert.True(t, document.IsFatal(document.ErrMissingGeometry))
	assert.True(t, document.IsFatal(document.ErrResourceExhaustion))
	assert.False(t, document.IsFatal(document.ErrExtractorPartial))
	assert.False(t, document.IsFatal(document.ErrAutoFixFailed))
	assert.False(t, document.IsFatal(document.ErrPersistenceFailed))
}

func TestUserMessageNeverEmpty(t *testing.T) {
	t.Parallel()

	errs := []error{
		document.ErrDocumentUnreadable,
		document.ErrMissingGeometry,
		document.ErrResourceExhaustion,
		document.ErrAutoFixFailed,
		document.ErrPersistenceFailed,
		errors.New("raw"),
	}
	for _, err := range errs {
		assert.NotEmpty(t, document.UserMessage(err))
	}
}

func TestBoxHelpers(t *testing.T) {
	t.Parallel()

	b := document.Box{LLX: 10, LLY: 20, URX: 110, URY: 220}
	assert.Equal(t, 100.0, b.Width())
	assert.Equal(t, 200.0, b.Height())
	assert.True(t, b.Equals(document.Box{LLX: 10, LLY: 20, URX: 110, URY: 220}))
	assert.False(t, b.Equals(document.Box{LLX: 0, LLY: 20, URX: 110, URY: 220}))
}
