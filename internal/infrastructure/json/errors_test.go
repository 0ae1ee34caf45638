package json

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

type recordingLogger struct {
	cat   logging.Category
	sub   logging.SubCategory
	msg   string
	extra map[logging.ExtraKey]any
	calls int
}

func (l *recordingLogger) Init() {}

func (l *recordingLogger) Error(cat logging.Category, sub logging.SubCategory, msg string, extra map[logging.ExtraKey]any) {
	l.cat, l.sub, l.msg, l.extra = cat, sub, msg, extra
	l.calls++
}

func (l *recordingLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {
}
func (l *recordingLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {
}
func (l *recordingLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {
}
func (l *recordingLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {
}
func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(string, ...any)  {}
func (l *recordingLogger) Warnf(string, ...any)  {}
func (l *recordingLogger) Errorf(string, ...any) {}
func (l *recordingLogger) Fatalf(string, ...any) {}

func TestWriteInternalError(t *testing.T) {
	t.Run("Logs Through The Shared Logger", func(t *testing.T) {
		rec := &recordingLogger{}
		UseLogger(rec)
		t.Cleanup(func() { UseLogger(nil) })

		w := httptest.NewRecorder()
		WriteInternalError(w, errors.New("cursor exhausted"))

		assert.Equal(t, 500, w.Code)
		require.Equal(t, 1, rec.calls)
		assert.Equal(t, logging.RequestResponse, rec.cat)
		assert.Equal(t, logging.Api, rec.sub)
		assert.Equal(t, "cursor exhausted", rec.extra[logging.ErrorMessage])

		// Detail stays out of the response body.
		assert.NotContains(t, w.Body.String(), "cursor exhausted")
	})

	t.Run("Answers Without A Logger", func(t *testing.T) {
		UseLogger(nil)

		w := httptest.NewRecorder()
		WriteInternalError(w, errors.New("boom"))

		assert.Equal(t, 500, w.Code)
		assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	})
}
