package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStd = errors.New("standard error")

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		errType ErrorType
		message string
	}{
		{name: "CorruptState", errType: CorruptState, message: "nina_id.json is not a uuid"},
		{name: "Gateway", errType: Gateway, message: "region catalog returned 503"},
		{name: "Empty Message", errType: ParsingFailed, message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.errType, tt.message)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, Is(err, tt.errType))
		})
	}
}

func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(Registration, "unexpected status: %d", 500)

	require.Error(t, err)
	assert.Equal(t, "[Registration] unexpected status: 500", err.Error())
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		errType  ErrorType
		expected string
	}{
		{Unknown, "Unknown"},
		{Internal, "Internal"},
		{System, "System"},
		{InvalidInput, "InvalidInput"},
		{CorruptState, "CorruptState"},
		{Gateway, "Gateway"},
		{Registration, "Registration"},
		{PreferenceUpdate, "PreferenceUpdate"},
		{ParsingFailed, "ParsingFailed"},
		{ErrorType(99), "ErrorType(99)"},
		{ErrorType(-1), "ErrorType(-1)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errType.String())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("StdError", func(t *testing.T) {
		wrapped := Wrap(errStd, Gateway, "detail fetch failed")

		assert.Contains(t, wrapped.Error(), "detail fetch failed")
		assert.Contains(t, wrapped.Error(), "standard error")
		assert.True(t, Is(wrapped, Gateway))
		assert.ErrorIs(t, wrapped, errStd)
	})

	t.Run("NilError", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, Internal, "should be nil"))
		assert.Nil(t, Wrapf(nil, Internal, "should be %s", "nil"))
	})

	t.Run("Nested", func(t *testing.T) {
		err1 := New(Gateway, "status 404")
		err2 := Wrap(err1, Registration, "address registration failed")
		err3 := Wrap(err2, System, "startup failed")

		assert.True(t, Is(err3, System))
		assert.True(t, Is(err3, Registration))
		assert.True(t, Is(err3, Gateway))
		assert.False(t, Is(err3, PreferenceUpdate))
	})
}

func TestIs_Nil(t *testing.T) {
	t.Parallel()

	assert.False(t, Is(nil, InvalidInput))
	assert.False(t, Is(errStd, Unknown))
}

func TestAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", New(CorruptState, "bad file"))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, CorruptState, appErr.Type())
	assert.Equal(t, "bad file", appErr.Message())
	assert.NotEmpty(t, appErr.Stack())
}

func TestRootCause(t *testing.T) {
	t.Parallel()

	err1 := New(Gateway, "timeout")
	err2 := Wrap(err1, Internal, "internal")
	err3 := Wrap(err2, System, "system")

	assert.Equal(t, err1, RootCause(err3))
	assert.Nil(t, RootCause(nil))

	t.Run("Deep Chain", func(t *testing.T) {
		err := New(Internal, "base")
		for i := 0; i < 1000; i++ {
			err = Wrap(err, Internal, "wrap")
		}
		assert.NotNil(t, RootCause(err))
	})
}

func TestUnderlyingType(t *testing.T) {
	t.Parallel()

	err := Wrap(Wrap(errStd, ParsingFailed, "bad payload"), Internal, "handler")

	assert.Equal(t, ParsingFailed, UnderlyingType(err))
	assert.Equal(t, Unknown, UnderlyingType(errStd))
	assert.Equal(t, Unknown, UnderlyingType(nil))
}

func TestAppError_Format(t *testing.T) {
	t.Parallel()

	t.Run("Basic Formatting", func(t *testing.T) {
		err := New(Internal, "test error")

		assert.Equal(t, "[Internal] test error", fmt.Sprintf("%s", err))
		assert.Equal(t, "[Internal] test error", fmt.Sprintf("%v", err))
		assert.Equal(t, `"[Internal] test error"`, fmt.Sprintf("%q", err))
	})

	t.Run("Detailed Formatting", func(t *testing.T) {
		err := Wrap(New(Gateway, "status 503"), PreferenceUpdate, "preferences rejected")
		detailed := fmt.Sprintf("%+v", err)

		assert.Contains(t, detailed, "[PreferenceUpdate] preferences rejected")
		assert.Contains(t, detailed, "Caused by:")
		assert.Contains(t, detailed, "[Gateway] status 503")
		assert.Equal(t, 1, strings.Count(detailed, "Stack trace:"), "스택은 체인의 끝에서 한 번만 출력되어야 합니다")
	})

	t.Run("External Cause", func(t *testing.T) {
		detailed := fmt.Sprintf("%+v", Wrap(errStd, System, "write failed"))

		assert.Contains(t, detailed, "Stack trace:")
		assert.Contains(t, detailed, "\tstandard error")
	})
}

func TestCaptureStack_PointsToCaller(t *testing.T) {
	t.Parallel()

	var appErr *AppError
	require.True(t, As(New(Internal, "x"), &appErr))
	require.NotEmpty(t, appErr.Stack())

	assert.Equal(t, "errors_test.go", appErr.Stack()[0].File)
	assert.Contains(t, appErr.Stack()[0].Function, "TestCaptureStack_PointsToCaller")
}

func TestConcurrentErrorCreation(t *testing.T) {
	t.Parallel()

	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			err := Wrap(New(Gateway, fmt.Sprintf("error %d", id)), Internal, "wrap")
			assert.True(t, Is(err, Gateway))
		}(i)
	}

	wg.Wait()
}
