package incidents

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsledger/opsledger/internal/pkg/httputil"
	"github.com/stretchr/testify/assert"
)

func TestErrorMappings(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"incident not found", ErrIncidentNotFound, http.StatusNotFound},
		{"invalid status", ErrInvalidStatus, http.StatusBadRequest},
		{"invalid severity wrapped", fmt.Errorf("%w: %q", ErrInvalidSeverity, "sev9"), http.StatusBadRequest},
		{"ended_at on unresolved incident", ErrEndedAtNotResolved, http.StatusUnprocessableEntity},
		{"transition conflict", ErrTransitionConflict, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			rec := httptest.NewRecorder()

			// Act
			httputil.HandleError(context.Background(), rec, tc.err, errorMappings)

			// Assert: caller-fixable errors never surface as 500
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
