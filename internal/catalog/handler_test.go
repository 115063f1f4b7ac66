package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/pkg/httputil"
	"github.com/stretchr/testify/assert"
)

func TestErrorMappings(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"service not found", ErrServiceNotFound, http.StatusNotFound},
		{"runbook not found", ErrRunbookNotFound, http.StatusNotFound},
		{"slug exists", ErrSlugExists, http.StatusConflict},
		{"invalid slug wrapped", fmt.Errorf("%w: %q", ErrInvalidSlug, "Not A Slug"), http.StatusBadRequest},
		{"invalid runbook status wrapped", fmt.Errorf("%w: %q", ErrInvalidRunbookStatus, domain.RunbookStatus("retired")), http.StatusBadRequest},
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
