package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline_crm_backend/internal/catalog/repository"
	"pipeline_crm_backend/platform/apperr"
)

func TestCreateTechOptionRejectsUnknownCategory(t *testing.T) {
	svc := New(nil)

	_, err := svc.CreateTechOption(context.Background(), "blockchain", "Solidity")
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}

func TestListTechOptionsRejectsUnknownCategoryFilter(t *testing.T) {
	svc := New(nil)

	_, err := svc.ListTechOptions(context.Background(), "martech")
	require.Error(t, err)
}

func TestTechCategoriesCoverTaxonomy(t *testing.T) {
	for _, category := range []string{"language", "framework", "hosting", "database", "erp", "crm", "ecommerce"} {
		assert.True(t, TechCategories[category], category)
	}
}

func TestCatalogErrMapping(t *testing.T) {
	cases := []struct {
		name string
		in   error
		kind apperr.Kind
	}{
		{"not found", repository.ErrNotFound, apperr.KindNotFound},
		{"duplicate", repository.ErrDuplicate, apperr.KindConflict},
		{"in use", repository.ErrInUse, apperr.KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := catalogErr(tc.in)
			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.kind, appErr.Kind)
		})
	}

	assert.NoError(t, catalogErr(nil))

	opaque := errors.New("connection reset")
	assert.Equal(t, opaque, catalogErr(opaque))
}

func TestICPErrTreatsForeignKeyAsValidation(t *testing.T) {
	err := icpErr(repository.ErrInUse)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}
