package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/report-portal/internal/domain"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

func TestCanView(t *testing.T) {
	report := &domain.Report{ID: 1, District: "D1"}

	cases := []struct {
		name       string
		mainOffice bool
		district   string
		want       bool
	}{
		{name: "main office, other district", mainOffice: true, district: domain.MainOfficeDistrict, want: true},
		{name: "main office, same district label", mainOffice: true, district: "D1", want: true},
		{name: "district, own report", mainOffice: false, district: "D1", want: true},
		{name: "district, other report", mainOffice: false, district: "D2", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caller := domain.Identity{Username: "u", District: tc.district, IsMainOffice: tc.mainOffice}
			assert.Equal(t, tc.want, CanView(caller, report))
		})
	}
}

func TestCanViewNilReport(t *testing.T) {
	assert.False(t, CanView(domain.Identity{Username: "m", IsMainOffice: true}, nil))
}

func TestAuthorize(t *testing.T) {
	report := &domain.Report{District: "D1"}

	require.NoError(t, Authorize(domain.Identity{Username: "a", District: "D1"}, report))

	err := Authorize(domain.Identity{Username: "b", District: "D2"}, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestScope(t *testing.T) {
	main := Scope(domain.Identity{Username: "main", District: domain.MainOfficeDistrict, IsMainOffice: true})
	assert.Nil(t, main.District)

	district := Scope(domain.Identity{Username: "w1", District: "D1"})
	require.NotNil(t, district.District)
	assert.Equal(t, "D1", *district.District)
}

func TestCanSubmit(t *testing.T) {
	require.NoError(t, CanSubmit(domain.Identity{Username: "w1", District: "D1"}))

	err := CanSubmit(domain.Identity{Username: "main", District: domain.MainOfficeDistrict, IsMainOffice: true})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = CanSubmit(domain.Identity{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = CanSubmit(domain.Identity{Username: "orphan"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
