// Package access decides which reports a caller may list, read and submit.
package access

import (
	"github.com/spec-kit/report-portal/internal/domain"
	"github.com/spec-kit/report-portal/internal/repository"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

// CanView reports whether the caller may read the report.
func CanView(caller domain.Identity, report *domain.Report) bool {
	if report == nil {
		return false
	}
	return caller.IsMainOffice || caller.District == report.District
}

// Authorize returns a forbidden error when the caller may not read the report.
func Authorize(caller domain.Identity, report *domain.Report) error {
	if !CanView(caller, report) {
		return apperrors.NewForbidden("report belongs to another district")
	}
	return nil
}

// Scope returns the registry filter limiting a listing to what the caller may see.
func Scope(caller domain.Identity) repository.ReportFilter {
	if caller.IsMainOffice {
		return repository.ReportFilter{}
	}
	district := caller.District
	return repository.ReportFilter{District: &district}
}

// CanSubmit rejects anonymous callers and the main office, which only reviews.
func CanSubmit(caller domain.Identity) error {
	if caller.IsZero() {
		return apperrors.NewUnauthorized("authentication required")
	}
	if caller.IsMainOffice {
		return apperrors.NewForbidden("main office cannot submit reports")
	}
	if caller.District == "" {
		return apperrors.NewForbidden("account has no district assigned")
	}
	return nil
}
