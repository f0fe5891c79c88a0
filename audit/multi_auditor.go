package audit

import (
	"context"
	"errors"
)

// MultiAuditor wraps multiple auditors and sends audit events to all of them.
type MultiAuditor struct {
	auditors []Auditor
}

// NewMultiAuditor creates a new MultiAuditor that sends to all provided auditors.
func NewMultiAuditor(auditors ...Auditor) *MultiAuditor {
	return &MultiAuditor{auditors: auditors}
}

// AuditInjection sends the injection to all wrapped auditors.
func (m *MultiAuditor) AuditInjection(ctx context.Context, inj Injection) {
	for _, a := range m.auditors {
		a.AuditInjection(ctx, inj)
	}
}

// Close closes every wrapped auditor and joins their errors.
func (m *MultiAuditor) Close(ctx context.Context) error {
	var errs []error
	for _, a := range m.auditors {
		if err := a.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
