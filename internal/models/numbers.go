package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewReferenceNumber generates a public application reference, e.g.
// KSIS-2025-3FA2B1. The suffix is random, not sequential.
func NewReferenceNumber(year int) string {
	return fmt.Sprintf("KSIS-%d-%s", year, randomSuffix(6))
}

// NewAdmissionNumber generates a student admission number, e.g. ADM-2025-8C01DE.
func NewAdmissionNumber(year int) string {
	return fmt.Sprintf("ADM-%d-%s", year, randomSuffix(6))
}

// NewReceiptNumber generates a fee receipt number, e.g. RCPT-1B9F03AA.
func NewReceiptNumber() string {
	return fmt.Sprintf("RCPT-%s", randomSuffix(8))
}

// FormatRollNumber renders the roll number for the seq-th student of a
// class/section/year cohort, e.g. 2025-LKG-A-001.
func FormatRollNumber(year int, standard Standard, section string, seq int) string {
	return fmt.Sprintf("%d-%s-%s-%03d", year, strings.ToUpper(string(standard)), strings.ToUpper(section), seq)
}

// DefaultParentPassword derives the initial parent portal password for
// accounts created at admission time. Preserved from the legacy system;
// parents are expected to change it on first login.
func DefaultParentPassword(year int) string {
	return fmt.Sprintf("parent%d", year)
}

func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(s[:n])
}
