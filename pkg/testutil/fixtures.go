package testutil

import (
	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TestUserID      = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestTenantID    = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestOtherTenant = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	TestApplicantID = "applicant-0001"
)
