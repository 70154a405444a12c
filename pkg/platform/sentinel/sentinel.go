package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The directory client and transport
// layers return these (optionally wrapped) so the orchestrator can translate
// them into domain errors.
//
// These represent factual states about external resources, not validation
// failures:
// - ErrNotFound: no directory entry matched the search
// - ErrBindRejected: the candidate bind was refused (wrong password)
// - ErrUnavailable: the directory or token service could not be reached
//
// For validation errors (bad input, malformed credentials), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrBindRejected = errors.New("bind rejected")
	ErrUnavailable  = errors.New("unavailable")
)
