package main

import "github.com/rxtech-lab/argo-screener/internal/types"

// ReportMsg carries the result of a finished scan.
type ReportMsg struct {
	Report     *types.Report
	Generation int
}

// ScanErrorMsg indicates that a scan could not run.
type ScanErrorMsg struct {
	Err        error
	Generation int
}

// RefreshMsg asks for the next scan of a watch session.
type RefreshMsg struct {
	Generation int
}
