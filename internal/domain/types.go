package domain

// RunStatus represents the lifecycle state of a pipeline launch
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunLaunched  RunStatus = "launched" // handed off to the engine's background mode
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ReferenceKind tags which reference variant a run uses
type ReferenceKind string

const (
	ReferenceNamedGenome        ReferenceKind = "genome"
	ReferenceFastaAndAnnotation ReferenceKind = "fasta_gtf"
)
