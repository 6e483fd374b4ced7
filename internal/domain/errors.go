package domain

import "errors"

var (
	ErrSampleSheetMissing = errors.New("samplesheet does not exist")
	ErrOutdirMissing      = errors.New("outdir does not exist")
	ErrReferenceMissing   = errors.New("reference file does not exist")
	ErrNoReference        = errors.New("must supply either a genome or a fasta and annotation pair")
	ErrInvalidResources   = errors.New("invalid resource limit")
)
