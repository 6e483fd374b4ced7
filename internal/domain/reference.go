package domain

import "fmt"

// Reference is the genome reference a run aligns against. Exactly one of
// the two variants is populated: a named genome known to the workflow, or a
// user-supplied fasta with its GTF annotation.
type Reference struct {
	Kind          ReferenceKind
	Genome        string
	Fasta         string
	GTF           string
	SaveReference bool
}

// NamedGenome returns a reference to a pre-packaged genome such as "GRCh38"
func NamedGenome(id string) Reference {
	return Reference{Kind: ReferenceNamedGenome, Genome: id}
}

// FastaAndAnnotation returns a reference built from a fasta/GTF pair.
// saveReference asks the workflow to keep the index it builds.
func FastaAndAnnotation(fasta, gtf string, saveReference bool) Reference {
	return Reference{
		Kind:          ReferenceFastaAndAnnotation,
		Fasta:         fasta,
		GTF:           gtf,
		SaveReference: saveReference,
	}
}

// String returns a short human-readable description
func (r Reference) String() string {
	switch r.Kind {
	case ReferenceNamedGenome:
		return "genome " + r.Genome
	case ReferenceFastaAndAnnotation:
		return fmt.Sprintf("fasta %s + gtf %s", r.Fasta, r.GTF)
	default:
		return "none"
	}
}
