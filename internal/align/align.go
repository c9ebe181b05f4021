// Package align computes word-level minimum edit distance alignments.
//
// The aligner is a Wagner-Fischer dynamic program with unit costs. When
// several operations reach the same minimum cost the choice is fixed:
// substitute, then delete, then insert. Diagnostics produced from the
// backtrace therefore never split a mismatch into a delete/insert pair when
// a substitution is equally cheap.
//
// Alignments hold their own grids and share nothing, so any number of them
// may be computed concurrently.
package align

import "github.com/verte-zerg/tuispeak/internal/model"

// Alignment is the result of aligning a reference against a recognized
// token sequence.
type Alignment struct {
	Distance int

	reference  []string
	recognized []string
	cols       int
	ops        []model.EditOp
}

// Align builds the cost and operation grids for reference and recognized.
// Both grids are flat slices of (len(reference)+1)*(len(recognized)+1)
// cells indexed by i*cols+j.
func Align(reference, recognized []string) Alignment {
	n, m := len(reference), len(recognized)
	cols := m + 1
	cost := make([]int, (n+1)*cols)
	ops := make([]model.EditOp, (n+1)*cols)

	for i := 1; i <= n; i++ {
		cost[i*cols] = i
		ops[i*cols] = model.Delete
	}
	for j := 1; j <= m; j++ {
		cost[j] = j
		ops[j] = model.Insert
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			at := i*cols + j
			diag := (i-1)*cols + j - 1
			if reference[i-1] == recognized[j-1] {
				cost[at] = cost[diag]
				ops[at] = model.Match
				continue
			}
			subCost := cost[diag] + 1
			delCost := cost[(i-1)*cols+j] + 1
			insCost := cost[i*cols+j-1] + 1

			best, op := subCost, model.Substitute
			if delCost < best {
				best, op = delCost, model.Delete
			}
			if insCost < best {
				best, op = insCost, model.Insert
			}
			cost[at] = best
			ops[at] = op
		}
	}

	return Alignment{
		Distance:   cost[n*cols+m],
		reference:  reference,
		recognized: recognized,
		cols:       cols,
		ops:        ops,
	}
}

// Op returns the operation chosen for cell (i, j).
func (a Alignment) Op(i, j int) model.EditOp {
	return a.ops[i*a.cols+j]
}

// Backtrace walks the operation grid from the last cell back to the origin
// and returns the word diagnostics in reading order.
func (a Alignment) Backtrace() []model.WordDiagnostic {
	i, j := len(a.reference), len(a.recognized)
	if i == 0 && j == 0 {
		return nil
	}
	out := make([]model.WordDiagnostic, 0, max(i, j))
	for i > 0 || j > 0 {
		switch a.Op(i, j) {
		case model.Match:
			out = append(out, model.WordDiagnostic{
				ReferenceWord:  a.reference[i-1],
				RecognizedWord: a.recognized[j-1],
				Position:       i - 1,
				Status:         model.Correct,
			})
			i--
			j--
		case model.Substitute:
			d := model.WordDiagnostic{
				ReferenceWord: a.reference[i-1],
				Position:      i - 1,
				Status:        model.Substitution,
			}
			if j > 0 {
				d.RecognizedWord = a.recognized[j-1]
			}
			out = append(out, d)
			i--
			j--
		case model.Delete:
			out = append(out, model.WordDiagnostic{
				ReferenceWord: a.reference[i-1],
				Position:      i - 1,
				Status:        model.Deletion,
			})
			i--
		case model.Insert:
			out = append(out, model.WordDiagnostic{
				RecognizedWord: a.recognized[j-1],
				Position:       i,
				Status:         model.Insertion,
			})
			j--
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
