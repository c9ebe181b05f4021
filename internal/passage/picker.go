package passage

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuispeak/internal/tokenize"
)

// Picker chooses practice passages.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker() *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewPickerWithSeed returns a deterministic Picker.
func NewPickerWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects a passage uniformly.
func (p *Picker) Pick(passages []Passage) Passage {
	return passages[p.rnd.Intn(len(passages))]
}

// PickWeighted selects a passage with a bias toward passages containing weak
// words. Each passage weighs 1 + hits*factor, where hits counts the passage
// tokens found in weak.
func (p *Picker) PickWeighted(passages []Passage, weak map[string]struct{}, factor float64) Passage {
	weights := Weights(passages, weak, factor)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := p.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return passages[i]
		}
	}
	return passages[len(passages)-1]
}

// Weights returns the selection weight of every passage.
func Weights(passages []Passage, weak map[string]struct{}, factor float64) []float64 {
	weights := make([]float64, len(passages))
	for i, ps := range passages {
		hits := 0
		for _, tok := range tokenize.Tokenize(ps.Text) {
			if _, ok := weak[tok]; ok {
				hits++
			}
		}
		weights[i] = 1.0 + float64(hits)*factor
	}
	return weights
}
