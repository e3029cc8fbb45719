package genome

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/bodygraph/body"
)

// ValidationError is one structural problem found by Validate.
type ValidationError struct {
	Code    string
	Message string
	Gene    int
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (gene: %d)", e.Code, e.Message, e.Gene)
}

// Validate checks the encoding of g without attaching anything and returns
// every problem found. A genome that passes may still skip genes or exceed its
// budgets when built.
func (f *Factory) Validate(g Genome) []ValidationError {
	var errs []ValidationError
	add := func(gene int, code, format string, args ...any) {
		errs = append(errs, ValidationError{Code: code, Message: fmt.Sprintf(format, args...), Gene: gene})
	}

	if len(g.Genes) == 0 {
		add(-1, "EMPTY", "genome has no genes")
		return errs
	}
	if v := g.Constraints.MaxMass; math.IsNaN(v) || math.IsInf(v, 0) {
		add(-1, "NON_FINITE_BUDGET", "max mass %v is not finite", v)
	}
	if v := g.Constraints.NerveCapacity; math.IsNaN(v) || math.IsInf(v, 0) {
		add(-1, "NON_FINITE_BUDGET", "nerve capacity %v is not finite", v)
	}
	if g.Constraints.MaxMass < 0 {
		add(-1, "NEGATIVE_BUDGET", "max mass %.2f is negative", g.Constraints.MaxMass)
	}
	if g.Constraints.NerveCapacity < 0 {
		add(-1, "NEGATIVE_BUDGET", "nerve capacity %.2f is negative", g.Constraints.NerveCapacity)
	}

	slots := make(map[SlotRef]int, len(g.Genes))
	for i, gene := range g.Genes {
		m, err := f.catalog.Create(gene.Type, gene.Params)
		if err != nil {
			add(i, "BAD_MODULE", "%v", err)
		}

		if i == 0 {
			if gene.Parent != nil {
				add(i, "ROOT_HAS_PARENT", "root gene must not have a parent")
			}
			if err == nil && m.Category() != body.CategoryCore {
				add(i, "ROOT_NOT_CORE", "root module is %s", m.Category())
			}
			continue
		}

		if gene.Parent == nil {
			add(i, "EXTRA_ROOT", "only the first gene may omit its parent")
			continue
		}
		if idx := gene.Parent.Index; idx < 0 || idx >= i {
			add(i, "FORWARD_PARENT", "parent index %d must refer to an earlier gene", idx)
			continue
		}
		if prev, dup := slots[*gene.Parent]; dup {
			add(i, "SLOT_TAKEN", "gene %d already occupies socket %q of gene %d", prev, gene.Parent.Socket, gene.Parent.Index)
		} else {
			slots[*gene.Parent] = i
		}
	}
	return errs
}

// Check runs Validate and joins every problem into one error. It returns nil
// for a well-formed genome.
func (f *Factory) Check(g Genome) error {
	problems := f.Validate(g)
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}
