package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

const stubMaxBytes = 10

var minimalStub = Rule{
	ID:              "MINIMAL-STUB",
	Summary:         "Method body is only a few bytes long.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityLow,
	Docs:            "Bodies of 4 to 10 bytes are usually a return of a field or constant. Bodies of 3 bytes or less are reported by COLD-METHOD instead.",
	Eval:            evalMinimalStub,
}

func evalMinimalStub(_ *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if !plainMethod(m) || m.Abstract || m.Virtual {
		return nil, nil
	}
	if facts.IsEmpty || facts.Length > stubMaxBytes || facts.ThrowsNotImplemented {
		return nil, nil
	}
	return &ir.Violation{Message: fmt.Sprintf("body is %d bytes; looks like a stub", facts.Length)}, nil
}
