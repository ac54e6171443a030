package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var coldMethod = Rule{
	ID:              "COLD-METHOD",
	Summary:         "Method body is empty or a bare return.",
	Kind:            ir.KindUnusedCode,
	DefaultSeverity: ir.SeverityMedium,
	Eval:            evalColdMethod,
}

func evalColdMethod(_ *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if !plainMethod(m) || m.Abstract || m.Virtual || !facts.IsEmpty {
		return nil, nil
	}
	return &ir.Violation{Message: fmt.Sprintf("cold method: %d-byte body does nothing", facts.Length)}, nil
}
