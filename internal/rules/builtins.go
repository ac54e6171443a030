package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/ir"
)

// Builtins returns the built-in rules in report order.
func Builtins() []Rule {
	return []Rule{
		placeholderThrow,
		minimalStub,
		incompleteType,
		unsealedAbstract,
		unmarkedDebug,
		phantomProperty,
		coldMethod,
		hollowEnum,
		prematureCelebration,
		suspiciousSimplicity,
		deadCode,
		constantReturn,
		emptyType,
	}
}

// RegisterBuiltins adds every built-in rule to reg.
func RegisterBuiltins(reg *Registry) error {
	for _, r := range Builtins() {
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("register builtins: %w", err)
		}
	}
	return nil
}

// plainMethod is an ordinary method with a body: not a constructor,
// accessor or event plumbing.
func plainMethod(m *ir.Member) bool {
	return m != nil && m.Kind == ir.MemberMethod && !m.Special && m.Body != nil
}

func concreteType(t *ir.Type) bool {
	return (t.Kind == ir.TypeClass || t.Kind == ir.TypeStruct) && !t.Abstract
}
