package ir

import (
	"errors"
	"strings"
)

var ErrEmptyJustification = errors.New("exemption requires a non-empty justification")

// Exemption opts a symbol out of analysis. It can only be built through
// NewExemption, so every exemption carries a reason.
type Exemption struct {
	justification string
}

func NewExemption(justification string) (*Exemption, error) {
	j := strings.TrimSpace(justification)
	if j == "" {
		return nil, ErrEmptyJustification
	}
	return &Exemption{justification: j}, nil
}

func (e *Exemption) Justification() string {
	if e == nil {
		return ""
	}
	return e.justification
}
