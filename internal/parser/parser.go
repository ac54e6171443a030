// Package parser loads unit manifests: YAML or JSON descriptions of a
// compiled unit's types, members and method bodies.
package parser

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/storytest/internal/ir"
)

// ManifestPattern selects manifest files under a directory.
const ManifestPattern = "**/*.unit.{yaml,yml,json}"

type Diagnostics struct {
	Warnings []string
}

type Options struct {
	// ExemptionMarker is the marker that must carry an exempt justification.
	ExemptionMarker string
}

// Parse loads every manifest at path (a file or a directory). A manifest that
// cannot be decoded becomes a failed unit; Parse itself never fails.
func Parse(path string, opts Options) ([]*ir.Unit, Diagnostics) {
	var diags Diagnostics
	files, err := manifests(path)
	if err != nil {
		diags.Warnings = append(diags.Warnings, err.Error())
		return nil, diags
	}

	units := make([]*ir.Unit, 0, len(files))
	for _, p := range files {
		u, err := parseFile(p, opts)
		if err != nil {
			diags.Warnings = append(diags.Warnings, fmt.Sprintf("%s: %v", p, err))
			u = ir.FailedUnit(unitName(p), p, err)
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		diags.Warnings = append(diags.Warnings, "no unit manifests found")
	}
	return units, diags
}

// IsManifest reports whether a file name looks like a unit manifest.
func IsManifest(name string) bool {
	ok, _ := doublestar.Match("*.unit.{yaml,yml,json}", filepath.Base(name))
	return ok
}

func manifests(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}
	matches, err := doublestar.Glob(os.DirFS(path), ManifestPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	slices.Sort(matches)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(path, filepath.FromSlash(m))
	}
	return out, nil
}

func unitName(p string) string {
	base := filepath.Base(p)
	if i := strings.Index(base, ".unit."); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type manifest struct {
	Unit                string            `yaml:"unit"`
	Path                string            `yaml:"path"`
	References          []string          `yaml:"references"`
	NotImplementedCtors []string          `yaml:"not_implemented_ctors"`
	MemberRefs          map[string]string `yaml:"member_refs"`
	Types               []typeDoc         `yaml:"types"`
}

type typeDoc struct {
	Namespace  string      `yaml:"namespace"`
	Name       string      `yaml:"name"`
	Kind       string      `yaml:"kind"`
	Abstract   bool        `yaml:"abstract"`
	Sealed     bool        `yaml:"sealed"`
	Visibility string      `yaml:"visibility"`
	Base       string      `yaml:"base"`
	Markers    []string    `yaml:"markers"`
	Exempt     *string     `yaml:"exempt"`
	Members    []memberDoc `yaml:"members"`
}

type memberDoc struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Visibility string   `yaml:"visibility"`
	Special    bool     `yaml:"special"`
	Abstract   bool     `yaml:"abstract"`
	Virtual    bool     `yaml:"virtual"`
	Override   bool     `yaml:"override"`
	Static     bool     `yaml:"static"`
	Returns    string   `yaml:"returns"`
	Token      string   `yaml:"token"`
	Markers    []string `yaml:"markers"`
	Auto       bool     `yaml:"auto"`
	Getter     string   `yaml:"getter"`
	Setter     string   `yaml:"setter"`
	Literal    bool     `yaml:"literal"`
	Exempt     *string  `yaml:"exempt"`
	Body       *string  `yaml:"body"`
}

func parseFile(p string, opts Options) (*ir.Unit, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return Decode(b, p, opts)
}

// Decode builds a unit from manifest bytes. JSON manifests decode through the
// same YAML decoder.
func Decode(b []byte, path string, opts Options) (*ir.Unit, error) {
	var doc manifest
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if doc.Unit == "" {
		doc.Unit = unitName(path)
	}
	if doc.Path == "" {
		doc.Path = path
	}

	unitOpts := []ir.UnitOption{ir.WithReferences(doc.References...)}
	for _, s := range doc.NotImplementedCtors {
		tok, err := parseToken(s)
		if err != nil {
			return nil, fmt.Errorf("not_implemented_ctors: %w", err)
		}
		unitOpts = append(unitOpts, ir.WithNotImplementedCtors(tok))
	}
	if len(doc.MemberRefs) > 0 {
		refs := make(map[uint32]string, len(doc.MemberRefs))
		for k, v := range doc.MemberRefs {
			tok, err := parseToken(k)
			if err != nil {
				return nil, fmt.Errorf("member_refs: %w", err)
			}
			refs[tok] = v
		}
		unitOpts = append(unitOpts, ir.WithMemberRefs(refs))
	}

	seen := map[uint32]string{}
	types := make([]*ir.Type, 0, len(doc.Types))
	for _, td := range doc.Types {
		t, err := buildType(td, opts, seen)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return ir.NewUnit(doc.Unit, doc.Path, types, unitOpts...), nil
}

func buildType(td typeDoc, opts Options, seen map[uint32]string) (*ir.Type, error) {
	if td.Name == "" {
		return nil, errors.New("type without a name")
	}
	t := &ir.Type{
		Namespace:  td.Namespace,
		Name:       td.Name,
		Abstract:   td.Abstract,
		Sealed:     td.Sealed,
		BaseType:   td.Base,
		Markers:    td.Markers,
		Visibility: ir.Visibility(or(td.Visibility, string(ir.Public))),
	}
	switch k := ir.TypeKind(or(td.Kind, string(ir.TypeClass))); k {
	case ir.TypeClass, ir.TypeStruct, ir.TypeInterface, ir.TypeEnum:
		t.Kind = k
	default:
		return nil, fmt.Errorf("type %s: unknown kind %q", t.FullName(), td.Kind)
	}
	t.Exemption, t.ExemptionErr = exemption(td.Exempt, td.Markers, opts)

	byName := map[string]*ir.Member{}
	for _, md := range td.Members {
		m, err := buildMember(md, opts)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", t.FullName(), err)
		}
		if m.Token != 0 {
			if prev, dup := seen[m.Token]; dup {
				return nil, fmt.Errorf("token 0x%08X used by %s and %s::%s", m.Token, prev, t.FullName(), m.Name)
			}
			seen[m.Token] = t.FullName() + "::" + m.Name
		}
		// Overloads share a name; only their tokens tell them apart.
		if prev, dup := byName[m.Name]; dup && (prev.Token == 0 || m.Token == 0) {
			return nil, fmt.Errorf("type %s: overloaded member %s needs a token on every overload", t.FullName(), m.Name)
		}
		byName[m.Name] = m
		t.Members = append(t.Members, m)
	}

	for i, md := range td.Members {
		m := t.Members[i]
		for _, acc := range []struct {
			name string
			dst  **ir.Member
		}{{md.Getter, &m.Getter}, {md.Setter, &m.Setter}} {
			if acc.name == "" {
				continue
			}
			a, ok := byName[acc.name]
			if !ok {
				return nil, fmt.Errorf("type %s: property %s names missing accessor %s", t.FullName(), m.Name, acc.name)
			}
			*acc.dst = a
		}
	}
	return t, nil
}

func buildMember(md memberDoc, opts Options) (*ir.Member, error) {
	if md.Name == "" {
		return nil, errors.New("member without a name")
	}
	m := &ir.Member{
		Name:            md.Name,
		Visibility:      ir.Visibility(or(md.Visibility, string(ir.Private))),
		Special:         md.Special,
		Abstract:        md.Abstract,
		Virtual:         md.Virtual,
		Override:        md.Override,
		Static:          md.Static,
		ReturnType:      md.Returns,
		Markers:         md.Markers,
		AutoImplemented: md.Auto,
		Literal:         md.Literal,
	}
	switch k := ir.MemberKind(or(md.Kind, string(ir.MemberMethod))); k {
	case ir.MemberMethod, ir.MemberProperty, ir.MemberField, ir.MemberEvent:
		m.Kind = k
	case ir.MemberConstructor:
		m.Kind = k
		m.Special = true
	default:
		return nil, fmt.Errorf("member %s: unknown kind %q", md.Name, md.Kind)
	}
	if md.Token != "" {
		tok, err := parseToken(md.Token)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", md.Name, err)
		}
		m.Token = tok
	}
	if md.Body != nil {
		code, err := parseHex(*md.Body)
		if err != nil {
			return nil, fmt.Errorf("member %s: body: %w", md.Name, err)
		}
		m.Body = ir.NewBody(code)
	}
	m.Exemption, m.ExemptionErr = exemption(md.Exempt, md.Markers, opts)
	return m, nil
}

// exemption validates an inline exemption. A symbol carrying the exemption
// marker without any text is reported, not exempted.
func exemption(text *string, markers []string, opts Options) (*ir.Exemption, error) {
	if text == nil {
		if opts.ExemptionMarker != "" && ir.HasMarker(markers, opts.ExemptionMarker) {
			return nil, ir.ErrEmptyJustification
		}
		return nil, nil
	}
	return ir.NewExemption(*text)
}

func parseToken(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad token %q", s)
	}
	return uint32(v), nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
