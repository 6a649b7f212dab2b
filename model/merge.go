package model

import (
	"fmt"
)

// Merge folds every declaration of one function, in the order they were
// read, into a single Function. Declarations without children only add
// their entry point; a declaration with children must agree with the
// signature established so far on return type and parameter count.
// Offsets for non-alias declarations are reserved through alloc.
func Merge(decls []*Declaration, alloc *Allocator) (*Function, error) {
	if len(decls) == 0 {
		return nil, ErrNoDeclarations
	}

	f := newFunction()
	for _, d := range decls {
		if err := mergeOne(f, d, alloc); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func mergeOne(f *Function, d *Declaration, alloc *Allocator) error {
	trueName := d.CanonicalName()
	if f.Name == "" {
		f.Name = trueName
	} else if f.Name != trueName {
		return fmt.Errorf("%w: was %s, now %s", ErrNameRedefined, f.Name, trueName)
	}

	if alloc.IsStatic(d.Name) {
		f.StaticEntryPoints = append(f.StaticEntryPoints, d.Name)
	}
	f.EntryPoints = append(f.EntryPoints, d.Name)

	for api, v := range d.APIVersions {
		if cur, ok := f.APIMap[api]; !ok || v.LessThan(cur) {
			f.APIMap[api] = v
		}
	}
	if d.Exec != "" {
		f.ExecFlavor = d.Exec
	}
	if d.Deprecated != nil {
		dep := *d.Deprecated
		f.Deprecated = &dep
	}
	if !d.Desktop {
		f.Desktop = false
	}
	if d.NoError {
		f.HasNoErrorVariant = true
	}

	if d.Alias == "" {
		slot, err := alloc.Reserve(d.Name, f.ExecFlavor)
		if err != nil {
			return err
		}
		switch {
		case slot.Fixed:
			f.Offset = slot.Offset
		case slot.Offset >= 0:
			f.Offset = slot.Offset
			f.AssignOffset = true
		default:
			f.AssignOffset = true
		}
	}

	if !d.HasChildren {
		f.EntryPointParameters[d.Name] = []*Parameter{}
		return nil
	}

	if f.initialized {
		if err := checkSignature(f, d); err != nil {
			return err
		}
	}
	if trueName == d.Name || !f.initialized {
		f.ReturnType = d.ReturnType
		f.Parameters = d.Parameters
	}
	f.initialized = true
	f.EntryPointParameters[d.Name] = d.Parameters
	return nil
}

func checkSignature(f *Function, d *Declaration) error {
	if f.ReturnType != d.ReturnType {
		return fmt.Errorf("%w: return type changed in %s, was %s, now %s",
			ErrSignature, d.Name, f.ReturnType, d.ReturnType)
	}
	if len(d.Parameters) != len(f.Parameters) {
		return fmt.Errorf("%w: parameter count mismatch in %s (declared as %s), was %d, now %d",
			ErrSignature, d.Name, f.Name, len(f.Parameters), len(d.Parameters))
	}
	for i, p := range d.Parameters {
		prev := f.Parameters[i]
		if !p.Compatible(prev) {
			return fmt.Errorf("%w: parameter type mismatch in %s, %q was %q, now %q",
				ErrSignature, d.Name, prev.Name, prev.TypeString(), p.TypeString())
		}
	}
	return nil
}
