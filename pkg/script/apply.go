package script

import (
	"context"
	"fmt"

	"github.com/joshuapare/regapply/pkg/apply"
	"github.com/joshuapare/regapply/pkg/types"
)

// ApplyOptions configures ApplyFile, ApplyString and ApplyFiles.
type ApplyOptions struct {
	// Parse controls dialect and encoding.
	Parse ParseOptions

	// Apply is passed to the engine for every script.
	Apply apply.Options

	// OnProgress is called before each file in ApplyFiles with its 1-based
	// position.
	OnProgress func(current, total int)
}

func (o *ApplyOptions) parse() ParseOptions {
	if o == nil {
		return ParseOptions{}
	}
	return o.Parse
}

func (o *ApplyOptions) engine() *apply.Options {
	if o == nil {
		return nil
	}
	return &o.Apply
}

// ApplyFile parses the script at path and applies it to st.
//
// Example:
//
//	st := memstore.New()
//	n, err := script.ApplyFile(ctx, "settings.txt", st, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d values set\n", n.Values)
func ApplyFile(ctx context.Context, path string, st types.Store, opts *ApplyOptions) (apply.Applied, error) {
	doc, err := ParseFile(path, opts.parse())
	if err != nil {
		return apply.Applied{}, err
	}
	return apply.Apply(ctx, doc, st, opts.engine())
}

// ApplyString parses text and applies it to st.
func ApplyString(ctx context.Context, text string, st types.Store, opts *ApplyOptions) (apply.Applied, error) {
	doc, err := ParseString(text, opts.parse())
	if err != nil {
		return apply.Applied{}, err
	}
	return apply.Apply(ctx, doc, st, opts.engine())
}

// ApplyFiles applies several scripts in order. It stops at the first failing
// script; counts from scripts that completed are included in the result.
//
// Example:
//
//	_, err := script.ApplyFiles(ctx, []string{"base.txt", "patch.reg"}, st, &script.ApplyOptions{
//	    OnProgress: func(current, total int) {
//	        fmt.Printf("Applying script %d/%d\n", current, total)
//	    },
//	})
func ApplyFiles(ctx context.Context, paths []string, st types.Store, opts *ApplyOptions) (apply.Applied, error) {
	var total apply.Applied
	for i, path := range paths {
		if opts != nil && opts.OnProgress != nil {
			opts.OnProgress(i+1, len(paths))
		}
		n, err := ApplyFile(ctx, path, st, opts)
		total.Groups += n.Groups
		total.Containers += n.Containers
		total.Values += n.Values
		if err != nil {
			return total, fmt.Errorf("failed to apply %s (script %d/%d): %w", path, i+1, len(paths), err)
		}
	}
	return total, nil
}
