// Package script is the convenience API for parsing and applying
// configuration scripts.
//
// A script is a line-oriented text file of section headers and typed value
// assignments:
//
//	# comment
//	[HKCU\Software\Vendor\App]
//	DisplayName:REG_SZ=My App
//	Flags:REG_DWORD=0x02
//	Tags:REG_MULTI_SZ=alpha\0beta\0gamma
//	Icon:REG_BINARY=4142434445
//
// Files exported by regedit (.reg, version 5.00 or REGEDIT4) are accepted too
// and detected from their header line.
//
// Parsing:
//
//	doc, err := script.ParseFile("settings.txt", script.ParseOptions{})
//
// Applying:
//
//	n, err := script.ApplyFile(ctx, "settings.txt", st, &script.ApplyOptions{
//	    Apply: apply.Options{
//	        OnApplied: func(v types.AppliedValue) { fmt.Println(v.Name) },
//	    },
//	})
//
// Application is fail-fast and non-transactional: values written before the
// first error stay written.
package script
