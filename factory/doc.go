// Package factory loads declarative test-data factories and uses them to
// reset tables and build or persist model values.
//
// A factory source file named <Class><suffix>.yaml (or .yml, .json, .toml)
// holds an "attributes" mapping of defaults and any number of aliases,
// each an overlay mapping:
//
//	attributes:
//	  name: user_{{sequence}}
//	  admin: false
//	admin:
//	  admin: true
//
// Resolution starts from the defaults, overlays the alias, overlays caller
// overrides, then expands sequence tokens in every string value. The
// Factory orchestrates this against a Gateway:
//
//	f, err := factory.New(cfg, gw, mapper, factory.WithModels(models))
//	if err := f.Prepare(ctx); err != nil { ... }
//	user, err := f.Create(ctx, "User", factory.Attributes{"age": 30}, "admin")
//
// Prepare and Create run their table writes with integrity checking
// disabled and always re-enable it, including on failure.
package factory
