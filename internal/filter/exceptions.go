package filter

// knownExceptions are corpus files, relative to the corpus root, that are
// skipped even though no structural rule catches them. Revisit the list
// whenever the pinned revision moves.
var knownExceptions = map[string]struct{}{
	// Deprecated placement syntax
	"src/test/ui/obsolete-in-place/bad.rs": {},

	// Deprecated anonymous parameter syntax in traits
	"src/test/ui/error-codes/e0119/auxiliary/issue-23563-a.rs": {},
	"src/test/ui/issues/issue-13105.rs":                        {},
	"src/test/ui/issues/issue-13775.rs":                        {},
	"src/test/ui/issues/issue-34074.rs":                        {},

	// 2015-style dyn that libsyntax rejects
	"src/test/ui/dyn-keyword/dyn-2015-no-warnings-without-lints.rs": {},

	// Visibility on enum variants
	"src/test/pretty/enum-variant-vis.rs":                         {},
	"src/test/ui/parser/issue-65041-empty-vis-matcher-in-enum.rs": {},

	// &raw address-of
	"src/test/pretty/raw-address-of.rs":                                 {},
	"src/test/ui/borrowck/borrow-raw-address-of-deref-mutability-ok.rs": {},
	"src/test/ui/borrowck/borrow-raw-address-of-mutability-ok.rs":       {},
	"src/test/ui/consts/const-address-of.rs":                            {},
	"src/test/ui/consts/const-mut-refs/const_mut_address_of.rs":         {},
	"src/test/ui/consts/min_const_fn/address_of_const.rs":               {},
	"src/test/ui/packed/packed-struct-address-of-element.rs":            {},
	"src/test/ui/raw-ref-op/raw-ref-op.rs":                              {},
	"src/test/ui/raw-ref-op/raw-ref-temp-deref.rs":                      {},
	"src/test/ui/raw-ref-op/unusual_locations.rs":                       {},

	// Half open range patterns
	"src/test/ui/half-open-range-patterns/half-open-range-pats-syntactic-pass.rs": {},
	"src/test/ui/half-open-range-patterns/pat-tuple-4.rs":                         {},

	// Inherent associated const
	"src/test/ui/parser/impl-item-const-pass.rs": {},

	// Inherent associated type
	"src/test/ui/parser/impl-item-type-no-body-pass.rs": {},

	// Visibility on trait items
	"src/test/ui/parser/issue-65041-empty-vis-matcher-in-trait.rs": {},

	// Default const
	"src/test/ui/parser/trait-item-with-defaultness-pass.rs": {},

	// Variadic ellipses before the last function argument
	"src/test/ui/parser/variadic-ffi-syntactic-pass.rs": {},

	// Const trait impls and bounds
	"src/test/ui/rfc-2632-const-trait-impl/const-trait-bound-opt-out/feature-gate.rs": {},
	"src/test/ui/rfc-2632-const-trait-impl/const-trait-bound-opt-out/syntax.rs":       {},
	"src/test/ui/rfc-2632-const-trait-impl/feature-gate.rs":                           {},
	"src/test/ui/rfc-2632-const-trait-impl/syntax.rs":                                 {},

	// Not actually test cases
	"src/test/rustdoc-ui/test-compile-fail2.rs":                {},
	"src/test/rustdoc-ui/test-compile-fail3.rs":                {},
	"src/test/ui/include-single-expr-helper.rs":                {},
	"src/test/ui/include-single-expr-helper-1.rs":              {},
	"src/test/ui/issues/auxiliary/issue-21146-inc.rs":          {},
	"src/test/ui/macros/auxiliary/macro-comma-support.rs":      {},
	"src/test/ui/macros/auxiliary/macro-include-items-expr.rs": {},
}
